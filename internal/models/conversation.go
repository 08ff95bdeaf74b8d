package models

import (
	"time"

	"github.com/gofrs/uuid"
)

const (
	ConversationDirect = "direct"
	ConversationGroup  = "group"
)

const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Conversation is a direct (exactly 2 participants) or group thread.
type Conversation struct {
	ID            uuid.UUID  `json:"id" gorm:"type:uuid;primary_key"`
	Type          string     `json:"type" gorm:"not null;index"`
	Name          string     `json:"name,omitempty"`
	Description   string     `json:"description,omitempty"`
	Avatar        string     `json:"avatar,omitempty"`
	CreatedByID   uuid.UUID  `json:"createdById" gorm:"type:uuid"`
	LastMessageID *uuid.UUID `json:"lastMessageId,omitempty" gorm:"type:uuid"`
	LastMessageAt *time.Time `json:"lastMessageAt,omitempty" gorm:"index"`
	CreatedAt     time.Time  `json:"createdAt" gorm:"not null"`
	UpdatedAt     time.Time  `json:"updatedAt" gorm:"not null"`

	// Relationships
	Participants []ConversationParticipant `json:"participants,omitempty" gorm:"foreignKey:ConversationID"`
	LastMessage  *Message                  `json:"lastMessage,omitempty" gorm:"foreignKey:LastMessageID"`
	CreatedBy    *User                     `json:"createdBy,omitempty" gorm:"foreignKey:CreatedByID"`
}

// ConversationParticipant carries the per-participant state the thread keeps
// for each member: role, unread counter, read cursor and mute flag.
type ConversationParticipant struct {
	ConversationID uuid.UUID  `json:"conversationId" gorm:"type:uuid;primary_key"`
	UserID         uuid.UUID  `json:"userId" gorm:"type:uuid;primary_key;index"`
	Role           string     `json:"role" gorm:"not null;default:'member'"`
	UnreadCount    int        `json:"unreadCount" gorm:"not null;default:0"`
	LastReadAt     *time.Time `json:"lastReadAt,omitempty"`
	IsMuted        bool       `json:"isMuted" gorm:"not null;default:false"`
	JoinedAt       time.Time  `json:"joinedAt" gorm:"not null"`

	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

type CreateConversationRequest struct {
	Type         string   `json:"type" binding:"required,oneof=direct group"`
	Participants []string `json:"participants" binding:"required,min=1"`
	Name         string   `json:"name" binding:"omitempty,max=100"`
	Description  string   `json:"description" binding:"omitempty,max=500"`
	Avatar       string   `json:"avatar" binding:"omitempty,url"`
}

type ConversationResponse struct {
	Conversation *Conversation `json:"conversation"`
	IsNew        bool          `json:"isNew"`
}

// ConversationCreatedEvent is pushed to each added participant's personal
// room so connected clients materialize the new thread without polling.
type ConversationCreatedEvent struct {
	Conversation *Conversation `json:"conversation"`
	CreatedBy    uuid.UUID     `json:"createdBy"`
}

func (Conversation) TableName() string {
	return "conversations"
}

func (ConversationParticipant) TableName() string {
	return "conversation_participants"
}
