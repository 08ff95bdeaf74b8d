package models

import (
	"time"

	"github.com/gofrs/uuid"
)

const (
	MessageText  = "text"
	MessageImage = "image"
	MessageVideo = "video"
	MessageAudio = "audio"
	MessageFile  = "file"
)

// Message lifecycle. Edits preserve identity and move the state to "edited";
// deletion is logical: "deleted" for everyone, or a MessageHidden row for a
// single viewer.
const (
	MessageStateActive  = "active"
	MessageStateEdited  = "edited"
	MessageStateDeleted = "deleted"
)

const (
	ReceiptDelivered = "delivered"
	ReceiptRead      = "read"
)

type Message struct {
	ID             uuid.UUID  `json:"id" gorm:"type:uuid;primary_key"`
	ConversationID uuid.UUID  `json:"conversationId" gorm:"type:uuid;not null;index:idx_messages_conversation_created"`
	SenderID       uuid.UUID  `json:"senderId" gorm:"type:uuid;not null"`
	Content        string     `json:"content"`
	Type           string     `json:"type" gorm:"not null;default:'text'"`
	Attachment     string     `json:"attachment,omitempty"`
	AttachmentName string     `json:"attachmentName,omitempty"`
	AttachmentSize int64      `json:"attachmentSize,omitempty"`
	MimeType       string     `json:"mimeType,omitempty"`
	State          string     `json:"state" gorm:"not null;default:'active'"`
	EditedAt       *time.Time `json:"editedAt,omitempty"`
	DeletedAt      *time.Time `json:"deletedAt,omitempty"`
	ReplyToID      *uuid.UUID `json:"replyTo,omitempty" gorm:"type:uuid"`
	CreatedAt      time.Time  `json:"createdAt" gorm:"not null;index:idx_messages_conversation_created,sort:desc"`

	Sender   *User            `json:"sender,omitempty" gorm:"foreignKey:SenderID"`
	Receipts []MessageReceipt `json:"receipts,omitempty" gorm:"foreignKey:MessageID"`
}

// MessageReceipt records delivery and read acknowledgements per user.
type MessageReceipt struct {
	MessageID uuid.UUID `json:"messageId" gorm:"type:uuid;primary_key"`
	UserID    uuid.UUID `json:"userId" gorm:"type:uuid;primary_key"`
	Kind      string    `json:"kind" gorm:"primary_key"`
	At        time.Time `json:"at" gorm:"not null"`
}

// MessageHidden marks a message as deleted for a single viewer only.
type MessageHidden struct {
	MessageID uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID    uuid.UUID `gorm:"type:uuid;primary_key"`
}

type SendMessageRequest struct {
	Content        string  `json:"content" binding:"max=5000"`
	Type           string  `json:"type" binding:"omitempty,oneof=text image video audio file"`
	Attachment     string  `json:"attachment" binding:"omitempty,url"`
	AttachmentName string  `json:"attachmentName"`
	AttachmentSize int64   `json:"attachmentSize"`
	MimeType       string  `json:"mimeType"`
	ReplyTo        *string `json:"replyTo"`
}

type EditMessageRequest struct {
	Content string `json:"content" binding:"required,max=5000"`
}

func (Message) TableName() string {
	return "messages"
}

func (MessageReceipt) TableName() string {
	return "message_receipts"
}

func (MessageHidden) TableName() string {
	return "message_hidden"
}
