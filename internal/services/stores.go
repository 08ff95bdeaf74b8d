package services

import (
	"context"
	"time"

	"pingly-server/internal/models"

	"github.com/gofrs/uuid"
)

// Store interfaces are defined where they are consumed; the gorm repos in
// internal/repository satisfy them, and internal/mocks provides test doubles.

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, userID uuid.UUID) (*models.User, error)
	DeleteUnverifiedByEmail(ctx context.Context, email string) error
	UpdateProfile(ctx context.Context, userID uuid.UUID, updates map[string]any) error
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error
	SetOnline(ctx context.Context, userID uuid.UUID, online bool) error
	Search(ctx context.Context, selfID uuid.UUID, query string, limit int) ([]models.User, error)
}

type RefreshTokenStore interface {
	Save(ctx context.Context, token *models.RefreshToken) error
	Consume(ctx context.Context, token string) (*models.RefreshToken, error)
	DeleteByToken(ctx context.Context, token string) error
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
	DeleteExpired(ctx context.Context) (int64, error)
}

type ConversationStore interface {
	Create(ctx context.Context, conversation *models.Conversation, participants []models.ConversationParticipant) error
	FindDirectByParticipants(ctx context.Context, a, b uuid.UUID) (*models.Conversation, error)
	GetForUser(ctx context.Context, conversationID, userID uuid.UUID) (*models.Conversation, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error)
	Participants(ctx context.Context, conversationID uuid.UUID) ([]uuid.UUID, error)
	SetLastMessage(ctx context.Context, conversationID, messageID uuid.UUID, at time.Time) error
	IncrementUnread(ctx context.Context, conversationID, exceptUserID uuid.UUID) error
	ResetUnread(ctx context.Context, conversationID, userID uuid.UUID) error
}

type MessageStore interface {
	Create(ctx context.Context, message *models.Message) error
	GetByID(ctx context.Context, messageID uuid.UUID) (*models.Message, error)
	ListByConversation(ctx context.Context, conversationID, viewerID uuid.UUID, limit, offset int) ([]models.Message, error)
	Edit(ctx context.Context, messageID, senderID uuid.UUID, content string) (int64, error)
	SoftDelete(ctx context.Context, messageID, senderID uuid.UUID) (int64, error)
	HideForUser(ctx context.Context, messageID, userID uuid.UUID) error
	SaveReceipt(ctx context.Context, messageID, userID uuid.UUID, kind string) error
	MarkConversationRead(ctx context.Context, conversationID, userID uuid.UUID) error
}

// Broadcaster is the realtime gateway's push capability, injected into the
// services that fan events out. There is no ambient gateway singleton.
type Broadcaster interface {
	EmitToUser(userID uuid.UUID, event string, payload any)
	EmitToConversation(conversationID uuid.UUID, event string, payload any)
}

// Mailer dispatches OTP codes out of band.
type Mailer interface {
	SendOTP(to, name, code string) error
}
