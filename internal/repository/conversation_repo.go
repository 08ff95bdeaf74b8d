package repository

import (
	"context"
	"errors"
	"time"

	"pingly-server/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type ConversationRepo struct {
	db *gorm.DB
}

func NewConversationRepo(db *gorm.DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

// Create persists the conversation and its participant rows in one
// transaction.
func (r *ConversationRepo) Create(ctx context.Context, conversation *models.Conversation, participants []models.ConversationParticipant) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(conversation).Error; err != nil {
			return err
		}
		for i := range participants {
			participants[i].ConversationID = conversation.ID
		}
		return tx.Create(&participants).Error
	})
}

// FindDirectByParticipants looks up the direct conversation whose participant
// set is exactly {a, b}. The count subquery rules out group threads that
// happen to contain both users.
func (r *ConversationRepo) FindDirectByParticipants(ctx context.Context, a, b uuid.UUID) (*models.Conversation, error) {
	var conversation models.Conversation
	result := r.db.WithContext(ctx).
		Joins("JOIN conversation_participants cp1 ON conversations.id = cp1.conversation_id AND cp1.user_id = ?", a).
		Joins("JOIN conversation_participants cp2 ON conversations.id = cp2.conversation_id AND cp2.user_id = ?", b).
		Where("conversations.type = ?", models.ConversationDirect).
		Where("(SELECT COUNT(*) FROM conversation_participants cp WHERE cp.conversation_id = conversations.id) = 2").
		First(&conversation)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &conversation, nil
}

// GetForUser fetches one conversation scoped to a participant. A conversation
// the user is not part of reads the same as one that does not exist.
func (r *ConversationRepo) GetForUser(ctx context.Context, conversationID, userID uuid.UUID) (*models.Conversation, error) {
	var conversation models.Conversation
	result := r.db.WithContext(ctx).
		Joins("JOIN conversation_participants cp ON conversations.id = cp.conversation_id AND cp.user_id = ?", userID).
		Where("conversations.id = ?", conversationID).
		Preload("Participants.User").
		Preload("LastMessage").
		Preload("CreatedBy").
		First(&conversation)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &conversation, nil
}

func (r *ConversationRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error) {
	var conversations []models.Conversation
	result := r.db.WithContext(ctx).
		Joins("JOIN conversation_participants cp ON conversations.id = cp.conversation_id AND cp.user_id = ?", userID).
		Preload("Participants.User").
		Preload("LastMessage").
		Preload("CreatedBy").
		Order("conversations.last_message_at DESC NULLS LAST, conversations.updated_at DESC").
		Find(&conversations)
	if result.Error != nil {
		return nil, result.Error
	}
	return conversations, nil
}

func (r *ConversationRepo) Participants(ctx context.Context, conversationID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	result := r.db.WithContext(ctx).
		Model(&models.ConversationParticipant{}).
		Where("conversation_id = ?", conversationID).
		Pluck("user_id", &ids)
	return ids, result.Error
}

func (r *ConversationRepo) SetLastMessage(ctx context.Context, conversationID, messageID uuid.UUID, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.Conversation{}).
		Where("id = ?", conversationID).
		Updates(map[string]any{
			"last_message_id": messageID,
			"last_message_at": at,
			"updated_at":      at,
		})
	return result.Error
}

// IncrementUnread bumps every participant's unread counter except the
// sender's, as a single atomic UPDATE.
func (r *ConversationRepo) IncrementUnread(ctx context.Context, conversationID, exceptUserID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&models.ConversationParticipant{}).
		Where("conversation_id = ? AND user_id <> ?", conversationID, exceptUserID).
		UpdateColumn("unread_count", gorm.Expr("unread_count + ?", 1))
	return result.Error
}

func (r *ConversationRepo) ResetUnread(ctx context.Context, conversationID, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&models.ConversationParticipant{}).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Updates(map[string]any{
			"unread_count": 0,
			"last_read_at": time.Now(),
		})
	return result.Error
}
