package repository

import (
	"context"
	"errors"
	"time"

	"pingly-server/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MessageRepo struct {
	db *gorm.DB
}

func NewMessageRepo(db *gorm.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

func (r *MessageRepo) Create(ctx context.Context, message *models.Message) error {
	result := r.db.WithContext(ctx).Create(message)
	return result.Error
}

func (r *MessageRepo) GetByID(ctx context.Context, messageID uuid.UUID) (*models.Message, error) {
	var message models.Message
	result := r.db.WithContext(ctx).Where("id = ?", messageID).First(&message)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &message, nil
}

// ListByConversation returns messages newest first, skipping ones the viewer
// has hidden for themselves.
func (r *MessageRepo) ListByConversation(ctx context.Context, conversationID, viewerID uuid.UUID, limit, offset int) ([]models.Message, error) {
	var messages []models.Message
	result := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Where("NOT EXISTS (SELECT 1 FROM message_hidden h WHERE h.message_id = messages.id AND h.user_id = ?)", viewerID).
		Preload("Sender").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&messages)
	if result.Error != nil {
		return nil, result.Error
	}
	return messages, nil
}

// Edit updates content in place, preserving the message identity. Only the
// sender may edit, and only while the message is not deleted.
func (r *MessageRepo) Edit(ctx context.Context, messageID, senderID uuid.UUID, content string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("id = ? AND sender_id = ? AND state <> ?", messageID, senderID, models.MessageStateDeleted).
		Updates(map[string]any{
			"content":   content,
			"state":     models.MessageStateEdited,
			"edited_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}

// SoftDelete marks the message deleted for everyone. The row is kept.
func (r *MessageRepo) SoftDelete(ctx context.Context, messageID, senderID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("id = ? AND sender_id = ? AND state <> ?", messageID, senderID, models.MessageStateDeleted).
		Updates(map[string]any{
			"state":      models.MessageStateDeleted,
			"deleted_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}

// HideForUser deletes the message for a single viewer only.
func (r *MessageRepo) HideForUser(ctx context.Context, messageID, userID uuid.UUID) error {
	hidden := models.MessageHidden{MessageID: messageID, UserID: userID}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&hidden)
	return result.Error
}

func (r *MessageRepo) SaveReceipt(ctx context.Context, messageID, userID uuid.UUID, kind string) error {
	receipt := models.MessageReceipt{
		MessageID: messageID,
		UserID:    userID,
		Kind:      kind,
		At:        time.Now(),
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&receipt)
	return result.Error
}

// MarkConversationRead files read receipts for every message in the
// conversation the user has not yet acknowledged.
func (r *MessageRepo) MarkConversationRead(ctx context.Context, conversationID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Exec(`
		INSERT INTO message_receipts (message_id, user_id, kind, at)
		SELECT m.id, ?, ?, NOW()
		FROM messages m
		WHERE m.conversation_id = ? AND m.sender_id <> ?
		ON CONFLICT DO NOTHING`,
		userID, models.ReceiptRead, conversationID, userID,
	).Error
}
