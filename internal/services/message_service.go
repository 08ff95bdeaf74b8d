package services

import (
	"context"
	"errors"
	"time"

	"pingly-server/internal/models"

	"github.com/gofrs/uuid"
)

var (
	ErrMessageNotFound = errors.New("message not found")
	ErrEmptyMessage    = errors.New("message needs content or an attachment")
)

type MessageService struct {
	messages      MessageStore
	conversations ConversationStore
	broadcaster   Broadcaster
}

func NewMessageService(messages MessageStore, conversations ConversationStore, broadcaster Broadcaster) *MessageService {
	if broadcaster == nil {
		panic("message service requires a broadcaster")
	}
	return &MessageService{
		messages:      messages,
		conversations: conversations,
		broadcaster:   broadcaster,
	}
}

func (s *MessageService) requireParticipant(ctx context.Context, conversationID, userID uuid.UUID) error {
	conversation, err := s.conversations.GetForUser(ctx, conversationID, userID)
	if err != nil {
		return err
	}
	if conversation == nil {
		return ErrConversationNotFound
	}
	return nil
}

// Send persists the message, advances the conversation's last-message
// pointer, bumps the other participants' unread counters and pushes the
// event to the conversation room.
func (s *MessageService) Send(ctx context.Context, senderID, conversationID uuid.UUID, req *models.SendMessageRequest) (*models.Message, error) {
	if err := s.requireParticipant(ctx, conversationID, senderID); err != nil {
		return nil, err
	}
	if req.Content == "" && req.Attachment == "" {
		return nil, ErrEmptyMessage
	}

	msgType := req.Type
	if msgType == "" {
		msgType = models.MessageText
	}

	message := &models.Message{
		ID:             uuid.Must(uuid.NewV4()),
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        req.Content,
		Type:           msgType,
		Attachment:     req.Attachment,
		AttachmentName: req.AttachmentName,
		AttachmentSize: req.AttachmentSize,
		MimeType:       req.MimeType,
		State:          models.MessageStateActive,
		CreatedAt:      time.Now(),
	}
	if req.ReplyTo != nil {
		replyID, err := uuid.FromString(*req.ReplyTo)
		if err != nil {
			return nil, ErrMessageNotFound
		}
		message.ReplyToID = &replyID
	}

	if err := s.messages.Create(ctx, message); err != nil {
		return nil, err
	}
	if err := s.conversations.SetLastMessage(ctx, conversationID, message.ID, message.CreatedAt); err != nil {
		return nil, err
	}
	if err := s.conversations.IncrementUnread(ctx, conversationID, senderID); err != nil {
		return nil, err
	}

	s.broadcaster.EmitToConversation(conversationID, "newMessage", message)
	return message, nil
}

func (s *MessageService) List(ctx context.Context, userID, conversationID uuid.UUID, limit, offset int) ([]models.Message, error) {
	if err := s.requireParticipant(ctx, conversationID, userID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.messages.ListByConversation(ctx, conversationID, userID, limit, offset)
}

// Edit changes the content in place; the message keeps its identity and
// moves to the edited state.
func (s *MessageService) Edit(ctx context.Context, userID, conversationID, messageID uuid.UUID, content string) (*models.Message, error) {
	if err := s.requireParticipant(ctx, conversationID, userID); err != nil {
		return nil, err
	}
	affected, err := s.messages.Edit(ctx, messageID, userID, content)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrMessageNotFound
	}

	message, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	s.broadcaster.EmitToConversation(conversationID, "messageEdited", message)
	return message, nil
}

// Delete removes the message for everyone (sender only) or hides it for the
// calling viewer, depending on forMe.
func (s *MessageService) Delete(ctx context.Context, userID, conversationID, messageID uuid.UUID, forMe bool) error {
	if err := s.requireParticipant(ctx, conversationID, userID); err != nil {
		return err
	}

	if forMe {
		message, err := s.messages.GetByID(ctx, messageID)
		if err != nil {
			return err
		}
		if message == nil || message.ConversationID != conversationID {
			return ErrMessageNotFound
		}
		return s.messages.HideForUser(ctx, messageID, userID)
	}

	affected, err := s.messages.SoftDelete(ctx, messageID, userID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrMessageNotFound
	}
	s.broadcaster.EmitToConversation(conversationID, "messageDeleted", map[string]any{
		"messageId":      messageID,
		"conversationId": conversationID,
	})
	return nil
}

// MarkRead resets the caller's unread counter and files read receipts, then
// tells the room.
func (s *MessageService) MarkRead(ctx context.Context, userID, conversationID uuid.UUID) error {
	if err := s.requireParticipant(ctx, conversationID, userID); err != nil {
		return err
	}
	if err := s.conversations.ResetUnread(ctx, conversationID, userID); err != nil {
		return err
	}
	if err := s.messages.MarkConversationRead(ctx, conversationID, userID); err != nil {
		return err
	}
	s.broadcaster.EmitToConversation(conversationID, "messageRead", map[string]any{
		"conversationId": conversationID,
		"userId":         userID,
	})
	return nil
}

func (s *MessageService) MarkDelivered(ctx context.Context, userID, messageID uuid.UUID) error {
	return s.messages.SaveReceipt(ctx, messageID, userID, models.ReceiptDelivered)
}
