package services

import (
	"context"
	"errors"
	"time"

	"pingly-server/internal/models"

	"github.com/gofrs/uuid"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrDirectParticipants   = errors.New("direct chat requires exactly 2 participants")
	ErrGroupNameRequired    = errors.New("group name is required")
	ErrInvalidParticipant   = errors.New("invalid participant id")
	ErrParticipantsRequired = errors.New("type and participants are required")
)

type ConversationService struct {
	conversations ConversationStore
	users         UserStore
	broadcaster   Broadcaster
}

// NewConversationService receives the gateway's broadcast capability at
// construction; a nil broadcaster is a programming error, not a runtime
// condition.
func NewConversationService(conversations ConversationStore, users UserStore, broadcaster Broadcaster) *ConversationService {
	if broadcaster == nil {
		panic("conversation service requires a broadcaster")
	}
	return &ConversationService{
		conversations: conversations,
		users:         users,
		broadcaster:   broadcaster,
	}
}

// Create builds a conversation from the request. The creator is always part
// of the participant set. Direct threads are deduplicated by exact
// participant pair; groups are always new, with the creator as sole admin.
func (s *ConversationService) Create(ctx context.Context, creatorID uuid.UUID, req *models.CreateConversationRequest) (*models.Conversation, bool, error) {
	if len(req.Participants) == 0 {
		return nil, false, ErrParticipantsRequired
	}

	seen := map[uuid.UUID]bool{creatorID: true}
	participantIDs := []uuid.UUID{creatorID}
	for _, raw := range req.Participants {
		id, err := uuid.FromString(raw)
		if err != nil {
			return nil, false, ErrInvalidParticipant
		}
		if !seen[id] {
			seen[id] = true
			participantIDs = append(participantIDs, id)
		}
	}

	switch req.Type {
	case models.ConversationDirect:
		if len(participantIDs) != 2 {
			return nil, false, ErrDirectParticipants
		}
		existing, err := s.conversations.FindDirectByParticipants(ctx, participantIDs[0], participantIDs[1])
		if err != nil {
			return nil, false, err
		}
		if existing != nil {
			full, err := s.conversations.GetForUser(ctx, existing.ID, creatorID)
			if err != nil {
				return nil, false, err
			}
			if full == nil {
				full = existing
			}
			return full, false, nil
		}
	case models.ConversationGroup:
		if req.Name == "" {
			return nil, false, ErrGroupNameRequired
		}
	}

	now := time.Now()
	conversation := &models.Conversation{
		ID:            uuid.Must(uuid.NewV4()),
		Type:          req.Type,
		CreatedByID:   creatorID,
		LastMessageAt: &now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if req.Type == models.ConversationGroup {
		conversation.Name = req.Name
		conversation.Description = req.Description
		conversation.Avatar = req.Avatar
	}

	participants := make([]models.ConversationParticipant, 0, len(participantIDs))
	for _, id := range participantIDs {
		role := models.RoleMember
		if req.Type == models.ConversationGroup && id == creatorID {
			role = models.RoleAdmin
		}
		participants = append(participants, models.ConversationParticipant{
			UserID:   id,
			Role:     role,
			JoinedAt: now,
		})
	}

	if err := s.conversations.Create(ctx, conversation, participants); err != nil {
		return nil, false, err
	}

	created, err := s.conversations.GetForUser(ctx, conversation.ID, creatorID)
	if err != nil {
		return nil, false, err
	}
	if created == nil {
		created = conversation
	}

	// connected clients of every added group member learn about the thread
	// without polling; the creator already has the HTTP response
	if req.Type == models.ConversationGroup {
		event := models.ConversationCreatedEvent{
			Conversation: created,
			CreatedBy:    creatorID,
		}
		for _, id := range participantIDs {
			if id != creatorID {
				s.broadcaster.EmitToUser(id, "conversationCreated", event)
			}
		}
	}

	return created, true, nil
}

func (s *ConversationService) List(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error) {
	return s.conversations.ListForUser(ctx, userID)
}

// Get returns the conversation only if the requester participates in it.
// "Not yours" and "does not exist" are deliberately the same answer.
func (s *ConversationService) Get(ctx context.Context, userID, conversationID uuid.UUID) (*models.Conversation, error) {
	conversation, err := s.conversations.GetForUser(ctx, conversationID, userID)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, ErrConversationNotFound
	}
	return conversation, nil
}
