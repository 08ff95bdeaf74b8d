package services

import (
	"context"
	"fmt"
	"time"

	"pingly-server/internal/cache"

	"github.com/gofrs/uuid"
)

// typing state expires on its own if the client never sends stopTyping
const typingTTL = 10 * time.Second

// PresenceService keeps transient online/typing state in the session cache.
// The durable online flag on the user row is managed by the auth flow; this
// state is disposable and vanishes with the cache.
type PresenceService struct {
	cache cache.Cache
}

func NewPresenceService(sessionCache cache.Cache) *PresenceService {
	return &PresenceService{cache: sessionCache}
}

func presenceKey(userID uuid.UUID) string {
	return fmt.Sprintf("presence:%s", userID)
}

func typingKey(conversationID, userID uuid.UUID) string {
	return fmt.Sprintf("typing:%s:%s", conversationID, userID)
}

func (s *PresenceService) MarkOnline(ctx context.Context, userID uuid.UUID) error {
	return s.cache.Set(ctx, presenceKey(userID), "online", 24*time.Hour)
}

func (s *PresenceService) MarkOffline(ctx context.Context, userID uuid.UUID) error {
	return s.cache.Delete(ctx, presenceKey(userID))
}

func (s *PresenceService) IsOnline(ctx context.Context, userID uuid.UUID) (bool, error) {
	_, ok, err := s.cache.Get(ctx, presenceKey(userID))
	return ok, err
}

func (s *PresenceService) SetTyping(ctx context.Context, conversationID, userID uuid.UUID) error {
	return s.cache.Set(ctx, typingKey(conversationID, userID), "1", typingTTL)
}

func (s *PresenceService) StopTyping(ctx context.Context, conversationID, userID uuid.UUID) error {
	return s.cache.Delete(ctx, typingKey(conversationID, userID))
}

func (s *PresenceService) IsTyping(ctx context.Context, conversationID, userID uuid.UUID) (bool, error) {
	_, ok, err := s.cache.Get(ctx, typingKey(conversationID, userID))
	return ok, err
}
