package services

import (
	"context"

	"pingly-server/internal/models"

	"github.com/gofrs/uuid"
)

const maxUserSearchResults = 50

type UserService struct {
	users UserStore
}

func NewUserService(users UserStore) *UserService {
	return &UserService{users: users}
}

func (s *UserService) GetByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// Search lists users for the contact picker, excluding the requester.
func (s *UserService) Search(ctx context.Context, selfID uuid.UUID, query string) ([]models.User, error) {
	return s.users.Search(ctx, selfID, query, maxUserSearchResults)
}
