// Package mocks holds testify doubles for the store and side-effect
// interfaces consumed by the service layer.
package mocks

import (
	"context"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/mock"

	"pingly-server/internal/models"
	"pingly-server/internal/services"
)

type UserStoreMock struct {
	mock.Mock
}

func (m *UserStoreMock) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserStoreMock) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	var user *models.User
	if val := args.Get(0); val != nil {
		user = val.(*models.User)
	}
	return user, args.Error(1)
}

func (m *UserStoreMock) GetByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, userID)
	var user *models.User
	if val := args.Get(0); val != nil {
		user = val.(*models.User)
	}
	return user, args.Error(1)
}

func (m *UserStoreMock) DeleteUnverifiedByEmail(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *UserStoreMock) UpdateProfile(ctx context.Context, userID uuid.UUID, updates map[string]any) error {
	args := m.Called(ctx, userID, updates)
	return args.Error(0)
}

func (m *UserStoreMock) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	args := m.Called(ctx, userID, passwordHash)
	return args.Error(0)
}

func (m *UserStoreMock) SetOnline(ctx context.Context, userID uuid.UUID, online bool) error {
	args := m.Called(ctx, userID, online)
	return args.Error(0)
}

func (m *UserStoreMock) Search(ctx context.Context, selfID uuid.UUID, query string, limit int) ([]models.User, error) {
	args := m.Called(ctx, selfID, query, limit)
	var users []models.User
	if val := args.Get(0); val != nil {
		users = val.([]models.User)
	}
	return users, args.Error(1)
}

type RefreshTokenStoreMock struct {
	mock.Mock
}

func (m *RefreshTokenStoreMock) Save(ctx context.Context, token *models.RefreshToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *RefreshTokenStoreMock) Consume(ctx context.Context, token string) (*models.RefreshToken, error) {
	args := m.Called(ctx, token)
	var record *models.RefreshToken
	if val := args.Get(0); val != nil {
		record = val.(*models.RefreshToken)
	}
	return record, args.Error(1)
}

func (m *RefreshTokenStoreMock) DeleteByToken(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *RefreshTokenStoreMock) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *RefreshTokenStoreMock) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type ConversationStoreMock struct {
	mock.Mock
}

func (m *ConversationStoreMock) Create(ctx context.Context, conversation *models.Conversation, participants []models.ConversationParticipant) error {
	args := m.Called(ctx, conversation, participants)
	return args.Error(0)
}

func (m *ConversationStoreMock) FindDirectByParticipants(ctx context.Context, a, b uuid.UUID) (*models.Conversation, error) {
	args := m.Called(ctx, a, b)
	var conversation *models.Conversation
	if val := args.Get(0); val != nil {
		conversation = val.(*models.Conversation)
	}
	return conversation, args.Error(1)
}

func (m *ConversationStoreMock) GetForUser(ctx context.Context, conversationID, userID uuid.UUID) (*models.Conversation, error) {
	args := m.Called(ctx, conversationID, userID)
	var conversation *models.Conversation
	if val := args.Get(0); val != nil {
		conversation = val.(*models.Conversation)
	}
	return conversation, args.Error(1)
}

func (m *ConversationStoreMock) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error) {
	args := m.Called(ctx, userID)
	var conversations []models.Conversation
	if val := args.Get(0); val != nil {
		conversations = val.([]models.Conversation)
	}
	return conversations, args.Error(1)
}

func (m *ConversationStoreMock) Participants(ctx context.Context, conversationID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, conversationID)
	var ids []uuid.UUID
	if val := args.Get(0); val != nil {
		ids = val.([]uuid.UUID)
	}
	return ids, args.Error(1)
}

func (m *ConversationStoreMock) SetLastMessage(ctx context.Context, conversationID, messageID uuid.UUID, at time.Time) error {
	args := m.Called(ctx, conversationID, messageID, at)
	return args.Error(0)
}

func (m *ConversationStoreMock) IncrementUnread(ctx context.Context, conversationID, exceptUserID uuid.UUID) error {
	args := m.Called(ctx, conversationID, exceptUserID)
	return args.Error(0)
}

func (m *ConversationStoreMock) ResetUnread(ctx context.Context, conversationID, userID uuid.UUID) error {
	args := m.Called(ctx, conversationID, userID)
	return args.Error(0)
}

type MessageStoreMock struct {
	mock.Mock
}

func (m *MessageStoreMock) Create(ctx context.Context, message *models.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MessageStoreMock) GetByID(ctx context.Context, messageID uuid.UUID) (*models.Message, error) {
	args := m.Called(ctx, messageID)
	var message *models.Message
	if val := args.Get(0); val != nil {
		message = val.(*models.Message)
	}
	return message, args.Error(1)
}

func (m *MessageStoreMock) ListByConversation(ctx context.Context, conversationID, viewerID uuid.UUID, limit, offset int) ([]models.Message, error) {
	args := m.Called(ctx, conversationID, viewerID, limit, offset)
	var messages []models.Message
	if val := args.Get(0); val != nil {
		messages = val.([]models.Message)
	}
	return messages, args.Error(1)
}

func (m *MessageStoreMock) Edit(ctx context.Context, messageID, senderID uuid.UUID, content string) (int64, error) {
	args := m.Called(ctx, messageID, senderID, content)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MessageStoreMock) SoftDelete(ctx context.Context, messageID, senderID uuid.UUID) (int64, error) {
	args := m.Called(ctx, messageID, senderID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MessageStoreMock) HideForUser(ctx context.Context, messageID, userID uuid.UUID) error {
	args := m.Called(ctx, messageID, userID)
	return args.Error(0)
}

func (m *MessageStoreMock) SaveReceipt(ctx context.Context, messageID, userID uuid.UUID, kind string) error {
	args := m.Called(ctx, messageID, userID, kind)
	return args.Error(0)
}

func (m *MessageStoreMock) MarkConversationRead(ctx context.Context, conversationID, userID uuid.UUID) error {
	args := m.Called(ctx, conversationID, userID)
	return args.Error(0)
}

type BroadcasterMock struct {
	mock.Mock
}

func (m *BroadcasterMock) EmitToUser(userID uuid.UUID, event string, payload any) {
	m.Called(userID, event, payload)
}

func (m *BroadcasterMock) EmitToConversation(conversationID uuid.UUID, event string, payload any) {
	m.Called(conversationID, event, payload)
}

type MailerMock struct {
	mock.Mock
}

func (m *MailerMock) SendOTP(to, name, code string) error {
	args := m.Called(to, name, code)
	return args.Error(0)
}

var _ services.UserStore = (*UserStoreMock)(nil)
var _ services.RefreshTokenStore = (*RefreshTokenStoreMock)(nil)
var _ services.ConversationStore = (*ConversationStoreMock)(nil)
var _ services.MessageStore = (*MessageStoreMock)(nil)
var _ services.Broadcaster = (*BroadcasterMock)(nil)
var _ services.Mailer = (*MailerMock)(nil)
