package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"pingly-server/internal/mocks"
	"pingly-server/internal/models"
	"pingly-server/internal/services"
)

type conversationEnv struct {
	userID        uuid.UUID
	conversations *mocks.ConversationStoreMock
	messages      *mocks.MessageStoreMock
	broadcaster   *mocks.BroadcasterMock
	router        *gin.Engine
}

func newConversationEnv() *conversationEnv {
	env := &conversationEnv{
		userID:        uuid.Must(uuid.NewV4()),
		conversations: new(mocks.ConversationStoreMock),
		messages:      new(mocks.MessageStoreMock),
		broadcaster:   new(mocks.BroadcasterMock),
	}

	conversationService := services.NewConversationService(env.conversations, new(mocks.UserStoreMock), env.broadcaster)
	messageService := services.NewMessageService(env.messages, env.conversations, env.broadcaster)
	handler := NewConversationHandler(conversationService, messageService)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", env.userID)
		c.Next()
	})
	r.POST("/conversations", handler.Create)
	r.GET("/conversations", handler.List)
	r.GET("/conversations/:id", handler.GetByID)
	r.GET("/conversations/:id/messages", handler.ListMessages)
	r.POST("/conversations/:id/messages", handler.SendMessage)
	r.POST("/conversations/:id/read", handler.MarkRead)
	env.router = r
	return env
}

func (env *conversationEnv) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			panic(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func TestCreateDirectNewReturns201(t *testing.T) {
	env := newConversationEnv()
	friend := uuid.Must(uuid.NewV4())

	env.conversations.On("FindDirectByParticipants", mock.Anything, env.userID, friend).Return(nil, nil).Once()
	env.conversations.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	env.conversations.On("GetForUser", mock.Anything, mock.Anything, env.userID).Return(nil, nil).Once()

	rec := env.do(http.MethodPost, "/conversations", gin.H{
		"type":         "direct",
		"participants": []string{friend.String()},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var response models.ConversationResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	assert.True(t, response.IsNew)
}

func TestCreateDirectExistingReturns200(t *testing.T) {
	env := newConversationEnv()
	friend := uuid.Must(uuid.NewV4())
	existing := &models.Conversation{ID: uuid.Must(uuid.NewV4()), Type: models.ConversationDirect}

	env.conversations.On("FindDirectByParticipants", mock.Anything, env.userID, friend).Return(existing, nil).Once()
	env.conversations.On("GetForUser", mock.Anything, existing.ID, env.userID).Return(existing, nil).Once()

	rec := env.do(http.MethodPost, "/conversations", gin.H{
		"type":         "direct",
		"participants": []string{friend.String()},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var response models.ConversationResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	assert.False(t, response.IsNew)
	assert.Equal(t, existing.ID, response.Conversation.ID)
}

func TestCreateValidatesType(t *testing.T) {
	env := newConversationEnv()

	rec := env.do(http.MethodPost, "/conversations", gin.H{
		"type":         "broadcast",
		"participants": []string{uuid.Must(uuid.NewV4()).String()},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateGroupWithoutName(t *testing.T) {
	env := newConversationEnv()

	rec := env.do(http.MethodPost, "/conversations", gin.H{
		"type":         "group",
		"participants": []string{uuid.Must(uuid.NewV4()).String()},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetConversationNotParticipant(t *testing.T) {
	env := newConversationEnv()
	conversationID := uuid.Must(uuid.NewV4())

	env.conversations.On("GetForUser", mock.Anything, conversationID, env.userID).Return(nil, nil).Once()

	rec := env.do(http.MethodGet, "/conversations/"+conversationID.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetConversationBadID(t *testing.T) {
	env := newConversationEnv()

	rec := env.do(http.MethodGet, "/conversations/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListConversations(t *testing.T) {
	env := newConversationEnv()

	env.conversations.On("ListForUser", mock.Anything, env.userID).
		Return([]models.Conversation{{ID: uuid.Must(uuid.NewV4())}}, nil).Once()

	rec := env.do(http.MethodGet, "/conversations", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var conversations []models.Conversation
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&conversations))
	assert.Len(t, conversations, 1)
}

func TestSendMessageOverHTTP(t *testing.T) {
	env := newConversationEnv()
	conversationID := uuid.Must(uuid.NewV4())

	env.conversations.On("GetForUser", mock.Anything, conversationID, env.userID).
		Return(&models.Conversation{ID: conversationID}, nil).Once()
	env.messages.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	env.conversations.On("SetLastMessage", mock.Anything, conversationID, mock.Anything, mock.Anything).Return(nil).Once()
	env.conversations.On("IncrementUnread", mock.Anything, conversationID, env.userID).Return(nil).Once()
	env.broadcaster.On("EmitToConversation", conversationID, "newMessage", mock.Anything).Return().Once()

	rec := env.do(http.MethodPost, "/conversations/"+conversationID.String()+"/messages", gin.H{
		"content": "hello there",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	env.broadcaster.AssertExpectations(t)
}

func TestListMessagesInForeignConversation(t *testing.T) {
	env := newConversationEnv()
	conversationID := uuid.Must(uuid.NewV4())

	env.conversations.On("GetForUser", mock.Anything, conversationID, env.userID).Return(nil, nil).Once()

	rec := env.do(http.MethodGet, "/conversations/"+conversationID.String()+"/messages", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMarkReadEndpoint(t *testing.T) {
	env := newConversationEnv()
	conversationID := uuid.Must(uuid.NewV4())

	env.conversations.On("GetForUser", mock.Anything, conversationID, env.userID).
		Return(&models.Conversation{ID: conversationID}, nil).Once()
	env.conversations.On("ResetUnread", mock.Anything, conversationID, env.userID).Return(nil).Once()
	env.messages.On("MarkConversationRead", mock.Anything, conversationID, env.userID).Return(nil).Once()
	env.broadcaster.On("EmitToConversation", conversationID, "messageRead", mock.Anything).Return().Once()

	rec := env.do(http.MethodPost, "/conversations/"+conversationID.String()+"/read", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
