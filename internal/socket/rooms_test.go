package socket

import (
	"context"
	"errors"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zishang520/socket.io/v2/socket"

	"pingly-server/internal/mocks"
	"pingly-server/internal/models"
)

func TestRoomSnapshotJoinsPersonalAndConversationRooms(t *testing.T) {
	userID := uuid.Must(uuid.NewV4())
	first := uuid.Must(uuid.NewV4())
	second := uuid.Must(uuid.NewV4())

	conversations := new(mocks.ConversationStoreMock)
	conversations.On("ListForUser", mock.Anything, userID).Return([]models.Conversation{
		{ID: first},
		{ID: second},
	}, nil).Once()

	rooms := roomSnapshot(context.Background(), conversations, userID)

	require.Len(t, rooms, 3)
	assert.Equal(t, socket.Room(userID.String()), rooms[0])
	assert.Equal(t, socket.Room("conversation:"+first.String()), rooms[1])
	assert.Equal(t, socket.Room("conversation:"+second.String()), rooms[2])
	conversations.AssertExpectations(t)
}

func TestRoomSnapshotNoConversations(t *testing.T) {
	userID := uuid.Must(uuid.NewV4())

	conversations := new(mocks.ConversationStoreMock)
	conversations.On("ListForUser", mock.Anything, userID).Return(nil, nil).Once()

	rooms := roomSnapshot(context.Background(), conversations, userID)

	require.Len(t, rooms, 1)
	assert.Equal(t, socket.Room(userID.String()), rooms[0])
}

func TestRoomSnapshotListFailureKeepsPersonalRoom(t *testing.T) {
	userID := uuid.Must(uuid.NewV4())

	conversations := new(mocks.ConversationStoreMock)
	conversations.On("ListForUser", mock.Anything, userID).Return(nil, errors.New("db down")).Once()

	rooms := roomSnapshot(context.Background(), conversations, userID)

	require.Len(t, rooms, 1)
	assert.Equal(t, socket.Room(userID.String()), rooms[0])
	conversations.AssertExpectations(t)
}
