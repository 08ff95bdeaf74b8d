// Package socket is the realtime gateway: it authenticates WebSocket
// connections with the same access tokens as the HTTP API, tracks room
// membership and delivers events to participants.
package socket

import (
	"context"
	"log"
	"sync"
	"time"

	"pingly-server/internal/models"
	"pingly-server/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io/v2/socket"
)

type connectedClient struct {
	UserID uuid.UUID
	Name   string
}

// MessageSender is the slice of the message service the gateway drives from
// socket events.
type MessageSender interface {
	Send(ctx context.Context, senderID, conversationID uuid.UUID, req *models.SendMessageRequest) (*models.Message, error)
	MarkRead(ctx context.Context, userID, conversationID uuid.UUID) error
	MarkDelivered(ctx context.Context, userID, messageID uuid.UUID) error
}

type Gateway struct {
	io            *socket.Server
	tokens        *services.TokenService
	conversations services.ConversationStore
	presence      *services.PresenceService
	messages      MessageSender

	clients sync.Map // map[socket.SocketId]*connectedClient
}

func NewGateway(tokens *services.TokenService, conversations services.ConversationStore, presence *services.PresenceService) *Gateway {
	httpServer := types.CreateServer(nil)
	options := socket.DefaultServerOptions()

	options.SetCors(&types.Cors{
		Origin:      "*",
		Methods:     []string{"GET", "POST", "OPTIONS"},
		Headers:     []string{"Content-Type", "Authorization"},
		Credentials: true,
	})
	options.SetPingInterval(25 * time.Second)
	options.SetPingTimeout(20 * time.Second)

	transports := types.NewSet[string]()
	transports.Add("websocket")
	transports.Add("polling")
	options.SetTransports(transports)

	io := socket.NewServer(httpServer, options)

	g := &Gateway{
		io:            io,
		tokens:        tokens,
		conversations: conversations,
		presence:      presence,
	}

	// handshake auth: a connection without a valid token is rejected before
	// any event handler attaches
	io.Use(func(client *socket.Socket, next func(*socket.ExtendedError)) {
		claims, err := authenticateHandshake(g.tokens, client.Handshake().Auth)
		if err != nil {
			next(socket.NewExtendedError("authentication error: "+err.Error(), nil))
			return
		}
		g.clients.Store(client.Id(), &connectedClient{UserID: claims.UserID, Name: claims.Name})
		next(nil)
	})

	io.On("connection", func(clients ...any) {
		client := clients[0].(*socket.Socket)
		g.handleConnection(client)
	})

	return g
}

// BindMessageService wires the message service in after construction; the
// two depend on each other (the service broadcasts through the gateway).
// Must be called before the gateway is mounted.
func (g *Gateway) BindMessageService(messages MessageSender) {
	g.messages = messages
}

func (g *Gateway) handleConnection(client *socket.Socket) {
	info, ok := g.client(client.Id())
	if !ok {
		// middleware rejected connections never reach here
		client.Disconnect(true)
		return
	}
	log.Printf("user connected: %s (%s)", info.Name, info.UserID)

	ctx := context.Background()

	for _, room := range roomSnapshot(ctx, g.conversations, info.UserID) {
		client.Join(room)
	}

	if err := g.presence.MarkOnline(ctx, info.UserID); err != nil {
		log.Printf("failed to mark %s online: %v", info.UserID, err)
	}

	client.On("sendMessage", g.handleSendMessage(client, info))
	client.On("markRead", g.handleMarkRead(client, info))
	client.On("markDelivered", g.handleMarkDelivered(client, info))
	client.On("typing", g.handleTyping(client, info, true))
	client.On("stopTyping", g.handleTyping(client, info, false))

	client.On("disconnect", func(...any) {
		log.Printf("user disconnected: %s (%s)", info.Name, info.UserID)
		g.clients.Delete(client.Id())
		if err := g.presence.MarkOffline(context.Background(), info.UserID); err != nil {
			log.Printf("failed to mark %s offline: %v", info.UserID, err)
		}
	})
}

func (g *Gateway) handleSendMessage(client *socket.Socket, info *connectedClient) func(...any) {
	return func(data ...any) {
		if g.messages == nil {
			return
		}
		payload, ok := eventPayload(data)
		if !ok {
			client.Emit("error", map[string]any{"message": "invalid payload"})
			return
		}
		conversationID, err := payloadUUID(payload, "conversationId")
		if err != nil {
			client.Emit("error", map[string]any{"message": "invalid conversation id"})
			return
		}

		req := &models.SendMessageRequest{}
		req.Content, _ = payload["content"].(string)
		req.Type, _ = payload["type"].(string)
		req.Attachment, _ = payload["attachment"].(string)

		// the service broadcasts newMessage to the conversation room
		if _, err := g.messages.Send(context.Background(), info.UserID, conversationID, req); err != nil {
			client.Emit("error", map[string]any{"message": err.Error()})
		}
	}
}

func (g *Gateway) handleMarkRead(client *socket.Socket, info *connectedClient) func(...any) {
	return func(data ...any) {
		if g.messages == nil {
			return
		}
		payload, ok := eventPayload(data)
		if !ok {
			return
		}
		conversationID, err := payloadUUID(payload, "conversationId")
		if err != nil {
			return
		}
		if err := g.messages.MarkRead(context.Background(), info.UserID, conversationID); err != nil {
			client.Emit("error", map[string]any{"message": err.Error()})
		}
	}
}

func (g *Gateway) handleMarkDelivered(client *socket.Socket, info *connectedClient) func(...any) {
	return func(data ...any) {
		if g.messages == nil {
			return
		}
		payload, ok := eventPayload(data)
		if !ok {
			return
		}
		messageID, err := payloadUUID(payload, "messageId")
		if err != nil {
			return
		}
		if err := g.messages.MarkDelivered(context.Background(), info.UserID, messageID); err != nil {
			client.Emit("error", map[string]any{"message": err.Error()})
		}
	}
}

func (g *Gateway) handleTyping(client *socket.Socket, info *connectedClient, typing bool) func(...any) {
	return func(data ...any) {
		payload, ok := eventPayload(data)
		if !ok {
			return
		}
		conversationID, err := payloadUUID(payload, "conversationId")
		if err != nil {
			return
		}

		ctx := context.Background()
		if typing {
			_ = g.presence.SetTyping(ctx, conversationID, info.UserID)
		} else {
			_ = g.presence.StopTyping(ctx, conversationID, info.UserID)
		}

		client.To(socket.Room(conversationRoom(conversationID))).Emit("userTyping", map[string]any{
			"conversationId": conversationID,
			"userId":         info.UserID,
			"name":           info.Name,
			"isTyping":       typing,
		})
	}
}

// EmitToUser pushes an event to the user's personal room.
func (g *Gateway) EmitToUser(userID uuid.UUID, event string, payload any) {
	g.io.To(socket.Room(userID.String())).Emit(event, payload)
}

// EmitToConversation pushes an event to every connection in the
// conversation's room.
func (g *Gateway) EmitToConversation(conversationID uuid.UUID, event string, payload any) {
	g.io.To(socket.Room(conversationRoom(conversationID))).Emit(event, payload)
}

func (g *Gateway) ServeHTTP(c *gin.Context) {
	g.io.ServeHandler(nil).ServeHTTP(c.Writer, c.Request)
}

func (g *Gateway) Close() {
	g.io.Close(nil)
}

func (g *Gateway) client(id socket.SocketId) (*connectedClient, bool) {
	value, ok := g.clients.Load(id)
	if !ok {
		return nil, false
	}
	return value.(*connectedClient), true
}

func conversationRoom(conversationID uuid.UUID) string {
	return "conversation:" + conversationID.String()
}

// roomSnapshot is the set of rooms a fresh connection joins: the user's
// personal room plus one room per current conversation membership. Threads
// created after the connection reach the user through the personal room.
// A listing failure degrades to the personal room alone so direct pushes
// still arrive.
func roomSnapshot(ctx context.Context, conversations services.ConversationStore, userID uuid.UUID) []socket.Room {
	rooms := []socket.Room{socket.Room(userID.String())}

	list, err := conversations.ListForUser(ctx, userID)
	if err != nil {
		log.Printf("failed to list conversations for %s: %v", userID, err)
		return rooms
	}
	for _, conversation := range list {
		rooms = append(rooms, socket.Room(conversationRoom(conversation.ID)))
	}
	return rooms
}
