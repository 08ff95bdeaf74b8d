package handlers

import (
	"net/http"
	"strconv"

	"pingly-server/internal/models"
	"pingly-server/internal/services"

	"github.com/gin-gonic/gin"
)

type ConversationHandler struct {
	conversationService *services.ConversationService
	messageService      *services.MessageService
}

func NewConversationHandler(conversationService *services.ConversationService, messageService *services.MessageService) *ConversationHandler {
	return &ConversationHandler{
		conversationService: conversationService,
		messageService:      messageService,
	}
}

// Create opens a conversation. Direct chats are deduplicated: asking for an
// existing pair returns that conversation with 200 instead of 201.
func (h *ConversationHandler) Create(c *gin.Context) {
	var req models.CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindingError(err))
		return
	}

	conversation, isNew, err := h.conversationService.Create(c.Request.Context(), currentUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if isNew {
		status = http.StatusCreated
	}
	c.JSON(status, models.ConversationResponse{Conversation: conversation, IsNew: isNew})
}

func (h *ConversationHandler) List(c *gin.Context) {
	conversations, err := h.conversationService.List(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, conversations)
}

func (h *ConversationHandler) GetByID(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	conversation, err := h.conversationService.Get(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, conversation)
}

func (h *ConversationHandler) ListMessages(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	messages, err := h.messageService.List(c.Request.Context(), currentUserID(c), id, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

func (h *ConversationHandler) SendMessage(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req models.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindingError(err))
		return
	}

	message, err := h.messageService.Send(c.Request.Context(), currentUserID(c), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, message)
}

func (h *ConversationHandler) EditMessage(c *gin.Context) {
	conversationID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	messageID, ok := pathUUID(c, "messageId")
	if !ok {
		return
	}
	var req models.EditMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindingError(err))
		return
	}

	message, err := h.messageService.Edit(c.Request.Context(), currentUserID(c), conversationID, messageID, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, message)
}

func (h *ConversationHandler) DeleteMessage(c *gin.Context) {
	conversationID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	messageID, ok := pathUUID(c, "messageId")
	if !ok {
		return
	}
	forMe := c.Query("forMe") == "true"

	if err := h.messageService.Delete(c.Request.Context(), currentUserID(c), conversationID, messageID, forMe); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "message deleted"})
}

func (h *ConversationHandler) MarkRead(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.messageService.MarkRead(c.Request.Context(), currentUserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "conversation marked read"})
}
