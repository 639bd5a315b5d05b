package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskhub-api/internal/dto"
	apierrors "github.com/yukikurage/taskhub-api/internal/errors"
	"github.com/yukikurage/taskhub-api/internal/services"
)

type MessageHandler struct {
	messageService *services.MessageService
}

func NewMessageHandler(messageService *services.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// ListMessages returns the conversation with ?userId=, or all of the
// current user's messages.
func (h *MessageHandler) ListMessages(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	otherID, ok := queryID(c, "userId")
	if !ok {
		return
	}

	messages, unread, err := h.messageService.List(c.Request.Context(), user.ID, otherID)
	if err != nil {
		respondMessageError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages":    dto.ToMessageDTOs(messages),
		"unreadCount": unread,
	})
}

func (h *MessageHandler) SendMessage(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	type SendMessageRequest struct {
		ReceiverID uint64 `json:"receiverId"`
		Content    string `json:"content"`
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	message, err := h.messageService.Send(c.Request.Context(), user, req.ReceiverID, req.Content)
	if err != nil {
		respondMessageError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": dto.ToMessageDTO(*message)})
}

// MarkRead marks the messages from senderId to the current user as read.
func (h *MessageHandler) MarkRead(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	type MarkReadRequest struct {
		SenderID uint64 `json:"senderId"`
	}

	var req MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.messageService.MarkRead(c.Request.Context(), user.ID, req.SenderID); err != nil {
		respondMessageError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func respondMessageError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrMessageFieldsRequired),
		errors.Is(err, services.ErrCannotMessageSelf),
		errors.Is(err, services.ErrSenderRequired):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrReceiverNotFound):
		apierrors.NotFound(c, err.Error())
	default:
		internalError(c, err)
	}
}
