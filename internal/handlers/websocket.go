package handlers

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskhub-api/internal/middleware"
	"github.com/yukikurage/taskhub-api/internal/realtime"
)

type WebSocketHandler struct {
	hub *realtime.Hub
}

func NewWebSocketHandler(hub *realtime.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// Connect upgrades to a websocket that receives the current user's
// notification and message events.
func (h *WebSocketHandler) Connect(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	if err := h.hub.Serve(c.Writer, c.Request, user.ID); err != nil {
		log.Printf("[%s] websocket for user %d ended: %v", middleware.GetRequestID(c), user.ID, err)
	}
}
