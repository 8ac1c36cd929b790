package handlers

import (
	"net/http"

	"github.com/AlterSupport/erad-trading-copilot-staging/internal/services"
	"github.com/gin-gonic/gin"
)

// ChatHandler exposes the advisor conversation. A failed send still returns
// 200 with the inline error message in the history, matching how the advisor
// surfaces problems to the user.
type ChatHandler struct {
	sessions *services.SessionManager
}

func NewChatHandler(sessions *services.SessionManager) *ChatHandler {
	return &ChatHandler{sessions: sessions}
}

type chatSendRequest struct {
	Message       string `json:"message" binding:"required"`
	AttachBlotter bool   `json:"attachBlotter"`
}

func (h *ChatHandler) Send(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req chatSendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required."})
		return
	}

	sess := h.sessions.Attach(c.Request.Context(), userID)
	reply, err := sess.Chat.Send(c.Request.Context(), req.Message, req.AttachBlotter)
	if err != nil {
		if reply.Content == "" {
			respondError(c, err)
			return
		}
		// The pipeline failed but the error turn is part of the conversation.
		c.JSON(http.StatusOK, gin.H{"reply": reply, "history": sess.Chat.History()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reply": reply, "history": sess.Chat.History()})
}

func (h *ChatHandler) History(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	sess := h.sessions.Attach(c.Request.Context(), userID)
	c.JSON(http.StatusOK, gin.H{"history": sess.Chat.History()})
}

func (h *ChatHandler) Clear(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	sess := h.sessions.Attach(c.Request.Context(), userID)
	sess.Chat.Clear()
	c.JSON(http.StatusOK, gin.H{"history": []services.ChatMessage{}})
}
