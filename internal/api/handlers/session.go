package handlers

import (
	"net/http"

	"github.com/AlterSupport/erad-trading-copilot-staging/internal/services"
	"github.com/gin-gonic/gin"
)

// SessionHandler exposes the sign-in and sign-out transitions. Sign-in
// attaches (or restores) the per-user session and returns the resulting
// blotter state, cloud reconciliation included.
type SessionHandler struct {
	sessions *services.SessionManager
}

func NewSessionHandler(sessions *services.SessionManager) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

func (h *SessionHandler) SignIn(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	sess := h.sessions.Attach(c.Request.Context(), userID)
	c.JSON(http.StatusOK, gin.H{
		"userId":  userID,
		"blotter": sess.Registry.Snapshot(),
	})
}

func (h *SessionHandler) SignOut(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	h.sessions.Detach(c.Request.Context(), userID)
	c.JSON(http.StatusOK, gin.H{"status": "signed out"})
}
