package handlers

import (
	"net/http"

	"github.com/AlterSupport/erad-trading-copilot-staging/internal/services"
	"github.com/gin-gonic/gin"
)

// NotificationsHandler exposes the email-keyed bond alert subscription held
// by the external notification service.
type NotificationsHandler struct {
	prefs *services.NotificationPrefsClient
}

func NewNotificationsHandler(prefs *services.NotificationPrefsClient) *NotificationsHandler {
	return &NotificationsHandler{prefs: prefs}
}

func (h *NotificationsHandler) GetPreferences(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}

	email := c.Query("email")
	if email == "" {
		email = c.GetString("user_email")
	}

	prefs, err := h.prefs.Get(c.Request.Context(), email)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, prefs)
}

type savePreferencesRequest struct {
	Email string   `json:"email"`
	Bonds []string `json:"bonds"`
}

func (h *NotificationsHandler) SavePreferences(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}

	var req savePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body."})
		return
	}
	if req.Email == "" {
		req.Email = c.GetString("user_email")
	}

	if err := h.prefs.Save(c.Request.Context(), req.Email, req.Bonds); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "saved"})
}
