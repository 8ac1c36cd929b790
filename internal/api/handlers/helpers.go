package handlers

import (
	"net/http"

	"github.com/AlterSupport/erad-trading-copilot-staging/internal/utils"
	"github.com/gin-gonic/gin"
)

// currentUserID reads the identity the auth middleware stored. An empty id
// means the middleware was bypassed, which is a wiring bug, not a user error.
func currentUserID(c *gin.Context) (string, bool) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return "", false
	}
	return userID, true
}

// respondError maps service errors onto HTTP: validation failures are the
// caller's fault, everything else is a 502 because the failing party is
// almost always an upstream collaborator.
func respondError(c *gin.Context, err error) {
	if utils.IsValidationError(err) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
}
