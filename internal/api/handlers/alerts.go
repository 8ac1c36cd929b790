package handlers

import (
	"net/http"

	"github.com/AlterSupport/erad-trading-copilot-staging/internal/services"
	"github.com/gin-gonic/gin"
)

// PriceAlertHandler proxies quote lookups to the upstream alert feed.
type PriceAlertHandler struct {
	alerts *services.PriceAlertService
}

func NewPriceAlertHandler(alerts *services.PriceAlertService) *PriceAlertHandler {
	return &PriceAlertHandler{alerts: alerts}
}

type priceAlertRequest struct {
	AssetID string `json:"assetId"`
	Symbol  string `json:"symbol"`
}

func (h *PriceAlertHandler) Lookup(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}

	var req priceAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "assetId or symbol is required."})
		return
	}

	quote, err := h.alerts.Lookup(c.Request.Context(), req.AssetID, req.Symbol)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}
