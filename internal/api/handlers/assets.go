package handlers

import (
	"net/http"

	"github.com/AlterSupport/erad-trading-copilot-staging/internal/catalog"
	"github.com/AlterSupport/erad-trading-copilot-staging/internal/services"
	"github.com/gin-gonic/gin"
)

// AssetsHandler exposes the market asset catalog and each user's tracked
// selection.
type AssetsHandler struct {
	selections *services.AssetSelectionStore
}

func NewAssetsHandler(selections *services.AssetSelectionStore) *AssetsHandler {
	return &AssetsHandler{selections: selections}
}

// List returns the full catalog, grouped by category for the picker UI.
func (h *AssetsHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"assets": catalog.Assets,
		"groups": catalog.Groups(),
	})
}

func (h *AssetsHandler) GetSelection(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ids, err := h.selections.Get(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"selected": ids})
}

type setSelectionRequest struct {
	Selected []string `json:"selected"`
}

func (h *AssetsHandler) SetSelection(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req setSelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "selected must be a list of asset ids."})
		return
	}

	ids, err := h.selections.Set(c.Request.Context(), userID, req.Selected)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"selected": ids})
}

type toggleSelectionRequest struct {
	AssetID string `json:"assetId" binding:"required"`
}

func (h *AssetsHandler) ToggleSelection(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req toggleSelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "assetId is required."})
		return
	}

	ids, err := h.selections.Toggle(c.Request.Context(), userID, req.AssetID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"selected": ids})
}

func (h *AssetsHandler) ResetSelection(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ids, err := h.selections.Reset(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"selected": ids})
}
