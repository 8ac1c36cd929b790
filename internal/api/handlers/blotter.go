package handlers

import (
	"io"
	"net/http"

	"github.com/AlterSupport/erad-trading-copilot-staging/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// BlotterHandler exposes the blotter registry and the upload lifecycle. All
// routes operate on the authenticated user's attached session.
type BlotterHandler struct {
	sessions     *services.SessionManager
	orchestrator *services.UploadOrchestrator
	logger       *logrus.Entry
}

func NewBlotterHandler(sessions *services.SessionManager, orchestrator *services.UploadOrchestrator) *BlotterHandler {
	return &BlotterHandler{
		sessions:     sessions,
		orchestrator: orchestrator,
		logger:       logrus.WithField("component", "blotter_handler"),
	}
}

// GetState returns the full registry snapshot.
func (h *BlotterHandler) GetState(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	sess := h.sessions.Attach(c.Request.Context(), userID)
	c.JSON(http.StatusOK, sess.Registry.Snapshot())
}

// Upload accepts a multipart blotter file and runs the full upload lifecycle.
// Size and extension are validated before the body is read into memory.
func (h *BlotterHandler) Upload(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A file is required."})
		return
	}
	if err := h.orchestrator.ValidateUpload(fileHeader.Filename, fileHeader.Size); err != nil {
		respondError(c, err)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read uploaded file."})
		return
	}
	defer func() {
		if err := file.Close(); err != nil {
			h.logger.WithError(err).Warn("Error closing uploaded file")
		}
	}()

	content, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read uploaded file."})
		return
	}

	sess := h.sessions.Attach(c.Request.Context(), userID)
	result, err := h.orchestrator.Upload(c.Request.Context(), sess.Registry, userID, fileHeader.Filename, content)
	h.sessions.Persist(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"analysis": result,
		"blotter":  sess.Registry.Snapshot(),
	})
}

type selectFileRequest struct {
	FileName string `json:"fileName" binding:"required"`
}

// Select changes which file the dashboard and chat operate on.
func (h *BlotterHandler) Select(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req selectFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "fileName is required."})
		return
	}

	sess := h.sessions.Attach(c.Request.Context(), userID)
	sess.Registry.SelectFile(req.FileName)
	h.sessions.Persist(c.Request.Context(), userID)

	c.JSON(http.StatusOK, sess.Registry.Snapshot())
}

// Remove deletes a file and its analysis result from the session.
func (h *BlotterHandler) Remove(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	name := c.Param("name")
	sess := h.sessions.Attach(c.Request.Context(), userID)
	sess.Registry.RemoveFile(name)
	h.sessions.Persist(c.Request.Context(), userID)

	c.JSON(http.StatusOK, sess.Registry.Snapshot())
}

// GetAnalysis returns the stored analysis result for one file.
func (h *BlotterHandler) GetAnalysis(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	name := c.Param("name")
	sess := h.sessions.Attach(c.Request.Context(), userID)
	result, found := sess.Registry.AnalysisResult(name)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "No analysis result for this file."})
		return
	}
	c.JSON(http.StatusOK, result)
}
