package services

import (
	"context"
	"encoding/base64"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/AlterSupport/erad-trading-copilot-staging/internal/analysis"
	"github.com/AlterSupport/erad-trading-copilot-staging/internal/blotter"
	"github.com/AlterSupport/erad-trading-copilot-staging/internal/utils"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ChatMessage is one turn of the advisor conversation.
type ChatMessage struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"` // "user" or "ai"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Chatter submits one assistant turn to the external pipeline.
type Chatter interface {
	Chat(ctx context.Context, req *analysis.ChatRequest) (*analysis.ChatResponse, error)
}

// ChatSession is the per-user conversation state machine. It is loosely
// coupled to the registry: it only reads the selected file to build the
// request context, never mutates it. Failed sends are recorded into the
// history as an assistant error message, mirroring how the advisor surfaces
// problems inline.
type ChatSession struct {
	mu       sync.Mutex
	messages []ChatMessage

	chatter  Chatter
	registry *blotter.Registry
	contents *blotter.ContentCache
	userID   string
	maxBytes int64
	logger   *logrus.Entry
}

// NewChatSession creates a chat session bound to a user's registry. contents
// is optional; without it no attachment is ever sent.
func NewChatSession(chatter Chatter, registry *blotter.Registry, contents *blotter.ContentCache, userID string, maxAttachmentBytes int64) *ChatSession {
	return &ChatSession{
		chatter:  chatter,
		registry: registry,
		contents: contents,
		userID:   userID,
		maxBytes: maxAttachmentBytes,
		logger:   logrus.WithFields(logrus.Fields{"component": "chat_session", "user_id": userID}),
	}
}

// Send submits one user turn and returns the assistant's reply message. When
// attachBlotter is set, the currently selected blotter is attached if its
// content is still cached and within the chat size limit; a missing or
// oversized attachment degrades to a context-free question rather than an
// error.
func (s *ChatSession) Send(ctx context.Context, input string, attachBlotter bool) (ChatMessage, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return ChatMessage{}, utils.NewValidationError("Message cannot be empty.")
	}

	userMsg := ChatMessage{
		ID:        uuid.New().String(),
		Role:      "user",
		Content:   input,
		Timestamp: time.Now().UTC(),
	}

	s.mu.Lock()
	s.messages = append(s.messages, userMsg)
	history := make([]analysis.ChatMessage, len(s.messages))
	for i, m := range s.messages {
		history[i] = analysis.ChatMessage{Role: m.Role, Content: m.Content}
	}
	s.mu.Unlock()

	req := &analysis.ChatRequest{
		CurrentUserInput: input,
		ChatHistory:      history,
	}
	if attachBlotter {
		req.BlotterAttachment = s.buildAttachment(ctx)
	}

	resp, err := s.chatter.Chat(ctx, req)
	if err != nil {
		s.logger.WithError(err).Error("Chat request failed")
		errMsg := s.append("ai", "Error: "+err.Error())
		return errMsg, err
	}

	content := resp.FulfillmentText
	if content == "" {
		content = "No content received."
	}
	return s.append("ai", content), nil
}

// buildAttachment resolves the selected blotter into an attachment payload,
// mirroring the upload constraints at the chat's smaller limit.
func (s *ChatSession) buildAttachment(ctx context.Context) *analysis.BlotterAttachment {
	if s.contents == nil || s.registry == nil {
		return nil
	}
	selected, ok := s.registry.SelectedFile()
	if !ok {
		return nil
	}

	ext := strings.ToLower(filepath.Ext(selected.Name))
	if !allowedExtensions[ext] {
		return nil
	}
	if selected.Size > s.maxBytes {
		s.logger.WithField("file_name", selected.Name).Info("Selected blotter exceeds chat attachment limit, sending without context")
		return nil
	}

	content, found, err := s.contents.Get(ctx, s.userID, selected.Name)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to load cached blotter content")
		return nil
	}
	if !found || int64(len(content)) > s.maxBytes {
		return nil
	}

	return &analysis.BlotterAttachment{
		FileName:    selected.Name,
		FileType:    strings.TrimPrefix(ext, "."),
		FileContent: base64.StdEncoding.EncodeToString(content),
	}
}

func (s *ChatSession) append(role, content string) ChatMessage {
	msg := ChatMessage{
		ID:        uuid.New().String(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
	s.mu.Lock()
	s.messages = append(s.messages, msg)
	s.mu.Unlock()
	return msg
}

// History returns a copy of the conversation so far.
func (s *ChatSession) History() []ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ChatMessage(nil), s.messages...)
}

// Clear empties the conversation.
func (s *ChatSession) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
}
