package analysis

import "encoding/json"

// AnalyzeRequest is the upload submission payload. FileContent is the
// base64-encoded raw file: the blotter may be a binary spreadsheet and the
// transport is JSON.
type AnalyzeRequest struct {
	FileContent string `json:"fileContent"`
	FileName    string `json:"fileName"`
	FileType    string `json:"fileType"`
}

// ChatMessage is one prior turn of the conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// BlotterAttachment carries the selected blotter along with a chat turn so
// the assistant can answer against the actual trades.
type BlotterAttachment struct {
	FileName    string `json:"fileName"`
	FileType    string `json:"fileType"`
	FileContent string `json:"fileContent"`
}

// ChatRequest is the assistant submission payload.
type ChatRequest struct {
	CurrentUserInput  string             `json:"currentUserInput"`
	ChatHistory       []ChatMessage      `json:"chatHistory"`
	BlotterAttachment *BlotterAttachment `json:"blotterAttachment,omitempty"`
}

// ChatResponse is the assistant's reply. Intent and entities are forwarded
// as-is; only FulfillmentText is required.
type ChatResponse struct {
	Intent          string          `json:"intent,omitempty"`
	Entities        json.RawMessage `json:"entities,omitempty"`
	FulfillmentText string          `json:"fulfillmentText"`
}

// ErrorResponse is the structured error body the pipeline's proxy may return.
// Clients treat any non-2xx uniformly; this only enriches log messages.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
