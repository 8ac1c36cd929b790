package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/AlterSupport/erad-trading-copilot-staging/internal/blotter"
	"github.com/AlterSupport/erad-trading-copilot-staging/internal/config"
	"github.com/sirupsen/logrus"
)

// Client is the typed HTTP client for the external AI analysis pipeline. The
// pipeline is an opaque collaborator: this client only knows the two endpoint
// contracts (blotter analysis and chat) and maps every non-2xx to an error.
type Client struct {
	HTTPClient *http.Client
	analyzeURL string
	chatURL    string
	apiKey     string
}

// NewClient creates an analysis pipeline client. The HTTP timeout is the
// upload timeout: analysis runs through a downstream LLM and routinely takes
// minutes, so the bound is generous rather than absent.
func NewClient(cfg config.AnalysisConfig) *Client {
	timeout := config.Duration(cfg.UploadTimeout, 3*time.Minute)

	return &Client{
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
		analyzeURL: strings.TrimSuffix(cfg.ServiceURL, "/"),
		chatURL:    strings.TrimSuffix(cfg.ChatURL, "/"),
		apiKey:     cfg.APIKey,
	}
}

// AnalyzeBlotter submits a blotter for analysis and returns the parsed
// result. Blocks until the pipeline responds or the timeout fires.
func (c *Client) AnalyzeBlotter(ctx context.Context, req *AnalyzeRequest) (*blotter.AnalysisResult, error) {
	var result blotter.AnalysisResult
	if err := c.makeRequest(ctx, c.analyzeURL, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Chat submits one assistant turn.
func (c *Client) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	var response ChatResponse
	if err := c.makeRequest(ctx, c.chatURL, req, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// makeRequest is a helper method to POST JSON to the analysis pipeline.
func (c *Client) makeRequest(ctx context.Context, url string, body interface{}, result interface{}) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach analysis service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logrus.WithError(err).Warn("Error closing analysis response body")
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errorResp ErrorResponse
		if err := json.Unmarshal(respBody, &errorResp); err == nil && errorResp.Error != "" {
			return fmt.Errorf("analysis service error (%d): %s", resp.StatusCode, errorResp.Error)
		}
		return fmt.Errorf("analysis service error (%d)", resp.StatusCode)
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}

	return nil
}
