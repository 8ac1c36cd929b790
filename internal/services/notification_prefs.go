package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/AlterSupport/erad-trading-copilot-staging/internal/catalog"
	"github.com/AlterSupport/erad-trading-copilot-staging/internal/config"
	"github.com/AlterSupport/erad-trading-copilot-staging/internal/utils"
	"github.com/sirupsen/logrus"
)

// NotificationPreferences is a user's bond alert subscription as the
// notification service reports it.
type NotificationPreferences struct {
	AvailableBonds []string `json:"availableBonds"`
	SelectedBonds  []string `json:"selectedBonds"`
}

// NotificationPrefsClient talks to the external notification-preferences
// service keyed by email. The service owns the data; this client only shapes
// the responses, substituting defaults when the upstream leaves fields out.
type NotificationPrefsClient struct {
	httpClient *http.Client
	baseURL    string
	logger     *logrus.Entry
}

func NewNotificationPrefsClient(cfg config.NotificationsConfig) *NotificationPrefsClient {
	return &NotificationPrefsClient{
		httpClient: &http.Client{
			Timeout: config.Duration(cfg.Timeout, 15*time.Second),
		},
		baseURL: strings.TrimSuffix(cfg.ServiceURL, "/"),
		logger:  logrus.WithField("component", "notification_prefs"),
	}
}

// Get fetches the preferences for an email address. A response missing the
// available list falls back to the full bond catalog; a missing selection
// means none are selected.
func (c *NotificationPrefsClient) Get(ctx context.Context, email string) (*NotificationPreferences, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, utils.NewValidationError("Email is required.")
	}

	endpoint := c.baseURL + "?email=" + url.QueryEscape(email)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach notification service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.WithError(err).Warn("Error closing notification response body")
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("notification service error (%d)", resp.StatusCode)
	}

	var prefs NotificationPreferences
	if err := json.Unmarshal(body, &prefs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal preferences: %w", err)
	}
	if len(prefs.AvailableBonds) == 0 {
		prefs.AvailableBonds = append([]string(nil), catalog.PriceAlertBonds...)
	}
	if prefs.SelectedBonds == nil {
		prefs.SelectedBonds = []string{}
	}
	return &prefs, nil
}

// Save replaces the email's bond subscription.
func (c *NotificationPrefsClient) Save(ctx context.Context, email string, bonds []string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return utils.NewValidationError("Email is required.")
	}
	if bonds == nil {
		bonds = []string{}
	}

	payload, err := json.Marshal(map[string]interface{}{
		"email": email,
		"bonds": bonds,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach notification service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.WithError(err).Warn("Error closing notification response body")
		}
	}()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("notification service error (%d)", resp.StatusCode)
	}
	return nil
}
