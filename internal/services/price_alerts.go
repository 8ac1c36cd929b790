package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/AlterSupport/erad-trading-copilot-staging/internal/catalog"
	"github.com/AlterSupport/erad-trading-copilot-staging/internal/config"
	"github.com/AlterSupport/erad-trading-copilot-staging/internal/utils"
	"github.com/sirupsen/logrus"
)

// Quote is a normalized market quote for one catalog asset. Pointer fields
// are nil when the upstream had no usable figure for them.
type Quote struct {
	AssetID       string   `json:"assetId"`
	Symbol        string   `json:"symbol"`
	Name          string   `json:"name"`
	Metric        string   `json:"metric"`
	Direction     string   `json:"direction"` // "up" or "down"
	Updated       string   `json:"updated"`
	Value         *float64 `json:"value,omitempty"`
	Change        *float64 `json:"change,omitempty"`
	ChangePercent *float64 `json:"changePercent,omitempty"`
	Snippet       string   `json:"snippet,omitempty"`
	Currency      string   `json:"currency,omitempty"`
}

// PriceAlertService proxies quote lookups to the upstream alert feed and
// normalizes its loosely shaped payloads against the asset catalog. The
// upstream mixes field spellings between assets, so each figure is resolved
// from a candidate list rather than a fixed schema.
type PriceAlertService struct {
	httpClient *http.Client
	serviceURL string
	logger     *logrus.Entry
}

func NewPriceAlertService(cfg config.PriceAlertsConfig) *PriceAlertService {
	return &PriceAlertService{
		httpClient: &http.Client{
			Timeout: config.Duration(cfg.Timeout, 15*time.Second),
		},
		serviceURL: strings.TrimSuffix(cfg.ServiceURL, "/"),
		logger:     logrus.WithField("component", "price_alerts"),
	}
}

// Lookup resolves the asset (by id first, then by symbol or label) and
// fetches its current quote. An asset the catalog does not know is rejected
// before any upstream call.
func (s *PriceAlertService) Lookup(ctx context.Context, assetID, symbol string) (*Quote, error) {
	asset, ok := catalog.ByID(strings.TrimSpace(assetID))
	if !ok {
		asset, ok = catalog.BySymbolOrLabel(symbol)
	}
	if !ok {
		return nil, utils.NewValidationError("Requested asset is not supported.")
	}

	payload, err := json.Marshal(map[string]string{"symbol": asset.Symbol})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal quote request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.serviceURL, bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach price alert service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			s.logger.WithError(err).Warn("Error closing price alert response body")
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("price alert service error (%d)", resp.StatusCode)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal quote: %w", err)
	}

	return normalizeQuote(asset, raw), nil
}

func normalizeQuote(asset catalog.Asset, raw map[string]interface{}) *Quote {
	price := pickNumber(raw, "price", "current", "lastPrice", "last_price", "currentPrice", "current_price", "value")
	yield := pickNumber(raw, "yield")
	change := pickNumber(raw, "change", "change_value")
	changePercent := pickNumber(raw, "changePercent", "change_percent", "change_percentage")

	value := price
	if asset.Metric == catalog.MetricYield {
		value = yield
	} else if value == nil {
		value = yield
	}

	direction := "up"
	if change != nil {
		if *change < 0 {
			direction = "down"
		}
	} else if d, ok := raw["direction"].(string); ok && strings.EqualFold(d, "down") {
		direction = "down"
	}

	name := pickString(raw, "name")
	if name == "" {
		name = asset.Label
	}
	updated := pickString(raw, "updated", "last_updated", "lastUpdated", "timestamp")
	if updated == "" {
		updated = time.Now().UTC().Format(time.RFC3339)
	}

	snippet := pickString(raw, "snippet")
	if snippets, ok := raw["snippets"].([]interface{}); ok {
		for _, s := range snippets {
			if text, ok := s.(string); ok && strings.TrimSpace(text) != "" {
				snippet = text
				break
			}
		}
	}

	return &Quote{
		AssetID:       asset.ID,
		Symbol:        asset.Symbol,
		Name:          name,
		Metric:        string(asset.Metric),
		Direction:     direction,
		Updated:       updated,
		Value:         value,
		Change:        change,
		ChangePercent: changePercent,
		Snippet:       snippet,
		Currency:      asset.Currency,
	}
}

// pickNumber returns the first candidate field holding a finite number.
// Numeric strings count, matching the permissive upstream feed.
func pickNumber(raw map[string]interface{}, keys ...string) *float64 {
	for _, key := range keys {
		v, ok := raw[key]
		if !ok {
			continue
		}
		switch n := v.(type) {
		case float64:
			if !math.IsNaN(n) && !math.IsInf(n, 0) {
				return &n
			}
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil && !math.IsInf(f, 0) {
				return &f
			}
		}
	}
	return nil
}

func pickString(raw map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if s, ok := raw[key].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}
