package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/AlterSupport/erad-trading-copilot-staging/internal/catalog"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const selectionKeyPrefix = "assets:selection:"

// AssetSelectionStore persists each user's tracked-asset selection in Redis.
// Every read and write passes through catalog.Normalize, so whatever was
// persisted by an older release (or corrupted by hand) comes back as a valid
// subset of the current catalog in canonical order.
type AssetSelectionStore struct {
	client *redis.Client
	logger *logrus.Entry
}

func NewAssetSelectionStore(client *redis.Client) *AssetSelectionStore {
	return &AssetSelectionStore{
		client: client,
		logger: logrus.WithField("component", "asset_selection"),
	}
}

func (s *AssetSelectionStore) key(userID string) string {
	return selectionKeyPrefix + userID
}

// Get returns the user's selection, falling back to the catalog defaults when
// nothing has been persisted yet.
func (s *AssetSelectionStore) Get(ctx context.Context, userID string) ([]string, error) {
	data, err := s.client.Get(ctx, s.key(userID)).Bytes()
	if err == redis.Nil {
		return catalog.DefaultSelectedIDs(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load asset selection: %w", err)
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Warn("Corrupt asset selection, resetting to defaults")
		return catalog.DefaultSelectedIDs(), nil
	}
	return catalog.Normalize(ids), nil
}

// Set replaces the user's selection. Unknown ids are dropped silently.
func (s *AssetSelectionStore) Set(ctx context.Context, userID string, ids []string) ([]string, error) {
	normalized := catalog.Normalize(ids)
	data, err := json.Marshal(normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal asset selection: %w", err)
	}
	if err := s.client.Set(ctx, s.key(userID), data, 0).Err(); err != nil {
		return nil, fmt.Errorf("failed to save asset selection: %w", err)
	}
	return normalized, nil
}

// Toggle flips one asset's membership in the selection. Toggling an id the
// catalog does not know leaves the selection untouched.
func (s *AssetSelectionStore) Toggle(ctx context.Context, userID, assetID string) ([]string, error) {
	current, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !catalog.Known(assetID) {
		return current, nil
	}

	next := make([]string, 0, len(current)+1)
	removed := false
	for _, id := range current {
		if id == assetID {
			removed = true
			continue
		}
		next = append(next, id)
	}
	if !removed {
		next = append(next, assetID)
	}
	return s.Set(ctx, userID, next)
}

// Reset restores the default selection.
func (s *AssetSelectionStore) Reset(ctx context.Context, userID string) ([]string, error) {
	return s.Set(ctx, userID, catalog.DefaultSelectedIDs())
}
