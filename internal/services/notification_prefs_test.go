package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AlterSupport/erad-trading-copilot-staging/internal/catalog"
	"github.com/AlterSupport/erad-trading-copilot-staging/internal/config"
	"github.com/AlterSupport/erad-trading-copilot-staging/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPrefsClient(t *testing.T, handler http.HandlerFunc) *NotificationPrefsClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewNotificationPrefsClient(config.NotificationsConfig{ServiceURL: server.URL, Timeout: "5s"})
}

func TestNotificationPrefsClient_Get(t *testing.T) {
	t.Run("returns upstream preferences", func(t *testing.T) {
		client := newPrefsClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "trader@example.com", r.URL.Query().Get("email"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"availableBonds": ["US 10YR"], "selectedBonds": ["US 10YR"]}`))
		})

		prefs, err := client.Get(context.Background(), "trader@example.com")

		require.NoError(t, err)
		assert.Equal(t, []string{"US 10YR"}, prefs.AvailableBonds)
		assert.Equal(t, []string{"US 10YR"}, prefs.SelectedBonds)
	})

	t.Run("substitutes defaults for missing fields", func(t *testing.T) {
		client := newPrefsClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{}`))
		})

		prefs, err := client.Get(context.Background(), "new@example.com")

		require.NoError(t, err)
		assert.Equal(t, catalog.PriceAlertBonds, prefs.AvailableBonds)
		assert.Empty(t, prefs.SelectedBonds)
		assert.NotNil(t, prefs.SelectedBonds)
	})

	t.Run("rejects blank email", func(t *testing.T) {
		client := newPrefsClient(t, func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("upstream should not be called")
		})

		_, err := client.Get(context.Background(), "   ")

		require.Error(t, err)
		assert.True(t, utils.IsValidationError(err))
	})

	t.Run("upstream error surfaces", func(t *testing.T) {
		client := newPrefsClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		_, err := client.Get(context.Background(), "trader@example.com")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "500")
	})
}

func TestNotificationPrefsClient_Save(t *testing.T) {
	t.Run("posts email and bonds", func(t *testing.T) {
		var received map[string]interface{}
		client := newPrefsClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
			w.WriteHeader(http.StatusOK)
		})

		err := client.Save(context.Background(), "trader@example.com", []string{"US 10YR", "ANGOLA APR 2032"})

		require.NoError(t, err)
		assert.Equal(t, "trader@example.com", received["email"])
		assert.Equal(t, []interface{}{"US 10YR", "ANGOLA APR 2032"}, received["bonds"])
	})

	t.Run("nil bonds saved as empty list", func(t *testing.T) {
		var received map[string]interface{}
		client := newPrefsClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		})

		err := client.Save(context.Background(), "trader@example.com", nil)

		require.NoError(t, err)
		assert.Equal(t, []interface{}{}, received["bonds"])
	})

	t.Run("rejects blank email", func(t *testing.T) {
		client := newPrefsClient(t, func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("upstream should not be called")
		})

		err := client.Save(context.Background(), "", nil)

		require.Error(t, err)
		assert.True(t, utils.IsValidationError(err))
	})
}
