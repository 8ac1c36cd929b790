package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_WithDefaults(t *testing.T) {
	// Clear any existing environment variables that might interfere
	os.Clearenv()

	config, err := Load()
	require.NoError(t, err)
	require.NotNil(t, config)

	assert.Equal(t, "development", config.Environment)
	assert.Equal(t, "info", config.LogLevel)
	assert.Equal(t, 8080, config.Server.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, config.Server.AllowedOrigins)
	assert.Equal(t, "localhost", config.Database.Host)
	assert.Equal(t, 5432, config.Database.Port)
	assert.Equal(t, "erad_copilot", config.Database.DBName)
	assert.Equal(t, "disable", config.Database.SSLMode)
	assert.Equal(t, "localhost", config.Redis.Host)
	assert.Equal(t, 6379, config.Redis.Port)
	assert.Equal(t, "http://localhost:3001/analyze", config.Analysis.ServiceURL)
	assert.Equal(t, "http://localhost:3001/chat", config.Analysis.ChatURL)
	assert.Equal(t, "3m", config.Analysis.UploadTimeout)
	assert.Equal(t, "2m", config.Analysis.ChatTimeout)
	assert.Equal(t, int64(50*1024*1024), config.Upload.MaxFileBytes)
	assert.Equal(t, int64(10*1024*1024), config.Upload.MaxChatFileBytes)
	assert.Equal(t, "24h", config.Upload.ContentCacheTTL)
	assert.Equal(t, "15s", config.PriceAlerts.Timeout)
	assert.Equal(t, "15s", config.Notifications.Timeout)
}

func TestLoad_WithEnvironmentVariables(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("DATABASE_HOST", "prod-db.example.com")
	t.Setenv("REDIS_HOST", "prod-redis.example.com")
	t.Setenv("ANALYSIS_SERVICE_URL", "https://pipeline.example.com/analyze")
	t.Setenv("ANALYSIS_API_KEY", "prod-key")
	t.Setenv("JWT_SECRET", "prod-secret")

	config, err := Load()
	require.NoError(t, err)
	require.NotNil(t, config)

	assert.Equal(t, "production", config.Environment)
	assert.Equal(t, "error", config.LogLevel)
	assert.Equal(t, 9000, config.Server.Port)
	assert.Equal(t, "prod-db.example.com", config.Database.Host)
	assert.Equal(t, "prod-redis.example.com", config.Redis.Host)
	assert.Equal(t, "https://pipeline.example.com/analyze", config.Analysis.ServiceURL)
	assert.Equal(t, "prod-key", config.Analysis.APIKey)
	assert.Equal(t, "prod-secret", config.Security.JWTSecret)
}

func TestLoad_RequiresJWTSecretOutsideDevelopment(t *testing.T) {
	os.Clearenv()
	t.Setenv("ENVIRONMENT", "production")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_RejectsInvalidDurations(t *testing.T) {
	os.Clearenv()
	t.Setenv("ANALYSIS_UPLOAD_TIMEOUT", "not-a-duration")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "analysis.upload_timeout")
}

func TestDuration(t *testing.T) {
	assert.Equal(t, 3*time.Minute, Duration("3m", time.Second))
	assert.Equal(t, time.Second, Duration("", time.Second))
	assert.Equal(t, time.Second, Duration("garbage", time.Second))
}
