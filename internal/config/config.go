package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Environment   string              `mapstructure:"environment"`
	LogLevel      string              `mapstructure:"log_level"`
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Analysis      AnalysisConfig      `mapstructure:"analysis"`
	PriceAlerts   PriceAlertsConfig   `mapstructure:"price_alerts"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
	Upload        UploadConfig        `mapstructure:"upload"`
	Security      SecurityConfig      `mapstructure:"security"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AnalysisConfig points at the external AI analysis pipeline. The pipeline is
// slow (downstream LLM processing), so the upload timeout is deliberately
// generous.
type AnalysisConfig struct {
	ServiceURL    string `mapstructure:"service_url"`
	ChatURL       string `mapstructure:"chat_url"`
	APIKey        string `mapstructure:"api_key" json:"-" yaml:"-"`
	UploadTimeout string `mapstructure:"upload_timeout"`
	ChatTimeout   string `mapstructure:"chat_timeout"`
}

type PriceAlertsConfig struct {
	ServiceURL string `mapstructure:"service_url"`
	Timeout    string `mapstructure:"timeout"`
}

type NotificationsConfig struct {
	ServiceURL string `mapstructure:"service_url"`
	Timeout    string `mapstructure:"timeout"`
}

type UploadConfig struct {
	MaxFileBytes     int64  `mapstructure:"max_file_bytes"`
	MaxChatFileBytes int64  `mapstructure:"max_chat_file_bytes"`
	ContentCacheTTL  string `mapstructure:"content_cache_ttl"`
}

type SecurityConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" json:"-" yaml:"-"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	// Set default values
	setDefaults()

	// Enable environment variable support
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Bind secrets that only arrive via environment
	if err := viper.BindEnv("security.jwt_secret", "JWT_SECRET"); err != nil {
		return nil, fmt.Errorf("failed to bind JWT_SECRET environment variable: %w", err)
	}
	if err := viper.BindEnv("analysis.api_key", "ANALYSIS_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind ANALYSIS_API_KEY environment variable: %w", err)
	}

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		// Config file not found, use defaults and environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Normalize environment to lowercase for consistent comparison
	environment := strings.ToLower(config.Environment)

	// Validate JWT secret in non-development environments
	if environment != "development" && config.Security.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET environment variable is required in non-development environments")
	}

	// Validate duration-valued settings up front
	for name, value := range map[string]string{
		"analysis.upload_timeout":  config.Analysis.UploadTimeout,
		"analysis.chat_timeout":    config.Analysis.ChatTimeout,
		"price_alerts.timeout":     config.PriceAlerts.Timeout,
		"notifications.timeout":    config.Notifications.Timeout,
		"upload.content_cache_ttl": config.Upload.ContentCacheTTL,
	} {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return nil, fmt.Errorf("invalid duration for %s: %w", name, err)
		}
	}

	if config.Upload.MaxFileBytes <= 0 {
		return nil, fmt.Errorf("upload.max_file_bytes must be positive, got %d", config.Upload.MaxFileBytes)
	}

	// Update config with normalized environment
	config.Environment = environment

	return &config, nil
}

// Duration parses a config duration string, falling back when empty or invalid.
func Duration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

func setDefaults() {
	// Environment
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")

	// Server
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Database
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.dbname", "erad_copilot")
	viper.SetDefault("database.sslmode", "disable")

	// Redis
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	// Analysis pipeline
	viper.SetDefault("analysis.service_url", "http://localhost:3001/analyze")
	viper.SetDefault("analysis.chat_url", "http://localhost:3001/chat")
	viper.SetDefault("analysis.upload_timeout", "3m")
	viper.SetDefault("analysis.chat_timeout", "2m")

	// Price alerts upstream
	viper.SetDefault("price_alerts.service_url", "")
	viper.SetDefault("price_alerts.timeout", "15s")

	// Notification preferences service
	viper.SetDefault("notifications.service_url", "")
	viper.SetDefault("notifications.timeout", "15s")

	// Upload limits
	viper.SetDefault("upload.max_file_bytes", int64(50*1024*1024))
	viper.SetDefault("upload.max_chat_file_bytes", int64(10*1024*1024))
	viper.SetDefault("upload.content_cache_ttl", "24h")

	// Security
	viper.SetDefault("security.jwt_secret", "")
}
