package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig
	Experiments ExperimentsConfig
	Panel       PanelConfig
	HTTP        HTTPConfig
	Storage     StorageConfig
	Logging     LogConfig
	CORS        CORSConfig
}

// ServerConfig holds HTTP server configuration for the reference host.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"127.0.0.1"`
	// RateLimit is inbound requests per second per client; zero disables it.
	RateLimit int `envconfig:"SERVER_RATE_LIMIT" default:"0"`
	Burst     int `envconfig:"SERVER_RATE_BURST" default:"20"`
}

// ExperimentsConfig describes where experiment configuration comes from and
// how the host reports active experiments.
type ExperimentsConfig struct {
	ConfigURL     string        `envconfig:"EXPERIMENTS_URL" default:"https://firefox.settings.services.mozilla.com/v1/buckets/fennec/collections/experiments/records"`
	PageURL       string        `envconfig:"EXPERIMENTS_PAGE_URL" default:"https://raw.githubusercontent.com/mozilla-services/switchboard-experiments/master/experiments.json"`
	CacheBust     bool          `envconfig:"EXPERIMENTS_CACHE_BUST" default:"true"`
	SyncInterval  time.Duration `envconfig:"EXPERIMENTS_SYNC_INTERVAL" default:"1h"`
	Active        []string      `envconfig:"EXPERIMENTS_ACTIVE"`
	PayloadFormat string        `envconfig:"EXPERIMENTS_PAYLOAD_FORMAT" default:"string"`
}

// PanelConfig holds the identifiers the add-on registers with the host.
type PanelConfig struct {
	ID        string `envconfig:"PANEL_ID" default:"switchboard.experiments.panel@androidzeitgeist.com"`
	DatasetID string `envconfig:"PANEL_DATASET_ID" default:"switchboard.experiments.dataset@androidzeitgeist.com"`
	Title     string `envconfig:"PANEL_TITLE" default:"Experiments"`
}

// HTTPConfig holds outbound HTTP client configuration.
type HTTPConfig struct {
	Timeout         time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s"`
	UserAgent       string        `envconfig:"HTTP_USER_AGENT" default:"Switchboard-Experiments/1.0"`
	RateLimit       float64       `envconfig:"HTTP_RATE_LIMIT" default:"0"`
	BreakerFailures uint32        `envconfig:"HTTP_BREAKER_FAILURES" default:"5"`
	BreakerTimeout  time.Duration `envconfig:"HTTP_BREAKER_TIMEOUT" default:"5m"`
}

// StorageConfig holds host storage configuration.
type StorageConfig struct {
	Path string `envconfig:"STORAGE_PATH" default:"switchboard.db"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// CORSConfig holds cross-origin configuration for the panel API.
type CORSConfig struct {
	AllowedOrigins []string `envconfig:"CORS_ORIGINS"`
}

// Payload formats understood by the reference host messenger.
const (
	PayloadString     = "string"
	PayloadStructured = "structured"
)

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Validate checks cross-field constraints envconfig cannot express.
func (c *Config) Validate() error {
	if c.Experiments.ConfigURL == "" {
		return fmt.Errorf("invalid config: EXPERIMENTS_URL is empty")
	}
	if c.Experiments.SyncInterval <= 0 {
		return fmt.Errorf("invalid config: EXPERIMENTS_SYNC_INTERVAL must be positive, got %s", c.Experiments.SyncInterval)
	}
	switch c.Experiments.PayloadFormat {
	case PayloadString, PayloadStructured:
	default:
		return fmt.Errorf("invalid config: EXPERIMENTS_PAYLOAD_FORMAT %q (want %q or %q)",
			c.Experiments.PayloadFormat, PayloadString, PayloadStructured)
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("invalid config: SERVER_RATE_LIMIT cannot be negative")
	}
	if c.HTTP.RateLimit < 0 {
		return fmt.Errorf("invalid config: HTTP_RATE_LIMIT cannot be negative")
	}
	return nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:  "8000",
			Host:  "127.0.0.1",
			Burst: 20,
		},
		Experiments: ExperimentsConfig{
			ConfigURL:     "https://firefox.settings.services.mozilla.com/v1/buckets/fennec/collections/experiments/records",
			PageURL:       "https://raw.githubusercontent.com/mozilla-services/switchboard-experiments/master/experiments.json",
			CacheBust:     true,
			SyncInterval:  time.Hour,
			PayloadFormat: PayloadString,
		},
		Panel: PanelConfig{
			ID:        "switchboard.experiments.panel@androidzeitgeist.com",
			DatasetID: "switchboard.experiments.dataset@androidzeitgeist.com",
			Title:     "Experiments",
		},
		HTTP: HTTPConfig{
			Timeout:         30 * time.Second,
			UserAgent:       "Switchboard-Experiments/1.0",
			BreakerFailures: 5,
			BreakerTimeout:  5 * time.Minute,
		},
		Storage: StorageConfig{
			Path: "switchboard.db",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
	}
}
