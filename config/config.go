// Package config provides configuration management for the application.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	Server   ServerConfig
	AutoDev  AutoDevConfig
	NHTSA    NHTSAConfig
	CarQuery CarQueryConfig
	Cache    CacheConfig
	Search   SearchConfig
	Metrics  MetricsConfig
	Logging  LogConfig
	HTTP     HTTPConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port string
	// MasterKey protects every route except health and metrics when set
	MasterKey string
	// BodySizeLimit is an echo size string such as "1M"
	BodySizeLimit string
}

// AutoDevConfig holds the primary VIN decoder and listing source settings
type AutoDevConfig struct {
	APIKey  string
	BaseURL string
}

// NHTSAConfig holds the keyless NHTSA endpoints
type NHTSAConfig struct {
	VPICBaseURL string
	APIBaseURL  string
}

// CarQueryConfig holds the trim/economy endpoint
type CarQueryConfig struct {
	BaseURL string
}

// CacheConfig selects and tunes the adapter cache
type CacheConfig struct {
	// Type is "memory" or "redis"
	Type  string
	TTL   time.Duration
	Redis RedisConfig
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	URL       string
	KeyPrefix string
}

// SearchConfig tunes the listing query and the scoring engine
type SearchConfig struct {
	MinYear           int
	Limit             int
	TopK              int
	Weights           string
	UnknownPriceScore float64
	StrictBudget      bool
}

// MetricsConfig holds Prometheus exposition settings
type MetricsConfig struct {
	Enabled  bool
	Endpoint string
}

// LogConfig holds logging settings
type LogConfig struct {
	// Format is "text" (colorized) or "json"
	Format string
	Level  string
}

// HTTPConfig holds upstream HTTP client settings
type HTTPConfig struct {
	Timeout time.Duration
}

const (
	CacheTypeMemory = "memory"
	CacheTypeRedis  = "redis"
)

var defaults = map[string]any{
	"PORT":                        "8080",
	"CARWISE_BODY_SIZE_LIMIT":     "1M",
	"AUTO_DEV_BASE_URL":           "https://api.auto.dev",
	"NHTSA_VPIC_BASE_URL":         "https://vpic.nhtsa.dot.gov",
	"NHTSA_API_BASE_URL":          "https://api.nhtsa.gov",
	"CARQUERY_BASE_URL":           "https://www.carqueryapi.com",
	"CARWISE_CACHE_TYPE":          CacheTypeMemory,
	"CARWISE_CACHE_TTL":           "24h",
	"REDIS_URL":                   "redis://localhost:6379",
	"REDIS_KEY_PREFIX":            "carwise:",
	"CARWISE_SEARCH_MIN_YEAR":     2015,
	"CARWISE_SEARCH_LIMIT":        20,
	"CARWISE_SEARCH_TOP_K":        5,
	"CARWISE_SCORE_WEIGHTS":       "default",
	"CARWISE_UNKNOWN_PRICE_SCORE": 0.5,
	"CARWISE_STRICT_BUDGET":       false,
	"METRICS_ENABLED":             false,
	"METRICS_ENDPOINT":            "/metrics",
	"CARWISE_LOG_FORMAT":          "",
	"CARWISE_LOG_LEVEL":           "info",
	"HTTP_TIMEOUT":                "10s",
}

// Load reads configuration from .env, an optional config.yaml and the environment.
// Precedence, highest first: changed command-line flags, environment (including .env), config.yaml, defaults.
func Load() (*Config, error) {
	// .env is optional; existing environment variables win over it
	_ = godotenv.Load()

	for key, value := range defaults {
		viper.SetDefault(key, value)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	viper.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Port:          getString("PORT"),
			MasterKey:     getString("CARWISE_MASTER_KEY"),
			BodySizeLimit: getString("CARWISE_BODY_SIZE_LIMIT"),
		},
		AutoDev: AutoDevConfig{
			APIKey:  getString("AUTO_DEV_API_KEY"),
			BaseURL: getString("AUTO_DEV_BASE_URL"),
		},
		NHTSA: NHTSAConfig{
			VPICBaseURL: getString("NHTSA_VPIC_BASE_URL"),
			APIBaseURL:  getString("NHTSA_API_BASE_URL"),
		},
		CarQuery: CarQueryConfig{
			BaseURL: getString("CARQUERY_BASE_URL"),
		},
		Cache: CacheConfig{
			Type: strings.ToLower(getString("CARWISE_CACHE_TYPE")),
			TTL:  viper.GetDuration("CARWISE_CACHE_TTL"),
			Redis: RedisConfig{
				URL:       getString("REDIS_URL"),
				KeyPrefix: getString("REDIS_KEY_PREFIX"),
			},
		},
		Search: SearchConfig{
			MinYear:           viper.GetInt("CARWISE_SEARCH_MIN_YEAR"),
			Limit:             viper.GetInt("CARWISE_SEARCH_LIMIT"),
			TopK:              viper.GetInt("CARWISE_SEARCH_TOP_K"),
			Weights:           strings.ToLower(getString("CARWISE_SCORE_WEIGHTS")),
			UnknownPriceScore: viper.GetFloat64("CARWISE_UNKNOWN_PRICE_SCORE"),
			StrictBudget:      viper.GetBool("CARWISE_STRICT_BUDGET"),
		},
		Metrics: MetricsConfig{
			Enabled:  viper.GetBool("METRICS_ENABLED"),
			Endpoint: getString("METRICS_ENDPOINT"),
		},
		Logging: LogConfig{
			Format: strings.ToLower(getString("CARWISE_LOG_FORMAT")),
			Level:  strings.ToLower(getString("CARWISE_LOG_LEVEL")),
		},
		HTTP: HTTPConfig{
			Timeout: viper.GetDuration("HTTP_TIMEOUT"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	switch c.Cache.Type {
	case CacheTypeMemory, CacheTypeRedis:
	default:
		return fmt.Errorf("invalid CARWISE_CACHE_TYPE %q: must be %q or %q", c.Cache.Type, CacheTypeMemory, CacheTypeRedis)
	}
	if c.Cache.Type == CacheTypeRedis && c.Cache.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required when CARWISE_CACHE_TYPE=redis")
	}
	switch c.Search.Weights {
	case "default", "alt":
	default:
		return fmt.Errorf("invalid CARWISE_SCORE_WEIGHTS %q: must be default or alt", c.Search.Weights)
	}
	if c.Search.UnknownPriceScore < 0 || c.Search.UnknownPriceScore > 1 {
		return fmt.Errorf("CARWISE_UNKNOWN_PRICE_SCORE must be within [0,1], got %v", c.Search.UnknownPriceScore)
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Endpoint, "/") {
		return fmt.Errorf("METRICS_ENDPOINT must start with '/', got %q", c.Metrics.Endpoint)
	}
	return nil
}

// getString reads a string setting and expands ${VAR} and ${VAR:-default}
// placeholders, which is how config.yaml refers to secrets.
func getString(key string) string {
	return expandString(viper.GetString(key))
}

var placeholder = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-([^}]*))?\}`)

// expandString replaces ${VAR} with the environment value of VAR and
// ${VAR:-default} with default when VAR is unset or empty.
func expandString(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return placeholder.ReplaceAllStringFunc(s, func(match string) string {
		parts := placeholder.FindStringSubmatch(match)
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		return parts[3]
	})
}
