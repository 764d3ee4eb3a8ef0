package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

// SymbolSpec maps a display label to an upstream quote symbol.
type SymbolSpec struct {
	Label  string `yaml:"label"`
	Symbol string `yaml:"symbol"`
	Class  string `yaml:"class" default:"index"` // index, forex, commodity, bond
}

// FeedSpec names one upstream RSS feed.
type FeedSpec struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"console"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"logging"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Cache struct {
		Backend string `yaml:"backend" default:"memory"` // memory or redis
		Redis   struct {
			Host     string `yaml:"host" default:"localhost"`
			Port     int    `yaml:"port" default:"6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix" default:"marketpulse"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Refresh struct {
		Interval     time.Duration `yaml:"interval" default:"5m"`
		FetchTimeout time.Duration `yaml:"fetch_timeout" default:"10s"`
		QuoteTTL     time.Duration `yaml:"quote_ttl" default:"10m"`
		FeedTTL      time.Duration `yaml:"feed_ttl" default:"10m"`
	} `yaml:"refresh"`
	Quotes struct {
		BaseURL string       `yaml:"base_url" default:"https://stooq.com"`
		Symbols []SymbolSpec `yaml:"symbols"`
	} `yaml:"quotes"`
	Feeds     []FeedSpec `yaml:"feeds"`
	Headlines struct {
		PerFeedLimit int           `yaml:"per_feed_limit" default:"40"`
		WindowSize   int           `yaml:"window_size" default:"60"`
		MaxAge       time.Duration `yaml:"max_age" default:"168h"`
	} `yaml:"headlines"`
	Decision struct {
		MaterialityThresholdPercent float64 `yaml:"materiality_threshold_percent" default:"1.0"`
		DeltaThresholdPercent       float64 `yaml:"delta_threshold_percent" default:"0.5"`
		DispersionThresholdPercent  float64 `yaml:"dispersion_threshold_percent" default:"1.5"`
		MaxMovers                   int     `yaml:"max_movers" default:"3"`
	} `yaml:"decision"`
	OpenAI struct {
		APIKey      string        `yaml:"api_key"`
		Model       string        `yaml:"model" default:"gpt-4o-mini"`
		Timeout     time.Duration `yaml:"timeout" default:"30s"`
		MaxTokens   int           `yaml:"max_tokens" default:"800"`
		Temperature float64       `yaml:"temperature" default:"0.3"`
	} `yaml:"openai"`
	Publisher struct {
		Enabled      bool          `yaml:"enabled"`
		Brokers      []string      `yaml:"brokers"`
		Topic        string        `yaml:"topic" default:"marketpulse.snapshots"`
		Compression  string        `yaml:"compression" default:"gzip"`
		RequiredAcks int           `yaml:"required_acks" default:"-1"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
	} `yaml:"publisher"`
	Tasks struct {
		DBPath string `yaml:"db_path" default:"marketpulse.db"`
	} `yaml:"tasks"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.OpenAI.APIKey = v
	}
	if v := os.Getenv("CACHE_BACKEND"); v != "" {
		c.Cache.Backend = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Publisher.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("TASKS_DB"); v != "" {
		c.Tasks.DBPath = v
	}

	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Cache.Backend != "memory" && c.Cache.Backend != "redis" {
		return fmt.Errorf("cache.backend must be 'memory' or 'redis', got '%s'", c.Cache.Backend)
	}
	if len(c.Quotes.Symbols) == 0 {
		return fmt.Errorf("quotes.symbols cannot be empty")
	}
	if len(c.Feeds) == 0 {
		return fmt.Errorf("feeds cannot be empty")
	}
	if c.Decision.MaterialityThresholdPercent <= 0 {
		return fmt.Errorf("decision.materiality_threshold_percent must be positive")
	}
	if c.Publisher.Enabled && len(c.Publisher.Brokers) == 0 {
		return fmt.Errorf("publisher.brokers required when publisher is enabled")
	}
	return nil
}
