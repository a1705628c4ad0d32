package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	internal "github.com/ZanzyTHEbar/toolagent/toolagent"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	Agent     AgentConfig     `mapstructure:"agent"`
	Provider  ProviderConfig  `mapstructure:"provider"`
	Retrieval RetrievalConfig `mapstructure:"retrieval"`
	Ingest    IngestConfig    `mapstructure:"ingest"`
	Weather   WeatherConfig   `mapstructure:"weather"`
	Harness   HarnessConfig   `mapstructure:"harness"`
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// AgentConfig controls the primary model used for decision and synthesis.
type AgentConfig struct {
	Model       string  `mapstructure:"model"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float32 `mapstructure:"temperature"`
	Verbose     bool    `mapstructure:"verbose"` // log decisions and tool results
}

// ProviderConfig stores the OpenAI-compatible endpoint details.
type ProviderConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// DatabaseConfig stores database connection details.
type DatabaseConfig struct {
	DSN  string `mapstructure:"dsn"`
	Type string `mapstructure:"type"`
	// Embedded-only configuration
	LibSQLDataDir string `mapstructure:"libsql_data_dir"`
}

// RetrievalConfig configures the document retriever tool.
type RetrievalConfig struct {
	Enabled        bool           `mapstructure:"enabled"`
	Model          string         `mapstructure:"model"`
	EmbeddingModel string         `mapstructure:"embedding_model"`
	TopK           int            `mapstructure:"top_k"`
	MaxTokens      int            `mapstructure:"max_tokens"`
	Temperature    float32        `mapstructure:"temperature"`
	Database       DatabaseConfig `mapstructure:"database"`
}

// IngestConfig configures document loading into the store.
type IngestConfig struct {
	ChunkSize    int    `mapstructure:"chunk_size"`
	ChunkOverlap int    `mapstructure:"chunk_overlap"`
	Concurrency  int    `mapstructure:"concurrency"`
	IgnoreFile   string `mapstructure:"ignore_file"`
}

// WeatherConfig configures the weather tool.
type WeatherConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// HarnessConfig stores orchestration infrastructure settings.
type HarnessConfig struct {
	// Cache settings (embedding cache)
	CacheEnabled    bool   `mapstructure:"cache_enabled"`
	CacheBackend    string `mapstructure:"cache_backend"` // "memory" | "redis"
	CacheCapacity   int    `mapstructure:"cache_capacity"`
	CacheTTLSeconds int    `mapstructure:"cache_ttl_seconds"`
	RedisAddr       string `mapstructure:"redis_addr"`

	// Rate limiting
	RateLimitEnabled    bool          `mapstructure:"rate_limit_enabled"`
	RateLimitCapacity   int           `mapstructure:"rate_limit_capacity"`
	RateLimitRefillRate time.Duration `mapstructure:"rate_limit_refill_rate"`

	// Telemetry
	EnableTracing bool `mapstructure:"enable_tracing"`
	EnableMetrics bool `mapstructure:"enable_metrics"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// LoggingConfig configures zerolog output.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "console" | "json"
}

var AppConfig Config

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("..")
		v.AddConfigPath(filepath.Join("etc", internal.DefaultAppName))
		v.AddConfigPath(internal.DefaultConfigPath)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	setDefaults(v)

	v.SetEnvPrefix(strings.ToUpper(internal.DefaultAppName))
	v.AutomaticEnv()
	// Replace dots with underscores in env var names e.g. provider.api_key becomes TOOLAGENT_PROVIDER_API_KEY
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	if err := v.BindEnv("provider.api_key", "TOOLAGENT_PROVIDER_API_KEY", "OPENAI_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind api key env: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file on the search path; defaults and env apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	AppConfig = cfg
	return &AppConfig, nil
}

func setDefaults(v *viper.Viper) {
	// Agent defaults
	v.SetDefault("agent.model", "gpt-4o")
	v.SetDefault("agent.max_tokens", 2000)
	v.SetDefault("agent.temperature", 0.2)
	v.SetDefault("agent.verbose", false)

	// Provider defaults
	v.SetDefault("provider.base_url", "https://api.openai.com/v1")
	v.SetDefault("provider.api_key", "")
	v.SetDefault("provider.timeout", "60s")

	// Retrieval defaults
	v.SetDefault("retrieval.enabled", true)
	v.SetDefault("retrieval.model", "gpt-4o-mini")
	v.SetDefault("retrieval.embedding_model", "text-embedding-ada-002")
	v.SetDefault("retrieval.top_k", 10)
	v.SetDefault("retrieval.max_tokens", 2000)
	v.SetDefault("retrieval.temperature", 0.2)
	v.SetDefault("retrieval.database.dsn", internal.DefaultDatabaseDSN)
	v.SetDefault("retrieval.database.type", internal.DefaultDatabaseType)
	v.SetDefault("retrieval.database.libsql_data_dir", internal.DefaultDatabaseDir)

	// Ingest defaults
	v.SetDefault("ingest.chunk_size", 1000)
	v.SetDefault("ingest.chunk_overlap", 100)
	v.SetDefault("ingest.concurrency", 4)
	v.SetDefault("ingest.ignore_file", ".ragignore")

	// Weather defaults
	v.SetDefault("weather.base_url", "https://api.open-meteo.com")
	v.SetDefault("weather.timeout", "15s")

	// Harness defaults
	v.SetDefault("harness.cache_enabled", true)
	v.SetDefault("harness.cache_backend", "memory")
	v.SetDefault("harness.cache_capacity", 1000)
	v.SetDefault("harness.cache_ttl_seconds", 3600) // 1 hour
	v.SetDefault("harness.redis_addr", "localhost:6379")
	v.SetDefault("harness.rate_limit_enabled", false)
	v.SetDefault("harness.rate_limit_capacity", 10)
	v.SetDefault("harness.rate_limit_refill_rate", "1s")
	v.SetDefault("harness.enable_tracing", true)
	v.SetDefault("harness.enable_metrics", true)

	// Server defaults
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// Validate rejects configurations the application cannot run with.
func (c *Config) Validate() error {
	if c.Agent.Model == "" {
		return fmt.Errorf("agent.model must not be empty")
	}
	if c.Agent.MaxTokens <= 0 {
		return fmt.Errorf("agent.max_tokens must be positive: %d", c.Agent.MaxTokens)
	}
	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("retrieval.top_k must be positive: %d", c.Retrieval.TopK)
	}
	if c.Ingest.ChunkOverlap >= c.Ingest.ChunkSize {
		return fmt.Errorf("ingest.chunk_overlap (%d) must be smaller than ingest.chunk_size (%d)", c.Ingest.ChunkOverlap, c.Ingest.ChunkSize)
	}
	switch c.Harness.CacheBackend {
	case "memory", "redis":
	default:
		return fmt.Errorf("harness.cache_backend must be memory or redis: %q", c.Harness.CacheBackend)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json: %q", c.Logging.Format)
	}
	return nil
}
