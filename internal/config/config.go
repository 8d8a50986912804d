package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/kode4food/kubetour/internal/genai"
	"github.com/kode4food/kubetour/pkg/log"
)

type (
	// Config holds configuration settings for the tour server
	Config struct {
		// API Server
		APIHost  string
		APIPort  int
		LogLevel string

		// Text generation
		GenAI GenAIConfig

		// Quiz history
		History HistoryConfig

		// Explanations
		ExplainCacheSize int

		ShutdownTimeout time.Duration
	}

	// GenAIConfig configures the remote text generation client. Durations
	// are in milliseconds
	GenAIConfig struct {
		APIKey        string
		Endpoint      string
		TimeoutMs     int64
		MaxRetries    int
		InitBackoffMs int64
		MaxBackoffMs  int64
		BackoffType   string
	}

	// HistoryConfig selects and configures the quiz history store
	HistoryConfig struct {
		Store         string
		RedisAddr     string
		RedisPassword string
		RedisDB       int
		BlobURL       string
		BlobPrefix    string
	}
)

const (
	HistoryStoreMemory = "memory"
	HistoryStoreRedis  = "redis"
	HistoryStoreBlob   = "blob"
)

const (
	DefaultShutdownTimeout = 10 * time.Second

	DefaultAPIPort  = 8080
	DefaultAPIHost  = "0.0.0.0"
	DefaultLogLevel = "info"
	MaxTCPPort      = 65535

	DefaultRedisEndpoint = "localhost:6379"
	DefaultRedisDB       = 0
	MaxRedisDB           = 15

	DefaultGenAITimeout     = 30_000
	DefaultRetryMaxRetries  = genai.DefaultMaxRetries
	DefaultRetryInitBackoff = 1000
	DefaultRetryMaxBackoff  = 30_000
	DefaultRetryBackoffType = genai.BackoffTypeExponential

	MaxGenAITimeout     = 10 * 60 * 1000
	MaxRetryMaxRetries  = 10
	MaxRetryInitBackoff = 60 * 1000
	MaxRetryMaxBackoff  = 10 * 60 * 1000
	MaxExplainCacheSize = 100_000
	MaxShutdownTimeout  = 10 * 60 * 1000
)

var (
	ErrInvalidAPIPort          = errors.New("invalid API port")
	ErrInvalidLogLevel         = errors.New("invalid log level")
	ErrInvalidGenAITimeout     = errors.New("genai timeout must be positive")
	ErrInvalidRetryMaxRetries  = errors.New("retry max retries is negative")
	ErrInvalidRetryInitBackoff = errors.New(
		"retry initial backoff must be positive",
	)
	ErrInvalidRetryMaxBackoff = errors.New(
		"retry max backoff must be positive",
	)
	ErrRetryMaxBackoffTooSmall = errors.New(
		"retry max backoff must be >= retry initial backoff",
	)
	ErrInvalidRetryBackoffType = errors.New("invalid retry backoff type")
	ErrInvalidHistoryStore     = errors.New("invalid history store")
	ErrHistoryRedisAddr        = errors.New("history redis address empty")
	ErrHistoryBlobURL          = errors.New("history blob URL empty")
	ErrInvalidCacheSize        = errors.New("explain cache size must be positive")
	ErrInvalidShutdownTimeout  = errors.New(
		"shutdown timeout must be positive",
	)
)

// NewDefaultConfig creates a configuration with sensible defaults for the
// server, text generation and history store
func NewDefaultConfig() *Config {
	return &Config{
		APIPort:  DefaultAPIPort,
		APIHost:  DefaultAPIHost,
		LogLevel: DefaultLogLevel,
		GenAI: GenAIConfig{
			Endpoint:      genai.DefaultEndpoint,
			TimeoutMs:     DefaultGenAITimeout,
			MaxRetries:    DefaultRetryMaxRetries,
			InitBackoffMs: DefaultRetryInitBackoff,
			MaxBackoffMs:  DefaultRetryMaxBackoff,
			BackoffType:   DefaultRetryBackoffType,
		},
		History: HistoryConfig{
			Store:     HistoryStoreMemory,
			RedisAddr: DefaultRedisEndpoint,
			RedisDB:   DefaultRedisDB,
		},
		ExplainCacheSize: 128,
		ShutdownTimeout:  DefaultShutdownTimeout,
	}
}

// LoadFromEnv populates configuration values from environment variables.
// Returns an error if any numeric env var cannot be parsed or is out of
// range
func (c *Config) LoadFromEnv() error {
	loadEnvString("API_HOST", &c.APIHost)
	loadEnvString("LOG_LEVEL", &c.LogLevel)

	loadEnvString("GEMINI_API_KEY", &c.GenAI.APIKey)
	loadEnvString("GENAI_API_KEY", &c.GenAI.APIKey)
	loadEnvString("GENAI_ENDPOINT", &c.GenAI.Endpoint)
	loadEnvString("GENAI_BACKOFF_TYPE", &c.GenAI.BackoffType)

	loadEnvString("HISTORY_STORE", &c.History.Store)
	loadEnvString("HISTORY_REDIS_ADDR", &c.History.RedisAddr)
	loadEnvString("HISTORY_REDIS_PASSWORD", &c.History.RedisPassword)
	loadEnvString("HISTORY_BLOB_URL", &c.History.BlobURL)
	loadEnvString("HISTORY_BLOB_PREFIX", &c.History.BlobPrefix)

	if err := loadEnvInt("API_PORT", &c.APIPort, 0, MaxTCPPort); err != nil {
		return err
	}
	if err := loadEnvInt(
		"GENAI_TIMEOUT", &c.GenAI.TimeoutMs, 0, MaxGenAITimeout,
	); err != nil {
		return err
	}
	if err := loadEnvInt(
		"GENAI_MAX_RETRIES", &c.GenAI.MaxRetries, -1, MaxRetryMaxRetries,
	); err != nil {
		return err
	}
	if err := loadEnvInt(
		"GENAI_INITIAL_BACKOFF", &c.GenAI.InitBackoffMs, 0, MaxRetryInitBackoff,
	); err != nil {
		return err
	}
	if err := loadEnvInt(
		"GENAI_MAX_BACKOFF", &c.GenAI.MaxBackoffMs, 0, MaxRetryMaxBackoff,
	); err != nil {
		return err
	}
	if err := loadEnvInt(
		"HISTORY_REDIS_DB", &c.History.RedisDB, -1, MaxRedisDB,
	); err != nil {
		return err
	}
	if err := loadEnvInt(
		"EXPLAIN_CACHE_SIZE", &c.ExplainCacheSize, 0, MaxExplainCacheSize,
	); err != nil {
		return err
	}

	shutdownMs := c.ShutdownTimeout.Milliseconds()
	if err := loadEnvInt(
		"SHUTDOWN_TIMEOUT", &shutdownMs, 0, MaxShutdownTimeout,
	); err != nil {
		return err
	}
	c.ShutdownTimeout = time.Duration(shutdownMs) * time.Millisecond

	return nil
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	if c.APIPort <= 0 || c.APIPort > MaxTCPPort {
		return fmt.Errorf("%w: %d", ErrInvalidAPIPort, c.APIPort)
	}

	if _, ok := log.ParseLevel(c.LogLevel); !ok {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.LogLevel)
	}

	if err := c.GenAI.Validate(); err != nil {
		return err
	}

	if err := c.History.Validate(); err != nil {
		return err
	}

	if c.ExplainCacheSize <= 0 {
		return ErrInvalidCacheSize
	}

	if c.ShutdownTimeout <= 0 {
		return ErrInvalidShutdownTimeout
	}

	return nil
}

// Validate checks the text generation settings
func (g *GenAIConfig) Validate() error {
	if g.TimeoutMs <= 0 {
		return ErrInvalidGenAITimeout
	}

	if g.MaxRetries < 0 {
		return ErrInvalidRetryMaxRetries
	}

	if g.InitBackoffMs <= 0 {
		return ErrInvalidRetryInitBackoff
	}

	if g.MaxBackoffMs <= 0 {
		return ErrInvalidRetryMaxBackoff
	}

	if g.MaxBackoffMs < g.InitBackoffMs {
		return ErrRetryMaxBackoffTooSmall
	}

	if !genai.IsBackoffType(g.BackoffType) {
		return fmt.Errorf("%w: %s", ErrInvalidRetryBackoffType, g.BackoffType)
	}

	return nil
}

// ClientConfig converts the settings into a genai.Config
func (g *GenAIConfig) ClientConfig() genai.Config {
	return genai.Config{
		APIKey:   g.APIKey,
		Endpoint: g.Endpoint,
		Timeout:  time.Duration(g.TimeoutMs) * time.Millisecond,
		Retry: genai.RetryConfig{
			MaxRetries:  g.MaxRetries,
			InitBackoff: time.Duration(g.InitBackoffMs) * time.Millisecond,
			MaxBackoff:  time.Duration(g.MaxBackoffMs) * time.Millisecond,
			BackoffType: g.BackoffType,
		},
	}
}

// Validate checks the history store settings
func (h *HistoryConfig) Validate() error {
	switch h.Store {
	case HistoryStoreMemory:
		return nil
	case HistoryStoreRedis:
		if h.RedisAddr == "" {
			return ErrHistoryRedisAddr
		}
		return nil
	case HistoryStoreBlob:
		if h.BlobURL == "" {
			return ErrHistoryBlobURL
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidHistoryStore, h.Store)
	}
}

func loadEnvString(key string, dst *string) {
	if s := os.Getenv(key); s != "" {
		*dst = s
	}
}

// loadEnvInt reads key from the environment, parses it as an integer, and
// sets *dst if the value is in the range (min, max]. Returns an error if
// the value cannot be parsed or falls outside the valid range
func loadEnvInt[T ~int | ~int64](key string, dst *T, min, max T) error {
	s := os.Getenv(key)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %q", key, s)
	}
	tv := T(v)
	if tv <= min || tv > max {
		return fmt.Errorf("invalid %s: %d out of range [%d, %d]",
			key, tv, min+1, max)
	}
	*dst = tv
	return nil
}
