// Package config assembles quizrace's runtime configuration from an
// optional .env file and QUIZRACE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/abhisek/quizrace/internal/game"
	"github.com/abhisek/quizrace/internal/llm"
	"github.com/abhisek/quizrace/internal/logging"
	"github.com/abhisek/quizrace/internal/progression"
	"github.com/abhisek/quizrace/internal/question"
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Analytics sink names.
const (
	SinkLog   = "log"
	SinkStore = "store"
	SinkAsynq = "asynq"
)

// Config holds all configuration for quizrace.
type Config struct {
	Storage     StorageConfig
	Curriculum  CurriculumConfig
	Catalog     CatalogConfig
	Game        game.Config
	Progression progression.Config
	LLM         llm.Config
	Analytics   AnalyticsConfig
	Log         logging.Config
	Server      ServerConfig
	Metrics     MetricsConfig
}

// StorageConfig selects where progression is persisted.
type StorageConfig struct {
	Backend string

	// DBPath is the sqlite file. Empty means store.DefaultDBPath.
	DBPath string

	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RedisNamespace string
}

// CurriculumConfig points at an optional curriculum document. Empty uses
// the built-in curriculum.
type CurriculumConfig struct {
	Path string
}

// CatalogConfig locates the per-subject question documents. URL wins over
// Dir when both are set.
type CatalogConfig struct {
	Dir     string
	URL     string
	Timeout time.Duration
}

// AnalyticsConfig lists the game-end sinks.
type AnalyticsConfig struct {
	Sinks     []string
	AsynqAddr string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr            string
	AllowedOrigins  []string
	ShutdownTimeout time.Duration

	// SessionLinger keeps a finished race readable before it is evicted.
	SessionLinger time.Duration
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend:   BackendSQLite,
			RedisAddr: "localhost:6379",
		},
		Catalog:     CatalogConfig{Timeout: 10 * time.Second},
		Game:        game.DefaultConfig(),
		Progression: progression.DefaultConfig(),
		LLM:         llm.DefaultConfig(),
		Analytics: AnalyticsConfig{
			Sinks:     []string{SinkLog, SinkStore},
			AsynqAddr: "localhost:6379",
		},
		Log: logging.Config{Level: "info", Format: "console"},
		Server: ServerConfig{
			Addr:            ":8080",
			AllowedOrigins:  []string{"*"},
			ShutdownTimeout: 10 * time.Second,
			SessionLinger:   2 * time.Minute,
		},
		Metrics: MetricsConfig{Enabled: true},
	}
}

// Load reads envFiles (or ./.env when none are given; a missing ./.env is
// fine), applies QUIZRACE_* variables over Default and validates the result.
// Variables already set in the environment win over .env entries.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		_ = godotenv.Load()
	} else if err := godotenv.Load(envFiles...); err != nil {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	cfg := Default()
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Storage.Backend = getEnv("QUIZRACE_STORAGE", c.Storage.Backend)
	c.Storage.DBPath = getEnv("QUIZRACE_DB", c.Storage.DBPath)
	c.Storage.RedisAddr = getEnv("QUIZRACE_REDIS_ADDR", c.Storage.RedisAddr)
	c.Storage.RedisPassword = getEnv("QUIZRACE_REDIS_PASSWORD", c.Storage.RedisPassword)
	c.Storage.RedisDB = getEnvAsInt("QUIZRACE_REDIS_DB", c.Storage.RedisDB)
	c.Storage.RedisNamespace = getEnv("QUIZRACE_REDIS_NAMESPACE", c.Storage.RedisNamespace)

	c.Curriculum.Path = getEnv("QUIZRACE_CURRICULUM", c.Curriculum.Path)

	c.Catalog.Dir = getEnv("QUIZRACE_CATALOG_DIR", c.Catalog.Dir)
	c.Catalog.URL = getEnv("QUIZRACE_CATALOG_URL", c.Catalog.URL)
	c.Catalog.Timeout = getEnvAsDuration("QUIZRACE_CATALOG_TIMEOUT", c.Catalog.Timeout)

	c.Game.MaxQuestions = getEnvAsInt("QUIZRACE_MAX_QUESTIONS", c.Game.MaxQuestions)
	c.Game.StartingLives = getEnvAsInt("QUIZRACE_LIVES", c.Game.StartingLives)
	c.Game.MaxLives = max(c.Game.MaxLives, c.Game.StartingLives)
	c.Game.OpponentTimeout = getEnvAsDuration("QUIZRACE_OPPONENT_TIMEOUT", c.Game.OpponentTimeout)
	c.Game.DifficultyThreshold = getEnvAsInt("QUIZRACE_DIFFICULTY_THRESHOLD", c.Game.DifficultyThreshold)
	if v, ok := os.LookupEnv("QUIZRACE_START_DIFFICULTY"); ok {
		if d, err := question.ParseDifficulty(v); err == nil {
			c.Game.StartDifficulty = d
		}
	}

	c.Progression.PassThreshold = getEnvAsInt("QUIZRACE_PASS_THRESHOLD", c.Progression.PassThreshold)
	c.Progression.HistoryLimit = getEnvAsInt("QUIZRACE_HISTORY_LIMIT", c.Progression.HistoryLimit)
	c.Progression.LenientCompletion = getEnvAsBool("QUIZRACE_LENIENT_COMPLETION", c.Progression.LenientCompletion)

	c.LLM = llm.ConfigFromEnv()

	c.Analytics.Sinks = getEnvAsList("QUIZRACE_ANALYTICS_SINKS", c.Analytics.Sinks)
	c.Analytics.AsynqAddr = getEnv("QUIZRACE_ASYNQ_REDIS_ADDR", c.Analytics.AsynqAddr)

	c.Log.Level = getEnv("QUIZRACE_LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("QUIZRACE_LOG_FORMAT", c.Log.Format)
	c.Log.File = getEnv("QUIZRACE_LOG_FILE", c.Log.File)

	c.Server.Addr = getEnv("QUIZRACE_ADDR", c.Server.Addr)
	c.Server.AllowedOrigins = getEnvAsList("QUIZRACE_ALLOWED_ORIGINS", c.Server.AllowedOrigins)
	c.Server.ShutdownTimeout = getEnvAsDuration("QUIZRACE_SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)
	c.Server.SessionLinger = getEnvAsDuration("QUIZRACE_SESSION_LINGER", c.Server.SessionLinger)

	c.Metrics.Enabled = getEnvAsBool("QUIZRACE_METRICS", c.Metrics.Enabled)
}

// Validate checks the configuration. Flag overrides should call it again.
func (c *Config) Validate() error {
	var errs []error

	switch c.Storage.Backend {
	case BackendSQLite, BackendMemory:
	case BackendRedis:
		if c.Storage.RedisAddr == "" {
			errs = append(errs, errors.New("redis storage needs QUIZRACE_REDIS_ADDR"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage backend %q", c.Storage.Backend))
	}

	if err := c.Game.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("game: %w", err))
	}
	if c.Progression.PassThreshold < 0 || c.Progression.PassThreshold > 100 {
		errs = append(errs, fmt.Errorf("pass threshold must be 0-100, got %d", c.Progression.PassThreshold))
	}
	if c.Progression.HistoryLimit <= 0 {
		errs = append(errs, fmt.Errorf("history limit must be positive, got %d", c.Progression.HistoryLimit))
	}
	if err := c.LLM.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("llm: %w", err))
	}

	for _, s := range c.Analytics.Sinks {
		switch s {
		case SinkLog, SinkStore:
		case SinkAsynq:
			if c.Analytics.AsynqAddr == "" {
				errs = append(errs, errors.New("asynq analytics sink needs QUIZRACE_ASYNQ_REDIS_ADDR"))
			}
		default:
			errs = append(errs, fmt.Errorf("unknown analytics sink %q", s))
		}
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server address is required"))
	}
	if c.Server.SessionLinger < 0 {
		errs = append(errs, fmt.Errorf("session linger must not be negative, got %s", c.Server.SessionLinger))
	}
	return errors.Join(errs...)
}

// HasSink reports whether the named analytics sink is enabled.
func (c *Config) HasSink(name string) bool {
	for _, s := range c.Analytics.Sinks {
		if s == name {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated value. An empty value yields an
// empty list.
func getEnvAsList(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
