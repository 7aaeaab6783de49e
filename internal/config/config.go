// Package config loads and validates the application configuration from
// environment variables, an optional .env file, and an optional YAML
// overlay file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server      ServerConfig      `json:"server" yaml:"server"`
	Pipeline    PipelineConfig    `json:"pipeline" yaml:"pipeline"`
	Routing     RoutingConfig     `json:"routing" yaml:"routing"`
	Persistence PersistenceConfig `json:"persistence" yaml:"persistence"`
	Redis       RedisConfig       `json:"redis" yaml:"redis"`
	Logging     LoggingConfig     `json:"logging" yaml:"logging"`
}

// ServerConfig represents the HTTP server configuration
type ServerConfig struct {
	Host         string `json:"host" yaml:"host"`
	Port         int    `json:"port" yaml:"port"`
	ReadTimeout  int    `json:"read_timeout_seconds" yaml:"read_timeout_seconds"`
	WriteTimeout int    `json:"write_timeout_seconds" yaml:"write_timeout_seconds"`
	CORSOrigin   string `json:"cors_origin" yaml:"cors_origin"`
}

// PipelineConfig tunes the argumentation pipeline
type PipelineConfig struct {
	// MaxOpposingViewpoints bounds opposing viewpoint generation (1-3)
	MaxOpposingViewpoints int `json:"max_opposing_viewpoints" yaml:"max_opposing_viewpoints"`
	// MinFairnessScore is the floor below which counterarguments are discarded
	MinFairnessScore float64 `json:"min_fairness_score" yaml:"min_fairness_score"`
	// PotentialResponseWindow is how many of the most recent counterarguments
	// receive a synthesized potential response
	PotentialResponseWindow int `json:"potential_response_window" yaml:"potential_response_window"`
	// RunTimeoutSeconds bounds one pipeline run; 0 disables the timeout
	RunTimeoutSeconds int `json:"run_timeout_seconds" yaml:"run_timeout_seconds"`
	// ResultCacheSize caps the in-memory result cache
	ResultCacheSize int `json:"result_cache_size" yaml:"result_cache_size"`
	// MetricsHistorySize caps the per-run metric samples kept for averages
	MetricsHistorySize int `json:"metrics_history_size" yaml:"metrics_history_size"`
	// UserID identifies the owner for persisted run summaries
	UserID string `json:"user_id" yaml:"user_id"`
}

// RoutingConfig holds the static weighting tables of the routing decision
type RoutingConfig struct {
	SemanticDepthWeight     float64 `json:"semantic_depth_weight" yaml:"semantic_depth_weight"`
	ReasoningStepsWeight    float64 `json:"reasoning_steps_weight" yaml:"reasoning_steps_weight"`
	DomainSpecificityWeight float64 `json:"domain_specificity_weight" yaml:"domain_specificity_weight"`
	AmbiguityWeight         float64 `json:"ambiguity_weight" yaml:"ambiguity_weight"`
	// LocalThreshold and CloudThreshold split the complexity range into
	// local / hybrid / cloud recommendations
	LocalThreshold float64 `json:"local_threshold" yaml:"local_threshold"`
	CloudThreshold float64 `json:"cloud_threshold" yaml:"cloud_threshold"`
}

// PersistenceConfig configures the run summary store
type PersistenceConfig struct {
	Enabled      bool   `json:"enabled" yaml:"enabled"`
	DatabasePath string `json:"database_path" yaml:"database_path"`
}

// RedisConfig configures the optional Redis-backed result cache
type RedisConfig struct {
	Enabled    bool   `json:"enabled" yaml:"enabled"`
	Addr       string `json:"addr" yaml:"addr"`
	Password   string `json:"-" yaml:"-"` // never serialized
	DB         int    `json:"db" yaml:"db"`
	TTLSeconds int    `json:"ttl_seconds" yaml:"ttl_seconds"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "localhost",
			Port:         9090,
			ReadTimeout:  30,
			WriteTimeout: 30,
			CORSOrigin:   "*",
		},
		Pipeline: PipelineConfig{
			MaxOpposingViewpoints:   2,
			MinFairnessScore:        0.6,
			PotentialResponseWindow: 3,
			RunTimeoutSeconds:       120,
			ResultCacheSize:         100,
			MetricsHistorySize:      500,
			UserID:                  "local-user",
		},
		Routing: RoutingConfig{
			SemanticDepthWeight:     0.30,
			ReasoningStepsWeight:    0.30,
			DomainSpecificityWeight: 0.20,
			AmbiguityWeight:         0.20,
			LocalThreshold:          0.40,
			CloudThreshold:          0.70,
		},
		Persistence: PersistenceConfig{
			Enabled:      true,
			DatabasePath: "./data/summaries.db",
		},
		Redis: RedisConfig{
			Enabled:    false,
			Addr:       "localhost:6379",
			TTLSeconds: 3600,
		},
		Logging: LoggingConfig{
			Level:  "INFO",
			Format: "json",
		},
	}
}

// LoadConfig builds the configuration from defaults, an optional .env file,
// environment variables, and an optional YAML file named by DEBATE_CONFIG_FILE
func LoadConfig() (*Config, error) {
	// .env is optional; absence is not an error
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if path := os.Getenv("DEBATE_CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from operator config
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

// applyEnv overrides configuration from environment variables
func (c *Config) applyEnv() {
	c.Server.Host = getEnvString("DEBATE_SERVER_HOST", c.Server.Host)
	c.Server.Port = getEnvInt("DEBATE_SERVER_PORT", c.Server.Port)
	c.Server.CORSOrigin = getEnvString("DEBATE_CORS_ORIGIN", c.Server.CORSOrigin)

	c.Pipeline.MaxOpposingViewpoints = getEnvInt("DEBATE_MAX_OPPOSING_VIEWPOINTS", c.Pipeline.MaxOpposingViewpoints)
	c.Pipeline.MinFairnessScore = getEnvFloat("DEBATE_MIN_FAIRNESS_SCORE", c.Pipeline.MinFairnessScore)
	c.Pipeline.RunTimeoutSeconds = getEnvInt("DEBATE_RUN_TIMEOUT_SECONDS", c.Pipeline.RunTimeoutSeconds)
	c.Pipeline.ResultCacheSize = getEnvInt("DEBATE_RESULT_CACHE_SIZE", c.Pipeline.ResultCacheSize)
	c.Pipeline.UserID = getEnvString("DEBATE_USER_ID", c.Pipeline.UserID)

	c.Persistence.Enabled = getEnvBool("DEBATE_PERSISTENCE_ENABLED", c.Persistence.Enabled)
	c.Persistence.DatabasePath = getEnvString("DEBATE_DATABASE_PATH", c.Persistence.DatabasePath)

	c.Redis.Enabled = getEnvBool("DEBATE_REDIS_ENABLED", c.Redis.Enabled)
	c.Redis.Addr = getEnvString("DEBATE_REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnvString("DEBATE_REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = getEnvInt("DEBATE_REDIS_DB", c.Redis.DB)

	c.Logging.Level = getEnvString("DEBATE_LOG_LEVEL", c.Logging.Level)
	c.Logging.Format = getEnvString("DEBATE_LOG_FORMAT", c.Logging.Format)
}

// Validate checks configuration invariants
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	if c.Pipeline.MaxOpposingViewpoints < 1 || c.Pipeline.MaxOpposingViewpoints > 3 {
		return fmt.Errorf("max opposing viewpoints must be between 1 and 3, got %d", c.Pipeline.MaxOpposingViewpoints)
	}
	if c.Pipeline.MinFairnessScore < 0 || c.Pipeline.MinFairnessScore > 1 {
		return errors.New("min fairness score must be in [0,1]")
	}
	if c.Pipeline.ResultCacheSize < 1 {
		return errors.New("result cache size must be positive")
	}
	weightSum := c.Routing.SemanticDepthWeight + c.Routing.ReasoningStepsWeight +
		c.Routing.DomainSpecificityWeight + c.Routing.AmbiguityWeight
	if weightSum < 0.99 || weightSum > 1.01 {
		return fmt.Errorf("routing weights must sum to 1.0, got %.2f", weightSum)
	}
	if c.Routing.LocalThreshold >= c.Routing.CloudThreshold {
		return errors.New("routing local threshold must be below cloud threshold")
	}
	return nil
}

func getEnvString(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1"
	}
	return defaultValue
}
