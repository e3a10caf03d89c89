// ABOUTME: Centralized configuration for the step matching system
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the step matching system
type Config struct {
	// Charm settings
	CharmHost   string
	CharmDBName string
	AutoSync    bool

	// OpenAI settings
	OpenAIKey      string
	EmbeddingModel string
	Timeout        time.Duration
	MaxRetries     int
	RetryDelay     time.Duration

	// Matching settings
	TasksDir          string
	PrecomputeWorkers int
	DefaultTopK       int
	TieBreak          string
	VectorDimension   int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		// Defaults
		CharmHost:         getEnv("CHARM_HOST", "charm.2389.dev"),
		CharmDBName:       getEnv("CHARM_DB", "stepmatch"),
		AutoSync:          getEnvBool("CHARM_AUTO_SYNC", true),
		OpenAIKey:         os.Getenv("OPENAI_API_KEY"),
		EmbeddingModel:    getEnv("STEPMATCH_EMBEDDING_MODEL", "text-embedding-3-small"),
		Timeout:           getEnvDuration("OPENAI_TIMEOUT", 30*time.Second),
		MaxRetries:        getEnvInt("OPENAI_MAX_RETRIES", 3),
		RetryDelay:        getEnvDuration("OPENAI_RETRY_DELAY", 2*time.Second),
		TasksDir:          getEnv("STEPMATCH_TASKS_DIR", "tasks"),
		PrecomputeWorkers: getEnvInt("STEPMATCH_PRECOMPUTE_WORKERS", 4),
		DefaultTopK:       getEnvInt("STEPMATCH_TOP_K", 3),
		TieBreak:          getEnv("STEPMATCH_TIE_BREAK", "store"),
		VectorDimension:   getEnvInt("VECTOR_DIMENSION", 1536),
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("OPENAI_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	if c.RetryDelay <= 0 {
		return fmt.Errorf("OPENAI_RETRY_DELAY must be positive, got %v", c.RetryDelay)
	}
	if c.PrecomputeWorkers < 1 || c.PrecomputeWorkers > 32 {
		return fmt.Errorf("STEPMATCH_PRECOMPUTE_WORKERS must be 1-32, got %d", c.PrecomputeWorkers)
	}
	if c.DefaultTopK < 1 {
		return fmt.Errorf("STEPMATCH_TOP_K must be positive, got %d", c.DefaultTopK)
	}
	if c.TieBreak != "store" && c.TieBreak != "step_id" {
		return fmt.Errorf("STEPMATCH_TIE_BREAK must be store or step_id, got %q", c.TieBreak)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v == "true" || v == "1"
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
