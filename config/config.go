package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const configFileEnv = "CONFIG_FILE"

// Config holds application configuration
type Config struct {
	// Offline artifacts
	DatasetPath string `yaml:"dataset_path"`
	ModelPath   string `yaml:"model_path"`

	LLM  LLMConfig  `yaml:"llm"`
	Feed FeedConfig `yaml:"feed"`

	// Server configuration
	Port string `yaml:"port"`
}

// LLMConfig configures the chat-completion branch of the assessment engine.
// The credential itself is read from CredentialEnv on every call.
type LLMConfig struct {
	BaseURL       string `yaml:"base_url"`
	Model         string `yaml:"model"`
	TimeoutMs     int    `yaml:"timeout_ms"`
	CredentialEnv string `yaml:"credential_env"`
}

// Timeout returns the per-call deadline.
func (c LLMConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// FeedConfig configures the optional Redis stream the dashboard publishes to.
type FeedConfig struct {
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	Stream        string `yaml:"stream"`
}

// Enabled reports whether a feed address is configured.
func (c FeedConfig) Enabled() bool {
	return c.RedisAddr != ""
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DatasetPath: "bridge_data.csv",
		ModelPath:   "model.forest.zst",
		LLM: LLMConfig{
			BaseURL:       "https://api.openai.com/v1",
			Model:         "gpt-4o",
			TimeoutMs:     30000,
			CredentialEnv: "OPENAI_API_KEY",
		},
		Feed: FeedConfig{
			Stream: "bridge.telemetry",
		},
		Port: "8080",
	}
}

// Load builds configuration from defaults, an optional YAML file named by
// CONFIG_FILE, and environment variables, in increasing precedence.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv(configFileEnv); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: decode yaml: %w", err)
		}
	}

	cfg.DatasetPath = getEnv("DATASET_PATH", cfg.DatasetPath)
	cfg.ModelPath = getEnv("MODEL_PATH", cfg.ModelPath)

	cfg.LLM.BaseURL = getEnv("OPENAI_BASE_URL", cfg.LLM.BaseURL)
	cfg.LLM.Model = getEnv("OPENAI_MODEL", cfg.LLM.Model)
	cfg.LLM.TimeoutMs = getEnvInt("LLM_TIMEOUT_MS", cfg.LLM.TimeoutMs)

	cfg.Feed.RedisAddr = getEnv("FEED_REDIS_ADDR", cfg.Feed.RedisAddr)
	cfg.Feed.RedisPassword = getEnv("FEED_REDIS_PASSWORD", cfg.Feed.RedisPassword)
	cfg.Feed.Stream = getEnv("FEED_STREAM", cfg.Feed.Stream)

	cfg.Port = getEnv("PORT", cfg.Port)

	if cfg.LLM.TimeoutMs <= 0 {
		return Config{}, fmt.Errorf("config: llm timeout must be positive, got %d", cfg.LLM.TimeoutMs)
	}
	if cfg.LLM.CredentialEnv == "" {
		cfg.LLM.CredentialEnv = "OPENAI_API_KEY"
	}
	return cfg, nil
}

// getEnv gets an environment variable with a fallback default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an environment variable as integer with a fallback default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
