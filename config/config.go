// Package config loads the YAML configuration of the brain command.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/poiesic/secondbrain/ai"
	"github.com/poiesic/secondbrain/reembed"
	"gopkg.in/yaml.v3"
)

// FileName is the name of the config file inside the default directory.
const FileName = "config.yaml"

// Config holds all configuration for the application.
type Config struct {
	LogLevel  string          `yaml:"log_level"`
	DataDir   string          `yaml:"data_dir"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Search    SearchConfig    `yaml:"search"`
	Ingestion IngestionConfig `yaml:"ingestion"`
	Reembed   ReembedConfig   `yaml:"reembed"`
}

// EmbeddingConfig selects the embedder. An empty Host selects the offline
// hashing embedder.
type EmbeddingConfig struct {
	Host       string        `yaml:"host"`
	Model      string        `yaml:"model"`
	Token      string        `yaml:"token"`
	Dimensions int           `yaml:"dimensions"`
	MaxRetries int           `yaml:"max_retries"`
	RetryDelay time.Duration `yaml:"retry_delay"`
}

// SearchConfig holds result limits.
type SearchConfig struct {
	DefaultLimit int     `yaml:"default_limit"`
	MaxLimit     int     `yaml:"max_limit"`
	MinScore     float64 `yaml:"min_score"`
}

// IngestionConfig holds write path settings.
type IngestionConfig struct {
	PoolSize        int   `yaml:"pool_size"`
	ReconcileOnOpen *bool `yaml:"reconcile_on_open"`
}

// ReconcileOnOpenOrDefault returns whether to reconcile on open; defaults to true when unset.
func (c *IngestionConfig) ReconcileOnOpenOrDefault() bool {
	if c.ReconcileOnOpen != nil {
		return *c.ReconcileOnOpen
	}
	return true
}

// ReembedConfig holds settings of the reembed command.
type ReembedConfig struct {
	BatchSize      int           `yaml:"batch_size"`
	ReportInterval int           `yaml:"report_interval"`
	MaxRetries     int           `yaml:"max_retries"`
	RetryDelay     time.Duration `yaml:"retry_delay"`
}

// DefaultDir returns ~/.secondbrain, or ".secondbrain" when the home
// directory cannot be determined.
func DefaultDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".secondbrain")
	}
	return ".secondbrain"
}

// DefaultPath returns the config file path used when none is given.
func DefaultPath() string {
	return filepath.Join(DefaultDir(), FileName)
}

// Default returns a Config with every default applied.
func Default() *Config {
	var cfg Config
	ApplyDefaults(&cfg)
	return &cfg
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.DataDir != "" {
		cfg.DataDir = expandPath(cfg.DataDir, filepath.Dir(path))
	}
	ApplyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads path if it exists and returns the defaults otherwise.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Save writes the config to path, creating its directory if needed.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate checks values that have no sensible default.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	if c.Embedding.Dimensions < 0 {
		return errors.New("embedding.dimensions cannot be negative")
	}
	if c.Search.DefaultLimit > c.Search.MaxLimit {
		return fmt.Errorf("search.default_limit %d exceeds search.max_limit %d",
			c.Search.DefaultLimit, c.Search.MaxLimit)
	}
	if c.Search.MinScore < 0 || c.Search.MinScore > 1 {
		return errors.New("search.min_score must be between 0 and 1")
	}
	return nil
}

// AIConfig converts the embedding section into an ai.Config.
func (c *Config) AIConfig() *ai.Config {
	return ai.NewConfig(
		ai.WithEmbeddingHost(c.Embedding.Host),
		ai.WithEmbeddingModel(c.Embedding.Model),
		ai.WithToken(c.Embedding.Token),
		ai.WithDimensions(c.Embedding.Dimensions),
		ai.WithRetry(c.Embedding.MaxRetries, c.Embedding.RetryDelay),
	)
}

// ReembedConfig converts the reembed section into a reembed.Config.
func (c *Config) ReembedConfig() *reembed.Config {
	return &reembed.Config{
		BatchSize:      c.Reembed.BatchSize,
		ReportInterval: c.Reembed.ReportInterval,
		MaxRetries:     c.Reembed.MaxRetries,
		RetryDelay:     c.Reembed.RetryDelay,
	}
}

// expandPath converts a path to absolute. "~/" is relative to the home
// directory; any other relative path is relative to configDir.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, rest)
		}
	}
	return filepath.Join(configDir, path)
}
