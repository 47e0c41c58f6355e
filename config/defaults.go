package config

import (
	"github.com/poiesic/secondbrain/ai"
	"github.com/poiesic/secondbrain/reembed"
	"github.com/poiesic/secondbrain/search"
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.DataDir == "" {
		cfg.DataDir = DefaultDir()
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = ai.DefaultEmbeddingModel
	}
	if cfg.Embedding.Token == "" {
		cfg.Embedding.Token = "none"
	}
	// A remote model may report its own width, so 0 is kept there.
	if cfg.Embedding.Dimensions == 0 && cfg.Embedding.Host == "" {
		cfg.Embedding.Dimensions = ai.DefaultDimensions
	}
	if cfg.Embedding.MaxRetries == 0 {
		cfg.Embedding.MaxRetries = ai.DefaultMaxRetries
	}
	if cfg.Embedding.RetryDelay == 0 {
		cfg.Embedding.RetryDelay = ai.DefaultRetryDelay
	}
	if cfg.Search.DefaultLimit == 0 {
		cfg.Search.DefaultLimit = search.DefaultLimit
	}
	if cfg.Search.MaxLimit == 0 {
		cfg.Search.MaxLimit = search.MaxLimit
	}
	defaults := reembed.DefaultConfig()
	if cfg.Reembed.BatchSize == 0 {
		cfg.Reembed.BatchSize = defaults.BatchSize
	}
	if cfg.Reembed.ReportInterval == 0 {
		cfg.Reembed.ReportInterval = defaults.ReportInterval
	}
	if cfg.Reembed.MaxRetries == 0 {
		cfg.Reembed.MaxRetries = defaults.MaxRetries
	}
	if cfg.Reembed.RetryDelay == 0 {
		cfg.Reembed.RetryDelay = defaults.RetryDelay
	}
}
