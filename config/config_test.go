package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/poiesic/secondbrain/ai"
	"github.com/poiesic/secondbrain/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
log_level: debug
data_dir: ./brain
embedding:
  host: http://localhost:11434
  model: nomic-embed-text
  retry_delay: 250ms
search:
  default_limit: 3
  max_limit: 20
  min_score: 0.6
ingestion:
  pool_size: 4
  reconcile_on_open: false
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "brain"), cfg.DataDir)
	assert.Equal(t, "http://localhost:11434", cfg.Embedding.Host)
	assert.Equal(t, "nomic-embed-text", cfg.Embedding.Model)
	assert.Equal(t, 250*time.Millisecond, cfg.Embedding.RetryDelay)
	assert.Zero(t, cfg.Embedding.Dimensions, "remote width is learned")
	assert.Equal(t, 3, cfg.Search.DefaultLimit)
	assert.Equal(t, 20, cfg.Search.MaxLimit)
	assert.InDelta(t, 0.6, cfg.Search.MinScore, 1e-9)
	assert.Equal(t, 4, cfg.Ingestion.PoolSize)
	assert.False(t, cfg.Ingestion.ReconcileOnOpenOrDefault())
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, DefaultDir(), cfg.DataDir)
	assert.Empty(t, cfg.Embedding.Host)
	assert.Equal(t, ai.DefaultDimensions, cfg.Embedding.Dimensions)
	assert.Equal(t, ai.DefaultMaxRetries, cfg.Embedding.MaxRetries)
	assert.Equal(t, search.DefaultLimit, cfg.Search.DefaultLimit)
	assert.Equal(t, search.MaxLimit, cfg.Search.MaxLimit)
	assert.True(t, cfg.Ingestion.ReconcileOnOpenOrDefault())
	assert.Equal(t, 100, cfg.Reembed.BatchSize)
}

func TestLoad_AbsoluteDataDir(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "elsewhere")
	cfg, err := Load(writeConfig(t, "data_dir: "+abs+"\n"))
	require.NoError(t, err)
	assert.Equal(t, abs, cfg.DataDir)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed yaml", "search: [unterminated\n"},
		{"bad log level", "log_level: loud\n"},
		{"default above max", "search:\n  default_limit: 50\n  max_limit: 10\n"},
		{"min score out of range", "search:\n  min_score: 2\n"},
		{"negative dimensions", "embedding:\n  dimensions: -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)
	cfg := Default()
	cfg.DataDir = filepath.Join(t.TempDir(), "data")
	cfg.Embedding.RetryDelay = 2 * time.Second

	require.NoError(t, Save(path, cfg))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestConversions(t *testing.T) {
	cfg := Default()
	cfg.Embedding.Host = "http://embed:8080"

	aiCfg := cfg.AIConfig()
	assert.True(t, aiCfg.Remote())
	assert.Equal(t, cfg.Embedding.Model, aiCfg.EmbeddingModel)
	require.NoError(t, aiCfg.Validate())

	re := cfg.ReembedConfig()
	assert.Equal(t, cfg.Reembed.BatchSize, re.BatchSize)
	assert.Equal(t, cfg.Reembed.RetryDelay, re.RetryDelay)
}
