package ai

import (
	"errors"
	"testing"
	"time"

	"github.com/poiesic/secondbrain/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Empty(t, cfg.EmbeddingHost)
	assert.False(t, cfg.Remote())
	assert.Equal(t, "all-minilm", cfg.EmbeddingModel)
	assert.Equal(t, 384, cfg.Dimensions)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.NoError(t, cfg.Validate())
}

func TestNewConfig(t *testing.T) {
	t.Run("with no options", func(t *testing.T) {
		cfg := NewConfig()
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("with custom host", func(t *testing.T) {
		cfg := NewConfig(WithEmbeddingHost("http://custom:8080/v1"))
		assert.Equal(t, "http://custom:8080/v1", cfg.EmbeddingHost)
		assert.True(t, cfg.Remote())
	})

	t.Run("with multiple options", func(t *testing.T) {
		cfg := NewConfig(
			WithEmbeddingHost("http://custom:8080"),
			WithEmbeddingModel("text-embedding-3-small"),
			WithToken("sk-test"),
			WithDimensions(1536),
			WithRetry(5, time.Second),
		)

		assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingModel)
		assert.Equal(t, "sk-test", cfg.Token)
		assert.Equal(t, 1536, cfg.Dimensions)
		assert.Equal(t, 5, cfg.MaxRetries)
		assert.Equal(t, time.Second, cfg.RetryDelay)
	})
}

func TestConfigNormalize(t *testing.T) {
	tests := []struct {
		name     string
		host     string
		expected string
	}{
		{"already has /v1", "http://localhost:11434/v1", "http://localhost:11434/v1"},
		{"missing /v1", "http://localhost:11434", "http://localhost:11434/v1"},
		{"has trailing slash", "http://localhost:11434/", "http://localhost:11434/v1"},
		{"empty host", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{EmbeddingHost: tt.host}
			cfg.Normalize()
			assert.Equal(t, tt.expected, cfg.EmbeddingHost)
			assert.Equal(t, "none", cfg.Token)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    []ConfigOption
		wantErr bool
	}{
		{"defaults", nil, false},
		{"remote with model", []ConfigOption{WithEmbeddingHost("http://x")}, false},
		{"remote without dimensions", []ConfigOption{WithEmbeddingHost("http://x"), WithDimensions(0)}, false},
		{"remote without model", []ConfigOption{WithEmbeddingHost("http://x"), WithEmbeddingModel("")}, true},
		{"hashing without dimensions", []ConfigOption{WithDimensions(0)}, true},
		{"negative dimensions", []ConfigOption{WithDimensions(-1)}, true},
		{"zero retries", []ConfigOption{WithRetry(0, time.Second)}, true},
		{"negative delay", []ConfigOption{WithRetry(1, -time.Second)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewConfig(tt.opts...).Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateText(t *testing.T) {
	assert.NoError(t, ValidateText("hello"))

	err := ValidateText(" \t\n")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrValidation)

	err = ValidateTexts([]string{"a", "b", " "})
	var verr *core.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "texts[2]", verr.Field)

	assert.NoError(t, ValidateTexts(nil))
}
