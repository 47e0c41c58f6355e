package openai

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/poiesic/secondbrain/ai"
	"github.com/poiesic/secondbrain/core"
	"github.com/poiesic/secondbrain/retry"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// Embedder implements ai.Embedder using OpenAI-compatible embedding APIs.
//
// Each request is retried with exponential backoff according to the
// config's MaxRetries and RetryDelay. Dimensionality is either fixed by the
// config or learned from the first response; any later response of a
// different width fails with core.ErrDimensionMismatch without retrying.
type Embedder struct {
	embedder   embeddings.Embedder
	maxRetries int
	retryDelay time.Duration
	dims       atomic.Int64
	logger     *slog.Logger
}

// newEmbedder is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newEmbedder(config *ai.Config) (*Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.EmbeddingHost),
		openai.WithToken(config.Token),
		openai.WithEmbeddingModel(config.EmbeddingModel),
	)
	if err != nil {
		return nil, err
	}

	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, err
	}

	e := &Embedder{
		embedder:   embedder,
		maxRetries: config.MaxRetries,
		retryDelay: config.RetryDelay,
		logger: slog.Default().With("component", "openai-embedder",
			"host", config.EmbeddingHost, "model", config.EmbeddingModel),
	}
	e.dims.Store(int64(config.Dimensions))
	return e, nil
}

// NewEmbedder creates a new embedder using the provided configuration.
// The configuration is normalized first, so a bare host gains its /v1 suffix.
//
// Returns ai.Embedder interface to enforce abstraction.
func NewEmbedder(config *ai.Config) (ai.Embedder, error) {
	config.Normalize()
	return newEmbedder(config)
}

// Dimensions returns the configured or learned vector width, 0 before the
// first response when none was configured.
func (e *Embedder) Dimensions() int {
	return int(e.dims.Load())
}

// EmbedText generates a vector embedding for a single text string.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if err := ai.ValidateText(text); err != nil {
		return nil, err
	}
	e.logger.Debug("generating embedding for single text", "length", len(text))

	vectors, err := e.embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedTexts generates vector embeddings for multiple text strings in a batch.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ai.ValidateTexts(texts); err != nil {
		return nil, err
	}
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	e.logger.Debug("generating embeddings for texts", "count", len(texts))
	return e.embed(ctx, texts)
}

func (e *Embedder) embed(ctx context.Context, texts []string) ([][]float32, error) {
	var vectors [][]float32
	err := retry.WithBackoff(ctx, func() error {
		result, err := e.embedder.EmbedDocuments(ctx, texts)
		if err != nil {
			return err
		}
		if len(result) != len(texts) {
			return fmt.Errorf("embedding service returned %d vectors for %d texts", len(result), len(texts))
		}
		for i, vector := range result {
			if err := e.checkDimensions(vector); err != nil {
				return retry.Permanent(fmt.Errorf("texts[%d]: %w", i, err))
			}
		}
		vectors = result
		return nil
	}, e.maxRetries, e.retryDelay)
	if err != nil {
		e.logger.Error("failed to generate embeddings", "count", len(texts), "err", err)
		return nil, err
	}
	return vectors, nil
}

// checkDimensions enforces a single vector width. The first vector fixes the
// width when none was configured.
func (e *Embedder) checkDimensions(vector []float32) error {
	if len(vector) == 0 {
		return core.ErrEmptyVector
	}
	if e.dims.CompareAndSwap(0, int64(len(vector))) {
		e.logger.Info("learned embedding dimensions", "dimensions", len(vector))
		return nil
	}
	if want := e.dims.Load(); int64(len(vector)) != want {
		return fmt.Errorf("%w: model returned %d, expected %d", core.ErrDimensionMismatch, len(vector), want)
	}
	return nil
}
