package hashing

import (
	"context"
	"errors"
	"hash/fnv"
	"log/slog"
	"math"

	"github.com/poiesic/secondbrain/ai"
)

const (
	// DefaultDimensions matches the width of all-MiniLM-L6-v2.
	DefaultDimensions = 384

	wordWeight    = 1.0
	trigramWeight = 0.35
)

// ErrInvalidDimensions is returned for a non-positive vector width.
var ErrInvalidDimensions = errors.New("dimensions must be positive")

// Embedder implements ai.Embedder with feature hashing.
// It holds no mutable state and is safe for concurrent use.
type Embedder struct {
	dims   int
	logger *slog.Logger
}

var _ ai.Embedder = (*Embedder)(nil)

// Option configures an Embedder.
type Option func(*Embedder) error

// WithDimensions sets the vector width.
func WithDimensions(dims int) Option {
	return func(e *Embedder) error {
		if dims <= 0 {
			return ErrInvalidDimensions
		}
		e.dims = dims
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Embedder) error {
		if logger != nil {
			e.logger = logger
		}
		return nil
	}
}

// NewEmbedder creates a hashing embedder.
func NewEmbedder(opts ...Option) (*Embedder, error) {
	e := &Embedder{
		dims:   DefaultDimensions,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	e.logger = e.logger.With("component", "hashing-embedder")
	return e, nil
}

// Dimensions returns the vector width.
func (e *Embedder) Dimensions() int {
	return e.dims
}

// EmbedText embeds a single text.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if err := ai.ValidateText(text); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.embed(text), nil
}

// EmbedTexts embeds several texts, preserving order.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ai.ValidateTexts(texts); err != nil {
		return nil, err
	}
	e.logger.Debug("generating embeddings for texts", "count", len(texts))

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vectors[i] = e.embed(text)
	}
	return vectors, nil
}

func (e *Embedder) embed(text string) []float32 {
	acc := make([]float64, e.dims)
	for _, token := range tokenize(text) {
		e.add(acc, "w:"+token, wordWeight)
		for _, gram := range trigrams(token) {
			e.add(acc, "t:"+gram, trigramWeight)
		}
	}

	var sum float64
	for _, v := range acc {
		sum += v * v
	}
	vector := make([]float32, e.dims)
	if sum == 0 {
		// Only stop words or punctuation: a fixed non-zero vector keeps the
		// output usable for cosine scoring.
		vector[0] = 1
		return vector
	}
	norm := math.Sqrt(sum)
	for i, v := range acc {
		vector[i] = float32(v / norm)
	}
	return vector
}

func (e *Embedder) add(acc []float64, feature string, weight float64) {
	h := fnv.New64a()
	h.Write([]byte(feature))
	sum := h.Sum64()

	bucket := sum % uint64(e.dims)
	if sum>>63 == 1 {
		weight = -weight
	}
	acc[bucket] += weight
}
