package reembed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/poiesic/secondbrain/ai"
	"github.com/poiesic/secondbrain/core"
	"github.com/poiesic/secondbrain/index"
	"github.com/poiesic/secondbrain/retry"
)

// BatchProcessor embeds batches of notes and writes their vectors.
type BatchProcessor struct {
	index          *index.Index
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of attempts per embedding call
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(ix *index.Index, embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		index:          ix,
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Process embeds the canonical text of every note and inserts the vectors
// into the index together with their content fingerprints.
func (bp *BatchProcessor) Process(ctx context.Context, notes []*core.Note) error {
	if len(notes) == 0 {
		return nil
	}

	texts := make([]string, len(notes))
	for i, note := range notes {
		texts[i] = note.CanonicalText()
	}

	// Generate embeddings with retry
	var embeddings [][]float32
	err := retry.WithBackoff(ctx, func() error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		if errors.Is(err, core.ErrValidation) {
			return retry.Permanent(err)
		}
		return err
	}, bp.maxRetries, bp.retryBaseDelay)
	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.maxRetries, err)
	}

	if len(embeddings) != len(notes) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(notes), len(embeddings))
	}

	for i, note := range notes {
		err := bp.index.InsertRecord(ctx, &core.VectorRecord{
			Id:          note.Id,
			Fingerprint: core.Fingerprint(texts[i]),
			Vector:      embeddings[i],
		})
		if err != nil {
			return fmt.Errorf("failed to index note %d: %w", note.Id, err)
		}
	}

	return nil
}
