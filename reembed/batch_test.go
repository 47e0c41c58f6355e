package reembed

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/poiesic/secondbrain/ai/mock"
	"github.com/poiesic/secondbrain/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchProcessor_Process(t *testing.T) {
	repos, ix := setupTestDB(t)
	notes := seedNotes(t, repos, 3)
	ctx := context.Background()

	embedder := mock.NewMockEmbedder()
	processor := NewBatchProcessor(ix, embedder, 3, time.Millisecond)
	require.NoError(t, processor.Process(ctx, notes))

	require.Equal(t, 3, ix.Len())
	for _, note := range notes {
		record, err := repos.Vectors.GetVector(ctx, note.Id)
		require.NoError(t, err)
		assert.Equal(t, core.Fingerprint(note.CanonicalText()), record.Fingerprint)
		assert.Equal(t, mock.GenerateVector(note.CanonicalText(), mock.DefaultDimensions), record.Vector)
	}
	assert.Equal(t, 1, embedder.CallCount(), "one embedding call per batch")
}

func TestBatchProcessor_EmptyBatch(t *testing.T) {
	_, ix := setupTestDB(t)
	embedder := mock.NewMockEmbedder()

	require.NoError(t, NewBatchProcessor(ix, embedder, 3, time.Millisecond).Process(context.Background(), nil))
	assert.Zero(t, embedder.CallCount())
}

func TestBatchProcessor_RetriesTransientErrors(t *testing.T) {
	repos, ix := setupTestDB(t)
	notes := seedNotes(t, repos, 2)

	var attempts atomic.Int32
	embedder := mock.NewMockEmbedder().WithEmbedTextsFunc(func(ctx context.Context, texts []string) ([][]float32, error) {
		if attempts.Add(1) < 3 {
			return nil, errors.New("temporary failure")
		}
		out := make([][]float32, len(texts))
		for i := range texts {
			out[i] = []float32{1, 0, 0}
		}
		return out, nil
	})

	require.NoError(t, NewBatchProcessor(ix, embedder, 3, time.Millisecond).Process(context.Background(), notes))
	assert.Equal(t, int32(3), attempts.Load())
	assert.Equal(t, 2, ix.Len())
}

func TestBatchProcessor_GivesUp(t *testing.T) {
	repos, ix := setupTestDB(t)
	notes := seedNotes(t, repos, 1)

	var attempts atomic.Int32
	embedder := mock.NewMockEmbedder().WithEmbedTextsFunc(func(ctx context.Context, texts []string) ([][]float32, error) {
		attempts.Add(1)
		return nil, errors.New("still down")
	})

	err := NewBatchProcessor(ix, embedder, 2, time.Millisecond).Process(context.Background(), notes)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 attempts")
	assert.Equal(t, int32(2), attempts.Load())
	assert.Zero(t, ix.Len())
}

func TestBatchProcessor_ValidationErrorNotRetried(t *testing.T) {
	repos, ix := setupTestDB(t)
	notes := seedNotes(t, repos, 1)

	var attempts atomic.Int32
	embedder := mock.NewMockEmbedder().WithEmbedTextsFunc(func(ctx context.Context, texts []string) ([][]float32, error) {
		attempts.Add(1)
		return nil, core.ErrDimensionMismatch
	})

	err := NewBatchProcessor(ix, embedder, 5, time.Millisecond).Process(context.Background(), notes)
	assert.ErrorIs(t, err, core.ErrDimensionMismatch)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestBatchProcessor_CountMismatch(t *testing.T) {
	repos, ix := setupTestDB(t)
	notes := seedNotes(t, repos, 2)

	embedder := mock.NewMockEmbedder().WithEmbedTextsFunc(func(ctx context.Context, texts []string) ([][]float32, error) {
		return [][]float32{{1, 0}}, nil
	})

	err := NewBatchProcessor(ix, embedder, 1, time.Millisecond).Process(context.Background(), notes)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedding count mismatch")
}
