package badger

import (
	"context"
	"testing"

	"github.com/poiesic/secondbrain/core"
	"github.com/poiesic/secondbrain/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVectorBasics(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()
	dims, err := repos.Vectors.Dimensions(ctx)
	require.NoError(t, err)
	assert.Zero(t, dims)

	rec := &core.VectorRecord{Id: 1, Fingerprint: 77, Vector: []float32{1, 0, 0}}
	require.NoError(t, repos.Vectors.AddVector(ctx, rec))

	dims, err = repos.Vectors.Dimensions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, dims)

	got, err := repos.Vectors.GetVector(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	_, err = repos.Vectors.GetVector(ctx, 2)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestAddVector_Guards(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()
	require.NoError(t, repos.Vectors.AddVector(ctx, &core.VectorRecord{Id: 1, Vector: []float32{1, 2, 3}}))

	tests := []struct {
		name    string
		record  *core.VectorRecord
		wantErr error
	}{
		{"duplicate id", &core.VectorRecord{Id: 1, Vector: []float32{1, 2, 3}}, storage.ErrDuplicateKey},
		{"shorter vector", &core.VectorRecord{Id: 2, Vector: []float32{1, 2}}, core.ErrDimensionMismatch},
		{"longer vector", &core.VectorRecord{Id: 3, Vector: []float32{1, 2, 3, 4}}, core.ErrDimensionMismatch},
		{"empty vector", &core.VectorRecord{Id: 4}, core.ErrEmptyVector},
		{"unassigned id", &core.VectorRecord{Vector: []float32{1, 2, 3}}, storage.ErrInvalidQuery},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repos.Vectors.AddVector(ctx, tt.record)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	count, err := repos.Vectors.CountVectors(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "rejected inserts leave no trace")
}

func TestDeleteVector(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()
	require.NoError(t, repos.Vectors.AddVector(ctx, &core.VectorRecord{Id: 5, Vector: []float32{1}}))
	require.NoError(t, repos.Vectors.DeleteVector(ctx, 5))

	err = repos.Vectors.DeleteVector(ctx, 5)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestForEachVector(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()
	for _, id := range []core.ID{300, 2, 17} {
		require.NoError(t, repos.Vectors.AddVector(ctx, &core.VectorRecord{Id: id, Vector: []float32{float32(id), 1}}))
	}

	var ids []core.ID
	err = repos.Vectors.ForEachVector(ctx, func(rec *core.VectorRecord) error {
		ids = append(ids, rec.Id)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []core.ID{2, 17, 300}, ids)

	err = repos.Vectors.ForEachVector(ctx, func(rec *core.VectorRecord) error {
		return assert.AnError
	})
	assert.Equal(t, assert.AnError, err)
}

func TestVectorReset(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()
	require.NoError(t, repos.Vectors.AddVector(ctx, &core.VectorRecord{Id: 1, Vector: []float32{1, 2, 3}}))
	require.NoError(t, repos.Vectors.Reset(ctx))

	dims, err := repos.Vectors.Dimensions(ctx)
	require.NoError(t, err)
	assert.Zero(t, dims)

	// A different dimensionality is accepted after a reset.
	require.NoError(t, repos.Vectors.AddVector(ctx, &core.VectorRecord{Id: 1, Vector: []float32{1, 2}}))
	dims, err = repos.Vectors.Dimensions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, dims)
}
