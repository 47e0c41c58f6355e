// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package index

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/poiesic/secondbrain/core"
	"github.com/poiesic/secondbrain/storage"
)

// ApproximateThreshold is the vector count past which exact search becomes
// slow enough that an approximate index should be considered.
const ApproximateThreshold = 50_000

type entry struct {
	id          core.ID
	fingerprint uint64
	vector      []float32
	norm        float64
}

// Index is an exact cosine similarity index backed by a VectorRepository.
// Queries share a read lock and run in parallel; mutations are serialized.
type Index struct {
	mu        sync.RWMutex
	repo      storage.VectorRepository
	dims      int
	entries   []entry // insertion order
	positions map[core.ID]int
	logger    *slog.Logger
}

// Option configures an Index.
type Option func(*Index) error

// WithLogger sets the logger for the index.
func WithLogger(logger *slog.Logger) Option {
	return func(ix *Index) error {
		if logger != nil {
			ix.logger = logger
		}
		return nil
	}
}

// New creates an empty index over repo. Call Load to read persisted vectors.
func New(repo storage.VectorRepository, opts ...Option) (*Index, error) {
	if repo == nil {
		return nil, ErrVectorRepositoryRequired
	}
	ix := &Index{
		repo:      repo,
		positions: make(map[core.ID]int),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(ix); err != nil {
			return nil, err
		}
	}
	ix.logger = ix.logger.With("component", "vector-index")
	return ix, nil
}

// Open creates an index over repo and loads every persisted vector.
func Open(ctx context.Context, repo storage.VectorRepository, opts ...Option) (*Index, error) {
	ix, err := New(repo, opts...)
	if err != nil {
		return nil, err
	}
	if err := ix.Load(ctx); err != nil {
		return nil, err
	}
	return ix, nil
}

// Load replaces the in-memory state with the repository contents.
// A repository holding vectors of more than one dimensionality fails with
// storage.ErrCorrupt.
func (ix *Index) Load(ctx context.Context) error {
	dims, err := ix.repo.Dimensions(ctx)
	if err != nil {
		return err
	}

	var (
		entries   []entry
		positions = make(map[core.ID]int)
	)
	err = ix.repo.ForEachVector(ctx, func(rec *core.VectorRecord) error {
		if dims == 0 {
			dims = len(rec.Vector)
		}
		if len(rec.Vector) != dims {
			return fmt.Errorf("%w: vector %d has %d dimensions, store holds %d",
				storage.ErrCorrupt, rec.Id, len(rec.Vector), dims)
		}
		positions[rec.Id] = len(entries)
		entries = append(entries, entry{
			id:          rec.Id,
			fingerprint: rec.Fingerprint,
			vector:      rec.Vector,
			norm:        Magnitude(rec.Vector),
		})
		return nil
	})
	if err != nil {
		return err
	}

	ix.mu.Lock()
	ix.dims = dims
	ix.entries = entries
	ix.positions = positions
	ix.mu.Unlock()

	if len(entries) > ApproximateThreshold {
		ix.logger.Warn("vector count exceeds exact search threshold",
			"count", len(entries), "threshold", ApproximateThreshold)
	}
	ix.logger.Debug("loaded vectors", "count", len(entries), "dimensions", dims)
	return nil
}

// Insert adds a vector for id. See InsertRecord.
func (ix *Index) Insert(ctx context.Context, id core.ID, vector []float32) error {
	return ix.InsertRecord(ctx, &core.VectorRecord{Id: id, Vector: vector})
}

// InsertRecord persists rec and makes it visible to queries.
//
// Returns storage.ErrDuplicateKey if the id is already indexed and
// core.ErrDimensionMismatch if the vector length differs from the index's
// dimensionality. Nothing is written on error.
func (ix *Index) InsertRecord(ctx context.Context, rec *core.VectorRecord) error {
	if len(rec.Vector) == 0 {
		return core.ErrEmptyVector
	}
	if !isFinite(rec.Vector) {
		return core.NewValidationError("vector", "contains non-finite values")
	}

	ix.mu.RLock()
	_, exists := ix.positions[rec.Id]
	dims := ix.dims
	ix.mu.RUnlock()

	if exists {
		return fmt.Errorf("%w: vector %d", storage.ErrDuplicateKey, rec.Id)
	}
	if dims != 0 && dims != len(rec.Vector) {
		return fmt.Errorf("%w: got %d, index holds %d", core.ErrDimensionMismatch, len(rec.Vector), dims)
	}

	vector := slices.Clone(rec.Vector)
	if err := ix.repo.AddVector(ctx, &core.VectorRecord{
		Id:          rec.Id,
		Fingerprint: rec.Fingerprint,
		Vector:      vector,
	}); err != nil {
		return err
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.dims == 0 {
		ix.dims = len(vector)
	}
	ix.positions[rec.Id] = len(ix.entries)
	ix.entries = append(ix.entries, entry{
		id:          rec.Id,
		fingerprint: rec.Fingerprint,
		vector:      vector,
		norm:        Magnitude(vector),
	})
	return nil
}

// Query returns up to k matches ordered by descending score.
// Fewer than k matches are returned when the index holds fewer entries.
func (ix *Index) Query(ctx context.Context, vector []float32, k int) ([]core.SimilarityMatch, error) {
	if k <= 0 {
		return nil, core.NewValidationError("k", "must be positive")
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if len(ix.entries) == 0 {
		return []core.SimilarityMatch{}, nil
	}
	if len(vector) != ix.dims {
		return nil, fmt.Errorf("%w: query has %d dimensions, index holds %d",
			core.ErrDimensionMismatch, len(vector), ix.dims)
	}

	norm := Magnitude(vector)
	matches := make([]core.SimilarityMatch, len(ix.entries))
	for i, e := range ix.entries {
		matches[i] = core.SimilarityMatch{
			NoteId: e.id,
			Score:  Score(cosineWithNorms(vector, e.vector, norm, e.norm)),
		}
	}

	// Stable sort keeps insertion order among equal scores.
	slices.SortStableFunc(matches, func(a, b core.SimilarityMatch) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})

	if k < len(matches) {
		matches = matches[:k]
	}
	return matches, nil
}

// Delete removes id from the index and its repository.
// Returns storage.ErrNotFound if id is not indexed.
func (ix *Index) Delete(ctx context.Context, id core.ID) error {
	if !ix.Contains(id) {
		return fmt.Errorf("%w: vector %d", storage.ErrNotFound, id)
	}
	if err := ix.repo.DeleteVector(ctx, id); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	pos, ok := ix.positions[id]
	if !ok {
		return nil
	}
	ix.entries = slices.Delete(ix.entries, pos, pos+1)
	delete(ix.positions, id)
	for i := pos; i < len(ix.entries); i++ {
		ix.positions[ix.entries[i].id] = i
	}
	return nil
}

// Reset removes every vector and forgets the dimensionality.
func (ix *Index) Reset(ctx context.Context) error {
	if err := ix.repo.Reset(ctx); err != nil {
		return err
	}
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.dims = 0
	ix.entries = nil
	ix.positions = make(map[core.ID]int)
	return nil
}

// Contains reports whether id is indexed.
func (ix *Index) Contains(id core.ID) bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	_, ok := ix.positions[id]
	return ok
}

// Fingerprint returns the content fingerprint stored with id's vector.
func (ix *Index) Fingerprint(id core.ID) (uint64, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	pos, ok := ix.positions[id]
	if !ok {
		return 0, false
	}
	return ix.entries[pos].fingerprint, true
}

// IDs returns the indexed ids in insertion order.
func (ix *Index) IDs() []core.ID {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	ids := make([]core.ID, len(ix.entries))
	for i, e := range ix.entries {
		ids[i] = e.id
	}
	return ids
}

// Len returns the number of indexed vectors.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.entries)
}

// Dimensions returns the index dimensionality, 0 while empty.
func (ix *Index) Dimensions() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.dims
}
