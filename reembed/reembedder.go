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

package reembed

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/poiesic/secondbrain/ai"
	"github.com/poiesic/secondbrain/core"
	"github.com/poiesic/secondbrain/index"
	"github.com/poiesic/secondbrain/storage"
)

// Config holds configuration for the reembedding operation.
type Config struct {
	// BatchSize is the number of notes to process in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of notes)
	ReportInterval int

	// MaxRetries is the maximum number of attempts per embedding call
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      DefaultBatchSize,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// WriteLocker serializes the rebuild against every other writer.
// *ingestion.Pipeline satisfies it.
type WriteLocker interface {
	WithWriteLock(fn func() error) error
}

// Reembedder rebuilds the vector index from every note in the metadata store.
type Reembedder struct {
	notes     storage.NoteRepository
	index     *index.Index
	locker    WriteLocker
	config    *Config
	progress  io.Writer
	processor *BatchProcessor
	iterator  *NoteIterator
}

// NewReembedder creates a new reembedder.
// progress: where to write progress output (typically os.Stderr); nil discards it
func NewReembedder(
	notes storage.NoteRepository,
	ix *index.Index,
	locker WriteLocker,
	embedder ai.Embedder,
	config *Config,
	progress io.Writer,
) (*Reembedder, error) {
	switch {
	case notes == nil:
		return nil, ErrNoteRepositoryRequired
	case ix == nil:
		return nil, ErrIndexRequired
	case locker == nil:
		return nil, ErrWriteLockRequired
	case embedder == nil:
		return nil, ErrEmbedderRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if progress == nil {
		progress = io.Discard
	}

	return &Reembedder{
		notes:     notes,
		index:     ix,
		locker:    locker,
		config:    config,
		progress:  progress,
		processor: NewBatchProcessor(ix, embedder, config.MaxRetries, config.RetryDelay),
		iterator:  NewNoteIterator(notes, config.BatchSize),
	}, nil
}

// Run clears the index and re-embeds every note with the configured embedder.
// It returns the number of notes indexed. Progress is reported to the
// configured writer.
func (r *Reembedder) Run(ctx context.Context) (int, error) {
	processed := 0
	err := r.locker.WithWriteLock(func() error {
		var err error
		processed, err = r.run(ctx)
		return err
	})
	return processed, err
}

func (r *Reembedder) run(ctx context.Context) (int, error) {
	total, err := r.notes.CountNotes(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count notes: %w", err)
	}

	// The old vectors are dropped even for an empty store so the next insert
	// may establish a new dimensionality.
	if err := r.index.Reset(ctx); err != nil {
		return 0, fmt.Errorf("failed to reset index: %w", err)
	}

	if total == 0 {
		fmt.Fprintf(r.progress, "No notes found in database (0 notes)\n")
		return 0, nil
	}

	fmt.Fprintf(r.progress, "Starting reembedding of %d notes (batch size: %d)\n",
		total, r.iterator.batchSize)

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()

	err = r.iterator.ForEach(ctx, func(notes []*core.Note) error {
		if err := r.processor.Process(ctx, notes); err != nil {
			return fmt.Errorf("failed to process batch: %w", err)
		}
		tracker.Add(len(notes))
		return nil
	})
	if err != nil {
		return tracker.Current(), err
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reembedding complete. Processed %d notes in %v (%.1f notes/sec)\n",
		tracker.Current(), elapsed.Round(time.Millisecond), float64(tracker.Current())/elapsed.Seconds())

	return tracker.Current(), nil
}
