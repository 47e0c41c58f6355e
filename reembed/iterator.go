package reembed

import (
	"context"

	"github.com/poiesic/secondbrain/core"
	"github.com/poiesic/secondbrain/storage"
)

const (
	// DefaultBatchSize is the default number of notes processed per batch
	DefaultBatchSize = 100
)

// NoteIterator walks every note in id order and hands them out in batches.
type NoteIterator struct {
	repo      storage.NoteRepository
	batchSize int
}

// NewNoteIterator creates a new note iterator.
// batchSize: number of notes per batch; values <= 0 select DefaultBatchSize
func NewNoteIterator(repo storage.NoteRepository, batchSize int) *NoteIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &NoteIterator{
		repo:      repo,
		batchSize: batchSize,
	}
}

// ForEach calls fn with consecutive batches of notes. Every batch except the
// last holds exactly batchSize notes. Iteration stops on the first error from
// fn or on context cancellation.
func (it *NoteIterator) ForEach(ctx context.Context, fn func([]*core.Note) error) error {
	batch := make([]*core.Note, 0, it.batchSize)
	err := it.repo.ForEachNote(ctx, it.batchSize, func(note *core.Note) error {
		batch = append(batch, note)
		if len(batch) < it.batchSize {
			return nil
		}
		if err := fn(batch); err != nil {
			return err
		}
		batch = make([]*core.Note, 0, it.batchSize)
		return ctx.Err()
	})
	if err != nil {
		return err
	}

	if len(batch) == 0 {
		return nil
	}
	return fn(batch)
}
