package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/secondbrain/ai"
	"github.com/poiesic/secondbrain/core"
	"github.com/poiesic/secondbrain/index"
	"github.com/poiesic/secondbrain/storage"
)

// Pipeline orchestrates writes to the metadata store and the vector index.
// All writes are serialized by a single writer lock. Embedding happens
// before the lock is taken so a slow model does not block other writers.
type Pipeline struct {
	notes         storage.NoteRepository
	index         *index.Index
	embedder      ai.Embedder
	embeddingPool *ants.Pool
	writeMu       sync.Mutex
	now           func() time.Time
	logger        *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent embedding during
// imports. Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}

		if p.embeddingPool != nil {
			p.embeddingPool.Release()
		}
		p.embeddingPool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithClock overrides the source of note creation times.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) error {
		if now != nil {
			p.now = now
		}
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	notes storage.NoteRepository,
	ix *index.Index,
	embedder ai.Embedder,
	opts ...Option,
) (*Pipeline, error) {
	if notes == nil {
		return nil, ErrNoteRepositoryRequired
	}
	if ix == nil {
		return nil, ErrIndexRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	// Default pool size
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	embeddingPool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		notes:         notes,
		index:         ix,
		embedder:      embedder,
		embeddingPool: embeddingPool,
		now:           time.Now,
		logger:        slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}
	p.logger = p.logger.With("component", "ingestion")

	return p, nil
}

// AddNote validates input, embeds it and stores the note together with its
// vector. It returns the id of the new note.
//
// A validation failure writes nothing. A failure of the vector write rolls
// back the note; if the rollback fails too, the orphan is logged and left for
// Reconcile.
func (p *Pipeline) AddNote(ctx context.Context, input core.NoteInput) (core.ID, error) {
	if err := core.ValidateNoteInput(&input); err != nil {
		return 0, err
	}

	text := input.CanonicalText()
	vector, err := p.embedder.EmbedText(ctx, text)
	if err != nil {
		p.logger.Error("failed to embed note", "err", err)
		return 0, fmt.Errorf("embedding note: %w", err)
	}

	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	return p.store(ctx, &input, vector, core.Fingerprint(text))
}

// DeleteNote removes a note and its vector. The vector goes first so that a
// concurrent search never ranks an id whose note is already gone.
// Returns storage.ErrNotFound if the note does not exist.
func (p *Pipeline) DeleteNote(ctx context.Context, id core.ID) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	if _, err := p.notes.GetNote(ctx, id); err != nil {
		return err
	}
	if err := p.index.Delete(ctx, id); err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return err
		}
		p.logger.Warn("deleting note without a vector", "id", id)
	}
	if err := p.notes.DeleteNote(ctx, id); err != nil {
		return err
	}
	p.logger.Debug("note deleted", "id", id)
	return nil
}

// WithWriteLock runs fn while holding the writer lock. No note can be added
// or deleted until fn returns.
func (p *Pipeline) WithWriteLock(fn func() error) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	return fn()
}

// Release releases resources including the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.embeddingPool != nil {
		p.embeddingPool.Release()
	}
}

// store writes a validated note and its vector. Callers hold writeMu.
func (p *Pipeline) store(ctx context.Context, input *core.NoteInput, vector []float32, fingerprint uint64) (core.ID, error) {
	if dims := p.index.Dimensions(); dims != 0 && dims != len(vector) {
		return 0, fmt.Errorf("%w: embedder produced %d, index holds %d",
			core.ErrDimensionMismatch, len(vector), dims)
	}

	id, err := p.notes.NextID(ctx)
	if err != nil {
		return 0, err
	}

	note := &core.Note{
		Id:          id,
		Problem:     input.Problem,
		Solution:    input.Solution,
		Explanation: input.Explanation,
		Tags:        core.NormalizeTags(input.Tags),
		CreatedAt:   p.now().UTC().Truncate(time.Microsecond),
	}
	if err := p.notes.AddNote(ctx, note); err != nil {
		return 0, err
	}

	record := &core.VectorRecord{Id: id, Fingerprint: fingerprint, Vector: vector}
	if err := p.index.InsertRecord(ctx, record); err != nil {
		p.rollback(ctx, id, err)
		return 0, err
	}

	p.logger.Debug("note added", "id", id, "tags", len(note.Tags))
	return id, nil
}

// rollback removes a note whose vector could not be written.
func (p *Pipeline) rollback(ctx context.Context, id core.ID, cause error) {
	if err := p.notes.DeleteNote(context.WithoutCancel(ctx), id); err != nil {
		p.logger.Error("failed to roll back note, reconcile will repair it",
			"id", id, "cause", cause, "err", err)
		return
	}
	p.logger.Warn("rolled back note after vector write failed", "id", id, "err", cause)
}
