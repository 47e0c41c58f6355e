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

package secondbrain

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/poiesic/secondbrain/ai"
	"github.com/poiesic/secondbrain/ai/hashing"
	"github.com/poiesic/secondbrain/ai/openai"
	"github.com/poiesic/secondbrain/core"
	"github.com/poiesic/secondbrain/index"
	"github.com/poiesic/secondbrain/ingestion"
	"github.com/poiesic/secondbrain/reembed"
	"github.com/poiesic/secondbrain/search"
	"github.com/poiesic/secondbrain/storage/badger"
)

// Store is the contract offered to front ends: add a note, find notes.
type Store interface {
	AddNote(ctx context.Context, input core.NoteInput) (core.ID, error)
	Search(ctx context.Context, query string, k int) ([]*core.SearchResult, error)
}

var _ Store = (*Database)(nil)

// Database is a knowledge store rooted at one data directory.
type Database struct {
	repos    *badger.Repositories
	index    *index.Index
	provider ai.AIProvider
	embedder ai.Embedder
	pipeline *ingestion.Pipeline
	searcher *search.Searcher
	logger   *slog.Logger
}

// Stats summarizes the contents of a Database.
type Stats struct {
	Identity   uuid.UUID
	Notes      int
	Vectors    int
	Dimensions int
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig        *ai.Config
	embedder        ai.Embedder
	logger          *slog.Logger
	searchOpts      []search.Option
	ingestionOpts   []ingestion.Option
	reconcileOnOpen bool
	inMemory        bool
}

// WithAIConfig selects the embedder. An empty EmbeddingHost selects the
// offline hashing embedder.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.aiConfig = config
	}
}

// WithEmbedder uses embedder instead of building one from the AI config.
// The caller keeps ownership of it.
func WithEmbedder(embedder ai.Embedder) DatabaseOption {
	return func(o *databaseOptions) {
		o.embedder = embedder
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) DatabaseOption {
	return func(o *databaseOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithSearchLimits sets the default and maximum number of search results.
func WithSearchLimits(defaultLimit, maxLimit int) DatabaseOption {
	return func(o *databaseOptions) {
		o.searchOpts = append(o.searchOpts, search.WithLimits(defaultLimit, maxLimit))
	}
}

// WithMinScore drops search results scoring below minScore.
func WithMinScore(minScore float64) DatabaseOption {
	return func(o *databaseOptions) {
		o.searchOpts = append(o.searchOpts, search.WithMinScore(minScore))
	}
}

// WithPoolSize sets the number of concurrent embedding workers used by imports.
func WithPoolSize(size int) DatabaseOption {
	return func(o *databaseOptions) {
		o.ingestionOpts = append(o.ingestionOpts, ingestion.WithPoolSize(size))
	}
}

// WithReconcileOnOpen controls whether Open repairs the two stores before
// returning. Default is true.
func WithReconcileOnOpen(enabled bool) DatabaseOption {
	return func(o *databaseOptions) {
		o.reconcileOnOpen = enabled
	}
}

// WithInMemory keeps both stores in memory. The directory is ignored.
func WithInMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// Open opens (or creates) the knowledge store in dir.
func Open(ctx context.Context, dir string, opts ...DatabaseOption) (*Database, error) {
	// Apply options
	options := &databaseOptions{
		aiConfig:        ai.DefaultConfig(),
		logger:          slog.Default(),
		reconcileOnOpen: true,
	}
	for _, opt := range opts {
		opt(options)
	}
	logger := options.logger

	var (
		repos *badger.Repositories
		err   error
	)
	if options.inMemory {
		repos, err = badger.NewMemoryRepositories()
	} else {
		repos, err = badger.OpenRepositories(dir, logger)
	}
	if err != nil {
		return nil, err
	}

	ix, err := index.Open(ctx, repos.Vectors, index.WithLogger(logger))
	if err != nil {
		repos.Close()
		return nil, err
	}

	db := &Database{
		repos:  repos,
		index:  ix,
		logger: logger.With("component", "database"),
	}

	db.embedder = options.embedder
	if db.embedder == nil {
		provider, err := newProvider(options.aiConfig)
		if err != nil {
			repos.Close()
			return nil, err
		}
		db.provider = provider
		db.embedder = provider.Embedder()
	}

	if want, have := db.embedder.Dimensions(), ix.Dimensions(); want > 0 && have > 0 && want != have {
		db.logger.Warn("embedder and index dimensions differ, searches will fail until the index is rebuilt with reembed",
			"embedder", want, "index", have)
	}

	ingestionOpts := append([]ingestion.Option{ingestion.WithLogger(logger)}, options.ingestionOpts...)
	db.pipeline, err = ingestion.NewPipeline(repos.Notes, ix, db.embedder, ingestionOpts...)
	if err != nil {
		db.Close()
		return nil, err
	}

	searchOpts := append([]search.Option{search.WithLogger(logger)}, options.searchOpts...)
	db.searcher, err = search.NewSearcher(repos.Notes, ix, db.embedder, searchOpts...)
	if err != nil {
		db.Close()
		return nil, err
	}

	if options.reconcileOnOpen {
		report, err := db.pipeline.Reconcile(ctx)
		switch {
		case err != nil:
			db.logger.Warn("reconciliation on open failed", "err", err)
		case report.Repairs() > 0:
			db.logger.Info("reconciled stores on open",
				"orphanVectors", report.OrphanVectorsRemoved,
				"rebuilt", report.VectorsRebuilt,
				"refreshed", report.StaleVectorsRefreshed)
		}
	}

	return db, nil
}

func newProvider(config *ai.Config) (ai.AIProvider, error) {
	if config == nil {
		config = ai.DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.Remote() {
		return openai.NewProvider(config)
	}
	return hashing.NewProvider(config)
}

// Close releases the pipeline, the embedder and both stores.
func (db *Database) Close() error {
	var errs []error
	if db.pipeline != nil {
		db.pipeline.Release()
	}
	if db.provider != nil {
		if err := db.provider.Close(); err != nil {
			db.logger.Error("error closing AI provider", "err", err)
			errs = append(errs, err)
		}
	}
	if err := db.repos.Close(); err != nil {
		db.logger.Error("error closing repositories", "err", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// AddNote stores a new note and returns its id.
func (db *Database) AddNote(ctx context.Context, input core.NoteInput) (core.ID, error) {
	return db.pipeline.AddNote(ctx, input)
}

// ImportNotes stores inputs in order and returns their ids.
func (db *Database) ImportNotes(ctx context.Context, inputs []core.NoteInput) ([]core.ID, error) {
	return db.pipeline.ImportNotes(ctx, inputs)
}

// Search returns up to k notes most similar to query, best first.
func (db *Database) Search(ctx context.Context, query string, k int) ([]*core.SearchResult, error) {
	return db.searcher.FindSimilar(ctx, query, k)
}

// SearchWithMonitor is Search with stage callbacks.
func (db *Database) SearchWithMonitor(ctx context.Context, query string, k int, monitor search.SearchMonitor) ([]*core.SearchResult, error) {
	return db.searcher.FindSimilarWithMonitor(ctx, query, k, monitor)
}

// GetNote returns the note with id.
func (db *Database) GetNote(ctx context.Context, id core.ID) (*core.Note, error) {
	return db.repos.Notes.GetNote(ctx, id)
}

// DeleteNote removes a note and its vector.
func (db *Database) DeleteNote(ctx context.Context, id core.ID) error {
	return db.pipeline.DeleteNote(ctx, id)
}

// RecentNotes returns up to limit notes, newest first.
func (db *Database) RecentNotes(ctx context.Context, limit int) ([]*core.Note, error) {
	return db.repos.Notes.GetRecentNotes(ctx, limit)
}

// NotesByTag returns the notes carrying tag. The tag is normalized first.
func (db *Database) NotesByTag(ctx context.Context, tag string) ([]*core.Note, error) {
	normalized := core.NormalizeTags([]string{tag})
	if len(normalized) == 0 {
		return nil, core.NewValidationError("tag", "cannot be empty")
	}
	return db.repos.Notes.GetNotesByTag(ctx, normalized[0])
}

// Reconcile repairs disagreements between the metadata store and the index.
func (db *Database) Reconcile(ctx context.Context) (*ingestion.ReconcileReport, error) {
	return db.pipeline.Reconcile(ctx)
}

// Reembed rebuilds the whole index with the current embedder, writing
// progress to progress. A nil config selects reembed.DefaultConfig().
func (db *Database) Reembed(ctx context.Context, config *reembed.Config, progress io.Writer) (int, error) {
	r, err := reembed.NewReembedder(db.repos.Notes, db.index, db.pipeline, db.embedder, config, progress)
	if err != nil {
		return 0, err
	}
	return r.Run(ctx)
}

// Stats counts notes and vectors.
func (db *Database) Stats(ctx context.Context) (*Stats, error) {
	notes, err := db.repos.Notes.CountNotes(ctx)
	if err != nil {
		return nil, err
	}
	return &Stats{
		Identity:   db.repos.Identity,
		Notes:      notes,
		Vectors:    db.index.Len(),
		Dimensions: db.index.Dimensions(),
	}, nil
}
