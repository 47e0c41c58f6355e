package search

import (
	"context"
	"log/slog"

	"github.com/poiesic/secondbrain/ai"
	"github.com/poiesic/secondbrain/core"
	"github.com/poiesic/secondbrain/index"
	"github.com/poiesic/secondbrain/storage"
)

// Result limits used when none are configured.
const (
	DefaultLimit = 5
	MaxLimit     = 100
)

// Searcher provides semantic search over notes.
type Searcher struct {
	notes        storage.NoteRepository
	index        *index.Index
	embedder     ai.Embedder
	defaultLimit int
	maxLimit     int
	minScore     float64
	logger       *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithLimits sets the result count used when a caller asks for 0 results and
// the upper bound requests are clamped to.
func WithLimits(defaultLimit, maxLimit int) Option {
	return func(s *Searcher) error {
		if defaultLimit < 1 || maxLimit < 1 || defaultLimit > maxLimit {
			return ErrInvalidLimits
		}
		s.defaultLimit = defaultLimit
		s.maxLimit = maxLimit
		return nil
	}
}

// WithMinScore drops results scoring below minScore. Scores lie in [0,1].
func WithMinScore(minScore float64) Option {
	return func(s *Searcher) error {
		if minScore < 0 || minScore > 1 {
			return core.NewValidationError("minScore", "must be between 0 and 1")
		}
		s.minScore = minScore
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(
	notes storage.NoteRepository,
	ix *index.Index,
	embedder ai.Embedder,
	opts ...Option,
) (*Searcher, error) {
	if notes == nil {
		return nil, ErrNoteRepositoryRequired
	}
	if ix == nil {
		return nil, ErrIndexRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	s := &Searcher{
		notes:        notes,
		index:        ix,
		embedder:     embedder,
		defaultLimit: DefaultLimit,
		maxLimit:     MaxLimit,
		logger:       slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "searcher")

	return s, nil
}

// FindSimilar returns up to k notes most similar to query, best first.
// k == 0 selects the default limit; k above the maximum limit is lowered to
// it, so at most the maximum number of results is returned.
// See FindSimilarWithMonitor.
func (s *Searcher) FindSimilar(ctx context.Context, query string, k int) ([]*core.SearchResult, error) {
	return s.FindSimilarWithMonitor(ctx, query, k, nil)
}

// FindSimilarWithMonitor searches for notes similar to the query with monitoring.
// The monitor receives callbacks at each stage of the search process.
//
// k == 0 selects the default limit and k above the maximum is clamped; a
// negative k is a validation error. A blank query returns an empty result
// without calling the embedder.
func (s *Searcher) FindSimilarWithMonitor(ctx context.Context, query string, k int, monitor SearchMonitor) ([]*core.SearchResult, error) {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	limit, err := s.limit(k)
	if err != nil {
		return nil, err
	}
	monitor.Start(query, limit)

	if core.IsBlank(query) {
		results := []*core.SearchResult{}
		monitor.Finish(results)
		return results, nil
	}

	// 1. Embed the query
	embedding, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}
	monitor.AfterEmbedding(len(embedding))

	// 2. Rank indexed vectors
	matches, err := s.index.Query(ctx, embedding, limit)
	if err != nil {
		s.logger.Error("error querying for similar notes", "err", err)
		return nil, err
	}
	monitor.AfterVectorQuery(matches)

	if len(matches) == 0 {
		results := []*core.SearchResult{}
		monitor.Finish(results)
		return results, nil
	}

	// 3. Join with the metadata store, keeping index order
	ids := make([]core.ID, len(matches))
	for i, match := range matches {
		ids[i] = match.NoteId
	}
	notes, err := s.notes.GetNotes(ctx, ids...)
	if err != nil {
		s.logger.Error("error retrieving notes", "noteCount", len(ids), "err", err)
		return nil, err
	}

	results := make([]*core.SearchResult, 0, len(matches))
	for _, match := range matches {
		if match.Score < s.minScore {
			break
		}
		note, ok := notes[match.NoteId]
		if !ok {
			// Deletes drop the vector before the note, so an id that has
			// left the index was deleted after it was ranked.
			if !s.index.Contains(match.NoteId) {
				s.logger.Debug("skipping note deleted during search", "id", match.NoteId)
				continue
			}
			s.logger.Warn("skipping search hit",
				"err", &core.ConsistencyError{Id: match.NoteId, Detail: "has a vector but no note"})
			monitor.MissingNote(match.NoteId)
			continue
		}
		results = append(results, &core.SearchResult{Note: note, Score: match.Score})
	}
	monitor.Finish(results)

	return results, nil
}

func (s *Searcher) limit(k int) (int, error) {
	switch {
	case k < 0:
		return 0, core.NewValidationError("k", "cannot be negative")
	case k == 0:
		return s.defaultLimit, nil
	case k > s.maxLimit:
		return s.maxLimit, nil
	}
	return k, nil
}
