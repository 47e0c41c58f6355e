package search

import (
	"log/slog"

	"github.com/poiesic/secondbrain/core"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string, limit int)
	AfterEmbedding(dimensions int)
	AfterVectorQuery(matches []core.SimilarityMatch)
	MissingNote(id core.ID)
	Finish(results []*core.SearchResult)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string, _ int)                     {}
func (n *noopMonitor) AfterEmbedding(_ int)                      {}
func (n *noopMonitor) AfterVectorQuery(_ []core.SimilarityMatch) {}
func (n *noopMonitor) MissingNote(_ core.ID)                     {}
func (n *noopMonitor) Finish(_ []*core.SearchResult)             {}

// LogMonitor writes every search step to a logger at debug level.
type LogMonitor struct {
	Logger *slog.Logger
}

var _ SearchMonitor = (*LogMonitor)(nil)

func (m *LogMonitor) logger() *slog.Logger {
	if m.Logger == nil {
		return slog.Default()
	}
	return m.Logger
}

func (m *LogMonitor) Start(query string, limit int) {
	m.logger().Debug("search started", "query", query, "limit", limit)
}

func (m *LogMonitor) AfterEmbedding(dimensions int) {
	m.logger().Debug("query embedded", "dimensions", dimensions)
}

func (m *LogMonitor) AfterVectorQuery(matches []core.SimilarityMatch) {
	for i, match := range matches {
		m.logger().Debug("vector match", "rank", i+1, "id", match.NoteId, "score", match.Score)
	}
}

func (m *LogMonitor) MissingNote(id core.ID) {
	m.logger().Debug("ranked note missing from metadata store", "id", id)
}

func (m *LogMonitor) Finish(results []*core.SearchResult) {
	m.logger().Debug("search finished", "results", len(results))
}
