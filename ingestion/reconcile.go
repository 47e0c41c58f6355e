package ingestion

import (
	"context"
	"fmt"

	"github.com/poiesic/secondbrain/core"
)

// ReconcileReport counts the repairs made by Reconcile.
type ReconcileReport struct {
	// OrphanVectorsRemoved counts vectors whose note no longer exists.
	OrphanVectorsRemoved int
	// VectorsRebuilt counts notes that had no vector and were re-embedded.
	VectorsRebuilt int
	// StaleVectorsRefreshed counts vectors computed from different note text.
	StaleVectorsRefreshed int
}

// Repairs returns the total number of repairs.
func (r *ReconcileReport) Repairs() int {
	return r.OrphanVectorsRemoved + r.VectorsRebuilt + r.StaleVectorsRefreshed
}

// Reconcile brings the vector index back in line with the metadata store,
// which is authoritative:
//   - vectors without a note are deleted
//   - notes without a vector are embedded and indexed
//   - vectors whose fingerprint does not match the note text are replaced
//
// Notes are never deleted. If a note cannot be embedded, Reconcile stops and
// returns the error together with the repairs made so far; the note stays
// out of search results until a later pass succeeds.
func (p *Pipeline) Reconcile(ctx context.Context) (*ReconcileReport, error) {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	report := &ReconcileReport{}
	seen := make(map[core.ID]struct{})
	var missing, stale []*core.Note

	err := p.notes.ForEachNote(ctx, 0, func(note *core.Note) error {
		seen[note.Id] = struct{}{}
		fingerprint, ok := p.index.Fingerprint(note.Id)
		switch {
		case !ok:
			missing = append(missing, note)
		case fingerprint != core.Fingerprint(note.CanonicalText()):
			stale = append(stale, note)
		}
		return nil
	})
	if err != nil {
		return report, err
	}

	for _, id := range p.index.IDs() {
		if _, ok := seen[id]; ok {
			continue
		}
		p.logger.Warn("removing orphan vector", "id", id,
			"err", &core.ConsistencyError{Id: id, Detail: "has a vector but no note"})
		if err := p.index.Delete(ctx, id); err != nil {
			return report, err
		}
		report.OrphanVectorsRemoved++
	}

	for _, note := range missing {
		p.logger.Warn("rebuilding missing vector", "id", note.Id,
			"err", &core.ConsistencyError{Id: note.Id, Detail: "has no vector"})
		if err := p.reindex(ctx, note); err != nil {
			return report, err
		}
		report.VectorsRebuilt++
	}

	for _, note := range stale {
		p.logger.Warn("refreshing stale vector", "id", note.Id)
		if err := p.index.Delete(ctx, note.Id); err != nil {
			return report, err
		}
		if err := p.reindex(ctx, note); err != nil {
			return report, err
		}
		report.StaleVectorsRefreshed++
	}

	if report.Repairs() > 0 {
		p.logger.Info("reconciled stores",
			"orphanVectors", report.OrphanVectorsRemoved,
			"rebuilt", report.VectorsRebuilt,
			"refreshed", report.StaleVectorsRefreshed)
	}
	return report, nil
}

// reindex embeds note and inserts its vector. Callers hold writeMu.
func (p *Pipeline) reindex(ctx context.Context, note *core.Note) error {
	text := note.CanonicalText()
	vector, err := p.embedder.EmbedText(ctx, text)
	if err != nil {
		return fmt.Errorf("embedding note %d: %w", note.Id, err)
	}
	return p.index.InsertRecord(ctx, &core.VectorRecord{
		Id:          note.Id,
		Fingerprint: core.Fingerprint(text),
		Vector:      vector,
	})
}
