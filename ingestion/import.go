package ingestion

import (
	"context"
	"errors"
	"fmt"

	"github.com/poiesic/secondbrain/core"
)

// ImportNotes adds many notes at once and returns their ids in input order.
//
// Every input is validated before anything is embedded; a validation error
// names the offending position, for example "notes[2].problem". Embedding
// runs concurrently on the worker pool. Writes then happen one note at a time
// under the writer lock, each with the same guarantees as AddNote. The first
// write failure stops the import and the ids written so far are returned with
// the error.
func (p *Pipeline) ImportNotes(ctx context.Context, inputs []core.NoteInput) ([]core.ID, error) {
	texts := make([]string, len(inputs))
	for i := range inputs {
		if err := core.ValidateNoteInput(&inputs[i]); err != nil {
			var verr *core.ValidationError
			if errors.As(err, &verr) {
				return nil, core.NewValidationError(fmt.Sprintf("notes[%d].%s", i, verr.Field), verr.Reason)
			}
			return nil, err
		}
		texts[i] = inputs[i].CanonicalText()
	}
	if len(inputs) == 0 {
		return []core.ID{}, nil
	}

	p.logger.Info("importing notes", "count", len(inputs))
	vectors, err := p.embedAll(ctx, texts)
	if err != nil {
		return nil, err
	}

	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	ids := make([]core.ID, 0, len(inputs))
	for i := range inputs {
		id, err := p.store(ctx, &inputs[i], vectors[i], core.Fingerprint(texts[i]))
		if err != nil {
			p.logger.Error("import stopped", "position", i, "imported", len(ids), "err", err)
			return ids, fmt.Errorf("notes[%d]: %w", i, err)
		}
		ids = append(ids, id)
	}

	p.logger.Info("imported notes", "count", len(ids))
	return ids, nil
}
