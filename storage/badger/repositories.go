package badger

import (
	"errors"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"
)

// Directory names of the two durable artifacts under a data directory.
const (
	NotesDir   = "notes"
	VectorsDir = "vectors"
)

// Repositories bundles the metadata store and the vector store of one
// knowledge store together with the backends that own their files.
type Repositories struct {
	Notes    *NoteRepository
	Vectors  *VectorRepository
	Identity uuid.UUID

	noteBackend   *Backend
	vectorBackend *Backend
}

// OpenRepositories opens (or creates) both stores below dir.
func OpenRepositories(dir string, logger *slog.Logger) (*Repositories, error) {
	return openRepositories(dir, false, logger)
}

func openRepositories(dir string, inMemory bool, logger *slog.Logger) (*Repositories, error) {
	if logger == nil {
		logger = slog.Default()
	}

	notePath, vectorPath := "", ""
	if !inMemory {
		notePath = filepath.Join(dir, NotesDir)
		vectorPath = filepath.Join(dir, VectorsDir)
	}

	noteBackend, err := OpenBackend(notePath, inMemory, WithBackendLogger(logger))
	if err != nil {
		return nil, err
	}
	vectorBackend, err := OpenBackend(vectorPath, inMemory, WithBackendLogger(logger))
	if err != nil {
		noteBackend.Close()
		return nil, err
	}

	id, err := bindIdentity(noteBackend, vectorBackend)
	if err != nil {
		vectorBackend.Close()
		noteBackend.Close()
		return nil, err
	}

	notes, err := NewNoteRepository(noteBackend)
	if err != nil {
		vectorBackend.Close()
		noteBackend.Close()
		return nil, err
	}
	vectors, err := NewVectorRepository(vectorBackend)
	if err != nil {
		notes.Close()
		vectorBackend.Close()
		noteBackend.Close()
		return nil, err
	}

	return &Repositories{
		Notes:         notes,
		Vectors:       vectors,
		Identity:      id,
		noteBackend:   noteBackend,
		vectorBackend: vectorBackend,
	}, nil
}

// Close releases the repositories and closes both backends.
func (r *Repositories) Close() error {
	return errors.Join(
		r.Notes.Close(),
		r.Vectors.Close(),
		r.noteBackend.Close(),
		r.vectorBackend.Close(),
	)
}
