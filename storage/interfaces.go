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

package storage

import (
	"context"

	"github.com/poiesic/secondbrain/core"
)

// NoteVisitor is called for each note during iteration.
// Returning an error stops the iteration and the error is returned to the caller.
type NoteVisitor func(note *core.Note) error

// VectorVisitor is called for each vector record during iteration.
type VectorVisitor func(record *core.VectorRecord) error

// NoteRepository is the metadata store: durable note records keyed by id.
// Implementations must be thread-safe.
type NoteRepository interface {
	// NextID returns a fresh note id. IDs are monotonic, never zero,
	// and never handed out twice, even across restarts.
	NextID(ctx context.Context) (core.ID, error)

	// AddNote stores a note under its id.
	// Returns ErrDuplicateKey if the id already exists.
	AddNote(ctx context.Context, note *core.Note) error

	// GetNote retrieves a single note by ID.
	// Returns ErrNotFound if the note doesn't exist.
	GetNote(ctx context.Context, id core.ID) (*core.Note, error)

	// GetNotes retrieves multiple notes by their IDs.
	// Missing ids are omitted from the result (no error).
	GetNotes(ctx context.Context, ids ...core.ID) (map[core.ID]*core.Note, error)

	// DeleteNote removes a note and its secondary indices.
	// Returns ErrNotFound if the note doesn't exist.
	DeleteNote(ctx context.Context, id core.ID) error

	// ForEachNote visits every note in ascending id order, reading batchSize
	// notes per transaction.
	ForEachNote(ctx context.Context, batchSize int, fn NoteVisitor) error

	// GetRecentNotes returns up to limit notes, newest first.
	GetRecentNotes(ctx context.Context, limit int) ([]*core.Note, error)

	// GetNotesByTag returns the notes carrying tag, in ascending id order.
	GetNotesByTag(ctx context.Context, tag string) ([]*core.Note, error)

	// CountNotes returns the number of stored notes.
	CountNotes(ctx context.Context) (int, error)

	// Close releases the underlying resources.
	Close() error
}

// VectorRepository persists the vector index. All vectors in one repository
// share a single dimensionality, recorded on the first insert.
type VectorRepository interface {
	// AddVector stores a vector record.
	// Returns ErrDuplicateKey if the id exists and core.ErrDimensionMismatch
	// if the length differs from the recorded dimensionality.
	AddVector(ctx context.Context, record *core.VectorRecord) error

	// GetVector returns the record for id or ErrNotFound.
	GetVector(ctx context.Context, id core.ID) (*core.VectorRecord, error)

	// DeleteVector removes a record. Returns ErrNotFound if it doesn't exist.
	DeleteVector(ctx context.Context, id core.ID) error

	// ForEachVector visits every record in ascending id order.
	ForEachVector(ctx context.Context, fn VectorVisitor) error

	// Dimensions returns the recorded dimensionality, 0 when empty.
	Dimensions(ctx context.Context) (int, error)

	// CountVectors returns the number of stored vectors.
	CountVectors(ctx context.Context) (int, error)

	// Reset removes every vector and forgets the dimensionality.
	Reset(ctx context.Context) error

	// Close releases the underlying resources.
	Close() error
}
