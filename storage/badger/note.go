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

package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/secondbrain/core"
	"github.com/poiesic/secondbrain/storage"
)

const defaultIterationBatchSize = 256

// NoteRepository implements storage.NoteRepository using BadgerDB.
type NoteRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.NoteRepository = (*NoteRepository)(nil)

// NewNoteRepository creates a new NoteRepository.
func NewNoteRepository(backend *Backend) (*NoteRepository, error) {
	idSeq, err := backend.GetSequence(noteIDSeq)
	if err != nil {
		return nil, storage.Wrap(err)
	}

	return &NoteRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence. Unused leased ids are returned to the
// sequence; ids leased before a crash are skipped, never reused.
func (r *NoteRepository) Close() error {
	return r.idSeq.Release()
}

// NextID returns the next note id from the sequence.
func (r *NoteRepository) NextID(ctx context.Context) (core.ID, error) {
	nextID, err := r.idSeq.Next()
	if err != nil {
		return 0, storage.Wrap(err)
	}
	// BadgerDB sequences return 0 on first call, so we skip it
	if nextID == 0 {
		nextID, err = r.idSeq.Next()
		if err != nil {
			return 0, storage.Wrap(err)
		}
	}
	return core.ID(nextID), nil
}

// AddNote stores a note and its date and tag index entries.
func (r *NoteRepository) AddNote(ctx context.Context, note *core.Note) error {
	if note == nil || note.Id == 0 {
		return fmt.Errorf("%w: note id must be assigned", storage.ErrInvalidQuery)
	}
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeNoteKey(note.Id)
		existing, err := readNote(tx, key)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: note %d", storage.ErrDuplicateKey, note.Id)
		}

		if err := tx.Set(key, storage.MarshalNote(note)); err != nil {
			return err
		}

		dateKey := makeNoteDateKey(note.CreatedAt, note.Id)
		if err := tx.Set(dateKey, storage.MarshalID(note.Id)); err != nil {
			return err
		}

		for _, tag := range note.Tags {
			if err := tx.Set(makeNoteTagKey(tag, note.Id), nil); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	return storage.Wrap(err)
}

// GetNote retrieves a single note by ID.
func (r *NoteRepository) GetNote(ctx context.Context, id core.ID) (*core.Note, error) {
	var result *core.Note
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readNote(tx, makeNoteKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return fmt.Errorf("%w: note %d", storage.ErrNotFound, id)
		}
		return nil
	}, false)
	if err != nil {
		return nil, storage.Wrap(err)
	}
	return result, nil
}

// GetNotes retrieves multiple notes in one read transaction.
func (r *NoteRepository) GetNotes(ctx context.Context, ids ...core.ID) (map[core.ID]*core.Note, error) {
	result := make(map[core.ID]*core.Note, len(ids))
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			note, err := readNote(tx, makeNoteKey(id))
			if err != nil {
				return err
			}
			if note != nil {
				result[id] = note
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, storage.Wrap(err)
	}
	return result, nil
}

// DeleteNote removes a note and its index entries.
func (r *NoteRepository) DeleteNote(ctx context.Context, id core.ID) error {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeNoteKey(id)

		// Read note to get metadata for index cleanup
		note, err := readNote(tx, key)
		if err != nil {
			return err
		}
		if note == nil {
			return fmt.Errorf("%w: note %d", storage.ErrNotFound, id)
		}

		if err := tx.Delete(makeNoteDateKey(note.CreatedAt, note.Id)); err != nil {
			return err
		}
		for _, tag := range note.Tags {
			if err := tx.Delete(makeNoteTagKey(tag, note.Id)); err != nil {
				return err
			}
		}
		if err := tx.Delete(key); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	return storage.Wrap(err)
}

// ForEachNote visits all notes in id order. Each batch is read in its own
// transaction and fn runs outside of it, so fn may write to the store.
func (r *NoteRepository) ForEachNote(ctx context.Context, batchSize int, fn storage.NoteVisitor) error {
	if batchSize <= 0 {
		batchSize = defaultIterationBatchSize
	}

	var cursor []byte
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		batch, next, err := r.readNoteBatch(cursor, batchSize)
		if err != nil {
			return storage.Wrap(err)
		}
		for _, note := range batch {
			if err := fn(note); err != nil {
				return err
			}
		}
		if next == nil {
			return nil
		}
		cursor = next
	}
}

// readNoteBatch reads up to limit notes starting at cursor (inclusive).
// Returns the key to resume from, or nil when the prefix is exhausted.
func (r *NoteRepository) readNoteBatch(cursor []byte, limit int) ([]*core.Note, []byte, error) {
	var (
		batch []*core.Note
		next  []byte
	)
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(notePrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		start := cursor
		if start == nil {
			start = []byte(notePrefix)
		}
		for iter.Seek(start); iter.Valid(); iter.Next() {
			item := iter.Item()
			if len(batch) == limit {
				next = item.KeyCopy(nil)
				return nil
			}
			var note *core.Note
			if err := item.Value(func(val []byte) error {
				var err error
				note, err = storage.UnmarshalNote(val)
				return err
			}); err != nil {
				return err
			}
			batch = append(batch, note)
		}
		return nil
	}, false)
	return batch, next, err
}

// GetRecentNotes retrieves the most recent notes, newest first.
func (r *NoteRepository) GetRecentNotes(ctx context.Context, limit int) ([]*core.Note, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", storage.ErrInvalidQuery)
	}

	var results []*core.Note
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		iter := tx.NewIterator(opts)
		defer iter.Close()

		// Seek to the last possible key of the date index
		startKey := makePartialNoteDateKey(time.Date(9999, 12, 31, 23, 59, 59, 999999999, time.UTC))
		prefix := []byte(noteDatePrefix)

		for iter.Seek(startKey); iter.ValidForPrefix(prefix) && len(results) < limit; iter.Next() {
			var noteID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				noteID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			note, err := readNote(tx, makeNoteKey(noteID))
			if err != nil {
				return err
			}
			if note != nil {
				results = append(results, note)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, storage.Wrap(err)
	}
	return results, nil
}

// GetNotesByTag returns the notes carrying tag, in ascending id order.
func (r *NoteRepository) GetNotesByTag(ctx context.Context, tag string) ([]*core.Note, error) {
	var results []*core.Note
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := makePartialNoteTagKey(tag)
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(prefix); iter.ValidForPrefix(prefix); iter.Next() {
			note, err := readNote(tx, makeNoteKey(idFromKey(iter.Item().Key())))
			if err != nil {
				return err
			}
			if note != nil {
				results = append(results, note)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, storage.Wrap(err)
	}
	return results, nil
}

// CountNotes counts the primary note keys.
func (r *NoteRepository) CountNotes(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		count = countPrefix(tx, []byte(notePrefix))
		return nil
	}, false)
	return count, storage.Wrap(err)
}

// readNote reads a note from a transaction.
// Returns nil, nil if the note doesn't exist.
func readNote(tx *badger.Txn, key []byte) (*core.Note, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var note *core.Note
	err = item.Value(func(val []byte) error {
		var err error
		note, err = storage.UnmarshalNote(val)
		return err
	})
	return note, err
}

// countPrefix counts keys under prefix without fetching values.
func countPrefix(tx *badger.Txn, prefix []byte) int {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = prefix
	iter := tx.NewIterator(opts)
	defer iter.Close()

	count := 0
	for iter.Seek(prefix); iter.ValidForPrefix(prefix); iter.Next() {
		count++
	}
	return count
}
