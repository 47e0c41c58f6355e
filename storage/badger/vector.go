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

	"github.com/dgraph-io/badger/v4"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/secondbrain/core"
	"github.com/poiesic/secondbrain/storage"
)

// VectorRepository implements storage.VectorRepository using BadgerDB.
// The dimensionality is stored under its own key and checked inside the
// same transaction as every insert.
type VectorRepository struct {
	backend *Backend
}

var _ storage.VectorRepository = (*VectorRepository)(nil)

// NewVectorRepository creates a new VectorRepository.
func NewVectorRepository(backend *Backend) (*VectorRepository, error) {
	return &VectorRepository{backend: backend}, nil
}

// Close is a no-op; the backend is owned by the caller.
func (r *VectorRepository) Close() error {
	return nil
}

// AddVector stores a vector record, recording the dimensionality on the
// first insert.
func (r *VectorRepository) AddVector(ctx context.Context, record *core.VectorRecord) error {
	if record == nil || record.Id == 0 {
		return fmt.Errorf("%w: vector id must be assigned", storage.ErrInvalidQuery)
	}
	if len(record.Vector) == 0 {
		return core.ErrEmptyVector
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		dims, err := readDimensions(tx)
		if err != nil {
			return err
		}
		switch {
		case dims == 0:
			if err := tx.Set([]byte(vectorDimsKey), marshalDimensions(len(record.Vector))); err != nil {
				return err
			}
		case dims != len(record.Vector):
			return fmt.Errorf("%w: got %d, store holds %d", core.ErrDimensionMismatch, len(record.Vector), dims)
		}

		key := makeVectorKey(record.Id)
		if _, err := tx.Get(key); err == nil {
			return fmt.Errorf("%w: vector %d", storage.ErrDuplicateKey, record.Id)
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		if err := tx.Set(key, storage.MarshalVectorRecord(record)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	return storage.Wrap(err)
}

// GetVector retrieves a single vector record.
func (r *VectorRepository) GetVector(ctx context.Context, id core.ID) (*core.VectorRecord, error) {
	var result *core.VectorRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readVector(tx, makeVectorKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return fmt.Errorf("%w: vector %d", storage.ErrNotFound, id)
		}
		return nil
	}, false)
	if err != nil {
		return nil, storage.Wrap(err)
	}
	return result, nil
}

// DeleteVector removes a vector record.
func (r *VectorRepository) DeleteVector(ctx context.Context, id core.ID) error {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeVectorKey(id)
		if _, err := tx.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: vector %d", storage.ErrNotFound, id)
			}
			return err
		}
		if err := tx.Delete(key); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	return storage.Wrap(err)
}

// ForEachVector visits every vector record in ascending id order within a
// single read transaction. fn must not write to the repository.
func (r *VectorRepository) ForEachVector(ctx context.Context, fn storage.VectorVisitor) error {
	var visitErr error
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(vectorPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var record *core.VectorRecord
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				record, err = storage.UnmarshalVectorRecord(val)
				return err
			}); err != nil {
				return err
			}
			if visitErr = fn(record); visitErr != nil {
				return visitErr
			}
		}
		return nil
	}, false)
	if visitErr != nil {
		return visitErr
	}
	return storage.Wrap(err)
}

// Dimensions returns the recorded dimensionality, 0 for an empty store.
func (r *VectorRepository) Dimensions(ctx context.Context) (int, error) {
	var dims int
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		dims, err = readDimensions(tx)
		return err
	}, false)
	return dims, storage.Wrap(err)
}

// CountVectors counts the stored vector records.
func (r *VectorRepository) CountVectors(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		count = countPrefix(tx, []byte(vectorPrefix))
		return nil
	}, false)
	return count, storage.Wrap(err)
}

// Reset drops all vectors and the recorded dimensionality.
func (r *VectorRepository) Reset(ctx context.Context) error {
	return storage.Wrap(r.backend.DropPrefix(vectorPrefix, vectorDimsKey))
}

// readVector reads a vector record from a transaction.
// Returns nil, nil if the record doesn't exist.
func readVector(tx *badger.Txn, key []byte) (*core.VectorRecord, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var record *core.VectorRecord
	err = item.Value(func(val []byte) error {
		var err error
		record, err = storage.UnmarshalVectorRecord(val)
		return err
	})
	return record, err
}

func readDimensions(tx *badger.Txn) (int, error) {
	item, err := tx.Get([]byte(vectorDimsKey))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, err
	}
	var dims int
	err = item.Value(func(val []byte) error {
		var err error
		dims, _, err = varint.PositiveInt.Unmarshal(val)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %w", storage.ErrSerializationFailed, err)
	}
	return dims, nil
}

func marshalDimensions(dims int) []byte {
	buf := make([]byte, varint.PositiveInt.Size(dims))
	varint.PositiveInt.Marshal(dims, buf)
	return buf
}
