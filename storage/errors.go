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
	"errors"
	"fmt"

	"github.com/poiesic/secondbrain/core"
)

var (
	// ErrNotFound indicates that the requested record was not found.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateKey indicates a duplicate key violation.
	// It is a validation error: the caller supplied an id that already exists.
	ErrDuplicateKey = fmt.Errorf("%w: duplicate key", core.ErrValidation)

	// ErrStorage wraps failures of the underlying storage engine.
	ErrStorage = errors.New("storage failure")

	// ErrCorrupt indicates persisted state that cannot be loaded as is,
	// such as vectors of mixed dimensionality or mismatched store identities.
	ErrCorrupt = fmt.Errorf("%w: corrupt store", ErrStorage)

	// ErrStorageClosed indicates that the storage backend is closed.
	ErrStorageClosed = errors.New("storage is closed")

	// ErrInvalidQuery indicates invalid query parameters.
	ErrInvalidQuery = errors.New("invalid query parameters")

	// ErrSerializationFailed indicates a serialization/deserialization failure.
	ErrSerializationFailed = errors.New("serialization failed")
)

// Wrap tags err as a storage engine failure unless it already carries one of
// the package sentinels or is a context error.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrStorage) || errors.Is(err, ErrNotFound) ||
		errors.Is(err, core.ErrValidation) || errors.Is(err, ErrInvalidQuery) ||
		errors.Is(err, ErrStorageClosed) ||
		errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStorage, err)
}
