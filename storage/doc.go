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


// Package storage provides the storage abstraction layer for secondbrain.
//
// Two repositories back a knowledge store:
//
//   - NoteRepository: the metadata store, authoritative for note content
//   - VectorRepository: the persisted vector index, one vector per note id
//
// Both are durable and live in separate directories. Keeping them
// consistent is the job of the ingestion pipeline, not of this package.
//
// # Errors
//
// ErrNotFound and ErrDuplicateKey are returned as-is. Failures of the storage
// engine are wrapped with ErrStorage, so callers can tell "the store is
// broken" apart from "the request was wrong":
//
//	if errors.Is(err, storage.ErrStorage) {
//	    // retry later or report
//	}
//
// # Usage
//
//	notes, vectors, err := badger.OpenRepositories("/path/to/data")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer notes.Close()
//	defer vectors.Close()
//
// Use in tests with in-memory storage:
//
//	notes, vectors, err := badger.NewMemoryRepositories()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
