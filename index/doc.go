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

// Package index provides the in-memory vector index of a knowledge store.
//
// The index is an exact (brute force) cosine similarity index. Every vector
// lives in memory for querying and in a storage.VectorRepository for
// durability; Load rebuilds the in-memory state at startup.
//
// # Scoring
//
// Scores are cosine similarity mapped onto [0,1]:
//
//	score = (cosine + 1) / 2
//
// Identical directions score 1, orthogonal vectors 0.5 and opposite
// directions 0. Vectors need not be normalized. A zero vector has no direction
// and scores 0.5 against everything.
//
// # Ordering
//
// Results are ordered by descending score. Equal scores keep insertion order,
// so the earlier-inserted note ranks first. After a restart insertion order is
// id order, which is the same thing because ids are assigned monotonically.
//
// # Scale
//
// Query cost is linear in the number of vectors. Past ApproximateThreshold
// vectors an approximate index would pay off; Load logs a warning when the
// threshold is crossed.
package index
