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

// Package search answers natural-language queries against the knowledge store.
//
// The Searcher embeds the query, ranks every indexed vector by cosine
// similarity and joins the best matches with their notes from the metadata
// store. Results keep the ranking order of the vector index; equal scores
// are ordered by insertion.
//
// Searches never write. A ranked id whose note is missing is a consistency
// violation: it is logged, reported to the SearchMonitor and skipped.
package search
