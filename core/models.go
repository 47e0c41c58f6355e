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

package core

import (
	"time"
)

// ID is the unique identifier of a note.
// IDs come from a database sequence, are monotonic, and are never reused.
// The zero value means "not yet assigned".
type ID uint64

// NoteInput is the caller-supplied content of a new note.
// Tags may be given either as separate elements or as comma-separated
// strings; NormalizeTags folds both forms into one list.
type NoteInput struct {
	Problem     string   `yaml:"problem" json:"problem"`
	Solution    string   `yaml:"solution" json:"solution"`
	Explanation string   `yaml:"explanation" json:"explanation"`
	Tags        []string `yaml:"tags" json:"tags"`
}

// Note is a persisted unit of knowledge.
type Note struct {
	Id          ID
	Problem     string
	Solution    string // stored verbatim, may contain code
	Explanation string
	Tags        []string
	CreatedAt   time.Time
}

// HasTag reports whether the note carries the given tag (case-sensitive).
func (n *Note) HasTag(tag string) bool {
	for _, t := range n.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// VectorRecord is the durable entry of the vector index.
// Fingerprint is the digest of the canonical text the vector was computed from.
type VectorRecord struct {
	Id          ID
	Fingerprint uint64
	Vector      []float32
}

// SimilarityMatch is a raw hit from the vector index.
type SimilarityMatch struct {
	NoteId ID
	Score  float64
}

// SearchResult pairs a note with its relevance score in [0,1].
type SearchResult struct {
	Note  *Note
	Score float64
}
