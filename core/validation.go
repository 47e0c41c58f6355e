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
	"strings"
)

// ValidateNoteInput validates a NoteInput according to domain rules.
//
// Validation rules:
//   - Problem, Solution and Explanation must be non-empty after trimming
//
// NOT validated:
//   - Tags (normalized instead, an empty list is valid)
func ValidateNoteInput(input *NoteInput) error {
	if input == nil {
		return NewValidationError("note", "is nil")
	}
	if IsBlank(input.Problem) {
		return NewValidationError("problem", "cannot be empty")
	}
	if IsBlank(input.Solution) {
		return NewValidationError("solution", "cannot be empty")
	}
	if IsBlank(input.Explanation) {
		return NewValidationError("explanation", "cannot be empty")
	}
	return nil
}

// IsBlank reports whether s is empty after trimming whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// NormalizeTags splits every element on commas, trims each piece, drops
// empty pieces and removes duplicates. Comparison is case-sensitive and the
// first occurrence wins, so input order is preserved.
//
// The result is never nil.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, raw := range tags {
		for _, piece := range strings.Split(raw, ",") {
			tag := strings.TrimSpace(piece)
			if tag == "" {
				continue
			}
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			out = append(out, tag)
		}
	}
	return out
}

// ParseTags normalizes a single comma-separated tag string.
func ParseTags(s string) []string {
	return NormalizeTags([]string{s})
}
