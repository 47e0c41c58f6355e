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
	"encoding/binary"
	"strings"

	"github.com/go-crypt/x/blake2b"
)

// Labels used in the canonical embedding text.
const (
	ProblemLabel     = "Problem: "
	SolutionLabel    = "Solution: "
	ExplanationLabel = "Explanation: "
)

// CanonicalText builds the text that is embedded for a note.
// Field order is fixed. Tags are not part of the text.
func CanonicalText(problem, solution, explanation string) string {
	var sb strings.Builder
	sb.Grow(len(ProblemLabel) + len(problem) + len(SolutionLabel) + len(solution) +
		len(ExplanationLabel) + len(explanation) + 2)
	sb.WriteString(ProblemLabel)
	sb.WriteString(problem)
	sb.WriteByte('\n')
	sb.WriteString(SolutionLabel)
	sb.WriteString(solution)
	sb.WriteByte('\n')
	sb.WriteString(ExplanationLabel)
	sb.WriteString(explanation)
	return sb.String()
}

// CanonicalText returns the embedding text of the input.
func (in *NoteInput) CanonicalText() string {
	return CanonicalText(in.Problem, in.Solution, in.Explanation)
}

// CanonicalText returns the embedding text of the note.
func (n *Note) CanonicalText() string {
	return CanonicalText(n.Problem, n.Solution, n.Explanation)
}

// Fingerprint returns a 64-bit BLAKE2b digest of text.
// Identical text always yields the same fingerprint.
func Fingerprint(text string) uint64 {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	return binary.LittleEndian.Uint64(h.Sum(nil))
}
