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

package index

import (
	"math"
)

// Cosine returns the cosine similarity of a and b, which must have equal
// length. A zero-magnitude operand yields 0.
func Cosine(a, b []float32) float64 {
	return cosineWithNorms(a, b, Magnitude(a), Magnitude(b))
}

// Score maps cosine similarity onto [0,1].
func Score(cosine float64) float64 {
	s := (cosine + 1) / 2
	switch {
	case math.IsNaN(s):
		return 0.5
	case s < 0:
		return 0
	case s > 1:
		return 1
	}
	return s
}

// Magnitude returns the euclidean norm of v, accumulated in float64.
func Magnitude(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// Normalize scales v to unit length.
// Returns a new slice; the zero vector normalizes to a zero vector.
func Normalize(v []float32) []float32 {
	result := make([]float32, len(v))
	magnitude := Magnitude(v)
	// Can't normalize zero vector
	if magnitude == 0 {
		return result
	}
	for i, val := range v {
		result[i] = float32(float64(val) / magnitude)
	}
	return result
}

func cosineWithNorms(a, b []float32, normA, normB float64) float64 {
	if normA == 0 || normB == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot / (normA * normB)
}

func isFinite(v []float32) bool {
	for _, x := range v {
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
