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
	"errors"
	"fmt"
)

// Error categories. Callers match with errors.Is.
var (
	// ErrValidation indicates caller-supplied input was rejected before any write.
	ErrValidation = errors.New("validation failed")

	// ErrConsistency indicates the metadata store and the vector index disagree.
	ErrConsistency = errors.New("consistency violation")
)

// Validation errors with a fixed meaning.
var (
	// ErrDimensionMismatch indicates a vector whose length differs from the
	// store's dimensionality.
	ErrDimensionMismatch = fmt.Errorf("%w: vector dimensionality mismatch", ErrValidation)

	// ErrEmptyVector indicates a vector with no components.
	ErrEmptyVector = fmt.Errorf("%w: empty vector", ErrValidation)
)

// ValidationError names the offending field of a rejected input.
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidationError returns a ValidationError for field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrValidation.Error(), e.Field, e.Reason)
}

// Unwrap lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// ConsistencyError reports an id present in one store but not the other.
type ConsistencyError struct {
	Id     ID
	Detail string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("%s: note %d %s", ErrConsistency.Error(), e.Id, e.Detail)
}

func (e *ConsistencyError) Unwrap() error {
	return ErrConsistency
}
