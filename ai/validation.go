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

package ai

import (
	"fmt"

	"github.com/poiesic/secondbrain/core"
)

// ValidateText rejects text that is empty after trimming.
func ValidateText(text string) error {
	if core.IsBlank(text) {
		return core.NewValidationError("text", "cannot be empty")
	}
	return nil
}

// ValidateTexts applies ValidateText to every element and names the
// position of the first offender.
func ValidateTexts(texts []string) error {
	for i, text := range texts {
		if core.IsBlank(text) {
			return core.NewValidationError(fmt.Sprintf("texts[%d]", i), "cannot be empty")
		}
	}
	return nil
}
