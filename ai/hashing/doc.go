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

// Package hashing provides a deterministic, offline text embedder.
//
// Text is split into word tokens. Mixed-case identifiers such as
// SettingWithCopyWarning or reset_index also contribute their parts, stop
// words are dropped, and each token adds its character trigrams at a lower
// weight so that inflections like "commit" and "commits" still overlap.
// Every feature is hashed (FNV-1a, 64 bit) into one of a fixed number of
// buckets with a hash-derived sign, and the result is L2-normalized.
//
// The embedder needs no model files and no network, produces the same vector
// for the same text on every machine, and is the default when no embedding
// service is configured.
package hashing
