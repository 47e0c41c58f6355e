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


// Package ai provides the embedding abstraction used by secondbrain.
//
// The Embedder interface turns text into fixed-length vectors. Everything
// above it (ingestion, search, re-embedding) depends on the interface only,
// so the backing model can be swapped without touching the core.
//
// # Implementation Packages
//
//   - ai/hashing: deterministic offline feature-hashing embedder (default)
//   - ai/openai: OpenAI-compatible embedding APIs via langchaingo (Ollama,
//     LocalAI, vLLM, OpenAI)
//   - ai/mock: test doubles with call counting and behavior injection
//
// # Constructor Return Type Pattern
//
// Public constructors of production implementations return INTERFACE types:
//
//	provider, err := openai.NewProvider(config)  // returns ai.AIProvider
//
// Test utility constructors return CONCRETE types so tests can inject
// behavior and inspect call counts:
//
//	mockEmbed := mock.NewMockEmbedder()  // returns *mock.MockEmbedder
//	count := mockEmbed.CallCount()
//
// # Usage Example
//
//	config := ai.NewConfig(ai.WithEmbeddingHost("http://localhost:11434"))
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vector, err := provider.Embedder().EmbedText(ctx, "How to undo a git commit")
package ai
