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

// Package secondbrain is a personal knowledge store for problem/solution
// notes with semantic search.
//
// A Database keeps notes in a badger-backed metadata store and their
// embeddings in a vector index beside it:
//
//	db, err := secondbrain.Open(ctx, dir)
//	if err != nil {
//		return err
//	}
//	defer db.Close()
//
//	id, err := db.AddNote(ctx, core.NoteInput{
//		Problem:     "git merge conflict in a lock file",
//		Solution:    "git checkout --theirs package-lock.json",
//		Explanation: "Regenerate the lock file instead of merging it.",
//	})
//	results, err := db.Search(ctx, "lock file conflict", 5)
//
// Without an embedding host the offline hashing embedder is used. Point
// WithAIConfig at an OpenAI-compatible server to use a real model, then run
// Reembed if the vectors were produced by another model.
package secondbrain
