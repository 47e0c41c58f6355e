// Package reembed rebuilds the vector index from the metadata store.
//
// Vectors are a derived projection of note text, so they can always be
// regenerated. Re-embedding is needed after switching the embedding model,
// which may also change the vector dimensionality. The Reembedder clears the
// index, walks every note in batches, embeds each batch with retry and
// exponential backoff, and reports progress to a writer.
//
// The whole run holds the ingestion writer lock. An interrupted run leaves
// notes without vectors; the next reconciliation pass rebuilds them.
package reembed
