// Package ingestion writes notes into the knowledge store.
//
// The Pipeline type owns the write path for notes, including:
//   - Validating input and normalizing tags
//   - Embedding the canonical note text
//   - Writing the note to the metadata store and its vector to the index
//   - Deleting notes and repairing drift between the two stores
//
// A note becomes visible to search only once both writes succeed. When the
// vector write fails the note is removed again, and Reconcile repairs what a
// crash between the two writes leaves behind.
//
// Embedding runs outside the writer lock. Bulk imports embed concurrently on
// a worker pool and then write sequentially in input order.
package ingestion
