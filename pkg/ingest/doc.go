// Package ingest turns source documents into embedded chunks in the store.
//
// The pipeline walks a directory, extracts text, splits it into overlapping
// word windows, infers metadata from filenames and content, embeds chunks in
// token-budgeted batches, and upserts them with retry. A content-hash ledger
// makes re-runs resumable: documents whose text is unchanged are skipped.
package ingest
