// Package types defines the core data types for the quorum retrieval pipeline.
//
// This package contains the fundamental types used throughout quorum:
//   - Chunk: A span of a source document with text, position, and embedding
//   - Metadata: The fixed per-document metadata schema (year, committee codes, ...)
//   - RetrieveOptions: Parameters for a retrieval call
//   - Answer/Source: Question-answering results with deduplicated citations
//
// # Metadata Filtering
//
// Equality filters over chunk metadata are restricted to the keys listed in
// FilterableFields. Filters naming any other key are rejected with
// ErrInvalidFilterKey rather than silently matching nothing.
//
// # Errors
//
// The sentinel errors declared here distinguish caller mistakes
// (ErrInvalidFilterKey) from infrastructure failures (ErrStorageUnavailable,
// ErrEmbeddingProvider) and from indexing bugs (ErrDimensionMismatch).
// An empty candidate set is not an error; retrieval returns an empty slice.
package types
