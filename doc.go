// Package quorum answers questions over a corpus of committee documents.
//
// Retrieval blends BM25 keyword scores with embedding similarity, groups
// chunks by their source document, and optionally diversifies the top
// results. Ask feeds the retrieved context to a language model constrained
// to answer from the provided documents alone.
//
// The Client is assembled from a chunk store, an embedding client, and an
// optional chat client, so callers can run it against an in-memory store in
// tests and Qdrant or Neo4j in production.
package quorum
