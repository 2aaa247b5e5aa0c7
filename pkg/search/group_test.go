package search

import (
	"testing"

	"github.com/soundprediction/quorum/pkg/types"
)

func TestGroupByDocument(t *testing.T) {
	chunks := []*types.Chunk{
		{ID: "b2", Source: "doc_b.pdf", ChunkIndex: 1},
		{ID: "a1", Source: "doc_a.pdf", ChunkIndex: 2},
		{ID: "a0", Source: "doc_a.pdf", ChunkIndex: 0},
		{ID: "b1", Source: "doc_b.pdf", ChunkIndex: 0},
	}

	groups := GroupByDocument(chunks)
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}

	// Groups come back in key order.
	if groups[0].Key != "doc_a.pdf" || groups[1].Key != "doc_b.pdf" {
		t.Errorf("group order = %s, %s", groups[0].Key, groups[1].Key)
	}

	// Representative is the minimum chunk index.
	if groups[0].Representative.ID != "a0" {
		t.Errorf("doc_a representative = %s, want a0", groups[0].Representative.ID)
	}
	if groups[1].Representative.ID != "b1" {
		t.Errorf("doc_b representative = %s, want b1", groups[1].Representative.ID)
	}

	// Chunks within a group are ordered by chunk index.
	if groups[0].Chunks[0].ID != "a0" || groups[0].Chunks[1].ID != "a1" {
		t.Errorf("doc_a chunk order = %s, %s", groups[0].Chunks[0].ID, groups[0].Chunks[1].ID)
	}
}

func TestGroupByDocumentRepresentativeTie(t *testing.T) {
	// Equal chunk indexes: the lower ID wins for determinism.
	chunks := []*types.Chunk{
		{ID: "z", Source: "doc.pdf", ChunkIndex: 0},
		{ID: "a", Source: "doc.pdf", ChunkIndex: 0},
	}

	groups := GroupByDocument(chunks)
	if groups[0].Representative.ID != "a" {
		t.Errorf("representative = %s, want a", groups[0].Representative.ID)
	}
}

func TestGroupByDocumentEmpty(t *testing.T) {
	if groups := GroupByDocument(nil); len(groups) != 0 {
		t.Errorf("got %d groups, want 0", len(groups))
	}
}
