package search

import (
	"errors"
	"math"
	"sort"
	"testing"
	"time"

	"github.com/soundprediction/quorum/pkg/types"
)

var rankNow = time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)

func makeGroups(chunks ...*types.Chunk) []*DocumentGroup {
	return GroupByDocument(chunks)
}

func TestScoreGroupsMissingEmbedding(t *testing.T) {
	groups := makeGroups(
		&types.Chunk{ID: "a", Source: "a.pdf", Text: "budget report", Embedding: []float32{1, 0}},
		&types.Chunk{ID: "b", Source: "b.pdf", Text: "budget report"},
	)

	scored, err := ScoreGroups(groups, "budget", []float32{1, 0}, false, rankNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if scored[0].Vector == 0 {
		t.Error("embedded chunk should have nonzero vector score")
	}
	if scored[1].Vector != 0 || math.IsNaN(scored[1].Vector) {
		t.Errorf("chunk without embedding should score exactly 0, got %f", scored[1].Vector)
	}
}

func TestScoreGroupsDimensionMismatch(t *testing.T) {
	groups := makeGroups(
		&types.Chunk{ID: "a", Source: "a.pdf", Text: "text", Embedding: []float32{1, 0, 0}},
	)

	_, err := ScoreGroups(groups, "query", []float32{1, 0}, false, rankNow)
	if !errors.Is(err, types.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestRankAlphaBoundaries(t *testing.T) {
	// Doc a wins lexically, doc b wins on the vector axis.
	groups := makeGroups(
		&types.Chunk{ID: "a", Source: "a.pdf", Text: "parking parking parking", Embedding: []float32{0, 1}},
		&types.Chunk{ID: "b", Source: "b.pdf", Text: "unrelated topics here", Embedding: []float32{1, 0}},
	)

	scored, err := ScoreGroups(groups, "parking", []float32{1, 0}, false, rankNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pureLexical := Rank(scored, 1.0, 0, false)
	if pureLexical[0].Group.Key != "a.pdf" {
		t.Errorf("alpha=1 should rank lexically, got %s first", pureLexical[0].Group.Key)
	}

	pureVector := Rank(scored, 0.0001, 0, false)
	if pureVector[0].Group.Key != "b.pdf" {
		t.Errorf("alpha~0 should rank by vector, got %s first", pureVector[0].Group.Key)
	}
}

func TestRankTieBreakByID(t *testing.T) {
	// Identical text and embeddings: everything ties, IDs decide.
	groups := makeGroups(
		&types.Chunk{ID: "z", Source: "z.pdf", Text: "same text", Embedding: []float32{1, 0}},
		&types.Chunk{ID: "a", Source: "a.pdf", Text: "same text", Embedding: []float32{1, 0}},
		&types.Chunk{ID: "m", Source: "m.pdf", Text: "same text", Embedding: []float32{1, 0}},
	)

	scored, err := ScoreGroups(groups, "same", []float32{1, 0}, false, rankNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ranked := Rank(scored, 0.5, 0, false)
	ids := []string{
		ranked[0].Group.Representative.ID,
		ranked[1].Group.Representative.ID,
		ranked[2].Group.Representative.ID,
	}
	if !sort.StringsAreSorted(ids) {
		t.Errorf("ties should break by ID ascending, got %v", ids)
	}
}

func TestRankTopK(t *testing.T) {
	groups := makeGroups(
		&types.Chunk{ID: "a", Source: "a.pdf", Text: "alpha"},
		&types.Chunk{ID: "b", Source: "b.pdf", Text: "beta"},
		&types.Chunk{ID: "c", Source: "c.pdf", Text: "gamma"},
	)

	scored, err := ScoreGroups(groups, "alpha", nil, false, rankNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ranked := Rank(scored, 0.5, 2, false)
	if len(ranked) != 2 {
		t.Errorf("got %d results, want 2", len(ranked))
	}
}

// Three documents, query "minutes 2024": the document matching both the type
// and the year must come first.
func TestRankIntentScenario(t *testing.T) {
	groups := makeGroups(
		&types.Chunk{ID: "a0", Source: "doc_a.pdf", Text: "meeting notes", ChunkIndex: 0,
			Metadata: types.Metadata{FileType: "minutes", Year: 2020}},
		&types.Chunk{ID: "a1", Source: "doc_a.pdf", Text: "more notes", ChunkIndex: 1,
			Metadata: types.Metadata{FileType: "minutes", Year: 2020}},
		&types.Chunk{ID: "b0", Source: "doc_b.pdf", Text: "annual summary", ChunkIndex: 0,
			Metadata: types.Metadata{FileType: "report", Year: 2024}},
		&types.Chunk{ID: "c0", Source: "doc_c.pdf", Text: "meeting notes", ChunkIndex: 0,
			Metadata: types.Metadata{FileType: "minutes", Year: 2024}},
		&types.Chunk{ID: "c1", Source: "doc_c.pdf", Text: "attendance", ChunkIndex: 1,
			Metadata: types.Metadata{FileType: "minutes", Year: 2024}},
		&types.Chunk{ID: "c2", Source: "doc_c.pdf", Text: "adjournment", ChunkIndex: 2,
			Metadata: types.Metadata{FileType: "minutes", Year: 2024}},
	)

	scored, err := ScoreGroups(groups, "minutes 2024", nil, true, rankNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ranked := Rank(scored, 0.5, 2, true)
	if len(ranked) != 2 {
		t.Fatalf("got %d results, want 2", len(ranked))
	}
	if ranked[0].Group.Key != "doc_c.pdf" {
		t.Errorf("doc_c should rank first, got %s", ranked[0].Group.Key)
	}

	// No two results share a source document.
	if ranked[0].Group.Key == ranked[1].Group.Key {
		t.Error("duplicate source document in results")
	}
}

func TestRankDeterminism(t *testing.T) {
	chunks := []*types.Chunk{
		{ID: "a", Source: "a.pdf", Text: "parking budget", Embedding: []float32{0.3, 0.7}},
		{ID: "b", Source: "b.pdf", Text: "athletics report", Embedding: []float32{0.9, 0.1}},
		{ID: "c", Source: "c.pdf", Text: "parking report", Embedding: []float32{0.5, 0.5}},
	}

	run := func() []string {
		scored, err := ScoreGroups(makeGroups(chunks...), "parking report", []float32{0.6, 0.4}, true, rankNow)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		ranked := Rank(scored, 0.5, 0, true)
		keys := make([]string, len(ranked))
		for i, sg := range ranked {
			keys[i] = sg.Group.Key
		}
		return keys
	}

	first := run()
	for i := 0; i < 5; i++ {
		again := run()
		for j := range first {
			if first[j] != again[j] {
				t.Fatalf("ordering changed between runs: %v vs %v", first, again)
			}
		}
	}
}
