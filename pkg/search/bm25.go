package search

import "math"

// Okapi BM25 parameters.
const (
	BM25K1 = 1.5
	BM25B  = 0.75
)

// BM25 is an in-memory Okapi BM25 index over a small candidate corpus. It is
// rebuilt per retrieval call; candidate sets are bounded, so indexing cost is
// negligible next to the storage fetch.
type BM25 struct {
	docs      [][]string
	docFreq   map[string]int
	docLen    []int
	avgDocLen float64
}

// NewBM25 indexes the given documents, each already tokenized.
func NewBM25(docs [][]string) *BM25 {
	idx := &BM25{
		docs:    docs,
		docFreq: make(map[string]int),
		docLen:  make([]int, len(docs)),
	}

	var totalLen int
	for i, doc := range docs {
		idx.docLen[i] = len(doc)
		totalLen += len(doc)

		seen := make(map[string]bool, len(doc))
		for _, term := range doc {
			if !seen[term] {
				seen[term] = true
				idx.docFreq[term]++
			}
		}
	}
	if len(docs) > 0 {
		idx.avgDocLen = float64(totalLen) / float64(len(docs))
	}

	return idx
}

// Scores returns one BM25 score per indexed document for the given query
// tokens. Scores are unbounded non-negative reals; the ranker normalizes them.
func (idx *BM25) Scores(query []string) []float64 {
	scores := make([]float64, len(idx.docs))
	if len(idx.docs) == 0 || len(query) == 0 {
		return scores
	}

	n := float64(len(idx.docs))
	for _, term := range query {
		df := idx.docFreq[term]
		if df == 0 {
			continue
		}

		// BM25+-style floor keeps the IDF non-negative for terms present
		// in more than half the corpus.
		idf := math.Log(1 + (n-float64(df)+0.5)/(float64(df)+0.5))

		for i, doc := range idx.docs {
			var tf float64
			for _, t := range doc {
				if t == term {
					tf++
				}
			}
			if tf == 0 {
				continue
			}

			lenNorm := 1 - BM25B + BM25B*float64(idx.docLen[i])/idx.avgDocLen
			scores[i] += idf * (tf * (BM25K1 + 1)) / (tf + BM25K1*lenNorm)
		}
	}

	return scores
}
