package search

import (
	"fmt"
	"sort"
	"time"

	"github.com/soundprediction/quorum/pkg/types"
)

// ScoredGroup pairs a document group with its per-axis and blended scores.
// Transient: exists only for the duration of one retrieval call.
type ScoredGroup struct {
	Group *DocumentGroup

	// Raw axis scores for the representative chunk.
	Lexical float64
	Vector  float64
	Intent  float64

	// Relevance is the blended score after normalization. Populated by Rank.
	Relevance float64
}

// ScoreGroups scores the representative chunk of every group along the
// lexical, vector, and optional intent axes. A nil query embedding or a
// representative without a stored embedding yields vector score 0; a
// dimension mismatch between present embeddings is a configuration error
// and fails the call.
func ScoreGroups(groups []*DocumentGroup, query string, queryEmbedding []float32, withIntent bool, now time.Time) ([]*ScoredGroup, error) {
	corpus := make([][]string, len(groups))
	for i, group := range groups {
		corpus[i] = Tokenize(group.Representative.SearchText())
	}
	lexical := NewBM25(corpus).Scores(Tokenize(query))

	var signals *QuerySignals
	if withIntent {
		signals = ParseQuerySignals(query, now)
	}

	scored := make([]*ScoredGroup, len(groups))
	for i, group := range groups {
		rep := group.Representative
		sg := &ScoredGroup{Group: group, Lexical: lexical[i]}

		if len(queryEmbedding) > 0 && len(rep.Embedding) > 0 {
			sim, err := CosineSimilarity(queryEmbedding, rep.Embedding)
			if err != nil {
				return nil, fmt.Errorf("scoring chunk %s: %w", rep.ID, err)
			}
			sg.Vector = sim
		}

		if withIntent {
			sg.Intent = IntentScore(signals, rep, now)
		}

		scored[i] = sg
	}

	return scored, nil
}

// Rank blends the axis scores and returns the top k groups by relevance
// descending, ties broken by representative chunk ID ascending. Each axis is
// min-max normalized independently before blending; the intent axis enters
// with a fixed small weight on top of the caller-controlled alpha blend.
func Rank(scored []*ScoredGroup, alpha float64, k int, withIntent bool) []*ScoredGroup {
	if len(scored) == 0 {
		return nil
	}

	lex := make([]float64, len(scored))
	vec := make([]float64, len(scored))
	intent := make([]float64, len(scored))
	for i, sg := range scored {
		lex[i] = sg.Lexical
		vec[i] = sg.Vector
		intent[i] = sg.Intent
	}
	lex = minMaxNormalize(lex)
	vec = minMaxNormalize(vec)
	intent = minMaxNormalize(intent)

	ranked := make([]*ScoredGroup, len(scored))
	for i, sg := range scored {
		sg.Relevance = alpha*lex[i] + (1-alpha)*vec[i]
		if withIntent {
			sg.Relevance += types.IntentWeight * intent[i]
		}
		ranked[i] = sg
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Relevance != ranked[j].Relevance {
			return ranked[i].Relevance > ranked[j].Relevance
		}
		return ranked[i].Group.Representative.ID < ranked[j].Group.Representative.ID
	})

	if k > 0 && len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}
