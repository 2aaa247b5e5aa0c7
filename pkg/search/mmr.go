package search

import (
	"fmt"
	"math"
)

// MMR lambda derivation parameters. Lambda trades relevance against
// diversity: 1 is pure relevance, 0 is pure diversity.
const (
	DefaultMMRLambda = 0.5
	mmrLambdaStep    = 0.15
	mmrLambdaCap     = 0.9
)

// DeriveMMRLambda picks a lambda from the query's specificity. Vague queries
// keep the diversity-leaning base; each specificity signal (explicit year,
// document-type keyword, committee tag) nudges lambda toward relevance. The
// cap keeps diversity from ever being fully disabled.
func DeriveMMRLambda(signals *QuerySignals) float64 {
	lambda := DefaultMMRLambda + mmrLambdaStep*float64(signals.Count())
	return math.Min(lambda, mmrLambdaCap)
}

// MMRSelect greedily re-ranks the scored groups by maximal marginal
// relevance, returning up to k groups. At each step the candidate maximizing
//
//	lambda*relevance - (1-lambda)*maxSimilarityToSelected
//
// is chosen, with the similarity term 0 while nothing is selected yet. Ties
// prefer the higher plain relevance, then the lower representative chunk ID.
// Groups whose representative has no embedding contribute similarity 0 and
// stay selectable on relevance alone.
func MMRSelect(scored []*ScoredGroup, k int, lambda float64) ([]*ScoredGroup, error) {
	if k <= 0 || len(scored) == 0 {
		return nil, nil
	}
	if lambda < 0 {
		lambda = 0
	}
	if lambda > 1 {
		lambda = 1
	}

	remaining := make([]*ScoredGroup, len(scored))
	copy(remaining, scored)
	selected := make([]*ScoredGroup, 0, k)

	for len(selected) < k && len(remaining) > 0 {
		bestIdx := -1
		bestScore := math.Inf(-1)

		for i, cand := range remaining {
			var maxSim float64
			for _, sel := range selected {
				a := cand.Group.Representative.Embedding
				b := sel.Group.Representative.Embedding
				if len(a) == 0 || len(b) == 0 {
					continue
				}
				sim, err := CosineSimilarity(a, b)
				if err != nil {
					return nil, fmt.Errorf("mmr similarity for chunk %s: %w", cand.Group.Representative.ID, err)
				}
				if sim > maxSim {
					maxSim = sim
				}
			}

			score := lambda*cand.Relevance - (1-lambda)*maxSim
			if bestIdx < 0 || score > bestScore || (score == bestScore && mmrTieBreak(cand, remaining[bestIdx])) {
				bestIdx = i
				bestScore = score
			}
		}

		selected = append(selected, remaining[bestIdx])
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}

	return selected, nil
}

// mmrTieBreak reports whether a should be preferred over b on an MMR score
// tie: higher plain relevance first, then lower representative ID.
func mmrTieBreak(a, b *ScoredGroup) bool {
	if a.Relevance != b.Relevance {
		return a.Relevance > b.Relevance
	}
	return a.Group.Representative.ID < b.Group.Representative.ID
}
