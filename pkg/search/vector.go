package search

import (
	"fmt"
	"math"

	"github.com/soundprediction/quorum/pkg/types"
)

// CosineEpsilon guards the cosine denominator against degenerate zero vectors.
const CosineEpsilon = 1e-9

// CosineSimilarity computes the cosine similarity between two vectors.
// A length mismatch is an indexing bug and returns ErrDimensionMismatch
// rather than a silent zero.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", types.ErrDimensionMismatch, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	return dot / (math.Sqrt(normA)*math.Sqrt(normB) + CosineEpsilon), nil
}

// minMaxNormalize rescales values to [0,1]. When all values are equal the
// result is all-zero, never NaN.
func minMaxNormalize(values []float64) []float64 {
	normalized := make([]float64, len(values))
	if len(values) == 0 {
		return normalized
	}

	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if max == min {
		return normalized
	}

	for i, v := range values {
		normalized[i] = (v - min) / (max - min)
	}
	return normalized
}
