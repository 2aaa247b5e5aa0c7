package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateTokensScalesWithLength(t *testing.T) {
	short := EstimateTokens("hello")
	long := EstimateTokens(strings.Repeat("hello ", 100))
	assert.Greater(t, long, short)
	assert.Greater(t, short, 0)
}

func TestSafeBatchesRespectsBudget(t *testing.T) {
	// Each text estimates to 26 tokens; a 60-token budget fits two per batch.
	text := strings.Repeat("x", 100)
	batches, skipped := SafeBatches([]string{text, text, text, text, text}, 60, 1000)

	assert.Empty(t, skipped)
	require.Len(t, batches, 3)
	assert.Equal(t, []int{0, 1}, batches[0])
	assert.Equal(t, []int{2, 3}, batches[1])
	assert.Equal(t, []int{4}, batches[2])
}

func TestSafeBatchesSkipsOversized(t *testing.T) {
	small := "small text"
	huge := strings.Repeat("x", 100000)
	batches, skipped := SafeBatches([]string{small, huge, small}, 0, 0)

	assert.Equal(t, []int{1}, skipped)
	require.Len(t, batches, 1)
	assert.Equal(t, []int{0, 2}, batches[0])
}

func TestSafeBatchesEmpty(t *testing.T) {
	batches, skipped := SafeBatches(nil, 0, 0)
	assert.Empty(t, batches)
	assert.Empty(t, skipped)
}
