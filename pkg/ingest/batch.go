package ingest

import "unicode/utf8"

const (
	// DefaultBatchTokenBudget caps the token total of one embedding batch.
	DefaultBatchTokenBudget = 200000
	// DefaultChunkTokenLimit skips chunks above this token estimate.
	DefaultChunkTokenLimit = 10000
	// DefaultUploadBatchSize is the number of chunks per store upsert.
	DefaultUploadBatchSize = 100
)

// EstimateTokens approximates the token count of a text. Roughly four
// characters per token for English prose; close enough for budgeting since
// the provider limit sits well above the budget.
func EstimateTokens(text string) int {
	return utf8.RuneCountInString(text)/4 + 1
}

// SafeBatches groups indexes into batches that respect the token budget.
// Indexes whose text exceeds the per-chunk limit are returned separately as
// skipped. Order is preserved within and across batches.
func SafeBatches(texts []string, tokenBudget, chunkLimit int) (batches [][]int, skipped []int) {
	if tokenBudget <= 0 {
		tokenBudget = DefaultBatchTokenBudget
	}
	if chunkLimit <= 0 {
		chunkLimit = DefaultChunkTokenLimit
	}

	var current []int
	currentTokens := 0

	for i, text := range texts {
		tokens := EstimateTokens(text)

		if tokens > chunkLimit {
			skipped = append(skipped, i)
			continue
		}

		if currentTokens+tokens > tokenBudget && len(current) > 0 {
			batches = append(batches, current)
			current = []int{i}
			currentTokens = tokens
		} else {
			current = append(current, i)
			currentTokens += tokens
		}
	}

	if len(current) > 0 {
		batches = append(batches, current)
	}
	return batches, skipped
}
