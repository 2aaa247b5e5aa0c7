package ingest

import "strings"

const (
	// DefaultChunkWords is the word-window size per chunk.
	DefaultChunkWords = 500
	// DefaultChunkOverlap is the number of words shared between adjacent chunks.
	DefaultChunkOverlap = 50
)

// SplitWords splits text into overlapping word windows. The last window may
// be shorter. Overlap must be smaller than the window or it is ignored.
func SplitWords(text string, chunkWords, overlap int) []string {
	if chunkWords <= 0 {
		chunkWords = DefaultChunkWords
	}
	if overlap < 0 || overlap >= chunkWords {
		overlap = 0
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	step := chunkWords - overlap
	var chunks []string
	for i := 0; i < len(words); i += step {
		end := i + chunkWords
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[i:end], " "))
		if end == len(words) {
			break
		}
	}
	return chunks
}
