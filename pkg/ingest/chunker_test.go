package ingest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numberedWords(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(words, " ")
}

func TestSplitWordsShortText(t *testing.T) {
	chunks := SplitWords("just a few words", 500, 50)
	require.Len(t, chunks, 1)
	assert.Equal(t, "just a few words", chunks[0])
}

func TestSplitWordsEmpty(t *testing.T) {
	assert.Nil(t, SplitWords("", 500, 50))
	assert.Nil(t, SplitWords("   \n\t  ", 500, 50))
}

func TestSplitWordsOverlap(t *testing.T) {
	chunks := SplitWords(numberedWords(12), 5, 2)

	// Step is 3 words, so windows start at 0, 3, 6, 9.
	require.Len(t, chunks, 4)
	assert.Equal(t, "w0 w1 w2 w3 w4", chunks[0])
	assert.Equal(t, "w3 w4 w5 w6 w7", chunks[1])
	assert.Equal(t, "w9 w10 w11", chunks[3])
}

func TestSplitWordsNoTrailingDuplicate(t *testing.T) {
	// 10 words with window 5, overlap 2: starts 0, 3, 6 cover everything;
	// the loop must stop once the end of input is reached.
	chunks := SplitWords(numberedWords(10), 5, 2)
	require.Len(t, chunks, 3)
	assert.Equal(t, "w6 w7 w8 w9", chunks[2])
}

func TestSplitWordsBadOverlapIgnored(t *testing.T) {
	chunks := SplitWords(numberedWords(10), 5, 7)
	require.Len(t, chunks, 2)
	assert.Equal(t, "w5 w6 w7 w8 w9", chunks[1])
}
