package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerRoundTrip(t *testing.T) {
	ledger, err := OpenLedger(t.TempDir())
	require.NoError(t, err)
	defer ledger.Close()

	hash := ContentHash("meeting minutes text")

	seen, err := ledger.Seen("minutes.pdf", hash)
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, ledger.Mark("minutes.pdf", hash))

	seen, err = ledger.Seen("minutes.pdf", hash)
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestLedgerChangedContent(t *testing.T) {
	ledger, err := OpenLedger(t.TempDir())
	require.NoError(t, err)
	defer ledger.Close()

	require.NoError(t, ledger.Mark("minutes.pdf", ContentHash("old text")))

	seen, err := ledger.Seen("minutes.pdf", ContentHash("revised text"))
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestContentHashStable(t *testing.T) {
	assert.Equal(t, ContentHash("same"), ContentHash("same"))
	assert.NotEqual(t, ContentHash("one"), ContentHash("two"))
}
