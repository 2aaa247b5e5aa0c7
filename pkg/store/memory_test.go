package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/quorum/pkg/types"
)

func seedChunks() []*types.Chunk {
	return []*types.Chunk{
		{ID: "a0", Text: "call to order", Source: "cab_minutes_2021.pdf", ChunkIndex: 0,
			Metadata: types.Metadata{Year: 2021, FileType: "minutes", CommitteeCodes: []string{"CAB"}}},
		{ID: "a1", Text: "adjournment", Source: "cab_minutes_2021.pdf", ChunkIndex: 1,
			Metadata: types.Metadata{Year: 2021, FileType: "minutes", CommitteeCodes: []string{"CAB"}}},
		{ID: "b0", Text: "resolved that", Source: "resolution_2022.pdf", ChunkIndex: 0,
			Metadata: types.Metadata{Year: 2022, FileType: "resolution"}},
	}
}

func TestMemoryStoreFetchAll(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Upsert(context.Background(), seedChunks()))

	chunks, err := s.Fetch(context.Background(), nil, 0)
	require.NoError(t, err)
	assert.Len(t, chunks, 3)

	// Deterministic ID order.
	assert.Equal(t, "a0", chunks[0].ID)
	assert.Equal(t, "b0", chunks[2].ID)
}

func TestMemoryStoreFetchFiltered(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Upsert(context.Background(), seedChunks()))

	f, err := NewFilter(map[string]interface{}{"file_type": "resolution"})
	require.NoError(t, err)

	chunks, err := s.Fetch(context.Background(), f, 0)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "b0", chunks[0].ID)
}

func TestMemoryStoreFetchLimit(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Upsert(context.Background(), seedChunks()))

	chunks, err := s.Fetch(context.Background(), nil, 2)
	require.NoError(t, err)
	assert.Len(t, chunks, 2)
}

func TestMemoryStoreUpsertReplaces(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Upsert(context.Background(), seedChunks()))

	updated := &types.Chunk{ID: "b0", Text: "amended text", Source: "resolution_2022.pdf"}
	require.NoError(t, s.Upsert(context.Background(), []*types.Chunk{updated}))

	assert.Equal(t, 3, s.Len())

	f, err := NewFilter(map[string]interface{}{"source": "resolution_2022.pdf"})
	require.NoError(t, err)
	chunks, err := s.Fetch(context.Background(), f, 0)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "amended text", chunks[0].Text)
}

func TestMemoryStoreUpsertValidates(t *testing.T) {
	s := NewMemoryStore()
	err := s.Upsert(context.Background(), []*types.Chunk{{ID: "x"}})
	assert.ErrorIs(t, err, types.ErrEmptyText)
}
