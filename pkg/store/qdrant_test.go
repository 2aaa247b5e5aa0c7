package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/quorum/pkg/types"
)

func TestQdrantStoreFetch(t *testing.T) {
	var gotRequest qdrantScrollRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/collections/mfs_collection/points/scroll", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotRequest))

		resp := map[string]interface{}{
			"result": map[string]interface{}{
				"points": []map[string]interface{}{
					{
						"id":     "c1",
						"vector": []float32{0.1, 0.2},
						"payload": map[string]interface{}{
							"text":            "call to order",
							"source":          "cab_minutes_2021.pdf",
							"chunk_index":     0,
							"year":            2021,
							"file_type":       "minutes",
							"committee_codes": []string{"CAB"},
						},
					},
				},
				"next_page_offset": nil,
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	s := NewQdrantStore(server.URL, "secret", "")
	f, err := NewFilter(map[string]interface{}{"file_type": "minutes"})
	require.NoError(t, err)

	chunks, err := s.Fetch(context.Background(), f, 10)
	require.NoError(t, err)
	require.Len(t, chunks, 1)

	chunk := chunks[0]
	assert.Equal(t, "c1", chunk.ID)
	assert.Equal(t, "call to order", chunk.Text)
	assert.Equal(t, "cab_minutes_2021.pdf", chunk.Source)
	assert.Equal(t, 2021, chunk.Metadata.Year)
	assert.Equal(t, []string{"CAB"}, chunk.Metadata.CommitteeCodes)
	assert.Equal(t, []float32{0.1, 0.2}, chunk.Embedding)

	// The filter was pushed down as a must condition.
	require.NotNil(t, gotRequest.Filter)
	require.Len(t, gotRequest.Filter.Must, 1)
	assert.Equal(t, "file_type", gotRequest.Filter.Must[0].Key)
	assert.True(t, gotRequest.WithPayload)
	assert.True(t, gotRequest.WithVector)
}

func TestQdrantStoreFetchPaginates(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		var offset interface{}
		points := []map[string]interface{}{
			{"id": "c1", "payload": map[string]interface{}{"text": "a", "source": "a.pdf"}},
		}
		if calls == 1 {
			offset = "page2"
		} else {
			points = []map[string]interface{}{
				{"id": "c2", "payload": map[string]interface{}{"text": "b", "source": "b.pdf"}},
			}
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"result": map[string]interface{}{
				"points":           points,
				"next_page_offset": offset,
			},
		})
	}))
	defer server.Close()

	s := NewQdrantStore(server.URL, "", "")
	chunks, err := s.Fetch(context.Background(), nil, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Len(t, chunks, 2)
}

func TestQdrantStoreUpsert(t *testing.T) {
	var body struct {
		Points []qdrantPoint `json:"points"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/collections/mfs_collection/points", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		json.NewEncoder(w).Encode(map[string]interface{}{"status": "ok"})
	}))
	defer server.Close()

	s := NewQdrantStore(server.URL, "", "")
	err := s.Upsert(context.Background(), []*types.Chunk{
		{ID: "c1", Text: "call to order", Source: "doc.pdf", Embedding: []float32{1, 2},
			Metadata: types.Metadata{Year: 2021, FileType: "minutes"}},
	})
	require.NoError(t, err)

	require.Len(t, body.Points, 1)
	assert.Equal(t, "c1", body.Points[0].ID)
	assert.Equal(t, "call to order", body.Points[0].Payload["text"])
	assert.Equal(t, "minutes", body.Points[0].Payload["file_type"])
	assert.Equal(t, float64(2021), body.Points[0].Payload["year"])
}

func TestQdrantStoreFetchServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	s := NewQdrantStore(server.URL, "", "")
	_, err := s.Fetch(context.Background(), nil, 10)
	assert.ErrorIs(t, err, types.ErrStorageUnavailable)
}

func TestQdrantStoreEnsureIndexesToleratesExisting(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "index already exists", http.StatusConflict)
	}))
	defer server.Close()

	s := NewQdrantStore(server.URL, "", "")
	assert.NoError(t, s.EnsureIndexes(context.Background()))
}
