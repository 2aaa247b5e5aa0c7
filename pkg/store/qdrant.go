package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/soundprediction/quorum/pkg/types"
)

// DefaultQdrantCollection is the collection holding the document corpus.
const DefaultQdrantCollection = "mfs_collection"

const qdrantScrollPageSize = 1000

// qdrantIndexSchemas maps filterable payload fields to qdrant index types.
var qdrantIndexSchemas = map[string]string{
	"file_type":       "keyword",
	"year":            "integer",
	"committee_codes": "keyword",
	"body_code":       "keyword",
	"full_date":       "keyword",
	"semester":        "keyword",
	"month":           "keyword",
	"stance":          "keyword",
	"topic":           "keyword",
	"status":          "keyword",
	"action_type":     "keyword",
	"source":          "keyword",
	"draft":           "bool",
}

// QdrantStore talks to a qdrant instance over its REST API. Chunks are
// points whose payload carries the text, source, chunk index, and the
// flattened metadata fields.
type QdrantStore struct {
	baseURL    string
	apiKey     string
	collection string
	httpClient *http.Client
}

// NewQdrantStore creates a store for the given qdrant endpoint. An empty
// collection selects DefaultQdrantCollection.
func NewQdrantStore(baseURL, apiKey, collection string) *QdrantStore {
	if collection == "" {
		collection = DefaultQdrantCollection
	}
	return &QdrantStore{
		baseURL:    baseURL,
		apiKey:     apiKey,
		collection: collection,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type qdrantMatch struct {
	Value interface{} `json:"value"`
}

type qdrantCondition struct {
	Key   string      `json:"key"`
	Match qdrantMatch `json:"match"`
}

type qdrantFilter struct {
	Must []qdrantCondition `json:"must"`
}

type qdrantScrollRequest struct {
	Filter      *qdrantFilter `json:"filter,omitempty"`
	Limit       int           `json:"limit"`
	Offset      interface{}   `json:"offset,omitempty"`
	WithPayload bool          `json:"with_payload"`
	WithVector  bool          `json:"with_vector"`
}

type qdrantPoint struct {
	ID      interface{}            `json:"id"`
	Vector  []float32              `json:"vector,omitempty"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

type qdrantScrollResponse struct {
	Result struct {
		Points         []qdrantPoint `json:"points"`
		NextPageOffset interface{}   `json:"next_page_offset"`
	} `json:"result"`
	Status interface{} `json:"status"`
}

// Fetch scrolls the collection page by page, pushing the filter down to
// qdrant, until limit chunks are collected or the collection is exhausted.
func (s *QdrantStore) Fetch(ctx context.Context, filter *Filter, limit int) ([]*types.Chunk, error) {
	qf := translateFilter(filter)

	var results []*types.Chunk
	var offset interface{}

	for {
		pageSize := qdrantScrollPageSize
		if limit > 0 && limit-len(results) < pageSize {
			pageSize = limit - len(results)
		}

		req := qdrantScrollRequest{
			Filter:      qf,
			Limit:       pageSize,
			Offset:      offset,
			WithPayload: true,
			WithVector:  true,
		}

		var resp qdrantScrollResponse
		path := fmt.Sprintf("/collections/%s/points/scroll", s.collection)
		if err := s.post(ctx, path, req, &resp); err != nil {
			return nil, err
		}

		for _, point := range resp.Result.Points {
			results = append(results, pointToChunk(point))
		}

		offset = resp.Result.NextPageOffset
		if offset == nil || (limit > 0 && len(results) >= limit) {
			break
		}
	}

	return results, nil
}

// Upsert uploads chunks as points in one request. Batching across requests
// is the ingestion layer's concern.
func (s *QdrantStore) Upsert(ctx context.Context, chunks []*types.Chunk) error {
	points := make([]qdrantPoint, len(chunks))
	for i, chunk := range chunks {
		if err := chunk.Validate(); err != nil {
			return err
		}
		points[i] = chunkToPoint(chunk)
	}

	body := map[string]interface{}{"points": points}
	path := fmt.Sprintf("/collections/%s/points", s.collection)
	return s.put(ctx, path, body, nil)
}

// EnsureIndexes creates a payload index per filterable field. Qdrant answers
// 4xx when the index already exists; that is not an error here.
func (s *QdrantStore) EnsureIndexes(ctx context.Context) error {
	for field, schema := range qdrantIndexSchemas {
		body := map[string]interface{}{
			"field_name":   field,
			"field_schema": schema,
		}
		path := fmt.Sprintf("/collections/%s/index", s.collection)
		if err := s.put(ctx, path, body, nil); err != nil {
			if isQdrantConflict(err) {
				continue
			}
			return err
		}
	}
	return nil
}

// Close is a no-op; the HTTP client holds no persistent connection state
// worth tearing down explicitly.
func (s *QdrantStore) Close() error {
	return nil
}

func translateFilter(filter *Filter) *qdrantFilter {
	conditions := filter.Conditions()
	if len(conditions) == 0 {
		return nil
	}

	qf := &qdrantFilter{}
	for key, value := range conditions {
		qf.Must = append(qf.Must, qdrantCondition{Key: key, Match: qdrantMatch{Value: value}})
	}
	return qf
}

func chunkToPoint(chunk *types.Chunk) qdrantPoint {
	payload := map[string]interface{}{
		"text":        chunk.Text,
		"source":      chunk.Source,
		"chunk_index": chunk.ChunkIndex,
	}

	m := &chunk.Metadata
	for key, value := range map[string]interface{}{
		"title": m.Title, "semester": m.Semester, "month": m.Month,
		"full_date": m.FullDate, "body_code": m.BodyCode, "file_type": m.FileType,
		"stance": m.Stance, "topic": m.Topic, "status": m.Status,
		"action_type": m.ActionType, "link": m.Link,
	} {
		if value != "" {
			payload[key] = value
		}
	}
	if m.Year > 0 {
		payload["year"] = m.Year
	}
	if len(m.CommitteeCodes) > 0 {
		payload["committee_codes"] = m.CommitteeCodes
	}
	if m.Draft {
		payload["draft"] = true
	}

	return qdrantPoint{ID: chunk.ID, Vector: chunk.Embedding, Payload: payload}
}

func pointToChunk(point qdrantPoint) *types.Chunk {
	chunk := &types.Chunk{
		ID:        fmt.Sprintf("%v", point.ID),
		Embedding: point.Vector,
	}

	p := point.Payload
	chunk.Text, _ = p["text"].(string)
	chunk.Source, _ = p["source"].(string)
	if idx, ok := p["chunk_index"].(float64); ok {
		chunk.ChunkIndex = int(idx)
	}

	m := &chunk.Metadata
	m.Title, _ = p["title"].(string)
	m.Semester, _ = p["semester"].(string)
	m.Month, _ = p["month"].(string)
	m.FullDate, _ = p["full_date"].(string)
	m.BodyCode, _ = p["body_code"].(string)
	m.FileType, _ = p["file_type"].(string)
	m.Stance, _ = p["stance"].(string)
	m.Topic, _ = p["topic"].(string)
	m.Status, _ = p["status"].(string)
	m.ActionType, _ = p["action_type"].(string)
	m.Link, _ = p["link"].(string)
	m.Draft, _ = p["draft"].(bool)
	if year, ok := p["year"].(float64); ok {
		m.Year = int(year)
	}
	if codes, ok := p["committee_codes"].([]interface{}); ok {
		for _, code := range codes {
			if s, ok := code.(string); ok {
				m.CommitteeCodes = append(m.CommitteeCodes, s)
			}
		}
	}

	return chunk
}

func (s *QdrantStore) post(ctx context.Context, path string, body, out interface{}) error {
	return s.do(ctx, http.MethodPost, path, body, out)
}

func (s *QdrantStore) put(ctx context.Context, path string, body, out interface{}) error {
	return s.do(ctx, http.MethodPut, path, body, out)
}

type qdrantStatusError struct {
	code int
	body string
}

func (e *qdrantStatusError) Error() string {
	return fmt.Sprintf("qdrant returned %d: %s", e.code, e.body)
}

func isQdrantConflict(err error) bool {
	var statusErr *qdrantStatusError
	if errors.As(err, &statusErr) {
		return statusErr.code >= 400 && statusErr.code < 500
	}
	return false
}

func (s *QdrantStore) do(ctx context.Context, method, path string, body, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding qdrant request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: building qdrant request: %v", types.ErrStorageUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrStorageUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: %w", types.ErrStorageUnavailable,
			&qdrantStatusError{code: resp.StatusCode, body: string(raw)})
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: decoding qdrant response: %v", types.ErrStorageUnavailable, err)
		}
	}
	return nil
}
