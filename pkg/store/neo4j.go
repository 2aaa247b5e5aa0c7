package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/soundprediction/quorum/pkg/types"
)

// Neo4jStore keeps chunks as (:Chunk) nodes in a neo4j database. It serves
// deployments that already run neo4j for other workloads and want the
// document corpus co-located; embeddings are stored as float arrays on the
// node, similarity is computed client-side by the ranking engine.
type Neo4jStore struct {
	client   neo4j.DriverWithContext
	database string
}

// NewNeo4jStore connects to a neo4j instance with basic auth.
func NewNeo4jStore(uri, username, password, database string) (*Neo4jStore, error) {
	client, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("%w: creating neo4j driver: %v", types.ErrStorageUnavailable, err)
	}
	if database == "" {
		database = "neo4j"
	}
	return &Neo4jStore{client: client, database: database}, nil
}

// Fetch queries chunks matching the filter, bounded by limit, ordered by id
// for determinism. List-valued conditions (committee codes) translate to a
// membership check; everything else is property equality.
func (s *Neo4jStore) Fetch(ctx context.Context, filter *Filter, limit int) ([]*types.Chunk, error) {
	session := s.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.database})
	defer session.Close(ctx)

	where, params := buildChunkPredicate(filter)
	if limit <= 0 {
		limit = types.DefaultMaxCandidates
	}
	params["limit"] = limit

	query := "MATCH (c:Chunk)" + where + " RETURN c ORDER BY c.id LIMIT $limit"

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}

		var chunks []*types.Chunk
		for res.Next(ctx) {
			value, found := res.Record().Get("c")
			if !found {
				continue
			}
			node, ok := value.(neo4j.Node)
			if !ok {
				return nil, fmt.Errorf("unexpected type for chunk node: %T", value)
			}
			chunks = append(chunks, chunkFromProps(node.Props))
		}
		return chunks, res.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("%w: neo4j fetch: %v", types.ErrStorageUnavailable, err)
	}

	return result.([]*types.Chunk), nil
}

// Upsert merges chunks by id, replacing all properties.
func (s *Neo4jStore) Upsert(ctx context.Context, chunks []*types.Chunk) error {
	for _, chunk := range chunks {
		if err := chunk.Validate(); err != nil {
			return err
		}
	}

	session := s.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.database})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			UNWIND $rows AS row
			MERGE (c:Chunk {id: row.id})
			SET c = row
		`
		rows := make([]map[string]any, len(chunks))
		for i, chunk := range chunks {
			rows[i] = chunkToProps(chunk)
		}
		_, err := tx.Run(ctx, query, map[string]any{"rows": rows})
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("%w: neo4j upsert: %v", types.ErrStorageUnavailable, err)
	}
	return nil
}

// EnsureIndexes creates the id constraint and property indexes for the
// filterable fields.
func (s *Neo4jStore) EnsureIndexes(ctx context.Context) error {
	session := s.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.database})
	defer session.Close(ctx)

	statements := []string{
		"CREATE CONSTRAINT chunk_id IF NOT EXISTS FOR (c:Chunk) REQUIRE c.id IS UNIQUE",
		"CREATE INDEX chunk_source IF NOT EXISTS FOR (c:Chunk) ON (c.source)",
		"CREATE INDEX chunk_year IF NOT EXISTS FOR (c:Chunk) ON (c.year)",
		"CREATE INDEX chunk_file_type IF NOT EXISTS FOR (c:Chunk) ON (c.file_type)",
		"CREATE INDEX chunk_body_code IF NOT EXISTS FOR (c:Chunk) ON (c.body_code)",
	}

	for _, stmt := range statements {
		_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			_, err := tx.Run(ctx, stmt, nil)
			return nil, err
		})
		if err != nil {
			return fmt.Errorf("%w: neo4j index: %v", types.ErrStorageUnavailable, err)
		}
	}
	return nil
}

// Close closes the underlying driver.
func (s *Neo4jStore) Close() error {
	return s.client.Close(context.Background())
}

// buildChunkPredicate translates filter conditions into a WHERE clause with
// named parameters.
func buildChunkPredicate(filter *Filter) (string, map[string]any) {
	params := map[string]any{}
	conditions := filter.Conditions()
	if len(conditions) == 0 {
		return "", params
	}

	var clauses []string
	i := 0
	for key, value := range conditions {
		param := fmt.Sprintf("p%d", i)
		i++
		params[param] = value
		if key == "committee_codes" {
			clauses = append(clauses, fmt.Sprintf("$%s IN c.committee_codes", param))
		} else {
			clauses = append(clauses, fmt.Sprintf("c.%s = $%s", key, param))
		}
	}
	return " WHERE " + strings.Join(clauses, " AND "), params
}

func chunkToProps(chunk *types.Chunk) map[string]any {
	props := map[string]any{
		"id":          chunk.ID,
		"text":        chunk.Text,
		"source":      chunk.Source,
		"chunk_index": chunk.ChunkIndex,
	}
	if len(chunk.Embedding) > 0 {
		embedding := make([]float64, len(chunk.Embedding))
		for i, v := range chunk.Embedding {
			embedding[i] = float64(v)
		}
		props["embedding"] = embedding
	}

	m := &chunk.Metadata
	for key, value := range map[string]string{
		"title": m.Title, "semester": m.Semester, "month": m.Month,
		"full_date": m.FullDate, "body_code": m.BodyCode, "file_type": m.FileType,
		"stance": m.Stance, "topic": m.Topic, "status": m.Status,
		"action_type": m.ActionType, "link": m.Link,
	} {
		if value != "" {
			props[key] = value
		}
	}
	if m.Year > 0 {
		props["year"] = m.Year
	}
	if len(m.CommitteeCodes) > 0 {
		props["committee_codes"] = m.CommitteeCodes
	}
	if m.Draft {
		props["draft"] = true
	}
	return props
}

func chunkFromProps(props map[string]any) *types.Chunk {
	chunk := &types.Chunk{}
	chunk.ID, _ = props["id"].(string)
	chunk.Text, _ = props["text"].(string)
	chunk.Source, _ = props["source"].(string)
	if idx, ok := props["chunk_index"].(int64); ok {
		chunk.ChunkIndex = int(idx)
	}
	if raw, ok := props["embedding"].([]any); ok {
		embedding := make([]float32, 0, len(raw))
		for _, v := range raw {
			if f, ok := v.(float64); ok {
				embedding = append(embedding, float32(f))
			}
		}
		chunk.Embedding = embedding
	}

	m := &chunk.Metadata
	m.Title, _ = props["title"].(string)
	m.Semester, _ = props["semester"].(string)
	m.Month, _ = props["month"].(string)
	m.FullDate, _ = props["full_date"].(string)
	m.BodyCode, _ = props["body_code"].(string)
	m.FileType, _ = props["file_type"].(string)
	m.Stance, _ = props["stance"].(string)
	m.Topic, _ = props["topic"].(string)
	m.ActionType, _ = props["action_type"].(string)
	m.Status, _ = props["status"].(string)
	m.Link, _ = props["link"].(string)
	m.Draft, _ = props["draft"].(bool)
	if year, ok := props["year"].(int64); ok {
		m.Year = int(year)
	}
	if codes, ok := props["committee_codes"].([]any); ok {
		for _, code := range codes {
			if s, ok := code.(string); ok {
				m.CommitteeCodes = append(m.CommitteeCodes, s)
			}
		}
	}
	return chunk
}
