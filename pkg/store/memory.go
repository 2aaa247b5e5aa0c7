package store

import (
	"context"
	"sort"
	"sync"

	"github.com/soundprediction/quorum/pkg/types"
)

// MemoryStore is an in-memory chunk store. Used in tests and for small
// corpora loaded at startup; safe for concurrent use.
type MemoryStore struct {
	mu     sync.RWMutex
	chunks map[string]*types.Chunk
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{chunks: make(map[string]*types.Chunk)}
}

// Fetch returns matching chunks in ID order, bounded by limit.
func (s *MemoryStore) Fetch(ctx context.Context, filter *Filter, limit int) ([]*types.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.chunks))
	for id := range s.chunks {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var results []*types.Chunk
	for _, id := range ids {
		chunk := s.chunks[id]
		if !filter.Matches(chunk) {
			continue
		}
		results = append(results, chunk)
		if limit > 0 && len(results) >= limit {
			break
		}
	}
	return results, nil
}

// Upsert inserts or replaces chunks by ID.
func (s *MemoryStore) Upsert(ctx context.Context, chunks []*types.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, chunk := range chunks {
		if err := chunk.Validate(); err != nil {
			return err
		}
		s.chunks[chunk.ID] = chunk
	}
	return nil
}

// EnsureIndexes is a no-op; the in-memory store scans.
func (s *MemoryStore) EnsureIndexes(ctx context.Context) error {
	return nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}

// Len returns the number of stored chunks.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}
