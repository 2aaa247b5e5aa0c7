package store

import (
	"context"
	"encoding/json"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/soundprediction/quorum/pkg/types"
)

var chunkPrefix = []byte("chunk:")

// BadgerStore persists chunks in an embedded badger database. It serves
// single-machine deployments that want a durable corpus without running a
// vector database; filters are applied by scanning, so it is only suitable
// for corpora within the candidate bound.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore opens (or creates) a badger database at path.
func NewBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: opening badger at %s: %v", types.ErrStorageUnavailable, path, err)
	}
	return &BadgerStore{db: db}, nil
}

// Fetch scans the chunk keyspace in key order, applying the filter, bounded
// by limit.
func (s *BadgerStore) Fetch(ctx context.Context, filter *Filter, limit int) ([]*types.Chunk, error) {
	var results []*types.Chunk

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(chunkPrefix); it.ValidForPrefix(chunkPrefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var chunk types.Chunk
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &chunk)
			})
			if err != nil {
				return fmt.Errorf("decoding chunk %s: %w", it.Item().Key(), err)
			}

			if !filter.Matches(&chunk) {
				continue
			}
			results = append(results, &chunk)
			if limit > 0 && len(results) >= limit {
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: badger fetch: %v", types.ErrStorageUnavailable, err)
	}

	return results, nil
}

// Upsert writes chunks in a single transaction, replacing by ID.
func (s *BadgerStore) Upsert(ctx context.Context, chunks []*types.Chunk) error {
	for _, chunk := range chunks {
		if err := chunk.Validate(); err != nil {
			return err
		}
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		for _, chunk := range chunks {
			data, err := json.Marshal(chunk)
			if err != nil {
				return fmt.Errorf("encoding chunk %s: %w", chunk.ID, err)
			}
			if err := txn.Set(append(chunkPrefix, chunk.ID...), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: badger upsert: %v", types.ErrStorageUnavailable, err)
	}
	return nil
}

// EnsureIndexes is a no-op; badger fetches scan.
func (s *BadgerStore) EnsureIndexes(ctx context.Context) error {
	return nil
}

// Close closes the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
