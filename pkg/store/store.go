// Package store provides the chunk storage drivers behind retrieval.
//
// All drivers implement the same narrow contract: a filtered, bounded fetch
// of candidate chunks plus batched upserts at ingestion time. The in-memory
// and badger drivers run in-process; the qdrant and neo4j drivers talk to
// external services. Filter validation happens before any driver is touched,
// so an unknown filter key fails the same way on every backend.
package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/soundprediction/quorum/pkg/types"
)

// Store is the chunk storage contract consumed by the retrieval pipeline.
type Store interface {
	// Fetch returns up to limit chunks matching the filter. A nil filter
	// matches everything. The order of returned chunks is deterministic
	// per driver but not meaningful; ranking happens downstream.
	Fetch(ctx context.Context, filter *Filter, limit int) ([]*types.Chunk, error)

	// Upsert inserts or replaces chunks by ID.
	Upsert(ctx context.Context, chunks []*types.Chunk) error

	// EnsureIndexes creates payload indexes for the filterable fields on
	// backends that support them. No-op on in-process drivers.
	EnsureIndexes(ctx context.Context) error

	// Close releases the driver's resources.
	Close() error
}

// Filter is a conjunction of equality constraints over the filterable
// metadata fields. All conditions must match. Construction validates keys,
// so every driver rejects unknown fields identically.
type Filter struct {
	conditions map[string]interface{}
}

// NewFilter validates the given conditions against the metadata schema.
// Unknown keys are rejected with ErrInvalidFilterKey rather than ignored:
// a typo in a filter key should fail loudly, not silently match everything.
func NewFilter(conditions map[string]interface{}) (*Filter, error) {
	if len(conditions) == 0 {
		return nil, nil
	}

	valid := make(map[string]bool, len(types.FilterableFields))
	for _, key := range types.FilterableFields {
		valid[key] = true
	}

	for key := range conditions {
		if !valid[key] {
			return nil, fmt.Errorf("%w: %q", types.ErrInvalidFilterKey, key)
		}
	}

	copied := make(map[string]interface{}, len(conditions))
	for k, v := range conditions {
		copied[k] = v
	}
	return &Filter{conditions: copied}, nil
}

// Conditions returns the validated key/value constraints. Never mutated by
// drivers.
func (f *Filter) Conditions() map[string]interface{} {
	if f == nil {
		return nil
	}
	return f.conditions
}

// Matches reports whether the chunk satisfies every condition. Used by the
// in-process drivers; remote drivers translate Conditions into their own
// query syntax instead.
func (f *Filter) Matches(chunk *types.Chunk) bool {
	if f == nil {
		return true
	}

	for key, want := range f.conditions {
		if key == "source" {
			if !equalScalar(want, chunk.Source) {
				return false
			}
			continue
		}

		have, ok := chunk.Metadata.Field(key)
		if !ok {
			return false
		}
		if !matchValue(want, have) {
			return false
		}
	}
	return true
}

// matchValue compares a filter value against a metadata value. List-valued
// fields match when they contain the wanted scalar.
func matchValue(want, have interface{}) bool {
	if list, ok := have.([]string); ok {
		for _, item := range list {
			if equalScalar(want, item) {
				return true
			}
		}
		return false
	}
	return equalScalar(want, have)
}

// equalScalar compares scalars across the representations a value can take
// after JSON or YAML decoding: ints arrive as float64 from JSON bodies,
// years are sometimes passed as strings.
func equalScalar(want, have interface{}) bool {
	switch h := have.(type) {
	case string:
		if w, ok := want.(string); ok {
			return w == h
		}
	case bool:
		if w, ok := want.(bool); ok {
			return w == h
		}
	case int:
		switch w := want.(type) {
		case int:
			return w == h
		case int64:
			return w == int64(h)
		case float64:
			return w == float64(h)
		case string:
			n, err := strconv.Atoi(strings.TrimSpace(w))
			return err == nil && n == h
		}
	}
	return false
}
