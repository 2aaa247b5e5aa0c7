// Package embedder provides embedding clients for query and chunk vectors.
//
// The OpenAI client is the production driver; the circuit-breaker wrapper
// guards it so a flapping provider fails fast during ingestion runs instead
// of stalling every batch. Query embedding failures surface to the caller as
// ErrEmbeddingProvider; retrieval never retries them itself.
package embedder

import "context"

// Client generates embeddings for text.
type Client interface {
	// Embed generates embeddings for the given texts, one vector per text,
	// in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedSingle generates an embedding for a single text.
	EmbedSingle(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the vector dimensionality of the model.
	Dimensions() int

	// Close cleans up any resources.
	Close() error
}

// Config holds embedding client settings.
type Config struct {
	// Model is the embedding model name.
	Model string
	// APIKey authenticates against the provider.
	APIKey string
	// BaseURL overrides the provider endpoint, for compatible gateways.
	BaseURL string
	// Dimensions is the vector dimensionality the model produces.
	Dimensions int
}

// DefaultModel produced every stored chunk embedding; queries must use the
// same model or dimensions will not line up.
const DefaultModel = "text-embedding-3-small"

// DefaultDimensions is the dimensionality of DefaultModel.
const DefaultDimensions = 1536
