package quorum

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/soundprediction/quorum/pkg/alert"
	"github.com/soundprediction/quorum/pkg/config"
	"github.com/soundprediction/quorum/pkg/embedder"
	"github.com/soundprediction/quorum/pkg/ingest"
	"github.com/soundprediction/quorum/pkg/llm"
	"github.com/soundprediction/quorum/pkg/store"
	"github.com/soundprediction/quorum/pkg/types"
)

// Quorum is the main interface for querying and maintaining the document
// corpus.
type Quorum interface {
	// Retrieve runs hybrid retrieval and returns the top chunks, one per
	// source document unless ReturnAllChunks is set.
	Retrieve(ctx context.Context, query string, opts *types.RetrieveOptions) ([]*types.Chunk, error)

	// Ask retrieves context for the query and synthesizes an answer with
	// the documents it came from.
	Ask(ctx context.Context, query string, opts *types.RetrieveOptions) (*types.Answer, error)

	// FormatContext renders chunks into the context block given to the
	// language model.
	FormatContext(chunks []*types.Chunk) string

	// IngestDir embeds and stores every supported document under dir.
	IngestDir(ctx context.Context, dir string) (*ingest.Result, error)

	// IngestFile embeds and stores a single document.
	IngestFile(ctx context.Context, path string) (*ingest.Result, error)

	// EnsureIndexes creates store indexes needed for filtered retrieval.
	EnsureIndexes(ctx context.Context) error

	// Close closes all connections and cleans up resources.
	Close(ctx context.Context) error
}

// Client is the main implementation of the Quorum interface.
type Client struct {
	store    store.Store
	embedder embedder.Client
	llm      llm.Client
	config   *config.Config
	logger   *slog.Logger

	ledgerMu sync.Mutex
	ledger   *ingest.Ledger
}

var _ Quorum = (*Client)(nil)

// NewClient creates a client from already constructed components. The chat
// client may be nil; Ask then returns an error but Retrieve works normally.
func NewClient(s store.Store, e embedder.Client, l llm.Client, cfg *config.Config, logger *slog.Logger) (*Client, error) {
	if s == nil {
		return nil, fmt.Errorf("store is required")
	}
	if e == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	if cfg == nil {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return nil, err
		}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		store:    s,
		embedder: e,
		llm:      l,
		config:   cfg,
		logger:   logger,
	}, nil
}

// NewClientFromConfig wires up the store, embedder, and chat client that the
// configuration names.
func NewClientFromConfig(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	if cfg == nil {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return nil, err
		}
	}
	if logger == nil {
		logger = slog.Default()
	}

	s, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	var e embedder.Client = embedder.NewOpenAIEmbedder(&embedder.Config{
		Model:      cfg.Embedding.Model,
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Dimensions: cfg.Embedding.Dimensions,
	})
	if cfg.CircuitBreaker.Enabled {
		cb := embedder.NewCircuitBreakerClient(e, cfg.CircuitBreaker, logger, "embedder")
		if cfg.Alert.Enabled {
			cb.SetAlerter(alert.NewEmailAlerter(cfg.Alert))
		}
		e = cb
	}

	l := llm.NewOpenAIClient(&llm.Config{
		Model:       cfg.LLM.Model,
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
	})

	return NewClient(s, e, l, cfg, logger)
}

// openStore creates the chunk store named by the storage driver setting.
func openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.Storage.Driver {
	case "memory":
		return store.NewMemoryStore(), nil
	case "badger", "":
		return store.NewBadgerStore(cfg.Storage.Path)
	case "qdrant":
		return store.NewQdrantStore(cfg.Storage.URL, cfg.Storage.APIKey, cfg.Storage.Collection), nil
	case "neo4j":
		return store.NewNeo4jStore(cfg.Storage.URI, cfg.Storage.Username, cfg.Storage.Password, cfg.Storage.Database)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// EnsureIndexes creates store indexes needed for filtered retrieval.
func (c *Client) EnsureIndexes(ctx context.Context) error {
	return c.store.EnsureIndexes(ctx)
}

// Store returns the underlying chunk store.
func (c *Client) Store() store.Store {
	return c.store
}

// Embedder returns the embedding client.
func (c *Client) Embedder() embedder.Client {
	return c.embedder
}

// Close closes all connections and cleans up resources.
func (c *Client) Close(ctx context.Context) error {
	var firstErr error
	c.ledgerMu.Lock()
	if c.ledger != nil {
		if err := c.ledger.Close(); err != nil {
			firstErr = err
		}
		c.ledger = nil
	}
	c.ledgerMu.Unlock()
	if c.llm != nil {
		if err := c.llm.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := c.embedder.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := c.store.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
