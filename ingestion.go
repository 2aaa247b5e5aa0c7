package quorum

import (
	"context"

	"github.com/soundprediction/quorum/pkg/ingest"
)

// pipeline builds the ingestion pipeline lazily, opening the resume ledger
// on first use so query-only processes never touch it. The mutex keeps
// concurrent ingestion calls from racing to open the same badger directory.
func (c *Client) pipeline() (*ingest.Pipeline, error) {
	c.ledgerMu.Lock()
	defer c.ledgerMu.Unlock()

	if c.ledger == nil && c.config.Ingest.LedgerPath != "" {
		ledger, err := ingest.OpenLedger(c.config.Ingest.LedgerPath)
		if err != nil {
			return nil, err
		}
		c.ledger = ledger
	}

	return ingest.NewPipeline(c.store, c.embedder, c.ledger, ingest.Options{
		ChunkWords:       c.config.Ingest.ChunkWords,
		ChunkOverlap:     c.config.Ingest.ChunkOverlap,
		BatchTokenBudget: c.config.Ingest.BatchTokenBudget,
		ChunkTokenLimit:  c.config.Ingest.ChunkTokenLimit,
		UploadBatchSize:  c.config.Ingest.UploadBatchSize,
	}, c.logger), nil
}

// IngestDir embeds and stores every supported document under dir.
func (c *Client) IngestDir(ctx context.Context, dir string) (*ingest.Result, error) {
	p, err := c.pipeline()
	if err != nil {
		return nil, err
	}
	return p.IngestDir(ctx, dir)
}

// IngestFile embeds and stores a single document.
func (c *Client) IngestFile(ctx context.Context, path string) (*ingest.Result, error) {
	p, err := c.pipeline()
	if err != nil {
		return nil, err
	}
	return p.IngestFile(ctx, path)
}
