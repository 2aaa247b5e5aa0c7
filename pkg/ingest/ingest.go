package ingest

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/soundprediction/quorum/pkg/embedder"
	"github.com/soundprediction/quorum/pkg/store"
	"github.com/soundprediction/quorum/pkg/types"
)

// maxUploadAttempts bounds the exponential-backoff retry around one upsert.
const maxUploadAttempts = 5

// Extractor pulls plain text out of a source file.
type Extractor interface {
	// Supports reports whether this extractor handles the file.
	Supports(path string) bool

	// Extract returns the file's text content.
	Extract(ctx context.Context, path string) (string, error)
}

// PlainTextExtractor reads .txt and .md files verbatim.
type PlainTextExtractor struct{}

func (PlainTextExtractor) Supports(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md":
		return true
	}
	return false
}

func (PlainTextExtractor) Extract(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

// Options holds pipeline tuning knobs. Zero values fall back to defaults.
type Options struct {
	ChunkWords       int
	ChunkOverlap     int
	BatchTokenBudget int
	ChunkTokenLimit  int
	UploadBatchSize  int
}

func (o *Options) normalize() {
	if o.ChunkWords <= 0 {
		o.ChunkWords = DefaultChunkWords
	}
	if o.ChunkOverlap <= 0 {
		o.ChunkOverlap = DefaultChunkOverlap
	}
	if o.BatchTokenBudget <= 0 {
		o.BatchTokenBudget = DefaultBatchTokenBudget
	}
	if o.ChunkTokenLimit <= 0 {
		o.ChunkTokenLimit = DefaultChunkTokenLimit
	}
	if o.UploadBatchSize <= 0 {
		o.UploadBatchSize = DefaultUploadBatchSize
	}
}

// Result summarizes one ingestion run.
type Result struct {
	Documents        int
	Chunks           int
	SkippedUnchanged int
	SkippedOversize  int
}

// Pipeline embeds and stores documents.
type Pipeline struct {
	store      store.Store
	embedder   embedder.Client
	ledger     *Ledger
	extractors []Extractor
	opts       Options
	logger     *slog.Logger
}

// NewPipeline creates an ingestion pipeline. A nil ledger disables resume
// tracking; a nil extractor list defaults to plain text.
func NewPipeline(s store.Store, e embedder.Client, ledger *Ledger, opts Options, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	opts.normalize()
	return &Pipeline{
		store:      s,
		embedder:   e,
		ledger:     ledger,
		extractors: []Extractor{PlainTextExtractor{}},
		opts:       opts,
		logger:     logger,
	}
}

// AddExtractor registers an extractor ahead of the defaults.
func (p *Pipeline) AddExtractor(e Extractor) {
	p.extractors = append([]Extractor{e}, p.extractors...)
}

func (p *Pipeline) extractorFor(path string) Extractor {
	for _, e := range p.extractors {
		if e.Supports(path) {
			return e
		}
	}
	return nil
}

// IngestDir walks a directory tree and ingests every supported file.
func (p *Pipeline) IngestDir(ctx context.Context, dir string) (*Result, error) {
	result := &Result{}

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasSuffix(path, SidecarSuffix) {
			return nil
		}
		if p.extractorFor(path) == nil {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		fileResult, err := p.IngestFile(ctx, path)
		if err != nil {
			return fmt.Errorf("ingesting %s: %w", path, err)
		}
		result.Documents += fileResult.Documents
		result.Chunks += fileResult.Chunks
		result.SkippedUnchanged += fileResult.SkippedUnchanged
		result.SkippedOversize += fileResult.SkippedOversize
		return nil
	})
	if err != nil {
		return result, err
	}

	p.logger.Info("ingestion complete",
		"documents", result.Documents,
		"chunks", result.Chunks,
		"skipped_unchanged", result.SkippedUnchanged,
		"skipped_oversize", result.SkippedOversize)
	return result, nil
}

// IngestFile extracts, chunks, embeds, and stores a single document.
func (p *Pipeline) IngestFile(ctx context.Context, path string) (*Result, error) {
	result := &Result{}

	extractor := p.extractorFor(path)
	if extractor == nil {
		return result, fmt.Errorf("no extractor supports %s", path)
	}

	text, err := extractor.Extract(ctx, path)
	if err != nil {
		return result, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		p.logger.Warn("skipping empty document", "path", path)
		return result, nil
	}

	source := filepath.Base(path)
	hash := ContentHash(text)

	if p.ledger != nil {
		seen, err := p.ledger.Seen(source, hash)
		if err != nil {
			return result, err
		}
		if seen {
			p.logger.Debug("skipping unchanged document", "source", source)
			result.SkippedUnchanged++
			return result, nil
		}
	}

	meta, err := InferMetadata(path, text)
	if err != nil {
		return result, err
	}

	chunks, skippedOversize, err := p.buildChunks(ctx, source, text, meta)
	if err != nil {
		return result, err
	}
	result.SkippedOversize = skippedOversize

	for start := 0; start < len(chunks); start += p.opts.UploadBatchSize {
		end := start + p.opts.UploadBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		if err := p.upsertWithRetry(ctx, chunks[start:end]); err != nil {
			return result, err
		}
	}

	if p.ledger != nil {
		if err := p.ledger.Mark(source, hash); err != nil {
			return result, err
		}
	}

	result.Documents = 1
	result.Chunks = len(chunks)
	p.logger.Info("ingested document", "source", source, "chunks", len(chunks))
	return result, nil
}

// buildChunks splits, embeds, and assembles chunks for one document.
func (p *Pipeline) buildChunks(ctx context.Context, source, text string, meta types.Metadata) ([]*types.Chunk, int, error) {
	texts := SplitWords(text, p.opts.ChunkWords, p.opts.ChunkOverlap)

	batches, skipped := SafeBatches(texts, p.opts.BatchTokenBudget, p.opts.ChunkTokenLimit)
	for _, i := range skipped {
		p.logger.Warn("skipping oversized chunk",
			"source", source, "chunk_index", i, "tokens", EstimateTokens(texts[i]))
	}

	embeddings := make([][]float32, len(texts))
	for _, batch := range batches {
		batchTexts := make([]string, len(batch))
		for j, i := range batch {
			batchTexts[j] = texts[i]
		}
		vectors, err := p.embedder.Embed(ctx, batchTexts)
		if err != nil {
			return nil, len(skipped), err
		}
		for j, i := range batch {
			embeddings[i] = vectors[j]
		}
	}

	skippedSet := make(map[int]bool, len(skipped))
	for _, i := range skipped {
		skippedSet[i] = true
	}

	var chunks []*types.Chunk
	for i, chunkText := range texts {
		if skippedSet[i] {
			continue
		}
		chunks = append(chunks, &types.Chunk{
			ID:         chunkID(source, i),
			Text:       chunkText,
			Source:     source,
			ChunkIndex: i,
			Embedding:  embeddings[i],
			Metadata:   meta,
		})
	}
	return chunks, len(skipped), nil
}

// chunkID derives a stable UUID from the source and chunk index so re-runs
// overwrite existing points instead of duplicating them.
func chunkID(source string, index int) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("%s#%d", source, index))).String()
}

// upsertWithRetry retries transient store failures with exponential backoff.
func (p *Pipeline) upsertWithRetry(ctx context.Context, chunks []*types.Chunk) error {
	var lastErr error
	for attempt := 0; attempt < maxUploadAttempts; attempt++ {
		if attempt > 0 {
			backoff := time.Second << (attempt - 1)
			if backoff > 30*time.Second {
				backoff = 30 * time.Second
			}
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		lastErr = p.store.Upsert(ctx, chunks)
		if lastErr == nil {
			return nil
		}
		p.logger.Warn("upsert failed, retrying",
			"attempt", attempt+1, "error", lastErr)
	}
	return fmt.Errorf("upsert failed after %d attempts: %w", maxUploadAttempts, lastErr)
}
