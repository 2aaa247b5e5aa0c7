package quorum

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/soundprediction/quorum/pkg/search"
	"github.com/soundprediction/quorum/pkg/store"
	"github.com/soundprediction/quorum/pkg/types"
)

// Retrieve runs hybrid retrieval for the query.
//
// Candidates are fetched with metadata filters applied, grouped by source
// document, and each group's representative chunk is scored on a BM25 axis
// and an embedding axis. Both axes are min-max normalized and blended with
// alpha; query intent signals add a small fixed-weight prior unless
// disabled. With UseMMR the top k is picked greedily for diversity instead
// of taking the blended ranking as is.
func (c *Client) Retrieve(ctx context.Context, query string, opts *types.RetrieveOptions) ([]*types.Chunk, error) {
	if opts == nil {
		opts = &types.RetrieveOptions{}
	}
	local := *opts
	if local.K <= 0 && c.config.Retrieval.K > 0 {
		local.K = c.config.Retrieval.K
	}
	if local.Alpha == nil && c.config.Retrieval.Alpha > 0 {
		alpha := c.config.Retrieval.Alpha
		local.Alpha = &alpha
	}
	local.Normalize()

	now := time.Now()

	filters := local.Filters
	var window search.YearWindow
	var hasWindow bool
	if local.UseYearFilter {
		window, hasWindow = search.ParseYearWindow(query, now)
		if hasWindow && window.From == window.To {
			// A single-year window pushes down as an equality filter.
			filters = copyFilters(filters)
			if _, exists := filters["year"]; !exists {
				filters["year"] = window.From
			}
			hasWindow = false
		}
	}

	filter, err := store.NewFilter(filters)
	if err != nil {
		return nil, err
	}

	chunks, err := c.store.Fetch(ctx, filter, c.config.Retrieval.MaxCandidates)
	if err != nil {
		return nil, fmt.Errorf("fetching candidates: %w", err)
	}

	if hasWindow {
		chunks = filterByYearWindow(chunks, window)
	}
	if len(chunks) == 0 {
		return []*types.Chunk{}, nil
	}

	alpha := *local.Alpha

	// Pure lexical retrieval never needs the provider.
	var queryEmbedding []float32
	if alpha < 1 {
		queryEmbedding, err = c.embedder.EmbedSingle(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("embedding query: %w", err)
		}
	}

	groups := search.GroupByDocument(chunks)
	withIntent := !local.SkipIntent

	scored, err := search.ScoreGroups(groups, query, queryEmbedding, withIntent, now)
	if err != nil {
		return nil, err
	}

	var top []*search.ScoredGroup
	if local.UseMMR {
		ranked := search.Rank(scored, alpha, len(scored), withIntent)
		lambda := search.DeriveMMRLambda(search.ParseQuerySignals(query, now))
		if local.MMRLambda != nil {
			lambda = *local.MMRLambda
		}
		top, err = search.MMRSelect(ranked, local.K, lambda)
		if err != nil {
			return nil, err
		}
	} else {
		top = search.Rank(scored, alpha, local.K, withIntent)
	}

	c.logger.Debug("retrieval complete",
		"query", query, "candidates", len(chunks), "documents", len(top),
		"alpha", alpha, "mmr", local.UseMMR)

	var results []*types.Chunk
	for _, sg := range top {
		if local.ReturnAllChunks {
			results = append(results, sg.Group.Chunks...)
		} else {
			results = append(results, sg.Group.Representative)
		}
	}
	return results, nil
}

// FormatContext renders chunks into the context block given to the model:
// chunk texts in ranked order, separated by blank lines.
func (c *Client) FormatContext(chunks []*types.Chunk) string {
	parts := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		parts = append(parts, chunk.Text)
	}
	return strings.Join(parts, "\n\n")
}

func copyFilters(filters map[string]interface{}) map[string]interface{} {
	copied := make(map[string]interface{}, len(filters)+1)
	for k, v := range filters {
		copied[k] = v
	}
	return copied
}

// filterByYearWindow keeps chunks whose year falls inside the window.
// Undated chunks are excluded, matching an indexed range filter.
func filterByYearWindow(chunks []*types.Chunk, window search.YearWindow) []*types.Chunk {
	var kept []*types.Chunk
	for _, chunk := range chunks {
		if chunk.Metadata.Year != 0 && window.Contains(chunk.Metadata.Year) {
			kept = append(kept, chunk)
		}
	}
	return kept
}
