package quorum

import (
	"context"
	"fmt"
	"strings"

	"github.com/soundprediction/quorum/pkg/llm"
	"github.com/soundprediction/quorum/pkg/types"
)

// snippetLength is how much of a chunk shows in a source listing.
const snippetLength = 150

// Ask retrieves context for the query and synthesizes a grounded answer.
// With nil options every chunk of each matched document goes into the
// context, which is what answer quality wants; pass options to trim it.
func (c *Client) Ask(ctx context.Context, query string, opts *types.RetrieveOptions) (*types.Answer, error) {
	if c.llm == nil {
		return nil, fmt.Errorf("no language model configured")
	}
	if opts == nil {
		opts = &types.RetrieveOptions{ReturnAllChunks: true}
	}

	chunks, err := c.Retrieve(ctx, query, opts)
	if err != nil {
		return nil, err
	}

	sources := collectSources(chunks)
	names := make([]string, len(sources))
	for i, src := range sources {
		names[i] = src.Document
	}

	structured, err := llm.Synthesize(ctx, c.llm, query, c.FormatContext(chunks), names)
	if err != nil {
		return nil, fmt.Errorf("synthesizing answer: %w", err)
	}

	answer := &types.Answer{Text: structured.Answer}
	if structured.Answer != llm.FallbackAnswer {
		answer.Sources = citedSubset(sources, structured.CitedSources)
	}
	return answer, nil
}

// citedSubset narrows the source list to the documents the model said it
// used, keeping rank order. An empty or unrecognizable citation list keeps
// the full list rather than hiding provenance.
func citedSubset(sources []types.Source, cited []string) []types.Source {
	if len(cited) == 0 {
		return sources
	}
	want := make(map[string]bool, len(cited))
	for _, name := range cited {
		want[strings.ToLower(strings.TrimSpace(name))] = true
	}

	var kept []types.Source
	for _, src := range sources {
		if want[strings.ToLower(src.Document)] {
			kept = append(kept, src)
		}
	}
	if len(kept) == 0 {
		return sources
	}
	return kept
}

// collectSources lists each document once, in rank order, with a short
// preview of its first retrieved chunk.
func collectSources(chunks []*types.Chunk) []types.Source {
	seen := make(map[string]bool)
	var sources []types.Source
	for _, chunk := range chunks {
		if seen[chunk.Source] {
			continue
		}
		seen[chunk.Source] = true
		sources = append(sources, types.Source{
			Document: chunk.Source,
			Title:    chunk.Metadata.Title,
			Link:     chunk.Metadata.Link,
			Snippet:  snippet(chunk.Text),
		})
	}
	return sources
}

func snippet(text string) string {
	flat := strings.TrimSpace(strings.Join(strings.Fields(text), " "))
	if flat == "" {
		return "(No visible content)"
	}
	runes := []rune(flat)
	if len(runes) > snippetLength {
		return string(runes[:snippetLength]) + "..."
	}
	return flat
}
