package dto

import (
	"github.com/soundprediction/quorum/pkg/types"
)

// QueryOptions carries the retrieval knobs shared by search and ask.
type QueryOptions struct {
	K               int                    `json:"k,omitempty"`
	Alpha           *float64               `json:"alpha,omitempty"`
	Filters         map[string]interface{} `json:"filters,omitempty"`
	UseMMR          bool                   `json:"use_mmr,omitempty"`
	MMRLambda       *float64               `json:"mmr_lambda,omitempty"`
	SkipIntent      bool                   `json:"skip_intent,omitempty"`
	UseYearFilter   bool                   `json:"use_year_filter,omitempty"`
	ReturnAllChunks bool                   `json:"return_all_chunks,omitempty"`
}

// SearchRequest is the body of POST /search.
type SearchRequest struct {
	Query string `json:"query" binding:"required"`
	QueryOptions
}

// AskRequest is the body of POST /ask.
type AskRequest struct {
	Query string `json:"query" binding:"required"`
	QueryOptions
}

// RetrieveOptions converts the request knobs to retrieval options.
func (o *QueryOptions) RetrieveOptions() *types.RetrieveOptions {
	return &types.RetrieveOptions{
		K:               o.K,
		Alpha:           o.Alpha,
		Filters:         o.Filters,
		UseMMR:          o.UseMMR,
		MMRLambda:       o.MMRLambda,
		SkipIntent:      o.SkipIntent,
		UseYearFilter:   o.UseYearFilter,
		ReturnAllChunks: o.ReturnAllChunks,
	}
}

// ChunkResult is one retrieved chunk in a search response.
type ChunkResult struct {
	ID         string         `json:"id"`
	Source     string         `json:"source"`
	ChunkIndex int            `json:"chunk_index"`
	Text       string         `json:"text"`
	Metadata   types.Metadata `json:"metadata"`
}

// SearchResponse is the body returned by POST /search.
type SearchResponse struct {
	Chunks []ChunkResult `json:"chunks"`
	Total  int           `json:"total"`
}

// NewSearchResponse converts chunks to the wire format, dropping embeddings.
func NewSearchResponse(chunks []*types.Chunk) SearchResponse {
	results := make([]ChunkResult, len(chunks))
	for i, chunk := range chunks {
		results[i] = ChunkResult{
			ID:         chunk.ID,
			Source:     chunk.Source,
			ChunkIndex: chunk.ChunkIndex,
			Text:       chunk.Text,
			Metadata:   chunk.Metadata,
		}
	}
	return SearchResponse{Chunks: results, Total: len(results)}
}
