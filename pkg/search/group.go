package search

import (
	"sort"

	"github.com/soundprediction/quorum/pkg/types"
)

// DocumentGroup collects the candidate chunks of one source document.
// The representative is the chunk with the smallest chunk index, ties broken
// by chunk ID ascending.
type DocumentGroup struct {
	Key            string
	Chunks         []*types.Chunk
	Representative *types.Chunk
}

// GroupByDocument collapses a flat candidate list into one group per source
// document. Chunks within a group are ordered by chunk index then ID; groups
// are returned in ascending key order. Pure function over its input.
func GroupByDocument(chunks []*types.Chunk) []*DocumentGroup {
	byKey := make(map[string]*DocumentGroup)
	for _, chunk := range chunks {
		group, ok := byKey[chunk.Source]
		if !ok {
			group = &DocumentGroup{Key: chunk.Source}
			byKey[chunk.Source] = group
		}
		group.Chunks = append(group.Chunks, chunk)
	}

	groups := make([]*DocumentGroup, 0, len(byKey))
	for _, group := range byKey {
		sort.Slice(group.Chunks, func(i, j int) bool {
			a, b := group.Chunks[i], group.Chunks[j]
			if a.ChunkIndex != b.ChunkIndex {
				return a.ChunkIndex < b.ChunkIndex
			}
			return a.ID < b.ID
		})
		group.Representative = group.Chunks[0]
		groups = append(groups, group)
	}

	sort.Slice(groups, func(i, j int) bool { return groups[i].Key < groups[j].Key })
	return groups
}
