// Package search implements the hybrid retrieval and ranking engine.
//
// Candidate chunks fetched from storage are grouped by source document, one
// representative chunk per document is scored along three axes, and the
// per-axis scores are blended into a single ranking:
//   - Lexical: Okapi BM25 over the representative's metadata fields and text
//   - Vector: cosine similarity between query and chunk embeddings
//   - Intent: heuristic priors from query phrasing (document type, committee,
//     year, draft avoidance, recency)
//
// Each axis is min-max normalized independently before blending, so the
// caller-supplied alpha weight always trades off comparable quantities:
//
//	relevance = alpha*lexical + (1-alpha)*vector + 0.1*intent
//
// An optional maximal-marginal-relevance pass re-ranks the top documents for
// diversity. All functions here are pure: given the same candidate set, query,
// and parameters they produce the same ordering, with ties broken by chunk ID.
package search
