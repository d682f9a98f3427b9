// Copyright 2025 KrakLabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package query

import (
	"context"
	"fmt"
)

// ScoredSymbol pairs a Symbol with a ranking score — BM25 relevance
// for FullTextSearch, cosine similarity for Semantic.
type ScoredSymbol struct {
	Symbol
	Score float64
}

// FullTextSearch runs the `fts_Symbol` index internal/persist creates
// over (name, codeSlice), the library's equivalent of the teacher's
// HNSW-adjacent "search code and signatures" tools but backed by
// Kuzu's own FTS extension instead of a Cozo regex join.
func (c *Client) FullTextSearch(ctx context.Context, queryText string, topK int) ([]ScoredSymbol, error) {
	if queryText == "" {
		return nil, fmt.Errorf("query: full-text query must not be empty")
	}
	if topK <= 0 {
		topK = 20
	}
	res, err := c.backend.QueryFTSIndex(ctx, "Symbol", "fts_Symbol", queryText, topK)
	if err != nil {
		return nil, fmt.Errorf("full-text search: %w", err)
	}
	return scoredSymbolsFromRows(res.Rows), nil
}

// Semantic runs a cosine/L2 HNSW lookup over the `vec_Symbol` index
// internal/persist creates, embedding queryText with the same
// provider used at ingest time — the library's equivalent of the
// teacher's SemanticSearch tool, minus its role/path post-filtering.
func (c *Client) Semantic(ctx context.Context, queryText string, topK int) ([]ScoredSymbol, error) {
	if c.embedder == nil {
		return nil, fmt.Errorf("query: semantic search requires a non-nil embedder")
	}
	if queryText == "" {
		return nil, fmt.Errorf("query: semantic query must not be empty")
	}
	if topK <= 0 {
		topK = 20
	}
	vectors, err := c.embedder.EmbedBatch(ctx, []string{queryText})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("embed query: provider returned no vector")
	}
	res, err := c.backend.QueryVectorIndex(ctx, "Symbol", "vec_Symbol", vectors[0], topK)
	if err != nil {
		return nil, fmt.Errorf("semantic search: %w", err)
	}
	return scoredSymbolsFromRows(res.Rows), nil
}

// scoredSymbolsFromRows adapts QueryFTSIndex/QueryVectorIndex's flat
// projection — the node's own columns plus a trailing score or
// distance column — onto ScoredSymbol. Distance (lower is better) and
// score (higher is better) are both surfaced as-is in Score; callers
// comparing across the two should not assume a shared direction.
func scoredSymbolsFromRows(rows [][]any) []ScoredSymbol {
	out := make([]ScoredSymbol, 0, len(rows))
	for _, row := range rows {
		out = append(out, ScoredSymbol{
			Symbol: symbolFromRow(row),
			Score:  f64(row[8]),
		})
	}
	return out
}
