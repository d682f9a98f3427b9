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

// Package query is a slim read-only library over the persisted graph:
// literal/full-text/semantic symbol search, call-graph traversal, and
// community/process listing. It returns plain Go structs, not
// formatted text — there is no MCP server, no HTTP server, and no
// chat-tool surface here; a caller that wants either wraps this
// library itself.
package query

import (
	"context"
	"fmt"
	"sort"

	"github.com/gitnexus/engine/internal/graph"
	"github.com/gitnexus/engine/pkg/embedding"
	"github.com/gitnexus/engine/pkg/storage"
)

// Client is the query layer's entry point, bound to an already-open,
// read-only store connection. Callers own opening/closing the
// backend, same convention internal/persist's Persister uses.
type Client struct {
	backend  storage.Backend
	embedder embedding.Provider // nil disables Semantic
}

// NewClient returns a Client over backend. embedder may be nil if the
// caller never intends to call Semantic.
func NewClient(backend storage.Backend, embedder embedding.Provider) *Client {
	return &Client{backend: backend, embedder: embedder}
}

// Symbol is one row of the Symbol node table, projected to the
// columns query callers actually need.
type Symbol struct {
	ID         string
	Kind       graph.Kind
	Name       string
	FilePath   string
	StartLine  int
	EndLine    int
	IsExported bool
	CodeSlice  string
}

func symbolFromRow(row []any) Symbol {
	return Symbol{
		ID:         str(row[0]),
		Kind:       graph.Kind(str(row[1])),
		Name:       str(row[2]),
		FilePath:   str(row[3]),
		StartLine:  int(i64(row[4])),
		EndLine:    int(i64(row[5])),
		IsExported: boolOf(row[6]),
		CodeSlice:  str(row[7]),
	}
}

const symbolProjection = "n.id, n.kind, n.name, n.filePath, n.startLine, n.endLine, n.isExported, n.codeSlice"

func str(v any) string {
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

func i64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

func boolOf(v any) bool {
	b, _ := v.(bool)
	return b
}

// GrepOptions configures a literal text search over symbol code.
type GrepOptions struct {
	CaseSensitive bool
	PathPattern   string // substring filter on filePath
	Limit         int
}

func (o GrepOptions) withDefaults() GrepOptions {
	if o.Limit <= 0 {
		o.Limit = 50
	}
	return o
}

// Grep finds symbols whose codeSlice literally contains text, the
// library's equivalent of the teacher's ultra-fast literal grep tool.
func (c *Client) Grep(ctx context.Context, text string, opts GrepOptions) ([]Symbol, error) {
	if text == "" {
		return nil, fmt.Errorf("query: grep text must not be empty")
	}
	opts = opts.withDefaults()

	cypher := fmt.Sprintf(
		`MATCH (n:Symbol) WHERE %s %s RETURN %s LIMIT $limit`,
		containsClause("n.codeSlice", "$text", opts.CaseSensitive),
		pathFilterClause(opts.PathPattern),
		symbolProjection,
	)
	params := map[string]any{"text": text, "limit": int64(opts.Limit)}
	if opts.PathPattern != "" {
		params["path"] = opts.PathPattern
	}

	res, err := c.backend.Query(ctx, cypher, params)
	if err != nil {
		return nil, fmt.Errorf("grep query: %w", err)
	}
	symbols := symbolsFromResult(res)
	sortSymbolsByLocation(symbols)
	return symbols, nil
}

func containsClause(column, param string, caseSensitive bool) string {
	if caseSensitive {
		return fmt.Sprintf("%s CONTAINS %s", column, param)
	}
	return fmt.Sprintf("lower(%s) CONTAINS lower(%s)", column, param)
}

func pathFilterClause(pattern string) string {
	if pattern == "" {
		return ""
	}
	return "AND n.filePath CONTAINS $path"
}

func symbolsFromResult(res *storage.QueryResult) []Symbol {
	if res == nil {
		return nil
	}
	out := make([]Symbol, 0, len(res.Rows))
	for _, row := range res.Rows {
		out = append(out, symbolFromRow(row))
	}
	return out
}

// FindSymbol looks up symbols by name, exact or substring, across
// every file — the library's analogue of the teacher's FindFunction.
func (c *Client) FindSymbol(ctx context.Context, name string, exact bool) ([]Symbol, error) {
	if name == "" {
		return nil, fmt.Errorf("query: symbol name must not be empty")
	}
	var where string
	if exact {
		where = "n.name = $name"
	} else {
		where = "lower(n.name) CONTAINS lower($name)"
	}
	cypher := fmt.Sprintf(`MATCH (n:Symbol) WHERE %s RETURN %s LIMIT $limit`, where, symbolProjection)
	res, err := c.backend.Query(ctx, cypher, map[string]any{"name": name, "limit": int64(50)})
	if err != nil {
		return nil, fmt.Errorf("find symbol query: %w", err)
	}
	symbols := symbolsFromResult(res)
	sortSymbolsByLocation(symbols)
	return symbols, nil
}

// FileMatch is one File node row.
type FileMatch struct {
	ID       string
	FilePath string
}

// ListFiles lists every File node whose path contains pathPattern (or
// every file, if pathPattern is empty).
func (c *Client) ListFiles(ctx context.Context, pathPattern string, limit int) ([]FileMatch, error) {
	if limit <= 0 {
		limit = 200
	}
	where := ""
	params := map[string]any{"limit": int64(limit)}
	if pathPattern != "" {
		where = "WHERE n.filePath CONTAINS $path"
		params["path"] = pathPattern
	}
	cypher := fmt.Sprintf(`MATCH (n:File) %s RETURN n.id, n.filePath ORDER BY n.filePath LIMIT $limit`, where)
	res, err := c.backend.Query(ctx, cypher, params)
	if err != nil {
		return nil, fmt.Errorf("list files query: %w", err)
	}
	out := make([]FileMatch, 0, len(res.Rows))
	for _, row := range res.Rows {
		out = append(out, FileMatch{ID: str(row[0]), FilePath: str(row[1])})
	}
	return out, nil
}

// sortSymbolsByLocation gives Grep/FindSymbol callers a deterministic
// display order when the store itself doesn't guarantee row order.
func sortSymbolsByLocation(symbols []Symbol) {
	sort.Slice(symbols, func(i, j int) bool {
		if symbols[i].FilePath != symbols[j].FilePath {
			return symbols[i].FilePath < symbols[j].FilePath
		}
		return symbols[i].StartLine < symbols[j].StartLine
	})
}
