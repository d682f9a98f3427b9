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

// CallEdge is one CALLS relationship between two symbols.
type CallEdge struct {
	CallerID   string
	CallerName string
	CallerFile string
	CalleeID   string
	CalleeName string
	CalleeFile string
	Confidence float64
	Reason     string
}

func callEdgeFromRow(row []any) CallEdge {
	return CallEdge{
		CallerID:   str(row[0]),
		CallerName: str(row[1]),
		CallerFile: str(row[2]),
		CalleeID:   str(row[3]),
		CalleeName: str(row[4]),
		CalleeFile: str(row[5]),
		Confidence: f64(row[6]),
		Reason:     str(row[7]),
	}
}

func f64(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}

const callEdgeProjection = `caller.id, caller.name, caller.filePath,
  callee.id, callee.name, callee.filePath, r.confidence, r.reason`

// FindCallers returns every symbol with a CALLS edge into the symbol
// named functionName, mirroring the teacher's FindCallers tool but
// against the typed graph instead of a Cozo join. The caller side of
// the pattern is left unlabeled so it matches both a CALLS_Symbol_Symbol
// edge's Symbol caller and a CALLS_File_Symbol edge's File caller — the
// edge persist.go writes for a module-top-level call with no enclosing
// function (data-model invariant: a CALLS edge's source is a symbol, or
// a File for module-level calls).
func (c *Client) FindCallers(ctx context.Context, functionName string) ([]CallEdge, error) {
	cypher := fmt.Sprintf(`
		MATCH (caller)-[r:CALLS_Symbol_Symbol|CALLS_File_Symbol]->(callee:Symbol)
		WHERE callee.name = $name
		RETURN %s
		LIMIT $limit`, callEdgeProjection)
	return c.queryCallEdges(ctx, cypher, functionName)
}

// FindCallees returns every symbol the symbol (or file, for
// module-level call sites) named functionName calls.
func (c *Client) FindCallees(ctx context.Context, functionName string) ([]CallEdge, error) {
	cypher := fmt.Sprintf(`
		MATCH (caller)-[r:CALLS_Symbol_Symbol|CALLS_File_Symbol]->(callee:Symbol)
		WHERE caller.name = $name
		RETURN %s
		LIMIT $limit`, callEdgeProjection)
	return c.queryCallEdges(ctx, cypher, functionName)
}

func (c *Client) queryCallEdges(ctx context.Context, cypher, name string) ([]CallEdge, error) {
	res, err := c.backend.Query(ctx, cypher, map[string]any{"name": name, "limit": int64(200)})
	if err != nil {
		return nil, fmt.Errorf("call edge query: %w", err)
	}
	out := make([]CallEdge, 0, len(res.Rows))
	for _, row := range res.Rows {
		out = append(out, callEdgeFromRow(row))
	}
	return out, nil
}

// ImpactSet returns every symbol reachable from the symbol (or file,
// for a module-level entry point) named functionName by following
// CALLS edges forward up to maxDepth hops — "what would calling code
// downstream of this function need to change", the CALLS-edge analogue
// of the teacher's multi-hop TracePath tool. Kuzu's variable-length
// MATCH does the traversal directly rather than driving the teacher's
// hand-rolled BFS loop from the application side. Both CALLS edge
// tables are included so a module-top-level call (File caller) at the
// head of the chain is not invisible to the traversal.
func (c *Client) ImpactSet(ctx context.Context, functionName string, maxDepth int) ([]Symbol, error) {
	if maxDepth <= 0 {
		maxDepth = 5
	}
	cypher := fmt.Sprintf(`
		MATCH (src)-[:CALLS_Symbol_Symbol|CALLS_File_Symbol*1..%d]->(n:Symbol)
		WHERE src.name = $name
		RETURN DISTINCT %s
		LIMIT $limit`, maxDepth, symbolProjection)
	res, err := c.backend.Query(ctx, cypher, map[string]any{"name": functionName, "limit": int64(500)})
	if err != nil {
		return nil, fmt.Errorf("impact set query: %w", err)
	}
	symbols := symbolsFromResult(res)
	sortSymbolsByLocation(symbols)
	return symbols, nil
}

// HeritageOf returns every symbol that symbolName (a class/interface
// symbol) EXTENDS or IMPLEMENTS, directly.
func (c *Client) HeritageOf(ctx context.Context, symbolName string) ([]Symbol, error) {
	cypher := fmt.Sprintf(`
		MATCH (src:Symbol)-[:EXTENDS_Symbol_Symbol|IMPLEMENTS_Symbol_Symbol]->(n:Symbol)
		WHERE src.name = $name
		RETURN %s
		LIMIT $limit`, symbolProjection)
	res, err := c.backend.Query(ctx, cypher, map[string]any{"name": symbolName, "limit": int64(100)})
	if err != nil {
		return nil, fmt.Errorf("heritage query: %w", err)
	}
	symbols := symbolsFromResult(res)
	sortSymbolsByLocation(symbols)
	return symbols, nil
}
