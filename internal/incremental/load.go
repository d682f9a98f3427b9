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

package incremental

import (
	"context"
	"fmt"

	"github.com/gitnexus/engine/internal/graph"
	"github.com/gitnexus/engine/internal/symtab"
	"github.com/gitnexus/engine/pkg/storage"
)

// retainedEdgeTables are the REL tables loaded back into the partial
// graph. Community/Process and their MEMBER_OF/STEP_IN_PROCESS edges
// are deliberately absent: spec §4.10 step 1 says those two layers
// "are not loaded — they are always recomputed".
var retainedEdgeTables = []string{
	"CONTAINS_Folder_Folder", "CONTAINS_Folder_File",
	"DEFINES_File_Symbol", "IMPORTS_File_File",
	"CALLS_Symbol_Symbol", "CALLS_File_Symbol",
	"EXTENDS_Symbol_Symbol", "IMPLEMENTS_Symbol_Symbol",
}

// LoadUnchangedSubgraph implements spec §4.10 step 1: every Folder,
// File, and symbol node whose filePath is not in excluded, together
// with every edge whose endpoints both survive. It also re-seeds a
// fresh symbol table from the loaded symbol nodes, so C5-C8 resolve
// cross-file references against the retained graph per spec §4.3
// ("incremental runs start from a cleared table re-seeded with every
// unchanged definition loaded from the store").
func LoadUnchangedSubgraph(ctx context.Context, backend storage.Backend, excluded []string) (*graph.Builder, *symtab.Table, int, error) {
	b := graph.NewBuilder()
	table := symtab.New()

	excludedSet := make(map[string]bool, len(excluded))
	for _, p := range excluded {
		excludedSet[p] = true
	}

	loadedFiles := 0
	for _, nodeTable := range []string{"Folder", "File", "Symbol"} {
		res, err := backend.Query(ctx, fmt.Sprintf(
			`MATCH (n:%s) RETURN n.id, n.kind, n.name, n.filePath, n.content, n.startLine, n.endLine, n.isExported, n.codeSlice, n.embedding`,
			nodeTable), nil)
		if err != nil {
			return nil, nil, 0, fmt.Errorf("load %s nodes: %w", nodeTable, err)
		}
		for _, row := range res.Rows {
			n := rowToNode(row)
			if n.FilePath != "" && excludedSet[n.FilePath] {
				continue
			}
			b.AddNode(n)
			if nodeTable == "File" {
				loadedFiles++
			}
			if graph.IsSymbolKind(n.Kind) {
				table.Insert(symtab.Definition{FilePath: n.FilePath, Name: n.Name, NodeID: n.ID, Kind: n.Kind})
			}
		}
	}

	keep := make(map[string]bool)
	for _, n := range b.Nodes() {
		keep[n.ID] = true
	}

	for _, relTable := range retainedEdgeTables {
		res, err := backend.Query(ctx, fmt.Sprintf(
			`MATCH (a)-[r:%s]->(b) RETURN a.id, b.id, r.kind, r.confidence, r.reason, r.step`,
			relTable), nil)
		if err != nil {
			return nil, nil, 0, fmt.Errorf("load %s edges: %w", relTable, err)
		}
		for _, row := range res.Rows {
			from, _ := row[0].(string)
			to, _ := row[1].(string)
			if !keep[from] || !keep[to] {
				continue
			}
			kind, _ := row[2].(string)
			confidence := toFloat(row[3])
			reason, _ := row[4].(string)
			step := int(toFloat(row[5]))
			b.AddEdge(graph.Edge{From: from, To: to, Kind: graph.EdgeKind(kind), Confidence: confidence, Reason: reason, Step: step})
		}
	}

	return b, table, loadedFiles, nil
}

func rowToNode(row []any) graph.Node {
	get := func(i int) string {
		if i >= len(row) {
			return ""
		}
		s, _ := row[i].(string)
		return s
	}
	n := graph.Node{
		ID:       get(0),
		Kind:     graph.Kind(get(1)),
		Name:     get(2),
		FilePath: get(3),
		Content:  []byte(get(4)),
	}
	if len(row) > 5 {
		n.StartLine = int(toFloat(row[5]))
	}
	if len(row) > 6 {
		n.EndLine = int(toFloat(row[6]))
	}
	if len(row) > 7 {
		if v, ok := row[7].(bool); ok {
			n.IsExported = v
		}
	}
	if len(row) > 8 {
		n.CodeSlice = get(8)
	}
	if len(row) > 9 {
		n.Embedding = toFloatVector(row[9])
	}
	return n
}

// toFloatVector converts a driver-returned embedding column (a []any
// of numeric values, per spec §4.10 step 5's "re-insert cached
// embeddings for surviving symbol nodes") into []float32. A zero
// vector (every component 0, the persister's padding for nodes with no
// embedding) collapses back to nil so it is not mistaken for a real
// cached embedding downstream.
func toFloatVector(v any) []float32 {
	raw, ok := v.([]any)
	if !ok || len(raw) == 0 {
		return nil
	}
	out := make([]float32, len(raw))
	nonZero := false
	for i, e := range raw {
		f := float32(toFloat(e))
		out[i] = f
		if f != 0 {
			nonZero = true
		}
	}
	if !nonZero {
		return nil
	}
	return out
}

func toFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case int64:
		return float64(x)
	case int:
		return float64(x)
	default:
		return 0
	}
}
