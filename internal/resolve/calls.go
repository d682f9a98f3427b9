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

package resolve

import (
	"github.com/gitnexus/engine/internal/graph"
	"github.com/gitnexus/engine/internal/symtab"
)

// EnclosingSymbol identifies the function/method/constructor a call
// site was found inside, as C4 walked upward to find it. A nil
// EnclosingSymbol on a CallSite means C4 found no enclosing
// declaration — the call is module top-level.
type EnclosingSymbol struct {
	Kind graph.Kind
	Name string
}

// CallSite is one call C4 found, before resolution.
type CallSite struct {
	CallerFile string
	Enclosing  *EnclosingSymbol
	CalleeName string
}

// CallResolver runs C6's caller/callee resolution ladder.
type CallResolver struct {
	table     *symtab.Table
	importMap ImportMap
	blocklist *BlockList
}

// NewCallResolver builds a resolver over table (seeded with every
// definition in the current run, including anything re-seeded from an
// incremental load) and importMap (C5's output).
func NewCallResolver(table *symtab.Table, importMap ImportMap) *CallResolver {
	return &CallResolver{table: table, importMap: importMap, blocklist: NewBlockList()}
}

// Resolve turns call sites into CALLS edges. Unresolved and
// blocked-list calls are dropped silently; spec §4.6 only requires an
// edge "on success".
func (r *CallResolver) Resolve(sites []CallSite) []graph.Edge {
	var edges []graph.Edge
	seen := make(map[string]bool)

	for _, site := range sites {
		if r.blocklist.Contains(site.CalleeName) {
			continue
		}
		calleeID, confidence, reason, ok := resolveLadder(r.table, r.importMap, site.CallerFile, site.CalleeName)
		if !ok {
			continue
		}
		callerID := resolveCaller(r.table, site.CallerFile, site.Enclosing)

		key := callerID + "->" + calleeID
		if seen[key] {
			continue
		}
		seen[key] = true

		edges = append(edges, graph.Edge{
			From:       callerID,
			To:         calleeID,
			Kind:       graph.EdgeCalls,
			Confidence: graph.ClampConfidence(confidence),
			Reason:     reason,
		})
	}

	return edges
}

// resolveCaller implements spec §4.6's caller-resolution rule: the
// nearest enclosing function/method/constructor, looked up in the
// symbol table or reconstructed deterministically if the table
// doesn't (yet) have it; the enclosing File node if none exists.
func resolveCaller(table *symtab.Table, callerFile string, enclosing *EnclosingSymbol) string {
	if enclosing == nil {
		return graph.FileID(callerFile)
	}
	if id, ok := table.LookupExact(callerFile, enclosing.Name); ok {
		return id
	}
	return graph.SymbolID(enclosing.Kind, callerFile, enclosing.Name)
}

// resolveLadder is the three-strategy ladder shared by C6 (callee
// resolution) and C7 (heritage resolution, which skips the built-in
// filter but otherwise uses the identical ladder per spec §4.7).
func resolveLadder(table *symtab.Table, importMap ImportMap, fromFile, name string) (id string, confidence float64, reason string, ok bool) {
	if id, found := table.LookupExact(fromFile, name); found {
		return id, graph.ConfidenceSameFile, graph.ReasonSameFile, true
	}

	defs := table.LookupFuzzy(name)
	if len(defs) == 0 {
		return "", 0, "", false
	}

	if imports := importMap[fromFile]; imports != nil {
		for _, def := range defs {
			if imports[def.FilePath] {
				return def.NodeID, graph.ConfidenceImportResolved, graph.ReasonImportResolved, true
			}
		}
	}

	if len(defs) == 1 {
		return defs[0].NodeID, graph.ConfidenceFuzzySingle, graph.ReasonFuzzySingle, true
	}
	return defs[0].NodeID, graph.ConfidenceFuzzyMultiple, graph.ReasonFuzzyMultiple, true
}
