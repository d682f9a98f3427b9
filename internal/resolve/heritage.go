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

// HeritageKind distinguishes an extends clause from an implements
// clause.
type HeritageKind string

const (
	HeritageExtends    HeritageKind = "extends"
	HeritageImplements HeritageKind = "implements"
)

// HeritageRef is one extends/implements reference C4 found on a
// class/interface declaration, before resolution.
type HeritageRef struct {
	SymbolID string // the declaring class/interface's own node id
	FilePath string
	RefName  string
	Kind     HeritageKind
}

// HeritageResolver runs C7: resolving extends/implements clauses
// against the same ladder C6 uses, minus the built-in filter (spec
// §4.7 — a superclass or interface is never a built-in call, so
// filtering it out would silently drop a real edge).
type HeritageResolver struct {
	table     *symtab.Table
	importMap ImportMap
}

// NewHeritageResolver builds a resolver over the same table/importMap
// the call resolver uses.
func NewHeritageResolver(table *symtab.Table, importMap ImportMap) *HeritageResolver {
	return &HeritageResolver{table: table, importMap: importMap}
}

// Resolve turns heritage references into EXTENDS/IMPLEMENTS edges.
func (r *HeritageResolver) Resolve(refs []HeritageRef) []graph.Edge {
	var edges []graph.Edge
	seen := make(map[string]bool)

	for _, ref := range refs {
		targetID, confidence, reason, ok := resolveLadder(r.table, r.importMap, ref.FilePath, ref.RefName)
		if !ok {
			continue
		}

		edgeKind := graph.EdgeExtends
		if ref.Kind == HeritageImplements {
			edgeKind = graph.EdgeImplements
		}

		key := string(edgeKind) + ":" + ref.SymbolID + "->" + targetID
		if seen[key] {
			continue
		}
		seen[key] = true

		edges = append(edges, graph.Edge{
			From:       ref.SymbolID,
			To:         targetID,
			Kind:       edgeKind,
			Confidence: graph.ClampConfidence(confidence),
			Reason:     reason,
		})
	}

	return edges
}
