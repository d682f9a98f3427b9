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

package process

import (
	"sort"

	igraph "github.com/gitnexus/engine/internal/graph"
)

// Options configures process detection. Zero values fall back to
// spec §4.8's defaults.
type Options struct {
	MinSteps int // a traced chain shorter than this is discarded
	MaxDepth int // BFS depth ceiling per traced chain
	MinCount int // lower bound for the dynamic process cap
	MaxCount int // upper bound for the dynamic process cap
}

func (o Options) withDefaults() Options {
	if o.MinSteps <= 0 {
		o.MinSteps = 3
	}
	if o.MaxDepth <= 0 {
		o.MaxDepth = 12
	}
	if o.MinCount <= 0 {
		o.MinCount = 20
	}
	if o.MaxCount <= 0 {
		o.MaxCount = 300
	}
	return o
}

// Detect scores every symbol node in b as a candidate process entry
// point, then traces the top-scoring candidates forward along CALLS
// edges breadth-first. memberOf maps a symbol id to the community id
// internal/community assigned it, so traced Process nodes can record
// which communities a call chain crosses; a nil map is accepted when
// community detection found nothing.
func Detect(b *igraph.Builder, memberOf map[string]string, opts Options) ([]igraph.Node, []igraph.Edge) {
	opts = opts.withDefaults()

	symbols := symbolNodes(b)
	if len(symbols) == 0 {
		return nil, nil
	}

	outEdges, callerCount, calleeCount := buildCallIndex(b)

	type candidate struct {
		node  igraph.Node
		score float64
	}
	var candidates []candidate
	for _, n := range symbols {
		s := score(n, calleeCount[n.ID], callerCount[n.ID])
		if s <= 0 {
			continue
		}
		candidates = append(candidates, candidate{n, s})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].node.ID < candidates[j].node.ID
	})

	maxProcesses := clamp(len(symbols)/10, opts.MinCount, opts.MaxCount)
	if len(candidates) > maxProcesses {
		candidates = candidates[:maxProcesses]
	}

	var nodes []igraph.Node
	var edges []igraph.Edge
	for _, c := range candidates {
		order, terminal := trace(c.node.ID, outEdges, opts.MaxDepth)
		if len(order) < opts.MinSteps {
			continue
		}

		communitySet := make(map[string]bool)
		for _, id := range order {
			if cid, ok := memberOf[id]; ok {
				communitySet[cid] = true
			}
		}
		communityIDs := make([]string, 0, len(communitySet))
		for cid := range communitySet {
			communityIDs = append(communityIDs, cid)
		}
		sort.Strings(communityIDs)

		seed := append([]string{c.node.ID}, order...)
		processID := igraph.DerivedID(igraph.KindProcess, seed...)

		nodes = append(nodes, igraph.Node{
			ID:           processID,
			Kind:         igraph.KindProcess,
			Name:         c.node.Name,
			ProcessType:  "call-chain",
			StepCount:    len(order),
			CommunityIDs: communityIDs,
			EntryPointID: c.node.ID,
			TerminalID:   terminal,
		})

		for step, id := range order {
			edges = append(edges, igraph.Edge{
				From:       processID,
				To:         id,
				Kind:       igraph.EdgeStepInProcess,
				Confidence: 1.0,
				Reason:     "process-detection",
				Step:       step,
			})
		}
	}

	return nodes, edges
}

func symbolNodes(b *igraph.Builder) []igraph.Node {
	var out []igraph.Node
	for _, n := range b.Nodes() {
		if igraph.IsSymbolKind(n.Kind) {
			out = append(out, n)
		}
	}
	return out
}

// buildCallIndex indexes CALLS edges into a sorted adjacency list (for
// deterministic BFS ordering) plus per-symbol caller/callee counts.
func buildCallIndex(b *igraph.Builder) (map[string][]string, map[string]int, map[string]int) {
	adj := make(map[string][]string)
	callerCount := make(map[string]int)
	calleeCount := make(map[string]int)

	for _, e := range b.EdgesByKind(igraph.EdgeCalls) {
		if e.From == e.To {
			continue
		}
		adj[e.From] = append(adj[e.From], e.To)
		calleeCount[e.From]++
		callerCount[e.To]++
	}
	for from := range adj {
		sort.Strings(adj[from])
	}
	return adj, callerCount, calleeCount
}

// trace walks outEdges breadth-first from entry, assigning each newly
// discovered node the next sequential step number, and stops expanding
// past maxDepth hops from entry. It returns the full visited order
// (entry first, at step 0) and the id of the last node discovered.
func trace(entry string, outEdges map[string][]string, maxDepth int) ([]string, string) {
	visited := map[string]bool{entry: true}
	order := []string{entry}
	depth := map[string]int{entry: 0}
	queue := []string{entry}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if depth[cur] >= maxDepth {
			continue
		}
		for _, next := range outEdges[cur] {
			if visited[next] {
				continue
			}
			visited[next] = true
			depth[next] = depth[cur] + 1
			order = append(order, next)
			queue = append(queue, next)
		}
	}

	return order, order[len(order)-1]
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
