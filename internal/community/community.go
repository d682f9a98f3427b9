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

package community

import (
	"sort"
	"strings"

	"github.com/surgebase/porter2"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/community"
	"gonum.org/v1/gonum/graph/simple"

	igraph "github.com/gitnexus/engine/internal/graph"
)

// callsWeight and importWeight are the edge weights spec §4.8's
// "symbols + their CALLS/IMPORTS-projected edges" subgraph uses. A
// call between two symbols is a much stronger signal of cohesion than
// the two symbols merely living in files that import one another, so
// import-projected edges are weighted far lower.
const (
	callsWeight  = 1.0
	importWeight = 0.2

	// importProjectionCap bounds the symbol x symbol cross product an
	// IMPORTS edge can project, so one file importing a thousand-symbol
	// file cannot blow up the projected graph.
	importProjectionCap = 40

	// DefaultMinMembers is spec §4.8's "configured floor (default 5
	// members)" below which a community is retained in the store but
	// filtered from user-facing aggregates. Detect persists every
	// non-trivial cluster regardless of size — the floor is a read-side
	// concern, applied by pkg/query.ListCommunities, not a detection
	// parameter, since spec §4.8 requires small communities to still
	// exist in the store.
	DefaultMinMembers = 5
)

// Options configures community detection. Zero values fall back to
// spec §4.8's defaults.
type Options struct {
	Resolution float64 // gonum community.Modularize resolution parameter
	Seed       int64   // deterministic RNG seed, so re-running on an unchanged graph reproduces identical clusters
}

func (o Options) withDefaults() Options {
	if o.Resolution <= 0 {
		o.Resolution = 1.0
	}
	return o
}

// Detect runs modularity-maximizing clustering over every symbol node
// in b, using CALLS edges directly and IMPORTS edges projected onto
// the symbols each importing/imported file defines. It returns one
// Community node per non-trivial cluster plus the MEMBER_OF edges
// attaching each member symbol to its community.
func Detect(b *igraph.Builder, opts Options) ([]igraph.Node, []igraph.Edge) {
	opts = opts.withDefaults()

	symbols := symbolNodes(b)
	if len(symbols) == 0 {
		return nil, nil
	}

	g := simple.NewWeightedUndirectedGraph(0, 0)
	index := make(map[string]int64, len(symbols))
	ids := make([]string, len(symbols))
	for i, n := range symbols {
		index[n.ID] = int64(i)
		ids[i] = n.ID
		g.AddNode(simple.Node(int64(i)))
	}

	edgeCount := addWeight(g, index, b.EdgesByKind(igraph.EdgeCalls), callsWeight)
	edgeCount += projectImports(g, index, b)

	if edgeCount == 0 {
		return nil, nil
	}

	reduced := community.Modularize(g, opts.Resolution, rand.NewSource(uint64(opts.Seed)))
	clusters := reduced.Communities()

	var nodes []igraph.Node
	var edges []igraph.Edge
	for _, cluster := range clusters {
		if len(cluster) < 2 {
			continue
		}
		members := memberIDs(cluster, ids)
		sort.Strings(members)

		communityID := igraph.DerivedID(igraph.KindCommunity, members...)
		cohesion := cohesionOf(g, cluster)
		label, keywords := labelOf(members, b)

		nodes = append(nodes, igraph.Node{
			ID:          communityID,
			Kind:        igraph.KindCommunity,
			Name:        label,
			Label:       label,
			Keywords:    keywords,
			Cohesion:    cohesion,
			SymbolCount: len(members),
		})

		for _, m := range members {
			edges = append(edges, igraph.Edge{
				From:       m,
				To:         communityID,
				Kind:       igraph.EdgeMemberOf,
				Confidence: 1.0,
				Reason:     "community-detection",
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

func addWeight(g *simple.WeightedUndirectedGraph, index map[string]int64, edges []igraph.Edge, weight float64) int {
	count := 0
	for _, e := range edges {
		u, ok1 := index[e.From]
		v, ok2 := index[e.To]
		if !ok1 || !ok2 || u == v {
			continue
		}
		bump(g, u, v, weight)
		count++
	}
	return count
}

// projectImports adds a weak edge between every pair of symbols
// defined in file A and file B whenever A imports B, per spec §4.8's
// "symbols + their CALLS/IMPORTS-projected edges" subgraph.
func projectImports(g *simple.WeightedUndirectedGraph, index map[string]int64, b *igraph.Builder) int {
	fileSymbols := make(map[string][]string)
	for _, e := range b.EdgesByKind(igraph.EdgeDefines) {
		fileSymbols[e.From] = append(fileSymbols[e.From], e.To)
	}

	count := 0
	for _, e := range b.EdgesByKind(igraph.EdgeImports) {
		fromSyms := fileSymbols[e.From]
		toSyms := fileSymbols[e.To]
		if len(fromSyms) == 0 || len(toSyms) == 0 {
			continue
		}
		if len(fromSyms)*len(toSyms) > importProjectionCap {
			continue
		}
		for _, a := range fromSyms {
			u, ok := index[a]
			if !ok {
				continue
			}
			for _, bb := range toSyms {
				v, ok := index[bb]
				if !ok || u == v {
					continue
				}
				bump(g, u, v, importWeight)
				count++
			}
		}
	}
	return count
}

func bump(g *simple.WeightedUndirectedGraph, u, v int64, weight float64) {
	existing, ok := g.Weight(u, v)
	if !ok {
		existing = 0
	}
	g.SetWeightedEdge(simple.WeightedEdge{F: simple.Node(u), T: simple.Node(v), W: existing + weight})
}

func memberIDs(cluster []graph.Node, ids []string) []string {
	out := make([]string, 0, len(cluster))
	for _, n := range cluster {
		out = append(out, ids[n.ID()])
	}
	return out
}

// cohesionOf is the fraction of the members' total incident edge
// weight (summed over all members) that stays inside the cluster — spec §4.8's
// "internal cohesion (fraction of intra-community edges)".
func cohesionOf(g *simple.WeightedUndirectedGraph, cluster []graph.Node) float64 {
	inCluster := make(map[int64]bool, len(cluster))
	for _, n := range cluster {
		inCluster[n.ID()] = true
	}

	var total float64
	var internal float64
	for _, n := range cluster {
		it := g.From(n.ID())
		for it.Next() {
			neighbor := it.Node().ID()
			w, _ := g.Weight(n.ID(), neighbor)
			total += w
			if inCluster[neighbor] {
				internal += w
			}
		}
	}
	if total == 0 {
		return 0
	}
	return internal / total
}

// labelOf derives a short heuristic label from member symbol names and
// their containing folder path, per spec §4.8's "token-frequency over
// member names plus folder-path patterns".
func labelOf(memberIDs []string, b *igraph.Builder) (string, []string) {
	freq := make(map[string]int)
	for _, id := range memberIDs {
		n, ok := b.Node(id)
		if !ok {
			continue
		}
		for _, tok := range tokenize(n.Name) {
			freq[tok]++
		}
		for _, tok := range tokenize(lastPathSegment(n.FilePath)) {
			freq[tok]++
		}
	}

	type scored struct {
		token string
		count int
	}
	var ranked []scored
	for tok, count := range freq {
		ranked = append(ranked, scored{tok, count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].token < ranked[j].token
	})

	const maxKeywords = 3
	var keywords []string
	for i := 0; i < len(ranked) && i < maxKeywords; i++ {
		keywords = append(keywords, ranked[i].token)
	}
	if len(keywords) == 0 {
		return "community", keywords
	}
	return strings.Join(keywords, "-"), keywords
}

func lastPathSegment(path string) string {
	path = strings.TrimRight(path, "/")
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}

// tokenize splits an identifier into lowercase, stemmed words, on
// camelCase boundaries, underscores, dots, and digits.
func tokenize(s string) []string {
	var words []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() == 0 {
			return
		}
		word := strings.ToLower(cur.String())
		cur.Reset()
		if len(word) < 3 || stopwords[word] {
			return
		}
		words = append(words, porter2.Stem(word))
	}

	runes := []rune(s)
	for i, r := range runes {
		switch {
		case r == '_' || r == '.' || r == '-' || (r >= '0' && r <= '9'):
			flush()
		case r >= 'A' && r <= 'Z' && i > 0 && isLowerOrDigit(runes[i-1]):
			// lower/digit -> upper: "fooBar" splits before "Bar".
			flush()
			cur.WriteRune(r)
		case r >= 'A' && r <= 'Z' && i > 0 && isUpper(runes[i-1]) && i+1 < len(runes) && isLowerOrDigit(runes[i+1]):
			// upper -> upper-then-lower: "HTTPRequest" splits before "Request",
			// keeping the run of capitals ("HTTP") as its own word.
			flush()
			cur.WriteRune(r)
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return words
}

func isUpper(r rune) bool {
	return r >= 'A' && r <= 'Z'
}

func isLowerOrDigit(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}

// stopwords excludes identifier fragments too generic to be useful
// community labels.
var stopwords = map[string]bool{
	"get": true, "set": true, "new": true, "the": true, "and": true,
	"for": true, "src": true, "pkg": true, "internal": true, "impl": true,
	"util": true, "utils": true, "common": true, "base": true, "test": true,
	"tests": true,
}
