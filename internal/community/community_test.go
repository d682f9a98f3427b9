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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	igraph "github.com/gitnexus/engine/internal/graph"
)

// buildTwoClusterGraph wires two tightly-connected symbol cliques
// (parseRequest/parseHeader/parseBody in one file, renderPage/
// renderWidget/renderFooter in another) with a single weak cross-link,
// so modularity maximization should split them into two communities.
func buildTwoClusterGraph() *igraph.Builder {
	b := igraph.NewBuilder()

	parseFile := igraph.FileID("parser.go")
	renderFile := igraph.FileID("render.go")
	b.AddNode(igraph.Node{ID: parseFile, Kind: igraph.KindFile, FilePath: "parser.go"})
	b.AddNode(igraph.Node{ID: renderFile, Kind: igraph.KindFile, FilePath: "render.go"})

	parseSyms := []string{"parseRequest", "parseHeader", "parseBody"}
	renderSyms := []string{"renderPage", "renderWidget", "renderFooter"}

	var parseIDs, renderIDs []string
	for _, name := range parseSyms {
		id := igraph.SymbolID(igraph.KindFunction, "parser.go", name)
		b.AddNode(igraph.Node{ID: id, Kind: igraph.KindFunction, Name: name, FilePath: "parser.go"})
		b.AddEdge(igraph.Edge{From: parseFile, To: id, Kind: igraph.EdgeDefines})
		parseIDs = append(parseIDs, id)
	}
	for _, name := range renderSyms {
		id := igraph.SymbolID(igraph.KindFunction, "render.go", name)
		b.AddNode(igraph.Node{ID: id, Kind: igraph.KindFunction, Name: name, FilePath: "render.go"})
		b.AddEdge(igraph.Edge{From: renderFile, To: id, Kind: igraph.EdgeDefines})
		renderIDs = append(renderIDs, id)
	}

	// Dense intra-cluster calls.
	for i := range parseIDs {
		for j := range parseIDs {
			if i != j {
				b.AddEdge(igraph.Edge{From: parseIDs[i], To: parseIDs[j], Kind: igraph.EdgeCalls, Confidence: 0.9})
			}
		}
	}
	for i := range renderIDs {
		for j := range renderIDs {
			if i != j {
				b.AddEdge(igraph.Edge{From: renderIDs[i], To: renderIDs[j], Kind: igraph.EdgeCalls, Confidence: 0.9})
			}
		}
	}

	// One weak cross-cluster call.
	b.AddEdge(igraph.Edge{From: parseIDs[0], To: renderIDs[0], Kind: igraph.EdgeCalls, Confidence: 0.5})

	return b
}

func TestDetectSplitsTwoDenseCliquesIntoSeparateCommunities(t *testing.T) {
	b := buildTwoClusterGraph()

	nodes, edges := Detect(b, Options{Seed: 1})

	require.Len(t, nodes, 2)
	assert.NotEmpty(t, edges)

	memberSets := make([]map[string]bool, 0, 2)
	for _, n := range nodes {
		assert.Equal(t, igraph.KindCommunity, n.Kind)
		assert.NotEmpty(t, n.Label)
		assert.GreaterOrEqual(t, n.Cohesion, 0.0)
		assert.LessOrEqual(t, n.Cohesion, 1.0)

		members := make(map[string]bool)
		for _, e := range edges {
			if e.To == n.ID {
				members[e.From] = true
			}
		}
		memberSets = append(memberSets, members)
	}

	parseID := igraph.SymbolID(igraph.KindFunction, "parser.go", "parseRequest")
	renderID := igraph.SymbolID(igraph.KindFunction, "render.go", "renderPage")

	sameCluster := false
	for _, members := range memberSets {
		if members[parseID] && members[renderID] {
			sameCluster = true
		}
	}
	assert.False(t, sameCluster, "parse and render cliques should land in separate communities")
}

func TestDetectReturnsNilOnGraphWithNoSymbols(t *testing.T) {
	b := igraph.NewBuilder()
	b.AddNode(igraph.Node{ID: igraph.FileID("a.go"), Kind: igraph.KindFile})

	nodes, edges := Detect(b, Options{})
	assert.Nil(t, nodes)
	assert.Nil(t, edges)
}

func TestDetectReturnsNilWhenSymbolsHaveNoEdges(t *testing.T) {
	b := igraph.NewBuilder()
	b.AddNode(igraph.Node{ID: igraph.SymbolID(igraph.KindFunction, "a.go", "isolated"), Kind: igraph.KindFunction, Name: "isolated"})

	nodes, edges := Detect(b, Options{})
	assert.Nil(t, nodes)
	assert.Nil(t, edges)
}

func TestTokenizeSplitsCamelCaseAndStems(t *testing.T) {
	words := tokenize("parseHTTPRequestBody")
	assert.Contains(t, words, "pars")
	assert.Contains(t, words, "request")
	assert.Contains(t, words, "bodi")
}

func TestTokenizeDropsStopwordsAndShortTokens(t *testing.T) {
	words := tokenize("get_the_util")
	assert.NotContains(t, words, "get")
	assert.NotContains(t, words, "the")
	assert.NotContains(t, words, "util")
}
