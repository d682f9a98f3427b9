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
	"strings"

	"github.com/hbollon/go-edlib"

	igraph "github.com/gitnexus/engine/internal/graph"
)

// lifecycleNames is the framework-specific lifecycle vocabulary spec
// §4.8 refers to as "framework-specific lifecycle names" — fuzzy
// matched (not just prefix/suffix matched) so near-spellings across
// frameworks (onCreate/OnCreate/on_create) still count.
var lifecycleNames = []string{
	"main", "init", "setup", "run", "execute", "serve", "listen",
	"onCreate", "onStart", "onLoad", "onMount", "onInit",
	"componentDidMount", "viewDidLoad", "viewDidAppear",
	"handleRequest", "handleEvent", "dispatch", "process",
}

// utilityPrefixes marks accessor/formatter/collection-helper names
// spec §4.8 says to penalize.
var utilityPrefixes = []string{"get", "set", "is", "has", "to", "format", "parse", "stringify", "clone", "copy"}

const lifecycleSimilarityThreshold = 0.85

// score computes spec §4.8's entry-point score for one symbol: a
// language-aware name-pattern bonus, a fuzzy lifecycle-name bonus, a
// utility-name penalty, and a callee-to-caller ratio term. Only
// symbols with at least one outgoing CALLS edge and a name that
// matches an entry-point pattern or lifecycle name are eligible at
// all; every other symbol scores 0.
func score(n igraph.Node, calleeCount, callerCount int) float64 {
	if calleeCount == 0 {
		return 0
	}
	if isExcludedPath(n.FilePath) {
		return 0
	}

	s := 0.0
	lower := strings.ToLower(n.Name)
	namePattern := true

	switch {
	case lower == "main":
		s += 10
	case strings.HasPrefix(lower, "handle"), strings.HasPrefix(lower, "on"):
		s += 5
	case strings.HasSuffix(n.Name, "Controller"), strings.HasSuffix(n.Name, "Handler"):
		s += 5
	default:
		namePattern = false
	}

	if best := bestLifecycleSimilarity(n.Name); best >= lifecycleSimilarityThreshold {
		s += 3 * float64(best)
		namePattern = true
	}
	if !namePattern {
		return 0
	}

	for _, p := range utilityPrefixes {
		if strings.HasPrefix(lower, p) && len(lower) > len(p) {
			s -= 5
			break
		}
	}

	ratio := float64(calleeCount) / float64(max(callerCount, 1))
	if ratio > 5 {
		ratio = 5
	}
	s += ratio

	return s
}

func bestLifecycleSimilarity(name string) float32 {
	var best float32
	for _, candidate := range lifecycleNames {
		sim, err := edlib.StringsSimilarity(name, candidate, edlib.JaroWinkler)
		if err != nil {
			continue
		}
		if sim > best {
			best = sim
		}
	}
	return best
}

// isExcludedPath filters test files and utility directories out of
// entry-point candidacy, per spec §4.8.
func isExcludedPath(path string) bool {
	lower := "/" + strings.ToLower(path)
	if strings.Contains(lower, "_test.") || strings.Contains(lower, "/test/") || strings.Contains(lower, "/tests/") {
		return true
	}
	if strings.Contains(lower, "/util/") || strings.Contains(lower, "/utils/") {
		return true
	}
	return false
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
