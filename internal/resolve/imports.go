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
	"path"

	"github.com/gitnexus/engine/internal/graph"
)

// ImportSpec is one raw import C4 extracted from a file, before
// resolution. Specifier is exactly what the source wrote (e.g.
// "./utils/format", "github.com/foo/bar", "os").
type ImportSpec struct {
	FromFile  string
	Specifier string
	Relative  bool
}

// ImportMap is C5's output: filePath -> set of resolved target file
// paths, per spec §4.5.
type ImportMap map[string]map[string]bool

// Has reports whether fromFile imports targetFile (directly).
func (m ImportMap) Has(fromFile, targetFile string) bool {
	return m[fromFile][targetFile]
}

// candidateExtensions lists, in trial order, the extensions appended
// to an extension-less specifier before giving up. Keyed by the
// importing file's own extension, since that is the only reliable
// signal for which language's resolution rules apply. Order matters:
// spec §4.5 says "exact, then language defaults", so the first match
// wins.
var candidateExtensions = map[string][]string{
	".ts":   {".ts", ".tsx", ".d.ts", ".js", ".jsx"},
	".tsx":  {".tsx", ".ts", ".d.ts", ".jsx", ".js"},
	".js":   {".js", ".jsx", ".ts", ".tsx"},
	".jsx":  {".jsx", ".js", ".tsx", ".ts"},
	".py":   {".py"},
	".java": {".java"},
	".go":   {".go"},
	".rs":   {".rs"},
	".c":    {".c", ".h"},
	".h":    {".h", ".c", ".hpp"},
	".cc":   {".cc", ".h", ".hpp"},
	".cpp":  {".cpp", ".h", ".hpp"},
	".hpp":  {".hpp", ".h", ".cpp"},
	".cs":   {".cs"},
	".php":  {".php"},
	".swift": {".swift"},
}

// indexNames lists, per language, the file names tried when a
// specifier resolves to a directory rather than a file (spec §4.5:
// "directory-with-index").
var indexNames = map[string][]string{
	".ts":  {"index.ts", "index.tsx", "index.js"},
	".tsx": {"index.tsx", "index.ts", "index.js"},
	".js":  {"index.js", "index.jsx", "index.ts"},
	".jsx": {"index.jsx", "index.js"},
	".py":  {"__init__.py"},
}

// BuildImportMap resolves every spec against knownFiles (the set of
// every File node path already in the graph) and returns the
// resulting ImportMap plus one IMPORTS edge per resolved pair.
// Unresolved specifiers are dropped silently, per spec §4.5.
func BuildImportMap(specs []ImportSpec, knownFiles map[string]bool) (ImportMap, []graph.Edge) {
	out := make(ImportMap)
	var edges []graph.Edge
	seen := make(map[string]bool)

	for _, spec := range specs {
		target, ok := resolveImport(spec, knownFiles)
		if !ok {
			continue
		}
		if out[spec.FromFile] == nil {
			out[spec.FromFile] = make(map[string]bool)
		}
		if out[spec.FromFile][target] {
			continue
		}
		out[spec.FromFile][target] = true

		key := spec.FromFile + "->" + target
		if seen[key] {
			continue
		}
		seen[key] = true
		edges = append(edges, graph.Edge{
			From:       graph.FileID(spec.FromFile),
			To:         graph.FileID(target),
			Kind:       graph.EdgeImports,
			Confidence: graph.ConfidenceImportEdge,
		})
	}

	return out, edges
}

func resolveImport(spec ImportSpec, knownFiles map[string]bool) (string, bool) {
	ext := path.Ext(spec.FromFile)

	var base string
	if spec.Relative {
		base = path.Join(path.Dir(graph.NormalizePath(spec.FromFile)), spec.Specifier)
	} else {
		base = graph.NormalizePath(spec.Specifier)
	}
	base = path.Clean(base)

	if knownFiles[base] {
		return base, true
	}

	for _, cand := range candidateExtensions[ext] {
		if p := base + cand; knownFiles[p] {
			return p, true
		}
	}

	for _, idx := range indexNames[ext] {
		if p := path.Join(base, idx); knownFiles[p] {
			return p, true
		}
	}

	return "", false
}
