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

package parse

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/gitnexus/engine/internal/graph"
	"github.com/gitnexus/engine/internal/resolve"
)

// FileExtraction is everything one file yields from C4, before C5-C7
// resolve any of it.
type FileExtraction struct {
	Definitions []graph.Node
	Imports     []resolve.ImportSpec
	Calls       []resolve.CallSite
	Heritage    []resolve.HeritageRef
}

type rawHeritage struct {
	ownerStart uint32
	refName    string
	kind       resolve.HeritageKind
}

// extract runs query against tree and turns every match into
// definitions, imports, call sites, and heritage references, per spec
// §4.4 steps 4-5.
func extract(spec languageSpec, query *sitter.Query, tree *sitter.Tree, content []byte, path string) *FileExtraction {
	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	cursor.Exec(query, tree.RootNode())

	defsByStart := make(map[uint32]graph.Node)
	var imports []resolve.ImportSpec
	var rawCalls []struct {
		node *sitter.Node
		name string
	}
	var heritage []rawHeritage

	for {
		match, ok := cursor.NextMatch()
		if !ok {
			break
		}

		var defNode *sitter.Node
		var nameNode *sitter.Node
		var defKind graph.Kind
		var callNode *sitter.Node
		var calleeNode *sitter.Node
		var importNode *sitter.Node
		var heritageExtends *sitter.Node
		var heritageImplements *sitter.Node

		for _, cap := range match.Captures {
			capName := query.CaptureNameForId(cap.Index)
			node := cap.Node

			switch {
			case strings.HasPrefix(capName, "def."):
				defNode = node
				defKind = captureKind[strings.TrimPrefix(capName, "def.")]
			case strings.HasPrefix(capName, "name."):
				nameNode = node
			case capName == "call":
				callNode = node
			case capName == "call.callee":
				calleeNode = node
			case capName == "import":
				importNode = node
			case capName == "heritage.extends":
				heritageExtends = node
			case capName == "heritage.implements":
				heritageImplements = node
			}
		}

		if defNode != nil && nameNode != nil && defKind != "" {
			name := string(content[nameNode.StartByte():nameNode.EndByte()])
			n := graph.Node{
				ID:        graph.SymbolID(defKind, path, name),
				Kind:      defKind,
				Name:      name,
				FilePath:  path,
				StartLine: int(defNode.StartPoint().Row) + 1,
				EndLine:   int(defNode.EndPoint().Row) + 1,
				CodeSlice: codeSlice(content, defNode),
			}
			if _, dup := defsByStart[defNode.StartByte()]; !dup {
				defsByStart[defNode.StartByte()] = n
			}

			if heritageExtends != nil {
				heritage = append(heritage, rawHeritage{
					ownerStart: defNode.StartByte(),
					refName:    identText(content, heritageExtends),
					kind:       resolve.HeritageExtends,
				})
			}
			if heritageImplements != nil {
				heritage = append(heritage, rawHeritage{
					ownerStart: defNode.StartByte(),
					refName:    identText(content, heritageImplements),
					kind:       resolve.HeritageImplements,
				})
			}
		}

		if importNode != nil {
			text := string(content[importNode.StartByte():importNode.EndByte()])
			imports = append(imports, parseImportSpecifier(text, spec.stringKind))
		}

		if callNode != nil && calleeNode != nil {
			rawCalls = append(rawCalls, struct {
				node *sitter.Node
				name string
			}{node: callNode, name: string(content[calleeNode.StartByte():calleeNode.EndByte()])})
		}
	}

	definitions := make([]graph.Node, 0, len(defsByStart))
	for _, n := range defsByStart {
		definitions = append(definitions, n)
	}

	var calls []resolve.CallSite
	for _, rc := range rawCalls {
		calls = append(calls, resolve.CallSite{
			CallerFile: path,
			Enclosing:  enclosingSymbol(rc.node, defsByStart),
			CalleeName: rc.name,
		})
	}

	var heritageRefs []resolve.HeritageRef
	for _, h := range heritage {
		owner, ok := defsByStart[h.ownerStart]
		if !ok {
			continue
		}
		heritageRefs = append(heritageRefs, resolve.HeritageRef{
			SymbolID: owner.ID,
			FilePath: path,
			RefName:  h.refName,
			Kind:     h.kind,
		})
	}

	for i := range imports {
		imports[i].FromFile = path
	}

	return &FileExtraction{
		Definitions: definitions,
		Imports:     imports,
		Calls:       calls,
		Heritage:    heritageRefs,
	}
}

// enclosingSymbol walks upward from a call/reference node to the
// nearest ancestor that is itself a captured Function/Method/
// Constructor definition, per spec §4.6. Nil means module top-level.
func enclosingSymbol(node *sitter.Node, defsByStart map[uint32]graph.Node) *resolve.EnclosingSymbol {
	for p := node.Parent(); p != nil; p = p.Parent() {
		if def, ok := defsByStart[p.StartByte()]; ok && enclosingKinds[def.Kind] {
			return &resolve.EnclosingSymbol{Kind: def.Kind, Name: def.Name}
		}
	}
	return nil
}

func codeSlice(content []byte, node *sitter.Node) string {
	start := node.StartByte()
	end := node.EndByte()
	if end > start+512 {
		end = start + 512
	}
	return string(content[start:end])
}

// identText reads a heritage/type-reference node's text, stripping
// generic-argument suffixes languages like Java/C#/TypeScript allow
// on a superclass reference (e.g. "List<String>" -> "List") since the
// resolution ladder matches on bare declared names.
func identText(content []byte, node *sitter.Node) string {
	text := string(content[node.StartByte():node.EndByte()])
	if i := strings.IndexAny(text, "<("); i >= 0 {
		text = text[:i]
	}
	return strings.TrimSpace(text)
}

// parseImportSpecifier turns the raw captured import node text into a
// resolve.ImportSpec. stringKind callers captured a quoted string
// literal (Go, JS/TS import source) and need unquoting; others
// captured a whole import/use statement and need the path substring
// pulled out.
func parseImportSpecifier(text string, stringKind bool) resolve.ImportSpec {
	if stringKind {
		spec := strings.Trim(text, `"'`)
		return resolve.ImportSpec{Specifier: spec, Relative: strings.HasPrefix(spec, ".")}
	}
	return parseStatementImport(text)
}

// parseStatementImport extracts a best-effort module path out of a
// full import/use/include statement for languages whose grammar
// doesn't expose the path as its own string-literal node in a form
// the query can capture directly (Python's `import x.y`, Java's
// `import a.b.C;`, C's `#include <a/b.h>`, Rust's `use a::b::C;`,
// PHP's `use A\B;`, C#'s `using A.B;`, Swift's `import A.B`).
func parseStatementImport(text string) resolve.ImportSpec {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "import")
	text = strings.TrimPrefix(text, "from")
	text = strings.TrimPrefix(text, "using")
	text = strings.TrimPrefix(text, "use")
	text = strings.TrimPrefix(text, "namespace")
	text = strings.TrimSuffix(text, ";")
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "#include") {
		text = strings.TrimSpace(strings.TrimPrefix(text, "#include"))
		text = strings.Trim(text, "<>\"")
		return resolve.ImportSpec{Specifier: text, Relative: !strings.Contains(text, "/") || text[0] != '/'}
	}

	// Normalize path-like separators (Java/PHP/Rust/C# all use one of
	// '.', '\', '::' as the module separator) to '/' so the shared
	// candidate-extension resolver in internal/resolve can treat every
	// language uniformly.
	replacer := strings.NewReplacer("::", "/", "\\", "/", ".", "/")
	// Don't mangle a relative leading "./" or "../" that Python's
	// "from . import x" / "from ..pkg import x" can produce.
	if strings.HasPrefix(text, ".") {
		rest := strings.TrimLeft(text, ".")
		dots := len(text) - len(rest)
		prefix := strings.Repeat("../", dots-1)
		if dots == 1 {
			prefix = "./"
		}
		// Python's "from ..pkg import widget" leaves a trailing
		// " import widget" clause in rest; only the module path
		// before it belongs in the specifier. "from . import x" has no
		// module path at all, so the specifier is the package directory.
		if fields := strings.Fields(rest); len(fields) > 0 {
			rest = fields[0]
			if rest == "import" {
				rest = ""
			}
		}
		return resolve.ImportSpec{Specifier: prefix + replacer.Replace(rest), Relative: true}
	}

	fields := strings.Fields(text)
	if len(fields) > 0 {
		text = fields[0]
	}
	return resolve.ImportSpec{Specifier: replacer.Replace(text), Relative: false}
}
