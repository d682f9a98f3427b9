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

// Package graph defines the typed directed multigraph that the
// ingestion engine builds: node kinds, edge kinds, their attributes,
// and deterministic id construction. It holds no I/O and no
// algorithms; it is the shared vocabulary every other package
// operates on.
package graph

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
)

// Kind tags a node's label. Language-specific symbol kinds are
// distinct Kind values but are treated uniformly by every component
// except the parser that produces them.
type Kind string

const (
	KindFolder      Kind = "Folder"
	KindFile        Kind = "File"
	KindFunction    Kind = "Function"
	KindClass       Kind = "Class"
	KindMethod      Kind = "Method"
	KindInterface   Kind = "Interface"
	KindCodeElement Kind = "CodeElement"

	KindStruct      Kind = "Struct"
	KindEnum        Kind = "Enum"
	KindMacro       Kind = "Macro"
	KindTypedef     Kind = "Typedef"
	KindUnion       Kind = "Union"
	KindNamespace   Kind = "Namespace"
	KindTrait       Kind = "Trait"
	KindImpl        Kind = "Impl"
	KindTypeAlias   Kind = "TypeAlias"
	KindConst       Kind = "Const"
	KindStatic      Kind = "Static"
	KindProperty    Kind = "Property"
	KindRecord      Kind = "Record"
	KindDelegate    Kind = "Delegate"
	KindAnnotation  Kind = "Annotation"
	KindConstructor Kind = "Constructor"
	KindTemplate    Kind = "Template"
	KindModule      Kind = "Module"

	KindCommunity Kind = "Community"
	KindProcess   Kind = "Process"
)

// symbolKinds is the set of node kinds subject to the "symbol node"
// invariants in spec §3 (exactly one DEFINES, eligible CALLS
// endpoints, heritage, community membership). Folder/File/Community/
// Process are excluded.
var symbolKinds = map[Kind]bool{
	KindFunction: true, KindClass: true, KindMethod: true, KindInterface: true,
	KindCodeElement: true, KindStruct: true, KindEnum: true, KindMacro: true,
	KindTypedef: true, KindUnion: true, KindNamespace: true, KindTrait: true,
	KindImpl: true, KindTypeAlias: true, KindConst: true, KindStatic: true,
	KindProperty: true, KindRecord: true, KindDelegate: true, KindAnnotation: true,
	KindConstructor: true, KindTemplate: true, KindModule: true,
}

// IsSymbolKind reports whether k is one of the universal or
// language-specific symbol kinds (as opposed to Folder/File/Community/
// Process).
func IsSymbolKind(k Kind) bool { return symbolKinds[k] }

// EdgeKind tags a relationship between two nodes.
type EdgeKind string

const (
	EdgeContains       EdgeKind = "CONTAINS"
	EdgeDefines        EdgeKind = "DEFINES"
	EdgeImports        EdgeKind = "IMPORTS"
	EdgeCalls          EdgeKind = "CALLS"
	EdgeExtends        EdgeKind = "EXTENDS"
	EdgeImplements     EdgeKind = "IMPLEMENTS"
	EdgeMemberOf       EdgeKind = "MEMBER_OF"
	EdgeStepInProcess  EdgeKind = "STEP_IN_PROCESS"
)

// ReasonModuleTopLevel marks a CALLS edge whose source is a File node
// because no enclosing function/method/constructor was found.
const ReasonModuleTopLevel = "module-top-level"

// Confidence reasons for the C6/C7 resolution ladder (spec §4.6/§4.7).
const (
	ReasonSameFile      = "same-file"
	ReasonImportResolved = "import-resolved"
	ReasonFuzzySingle   = "fuzzy-global"
	ReasonFuzzyMultiple = "fuzzy-global"
)

// Confidence scale, retained as-is per spec §9: ad-hoc, ordinal, not a
// probability.
const (
	ConfidenceSameFile       = 0.85
	ConfidenceImportResolved = 0.9
	ConfidenceFuzzySingle    = 0.5
	ConfidenceFuzzyMultiple  = 0.3
	ConfidenceImportEdge     = 1.0
)

// Node is a single graph node. Attributes that do not apply to a given
// Kind are left zero-valued; this mirrors spec §9's "tagged variant in
// parallel arenas" guidance without requiring a distinct Go type per
// Kind, since downstream code (persister, query layer) needs to treat
// nodes uniformly by label far more often than it needs per-kind
// methods.
type Node struct {
	ID       string
	Kind     Kind
	Name     string
	FilePath string

	// File-only.
	Content []byte

	// Symbol-only.
	StartLine  int
	EndLine    int
	IsExported bool
	// CodeSlice is the declaration text for the symbol, a prefix or
	// full slice of Content at (StartLine,EndLine).
	CodeSlice string

	// Embedding is the symbol's code-text vector, produced by
	// pkg/embedding and consumed by the store's vector index. Nil
	// until the embedding pass runs (or when --skip-embeddings is
	// set), and empty on per-symbol embedding failure.
	Embedding []float32

	// Community-only.
	Label        string
	Keywords     []string
	Cohesion     float64
	SymbolCount  int

	// Process-only.
	ProcessType   string
	StepCount     int
	CommunityIDs  []string
	EntryPointID  string
	TerminalID    string
}

// Edge is a single directed relationship between two node ids.
type Edge struct {
	From       string
	To         string
	Kind       EdgeKind
	Confidence float64
	Reason     string
	// Step is only meaningful on STEP_IN_PROCESS edges (0 = entry).
	Step int
}

// ClampConfidence enforces invariant 7: confidence is never stored
// outside [0,1].
func ClampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// NormalizePath makes a path root-relative, forward-slash separated,
// and free of a leading "./" — the one guarantee spec §4.1 says the
// rest of the pipeline relies on.
func NormalizePath(path string) string {
	if strings.HasPrefix(path, "./") {
		path = path[2:]
	}
	path = filepath.ToSlash(filepath.Clean(path))
	path = strings.TrimPrefix(path, "/")
	if path == "." {
		path = ""
	}
	return path
}

// FolderID is the single, always-present root Folder node id decided
// in spec §9's open question: "Folder:" with an empty path is the
// root of every CONTAINS chain. Non-root folders use their
// root-relative path.
func FolderID(path string) string {
	return fmt.Sprintf("Folder:%s", NormalizePath(path))
}

// FileID is the deterministic id for a File node.
func FileID(path string) string {
	return fmt.Sprintf("File:%s", NormalizePath(path))
}

// SymbolID builds a definition node id as label:filePath:name, per
// spec §3. The id is a pure function of (label, filePath, name)
// (spec §8 property 2: id stability); SymbolID itself never appends
// anything, and overloaded/duplicate names at the same (kind, path)
// get their ids from SymbolIDDisambiguated instead.
func SymbolID(kind Kind, filePath, name string) string {
	return fmt.Sprintf("%s:%s:%s", kind, NormalizePath(filePath), name)
}

// SymbolIDDisambiguated appends a start line when two definitions of
// the same (kind, filePath, name) exist in a file (e.g. overloaded
// methods in languages that allow it). Stability for the common,
// non-overloaded case is untouched.
func SymbolIDDisambiguated(kind Kind, filePath, name string, startLine int) string {
	return fmt.Sprintf("%s:%s:%s#%d", kind, NormalizePath(filePath), name, startLine)
}

// DerivedID builds the kind:hash id used for Community/Process nodes,
// whose identity is not inherent in the source (spec §3: "kind:hash
// (community/process)"). The hash is over the caller-supplied seed
// (e.g. sorted member ids), so re-running community/process detection
// on an unchanged graph reproduces identical ids.
func DerivedID(kind Kind, seedParts ...string) string {
	h := sha256.Sum256([]byte(strings.Join(seedParts, "\x1f")))
	return fmt.Sprintf("%s:%s", kind, hex.EncodeToString(h[:16]))
}
