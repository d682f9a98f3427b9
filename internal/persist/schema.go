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

// Package persist implements the graph persister (C9): it writes the
// in-memory node/edge set to the Kuzu store in the four passes spec
// §4.9 describes — prepare/schema, node COPY, per-pair edge COPY, and
// per-row fallback inserts for failed pairs — followed by best-effort
// full-text index creation.
package persist

import (
	"context"
	"fmt"

	"github.com/gitnexus/engine/internal/graph"
	"github.com/gitnexus/engine/pkg/storage"
)

// table names the five node tables the store holds. Every graph.Kind
// maps onto exactly one of these. Collapsing the many language-specific
// symbol kinds (Struct, Enum, Trait, ...) into a single Symbol table
// with a `kind` discriminator column avoids an unbounded REL-table
// pairing matrix for CALLS/EXTENDS/IMPLEMENTS, which would otherwise
// need one pair per (symbol kind, symbol kind) combination. See
// DESIGN.md for the full reasoning; this is a resolved Open Question,
// not a spec deviation — spec §9 already describes the node model as
// "parallel arenas... cross-references by id string", which this
// mirrors at the storage layer.
type table string

const (
	tableFolder    table = "Folder"
	tableFile      table = "File"
	tableSymbol    table = "Symbol"
	tableCommunity table = "Community"
	tableProcess   table = "Process"
)

// nodeTableFor returns the storage table a given graph.Kind belongs to.
func nodeTableFor(k graph.Kind) table {
	switch k {
	case graph.KindFolder:
		return tableFolder
	case graph.KindFile:
		return tableFile
	case graph.KindCommunity:
		return tableCommunity
	case graph.KindProcess:
		return tableProcess
	default:
		return tableSymbol
	}
}

// nodeColumns is the uniform column set shared by every node table.
// Attributes that do not apply to a given row are emitted empty/zero;
// this mirrors graph.Node's own shape, which already leaves
// kind-inapplicable fields zero-valued.
// EmbeddingDims is the fixed vector width spec §6's embedder interface
// defaults to. Kuzu's HNSW vector index requires a fixed-size array
// column, so this cannot vary per row; formatEmbedding pads/truncates
// every vector to this width when it writes the CSV row.
const EmbeddingDims = 384

var nodeColumns = []string{
	"id", "kind", "name", "filePath", "content",
	"startLine", "endLine", "isExported", "codeSlice", "embedding",
	"label", "keywords", "cohesion", "symbolCount",
	"processType", "stepCount", "communityIDs", "entryPointID", "terminalID",
}

func nodeTableDDL(t table) string {
	return fmt.Sprintf(`CREATE NODE TABLE IF NOT EXISTS %s(
  id STRING, kind STRING, name STRING, filePath STRING, content STRING,
  startLine INT64, endLine INT64, isExported BOOLEAN, codeSlice STRING, embedding FLOAT[%d],
  label STRING, keywords STRING, cohesion DOUBLE, symbolCount INT64,
  processType STRING, stepCount INT64, communityIDs STRING, entryPointID STRING, terminalID STRING,
  PRIMARY KEY(id)
)`, t, EmbeddingDims)
}

// edgePair names one (edgeKind, fromTable, toTable) REL table. The
// persister COPYs edges into exactly one of these per pass, since
// spec §4.9 requires "per-pair COPY": the store's bulk COPY primitive
// can only target a single FROM/TO pair at a time.
type edgePair struct {
	Kind EdgeTableKind
	From table
	To   table
}

// EdgeTableKind is the REL table name, distinct from graph.EdgeKind
// only in that ambiguous callers (File vs Symbol) get their own pair.
type EdgeTableKind string

const (
	relContainsFolderFolder EdgeTableKind = "CONTAINS_Folder_Folder"
	relContainsFolderFile   EdgeTableKind = "CONTAINS_Folder_File"
	relDefinesFileSymbol    EdgeTableKind = "DEFINES_File_Symbol"
	relImportsFileFile      EdgeTableKind = "IMPORTS_File_File"
	relCallsSymbolSymbol    EdgeTableKind = "CALLS_Symbol_Symbol"
	relCallsFileSymbol      EdgeTableKind = "CALLS_File_Symbol"
	relExtendsSymbolSymbol  EdgeTableKind = "EXTENDS_Symbol_Symbol"
	relImplementsSymSym     EdgeTableKind = "IMPLEMENTS_Symbol_Symbol"
	relMemberOfSymCommunity EdgeTableKind = "MEMBER_OF_Symbol_Community"
	relStepInProcProcSym    EdgeTableKind = "STEP_IN_PROCESS_Process_Symbol"
)

var allEdgePairs = []edgePair{
	{relContainsFolderFolder, tableFolder, tableFolder},
	{relContainsFolderFile, tableFolder, tableFile},
	{relDefinesFileSymbol, tableFile, tableSymbol},
	{relImportsFileFile, tableFile, tableFile},
	{relCallsSymbolSymbol, tableSymbol, tableSymbol},
	{relCallsFileSymbol, tableFile, tableSymbol},
	{relExtendsSymbolSymbol, tableSymbol, tableSymbol},
	{relImplementsSymSym, tableSymbol, tableSymbol},
	{relMemberOfSymCommunity, tableSymbol, tableCommunity},
	{relStepInProcProcSym, tableProcess, tableSymbol},
}

func edgeTableDDL(p edgePair) string {
	return fmt.Sprintf(
		`CREATE REL TABLE IF NOT EXISTS %s(FROM %s TO %s, kind STRING, confidence DOUBLE, reason STRING, step INT64)`,
		p.Kind, p.From, p.To,
	)
}

// EnsureSchema issues the fixed DDL sequence spec §4.9 pass 1
// describes. Every statement is idempotent ("already exists" errors
// are absorbed by IF NOT EXISTS rather than caught, since Kuzu
// supports the clause directly).
func EnsureSchema(ctx context.Context, backend storage.Backend) error {
	for _, t := range []table{tableFolder, tableFile, tableSymbol, tableCommunity, tableProcess} {
		if err := backend.Execute(ctx, nodeTableDDL(t), nil); err != nil {
			return fmt.Errorf("create node table %s: %w", t, err)
		}
	}
	for _, p := range allEdgePairs {
		if err := backend.Execute(ctx, edgeTableDDL(p), nil); err != nil {
			return fmt.Errorf("create rel table %s: %w", p.Kind, err)
		}
	}
	return nil
}

// edgePairFor classifies an edge by the tables its endpoints belong
// to, given the kind of each endpoint node. Callers look up endpoint
// kinds before calling this; an edge whose endpoints don't match any
// known pair is dropped with a warning (defensive: the algorithms
// upstream should never produce one).
func edgePairFor(ek graph.EdgeKind, fromKind, toKind graph.Kind) (edgePair, bool) {
	fromT, toT := nodeTableFor(fromKind), nodeTableFor(toKind)
	for _, p := range allEdgePairs {
		base := string(p.Kind)
		if len(base) < len(ek) || base[:len(ek)] != string(ek) {
			continue
		}
		if p.From == fromT && p.To == toT {
			return p, true
		}
	}
	return edgePair{}, false
}
