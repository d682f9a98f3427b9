// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package testing

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/gitnexus/engine/internal/persist"
	"github.com/gitnexus/engine/pkg/storage"
)

// SetupTestBackend opens a throwaway Kuzu database under t.TempDir()
// with the full persister schema already created, so integration
// tests across internal/persist, internal/resolve, and pkg/query can
// seed rows directly with Cypher and query them back.
func SetupTestBackend(t *testing.T) *storage.KuzuBackend {
	t.Helper()

	backend, err := storage.Open(storage.Config{Path: filepath.Join(t.TempDir(), "kuzu")})
	if err != nil {
		t.Fatalf("failed to open test backend: %v", err)
	}

	if err := persist.EnsureSchema(context.Background(), backend); err != nil {
		t.Fatalf("failed to ensure schema: %v", err)
	}

	t.Cleanup(func() { _ = backend.Close() })

	return backend
}

// InsertTestFile adds a File node to the database.
func InsertTestFile(t *testing.T, backend *storage.KuzuBackend, id, path string) {
	t.Helper()
	ctx := context.Background()
	err := backend.Execute(ctx, `CREATE (:File {id: $id, kind: "File", filePath: $path})`, map[string]any{
		"id": id, "path": path,
	})
	if err != nil {
		t.Fatalf("failed to insert test file: %v", err)
	}
}

// InsertTestSymbol adds a Symbol node (Function/Class/Method/...) to
// the database.
func InsertTestSymbol(t *testing.T, backend *storage.KuzuBackend, id, name, kind, filePath string, startLine, endLine int) {
	t.Helper()
	ctx := context.Background()
	err := backend.Execute(ctx, `CREATE (:Symbol {id: $id, name: $name, kind: $kind, filePath: $path, startLine: $start, endLine: $end})`,
		map[string]any{
			"id": id, "name": name, "kind": kind, "path": filePath, "start": startLine, "end": endLine,
		})
	if err != nil {
		t.Fatalf("failed to insert test symbol: %v", err)
	}
}

// InsertTestDefines adds a DEFINES_File_Symbol edge (file -> symbol).
func InsertTestDefines(t *testing.T, backend *storage.KuzuBackend, fileID, symbolID string) {
	t.Helper()
	ctx := context.Background()
	err := backend.Execute(ctx,
		`MATCH (f:File {id: $fileID}), (s:Symbol {id: $symbolID}) CREATE (f)-[:DEFINES_File_Symbol {kind: "DEFINES", confidence: 1.0}]->(s)`,
		map[string]any{"fileID": fileID, "symbolID": symbolID})
	if err != nil {
		t.Fatalf("failed to insert defines edge: %v", err)
	}
}

// InsertTestCalls adds a CALLS_Symbol_Symbol edge (caller -> callee).
func InsertTestCalls(t *testing.T, backend *storage.KuzuBackend, callerID, calleeID string, confidence float64, reason string) {
	t.Helper()
	ctx := context.Background()
	err := backend.Execute(ctx,
		`MATCH (a:Symbol {id: $callerID}), (b:Symbol {id: $calleeID}) CREATE (a)-[:CALLS_Symbol_Symbol {kind: "CALLS", confidence: $confidence, reason: $reason}]->(b)`,
		map[string]any{"callerID": callerID, "calleeID": calleeID, "confidence": confidence, "reason": reason})
	if err != nil {
		t.Fatalf("failed to insert calls edge: %v", err)
	}
}

// QuerySymbols returns [id, name] for every Symbol node.
func QuerySymbols(t *testing.T, backend *storage.KuzuBackend) *storage.QueryResult {
	t.Helper()
	result, err := backend.Query(context.Background(), `MATCH (s:Symbol) RETURN s.id, s.name`, nil)
	if err != nil {
		t.Fatalf("failed to query symbols: %v", err)
	}
	return result
}

// QueryFiles returns [id, filePath] for every File node.
func QueryFiles(t *testing.T, backend *storage.KuzuBackend) *storage.QueryResult {
	t.Helper()
	result, err := backend.Query(context.Background(), `MATCH (f:File) RETURN f.id, f.filePath`, nil)
	if err != nil {
		t.Fatalf("failed to query files: %v", err)
	}
	return result
}
