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

package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitnexus/engine/pkg/storage"
)

// fakeBackend is an in-memory stand-in for storage.Backend, following
// the same shape internal/persist's tests use, so these tests exercise
// row-shaping logic without an embedded Kuzu database.
type fakeBackend struct {
	rows       [][]any
	lastCypher string
	lastParams map[string]any
	queryErr   error
}

func (f *fakeBackend) Query(ctx context.Context, cypher string, params map[string]any) (*storage.QueryResult, error) {
	f.lastCypher = cypher
	f.lastParams = params
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return &storage.QueryResult{Rows: f.rows}, nil
}
func (f *fakeBackend) Execute(ctx context.Context, cypher string, params map[string]any) error {
	return nil
}
func (f *fakeBackend) Prepare(ctx context.Context, cypher string) (storage.Statement, error) {
	return nil, nil
}
func (f *fakeBackend) Copy(ctx context.Context, table, csvPath string, opts storage.CopyOptions) error {
	return nil
}
func (f *fakeBackend) CreateVectorIndex(ctx context.Context, table, indexName, column, metric string) error {
	return nil
}
func (f *fakeBackend) QueryVectorIndex(ctx context.Context, table, indexName string, queryVector []float32, topK int) (*storage.QueryResult, error) {
	f.lastCypher = "VECTOR:" + table + ":" + indexName
	return &storage.QueryResult{Rows: f.rows}, f.queryErr
}
func (f *fakeBackend) CreateFTSIndex(ctx context.Context, table, indexName string, columns []string, stemmer string) error {
	return nil
}
func (f *fakeBackend) QueryFTSIndex(ctx context.Context, table, indexName, query string, topK int) (*storage.QueryResult, error) {
	f.lastCypher = "FTS:" + table + ":" + indexName
	return &storage.QueryResult{Rows: f.rows}, f.queryErr
}
func (f *fakeBackend) Close() error { return nil }

func symbolRow(id, kind, name, file string, start, end int64, exported bool, code string) []any {
	return []any{id, kind, name, file, start, end, exported, code}
}

func TestGrepRejectsEmptyText(t *testing.T) {
	c := NewClient(&fakeBackend{}, nil)
	_, err := c.Grep(context.Background(), "", GrepOptions{})
	assert.Error(t, err)
}

func TestGrepBuildsCaseInsensitiveClauseByDefault(t *testing.T) {
	backend := &fakeBackend{rows: [][]any{
		symbolRow("Function:b.go:bar", "Function", "bar", "b.go", 1, 2, true, "func bar() {}"),
		symbolRow("Function:a.go:foo", "Function", "foo", "a.go", 3, 4, false, "func foo() {}"),
	}}
	c := NewClient(backend, nil)

	out, err := c.Grep(context.Background(), "func", GrepOptions{})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Contains(t, backend.lastCypher, "lower(n.codeSlice) CONTAINS lower($text)")
	// sorted by file path then line
	assert.Equal(t, "a.go", out[0].FilePath)
	assert.Equal(t, "b.go", out[1].FilePath)
}

func TestGrepCaseSensitiveAndPathFilter(t *testing.T) {
	backend := &fakeBackend{}
	c := NewClient(backend, nil)

	_, err := c.Grep(context.Background(), "Foo", GrepOptions{CaseSensitive: true, PathPattern: "internal/"})
	require.NoError(t, err)
	assert.Contains(t, backend.lastCypher, "n.codeSlice CONTAINS $text")
	assert.Contains(t, backend.lastCypher, "AND n.filePath CONTAINS $path")
	assert.Equal(t, "internal/", backend.lastParams["path"])
}

func TestFindSymbolExactVsFuzzy(t *testing.T) {
	backend := &fakeBackend{rows: [][]any{symbolRow("Function:a.go:foo", "Function", "foo", "a.go", 1, 1, true, "")}}
	c := NewClient(backend, nil)

	_, err := c.FindSymbol(context.Background(), "foo", true)
	require.NoError(t, err)
	assert.Contains(t, backend.lastCypher, "n.name = $name")

	_, err = c.FindSymbol(context.Background(), "foo", false)
	require.NoError(t, err)
	assert.Contains(t, backend.lastCypher, "lower(n.name) CONTAINS lower($name)")
}

func TestFindSymbolRejectsEmptyName(t *testing.T) {
	c := NewClient(&fakeBackend{}, nil)
	_, err := c.FindSymbol(context.Background(), "", true)
	assert.Error(t, err)
}

func TestListFilesAppliesPathPattern(t *testing.T) {
	backend := &fakeBackend{rows: [][]any{{"File:a.go", "a.go"}}}
	c := NewClient(backend, nil)

	out, err := c.ListFiles(context.Background(), "internal/", 0)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "a.go", out[0].FilePath)
	assert.Contains(t, backend.lastCypher, "WHERE n.filePath CONTAINS $path")
}
