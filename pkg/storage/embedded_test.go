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

//go:build cgo

package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func setupTestBackend(t *testing.T) *KuzuBackend {
	t.Helper()
	b, err := Open(Config{Path: filepath.Join(t.TempDir(), "kuzu")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestOpenAndClose(t *testing.T) {
	b := setupTestBackend(t)
	require.NoError(t, b.Close())
	// Closing twice must not panic or error.
	require.NoError(t, b.Close())
}

func TestExecuteDDLIsIdempotent(t *testing.T) {
	b := setupTestBackend(t)
	ctx := context.Background()
	ddl := `CREATE NODE TABLE IF NOT EXISTS File(path STRING, content STRING, PRIMARY KEY(path))`
	require.NoError(t, b.Execute(ctx, ddl, nil))
	require.NoError(t, b.Execute(ctx, ddl, nil))
}

func TestQueryRoundTrip(t *testing.T) {
	b := setupTestBackend(t)
	ctx := context.Background()
	require.NoError(t, b.Execute(ctx, `CREATE NODE TABLE IF NOT EXISTS File(path STRING, PRIMARY KEY(path))`, nil))
	require.NoError(t, b.Execute(ctx, `CREATE (:File {path: $p})`, map[string]any{"p": "a.ts"}))

	res, err := b.Query(ctx, `MATCH (f:File) RETURN f.path`, nil)
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	require.Equal(t, "a.ts", res.Rows[0][0])
}

func TestPreparedStatementReuse(t *testing.T) {
	b := setupTestBackend(t)
	ctx := context.Background()
	require.NoError(t, b.Execute(ctx, `CREATE NODE TABLE IF NOT EXISTS File(path STRING, PRIMARY KEY(path))`, nil))

	stmt, err := b.Prepare(ctx, `CREATE (:File {path: $p})`)
	require.NoError(t, err)
	require.NoError(t, stmt.Execute(ctx, map[string]any{"p": "a.ts"}))
	require.NoError(t, stmt.Execute(ctx, map[string]any{"p": "b.ts"}))

	res, err := b.Query(ctx, `MATCH (f:File) RETURN count(f)`, nil)
	require.NoError(t, err)
	require.Equal(t, int64(2), res.Scalar())
}

func TestClosedBackendRejectsQueries(t *testing.T) {
	b := setupTestBackend(t)
	require.NoError(t, b.Close())
	_, err := b.Query(context.Background(), `MATCH (n) RETURN n`, nil)
	require.Error(t, err)
}
