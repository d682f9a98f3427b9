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
//go:build kuzu

// Integration tests against a real embedded Kuzu database.
// Run with: go test -tags=kuzu ./pkg/query/...

package query_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitnexus/engine/internal/graph"
	gnxtest "github.com/gitnexus/engine/internal/testing"
	"github.com/gitnexus/engine/pkg/query"
)

func TestFindCallersAgainstRealBackend(t *testing.T) {
	backend := gnxtest.SetupTestBackend(t)
	ctx := context.Background()

	gnxtest.InsertTestFile(t, backend, "file1", "cmd/server/main.go")
	gnxtest.InsertTestSymbol(t, backend, "sym1", "main", string(graph.KindFunction), "cmd/server/main.go", 1, 5)
	gnxtest.InsertTestSymbol(t, backend, "sym2", "handleRequest", string(graph.KindFunction), "internal/handler.go", 10, 20)
	gnxtest.InsertTestDefines(t, backend, "file1", "sym1")
	gnxtest.InsertTestCalls(t, backend, "sym1", "sym2", 1.0, "same-file")

	client := query.NewClient(backend, nil)

	callers, err := client.FindCallers(ctx, "handleRequest")
	require.NoError(t, err)
	require.Len(t, callers, 1)
	assert.Equal(t, "main", callers[0].CallerName)
	assert.Equal(t, "handleRequest", callers[0].CalleeName)

	symbols := gnxtest.QuerySymbols(t, backend)
	assert.Len(t, symbols.Rows, 2)

	files := gnxtest.QueryFiles(t, backend)
	assert.Len(t, files.Rows, 1)
}
