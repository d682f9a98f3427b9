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

	"github.com/gitnexus/engine/pkg/embedding"
)

func ftsRow(id, kind, name, file string, start, end int64, exported bool, code string, score float64) []any {
	return []any{id, kind, name, file, start, end, exported, code, score}
}

func TestFullTextSearchRejectsEmptyQuery(t *testing.T) {
	c := NewClient(&fakeBackend{}, nil)
	_, err := c.FullTextSearch(context.Background(), "", 10)
	assert.Error(t, err)
}

func TestFullTextSearchAttachesScore(t *testing.T) {
	backend := &fakeBackend{rows: [][]any{
		ftsRow("Function:a.go:foo", "Function", "foo", "a.go", 1, 2, true, "func foo() {}", 4.2),
	}}
	c := NewClient(backend, nil)

	out, err := c.FullTextSearch(context.Background(), "foo", 0)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "foo", out[0].Name)
	assert.Equal(t, 4.2, out[0].Score)
	assert.Equal(t, "FTS:Symbol:fts_Symbol", backend.lastCypher)
}

func TestSemanticRequiresEmbedder(t *testing.T) {
	c := NewClient(&fakeBackend{}, nil)
	_, err := c.Semantic(context.Background(), "how does auth work", 5)
	assert.Error(t, err)
}

func TestSemanticRejectsEmptyQuery(t *testing.T) {
	c := NewClient(&fakeBackend{}, embedding.NewMockProvider(8))
	_, err := c.Semantic(context.Background(), "", 5)
	assert.Error(t, err)
}

func TestSemanticEmbedsAndQueriesVectorIndex(t *testing.T) {
	backend := &fakeBackend{rows: [][]any{
		ftsRow("Function:a.go:foo", "Function", "foo", "a.go", 1, 2, true, "func foo() {}", 0.12),
	}}
	c := NewClient(backend, embedding.NewMockProvider(8))

	out, err := c.Semantic(context.Background(), "how does auth work", 0)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 0.12, out[0].Score)
	assert.Equal(t, "VECTOR:Symbol:vec_Symbol", backend.lastCypher)
}
