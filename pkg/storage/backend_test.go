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

package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKuzuBackendImplementsBackend(t *testing.T) {
	var _ Backend = (*KuzuBackend)(nil)
}

func TestDefaultCopyOptions(t *testing.T) {
	opts := DefaultCopyOptions()
	assert.True(t, opts.Header)
	assert.Equal(t, `"`, opts.Escape)
	assert.Equal(t, ",", opts.Delim)
	assert.Equal(t, `"`, opts.Quote)
	assert.False(t, opts.Parallel)
	assert.False(t, opts.AutoDetect)
	assert.False(t, opts.IgnoreErrors)
}

func TestCopyOptionsWithIgnoreErrors(t *testing.T) {
	opts := DefaultCopyOptions().WithIgnoreErrors()
	require.True(t, opts.IgnoreErrors)
	// The base option set must be untouched by the first retry.
	assert.True(t, opts.Header)
}

func TestQueryResultScalar(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		var qr *QueryResult
		assert.Nil(t, qr.Scalar())
		assert.Nil(t, (&QueryResult{}).Scalar())
	})
	t.Run("first row first column", func(t *testing.T) {
		qr := &QueryResult{
			Columns: []string{"count"},
			Rows:    [][]any{{int64(42)}, {int64(7)}},
		}
		assert.Equal(t, int64(42), qr.Scalar())
	})
}

func TestTruncateMissingPathIsNotAnError(t *testing.T) {
	require.NoError(t, Truncate(t.TempDir()+"/does-not-exist"))
	require.NoError(t, Truncate(""))
}
