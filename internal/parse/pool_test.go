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
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	ierrors "github.com/gitnexus/engine/internal/errors"
	"github.com/gitnexus/engine/internal/walk"
)

func TestPoolRunParsesAllFiles(t *testing.T) {
	var files []walk.File
	for i := 0; i < 25; i++ {
		src := fmt.Sprintf("package p\n\nfunc F%d() {}\n", i)
		files = append(files, walk.File{
			Path:     fmt.Sprintf("f%d.go", i),
			Bytes:    []byte(src),
			Language: "go",
			Size:     int64(len(src)),
		})
	}

	pool := NewPool(PoolOptions{Workers: 4}, ierrors.NewSummary(0))
	results := pool.Run(context.Background(), files)

	require.Len(t, results, len(files))
	seen := make(map[string]bool)
	for _, r := range results {
		require.NotNil(t, r.Extraction)
		require.Len(t, r.Extraction.Definitions, 1)
		seen[r.Path] = true
	}
	require.Len(t, seen, len(files))
}

func TestPoolRunSkipsOversizedFiles(t *testing.T) {
	summary := ierrors.NewSummary(0)
	files := []walk.File{
		{Path: "small.go", Bytes: []byte("package p\n"), Language: "go", Size: 10},
		{Path: "huge.go", Bytes: []byte("package p\n"), Language: "go", Size: 999},
	}

	pool := NewPool(PoolOptions{Workers: 2, FileSizeLimit: 100}, summary)
	results := pool.Run(context.Background(), files)

	require.Len(t, results, 1)
	require.Equal(t, "small.go", results[0].Path)
	warnings, _ := summary.Warnings()
	require.Len(t, warnings, 1)
}

func TestPoolRunHandlesEmptyFileSet(t *testing.T) {
	pool := NewPool(PoolOptions{}, ierrors.NewSummary(0))
	results := pool.Run(context.Background(), nil)
	require.Empty(t, results)
}

func TestPoolOptionsDefaults(t *testing.T) {
	opts := PoolOptions{}.withDefaults()
	require.Greater(t, opts.Workers, 0)
	require.Equal(t, int64(DefaultFileSizeLimit), opts.FileSizeLimit)
	require.Equal(t, DefaultFileTimeout, opts.FileTimeout)
}

func TestPoolRunSurvivesCancelledContext(t *testing.T) {
	// A context cancelled before Run is called should still let
	// already-queued small files either complete fast or be recorded
	// as a warning, never panic or hang.
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)

	summary := ierrors.NewSummary(0)
	files := []walk.File{{Path: "a.go", Bytes: []byte("package p\n"), Language: "go", Size: 10}}
	pool := NewPool(PoolOptions{Workers: 1}, summary)

	require.NotPanics(t, func() {
		pool.Run(ctx, files)
	})
}
