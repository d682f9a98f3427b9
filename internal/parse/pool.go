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
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	ierrors "github.com/gitnexus/engine/internal/errors"
	"github.com/gitnexus/engine/internal/walk"
)

// Defaults for the bounded pool, per spec §4.4/§5.
const (
	DefaultWorkers       = 4
	DefaultFileSizeLimit = 10 * 1024 * 1024 // 10 MiB
	DefaultFileTimeout   = 60 * time.Second
)

// PoolOptions configures the C4 worker pool. Zero values fall back to
// the package defaults.
type PoolOptions struct {
	Workers       int
	FileSizeLimit int64
	FileTimeout   time.Duration
}

func (o PoolOptions) withDefaults() PoolOptions {
	if o.Workers <= 0 {
		o.Workers = DefaultWorkers
		if n := runtime.NumCPU(); n < o.Workers {
			o.Workers = n
		}
		if o.Workers < 1 {
			o.Workers = 1
		}
	}
	if o.FileSizeLimit <= 0 {
		o.FileSizeLimit = DefaultFileSizeLimit
	}
	if o.FileTimeout <= 0 {
		o.FileTimeout = DefaultFileTimeout
	}
	return o
}

// Result is one file's outcome from the pool: either a populated
// Extraction, or a reason it was skipped/failed.
type Result struct {
	Path       string
	Extraction *FileExtraction
}

// Pool runs a bounded number of Workers over a file set, one file per
// goroutine slot, oversized files and per-file timeouts handled as
// skips rather than aborting the run, per spec §4.4 step 2 and the
// "partial failure never aborts the run" policy.
type Pool struct {
	opts    PoolOptions
	summary *ierrors.Summary
}

// NewPool returns a Pool ready to run Workers.
func NewPool(opts PoolOptions, summary *ierrors.Summary) *Pool {
	return &Pool{opts: opts.withDefaults(), summary: summary}
}

// Run parses files concurrently and returns one Result per file that
// parsed successfully in a supported language. Oversized files and
// files whose parse returned an error are logged as warnings and
// omitted; files in an unsupported language are omitted as well. Exactly
// Workers goroutines run, each owning one Worker for its entire
// lifetime and draining a shared job channel, so a parser/query cache
// is warmed once per goroutine and never touched by two goroutines at
// once.
func (p *Pool) Run(ctx context.Context, files []walk.File) []Result {
	results := make([]Result, len(files))
	present := make([]bool, len(files))

	type job struct {
		index int
		file  walk.File
	}
	jobs := make(chan job, len(files))
	for i, f := range files {
		if f.Size > p.opts.FileSizeLimit {
			p.summary.Warn("parse: skipped %s (%d bytes exceeds limit %d)", f.Path, f.Size, p.opts.FileSizeLimit)
			continue
		}
		jobs <- job{index: i, file: f}
	}
	close(jobs)

	g, gctx := errgroup.WithContext(ctx)
	for n := 0; n < p.opts.Workers; n++ {
		g.Go(func() error {
			worker := NewWorker()
			defer worker.Close()

			for j := range jobs {
				fileCtx, cancel := context.WithTimeout(gctx, p.opts.FileTimeout)
				extraction, err := worker.ParseFile(fileCtx, j.file.Path, j.file.Language, extOf(j.file.Path), j.file.Bytes)
				cancel()
				if err != nil {
					p.summary.Warn("parse: %s: %v", j.file.Path, err)
					continue
				}
				if extraction == nil {
					continue
				}
				results[j.index] = Result{Path: j.file.Path, Extraction: extraction}
				present[j.index] = true
			}
			return nil
		})
	}
	_ = g.Wait()

	out := make([]Result, 0, len(files))
	for i, ok := range present {
		if ok {
			out = append(out, results[i])
		}
	}
	return out
}

func extOf(path string) string {
	for i := len(path) - 1; i >= 0 && path[i] != '/'; i-- {
		if path[i] == '.' {
			return path[i:]
		}
	}
	return ""
}
