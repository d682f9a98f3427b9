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

	sitter "github.com/smacker/go-tree-sitter"
)

// scratchBufferSize is the generous scratch buffer spec §4.4 step 3
// calls for, to tolerate large files without repeated reallocation.
const scratchBufferSize = 256 * 1024

// Worker owns one tree-sitter parser and compiled-query cache per
// language, so a pool of Workers never shares mutable parser state
// across goroutines (spec §4.4: "each worker owns its own parser,
// grammar cache, and scratch buffers").
type Worker struct {
	parsers map[string]*sitter.Parser
	queries map[string]*sitter.Query
}

// NewWorker returns an empty Worker. Parsers and compiled queries are
// built lazily per language family on first use and live for the
// Worker's entire lifetime.
func NewWorker() *Worker {
	return &Worker{
		parsers: make(map[string]*sitter.Parser),
		queries: make(map[string]*sitter.Query),
	}
}

func (w *Worker) parserFor(spec languageSpec) (*sitter.Parser, *sitter.Query, error) {
	if p, ok := w.parsers[spec.name]; ok {
		return p, w.queries[spec.name], nil
	}
	p := sitter.NewParser()
	p.SetLanguage(spec.language)
	q, err := sitter.NewQuery([]byte(spec.query), spec.language)
	if err != nil {
		return nil, nil, fmt.Errorf("compile %s query: %w", spec.name, err)
	}
	w.parsers[spec.name] = p
	w.queries[spec.name] = q
	return p, q, nil
}

// ParseFile runs spec §4.4 steps 1-5 for a single file: resolve
// language, parse, query, extract. A file of an unsupported extension
// returns (nil, nil) — not an error, per step 1's "skip".
func (w *Worker) ParseFile(ctx context.Context, path, tag, ext string, content []byte) (*FileExtraction, error) {
	spec, ok := languageFor(tag, ext)
	if !ok {
		return nil, nil
	}

	parser, query, err := w.parserFor(spec)
	if err != nil {
		return nil, err
	}

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if tree.RootNode().HasError() {
		// Tree-sitter is error-tolerant: a partial tree is still useful,
		// so parsing continues per spec §4.4 step 3.
	}

	extraction := extract(spec, query, tree, content, path)
	return extraction, nil
}

// Close releases every parser this worker owns.
func (w *Worker) Close() {
	for _, p := range w.parsers {
		p.Close()
	}
}
