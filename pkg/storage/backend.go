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

import "context"

// Backend is the store contract spec §6 names: a query path, a
// prepared-mutation path, bulk CSV COPY, and best-effort vector/FTS
// index management. internal/persist is the only caller of the
// mutation-shaped methods; pkg/query only ever calls Query and the
// index query methods.
type Backend interface {
	// Query executes a read-only Cypher query and returns its rows.
	Query(ctx context.Context, cypher string, params map[string]any) (*QueryResult, error)

	// Execute runs a Cypher statement that mutates the graph (DDL or
	// a parameterized CREATE/MERGE), matching spec §6's "execute(stmt,
	// params)".
	Execute(ctx context.Context, cypher string, params map[string]any) error

	// Prepare compiles cypher once for repeated Execute calls with
	// different params — used by the persister's fallback per-row
	// insert path (spec §4.9 pass 4) to avoid re-parsing the same
	// MATCH…CREATE template per row.
	Prepare(ctx context.Context, cypher string) (Statement, error)

	// Copy issues the store's bulk COPY primitive: `COPY tableName
	// FROM 'csvPath' (options...)`, per spec §4.9 passes 2–3.
	Copy(ctx context.Context, table, csvPath string, opts CopyOptions) error

	// CreateVectorIndex and QueryVectorIndex implement spec §6's
	// vector-index surface.
	CreateVectorIndex(ctx context.Context, table, indexName, column, metric string) error
	QueryVectorIndex(ctx context.Context, table, indexName string, queryVector []float32, topK int) (*QueryResult, error)

	// CreateFTSIndex and QueryFTSIndex implement spec §6's full-text
	// index surface.
	CreateFTSIndex(ctx context.Context, table, indexName string, columns []string, stemmer string) error
	QueryFTSIndex(ctx context.Context, table, indexName, query string, topK int) (*QueryResult, error)

	// Close releases the underlying database handle.
	Close() error
}

// Statement is a store-prepared query, reusable across many Execute
// calls with different parameter sets.
type Statement interface {
	Execute(ctx context.Context, params map[string]any) error
}

// CopyOptions mirrors the exact option set spec §4.9 names for the
// node/edge bulk COPY passes.
type CopyOptions struct {
	Header       bool
	Escape       string
	Delim        string
	Quote        string
	Parallel     bool
	AutoDetect   bool
	IgnoreErrors bool
}

// DefaultCopyOptions is the option set spec §4.9 pass 2 specifies for
// the first COPY attempt of any table.
func DefaultCopyOptions() CopyOptions {
	return CopyOptions{
		Header:     true,
		Escape:     `"`,
		Delim:      ",",
		Quote:      `"`,
		Parallel:   false,
		AutoDetect: false,
	}
}

// WithIgnoreErrors returns a copy of opts with IGNORE_ERRORS=true, the
// single retry spec §4.9 allows before a node-table COPY is fatal.
func (o CopyOptions) WithIgnoreErrors() CopyOptions {
	o.IgnoreErrors = true
	return o
}

// QueryResult is a store-agnostic row set: column names plus rows of
// driver-native values (string, int64, float64, bool, nil, or nested
// slices/maps for list/struct columns).
type QueryResult struct {
	Columns []string
	Rows    [][]any
}

// Scalar returns row[0], column 0 of the first row, or nil if the
// result has no rows — a convenience for the many single-value
// queries the query layer issues (counts, existence checks).
func (r *QueryResult) Scalar() any {
	if r == nil || len(r.Rows) == 0 || len(r.Rows[0]) == 0 {
		return nil
	}
	return r.Rows[0][0]
}
