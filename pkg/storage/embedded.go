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
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	kuzu "github.com/kuzudb/go-kuzu"
)

// Config configures the embedded Kuzu backend.
type Config struct {
	// Path is the database file/directory spec §6 calls "kuzu" under
	// .gitnexus/.
	Path string
	// BufferPoolSizeBytes overrides Kuzu's default buffer pool; 0
	// means use the driver default.
	BufferPoolSizeBytes uint64
	// ReadOnly opens the database without taking the write lock, used
	// by pkg/query consumers that never mutate the graph.
	ReadOnly bool
}

// KuzuBackend implements Backend against an embedded Kuzu database
// file. A single *kuzu.Connection is shared across goroutines behind
// a mutex: spec §5 says the store connection is single-owner (only
// the coordinator opens it) and Kuzu connections are not documented
// safe for concurrent statement execution.
type KuzuBackend struct {
	db     *kuzu.Database
	conn   *kuzu.Connection
	mu     sync.Mutex
	closed bool
}

// Open creates or opens the Kuzu database at cfg.Path.
func Open(cfg Config) (*KuzuBackend, error) {
	sysConfig := kuzu.DefaultSystemConfig()
	if cfg.BufferPoolSizeBytes > 0 {
		sysConfig.BufferPoolSize = cfg.BufferPoolSizeBytes
	}
	sysConfig.ReadOnly = cfg.ReadOnly

	db, err := kuzu.OpenDatabase(cfg.Path, sysConfig)
	if err != nil {
		return nil, fmt.Errorf("open kuzu database at %s: %w", cfg.Path, err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("open kuzu connection: %w", err)
	}
	return &KuzuBackend{db: db, conn: conn}, nil
}

// Truncate removes the database files at path entirely. Its one
// caller is persist.PrepareDatabase, pass 1 of every rebuild; a failed
// or cancelled run does not call it, so partial persistence from such
// a run stays at path until the next rebuild.
func Truncate(path string) error {
	if path == "" {
		return nil
	}
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("truncate database path %s: %w", path, err)
	}
	return nil
}

func (b *KuzuBackend) Query(ctx context.Context, cypher string, params map[string]any) (*QueryResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, fmt.Errorf("storage: backend is closed")
	}
	return b.runLocked(cypher, params)
}

func (b *KuzuBackend) Execute(ctx context.Context, cypher string, params map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return fmt.Errorf("storage: backend is closed")
	}
	_, err := b.runLocked(cypher, params)
	return err
}

// runLocked must be called with b.mu held.
func (b *KuzuBackend) runLocked(cypher string, params map[string]any) (*QueryResult, error) {
	var (
		res *kuzu.QueryResult
		err error
	)
	if len(params) == 0 {
		res, err = b.conn.Query(cypher)
	} else {
		stmt, prepErr := b.conn.Prepare(cypher)
		if prepErr != nil {
			return nil, fmt.Errorf("prepare: %w", prepErr)
		}
		defer stmt.Close()
		res, err = b.conn.Execute(stmt, params)
	}
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer res.Close()
	return drain(res)
}

func drain(res *kuzu.QueryResult) (*QueryResult, error) {
	out := &QueryResult{Columns: res.GetColumnNames()}
	for res.HasNext() {
		tuple, err := res.Next()
		if err != nil {
			return nil, fmt.Errorf("read tuple: %w", err)
		}
		row, err := tuple.GetAsSlice()
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

type kuzuStatement struct {
	b    *KuzuBackend
	stmt *kuzu.PreparedStatement
}

func (s *kuzuStatement) Execute(ctx context.Context, params map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	if s.b.closed {
		return fmt.Errorf("storage: backend is closed")
	}
	res, err := s.b.conn.Execute(s.stmt, params)
	if err != nil {
		return fmt.Errorf("execute prepared statement: %w", err)
	}
	res.Close()
	return nil
}

func (b *KuzuBackend) Prepare(ctx context.Context, cypher string) (Statement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, fmt.Errorf("storage: backend is closed")
	}
	stmt, err := b.conn.Prepare(cypher)
	if err != nil {
		return nil, fmt.Errorf("prepare: %w", err)
	}
	return &kuzuStatement{b: b, stmt: stmt}, nil
}

// Copy issues `COPY table FROM 'csvPath' (options...)`, spec §4.9's
// bulk-load primitive for both node and edge tables.
func (b *KuzuBackend) Copy(ctx context.Context, table, csvPath string, opts CopyOptions) error {
	cypher := fmt.Sprintf(
		`COPY %s FROM %s (HEADER=%s, ESCAPE=%s, DELIM=%s, QUOTE=%s, PARALLEL=%s, AUTO_DETECT=%s%s)`,
		quoteIdent(table),
		quoteLit(csvPath),
		boolLit(opts.Header),
		quoteLit(opts.Escape),
		quoteLit(opts.Delim),
		quoteLit(opts.Quote),
		boolLit(opts.Parallel),
		boolLit(opts.AutoDetect),
		ignoreErrorsClause(opts.IgnoreErrors),
	)
	return b.Execute(ctx, cypher, nil)
}

func ignoreErrorsClause(on bool) string {
	if !on {
		return ""
	}
	return ", IGNORE_ERRORS=true"
}

func boolLit(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func quoteLit(s string) string {
	return `'` + strings.ReplaceAll(s, `'`, `\'`) + `'`
}

func quoteIdent(s string) string {
	return s
}

// CreateVectorIndex issues the HNSW vector-index DDL. Spec §7 treats
// "vector index already exists" as a recoverable per-item error, so
// callers are expected to absorb the error this returns.
func (b *KuzuBackend) CreateVectorIndex(ctx context.Context, table, indexName, column, metric string) error {
	cypher := fmt.Sprintf(
		`CALL CREATE_VECTOR_INDEX('%s', '%s', '%s', metric := '%s')`,
		table, indexName, column, metric,
	)
	return b.Execute(ctx, cypher, nil)
}

// QueryVectorIndex returns the node's own columns (projected by dotting
// into the `node` variable QUERY_VECTOR_INDEX binds) alongside the
// trailing distance column, the same flat-row shape every other query
// in this package returns, rather than a nested node value callers
// would need a separate decoder for.
func (b *KuzuBackend) QueryVectorIndex(ctx context.Context, table, indexName string, queryVector []float32, topK int) (*QueryResult, error) {
	cypher := fmt.Sprintf(
		`CALL QUERY_VECTOR_INDEX('%s', '%s', $queryVector, %d)
		 RETURN node.id, node.kind, node.name, node.filePath, node.startLine, node.endLine, node.isExported, node.codeSlice, distance
		 ORDER BY distance`,
		table, indexName, topK,
	)
	return b.Query(ctx, cypher, map[string]any{"queryVector": queryVector})
}

// CreateFTSIndex issues the stemmed full-text index DDL. Best-effort
// per spec §4.9: a failure here degrades search gracefully rather
// than aborting the run.
func (b *KuzuBackend) CreateFTSIndex(ctx context.Context, table, indexName string, columns []string, stemmer string) error {
	colList := make([]string, len(columns))
	for i, c := range columns {
		colList[i] = "'" + c + "'"
	}
	cypher := fmt.Sprintf(
		`CALL CREATE_FTS_INDEX('%s', '%s', [%s], stemmer := '%s')`,
		table, indexName, strings.Join(colList, ", "), stemmer,
	)
	return b.Execute(ctx, cypher, nil)
}

// QueryFTSIndex mirrors QueryVectorIndex's flat projection: the node's
// own columns plus a trailing score, instead of a nested node value.
func (b *KuzuBackend) QueryFTSIndex(ctx context.Context, table, indexName, query string, topK int) (*QueryResult, error) {
	cypher := fmt.Sprintf(
		`CALL QUERY_FTS_INDEX('%s', '%s', $query)
		 RETURN node.id, node.kind, node.name, node.filePath, node.startLine, node.endLine, node.isExported, node.codeSlice, score
		 ORDER BY score DESC LIMIT %d`,
		table, indexName, topK,
	)
	return b.Query(ctx, cypher, map[string]any{"query": query})
}

func (b *KuzuBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	b.conn.Close()
	b.db.Close()
	return nil
}
