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

package persist

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gitnexus/engine/internal/errors"
	"github.com/gitnexus/engine/internal/graph"
	"github.com/gitnexus/engine/pkg/storage"
)

// Config configures a Persister run.
type Config struct {
	// DatabasePath is the Kuzu database directory, truncated and
	// recreated by every run (spec §4.9 pass 1, §4.10 step 4).
	DatabasePath string
	// CSVDir is the ephemeral staging directory for bulk-load CSVs
	// (`.gitnexus/csv/` per spec §6), removed on success.
	CSVDir string
	// FTSStemmer names the stemming algorithm the full-text index uses.
	FTSStemmer string
}

// Persister writes an in-memory graph.Builder to the store in the
// four passes spec §4.9 describes.
type Persister struct {
	cfg     Config
	backend storage.Backend
	logger  *slog.Logger
	summary *errors.Summary
}

// New returns a Persister bound to an already-open backend. The
// caller owns opening/closing backend; Persister only truncates the
// database path before re-opening is the caller's responsibility too
// — Run expects backend to already point at a fresh (post-truncate)
// database, since Kuzu cannot reopen a database file out from under
// itself mid-process.
func New(cfg Config, backend storage.Backend, logger *slog.Logger, summary *errors.Summary) *Persister {
	if logger == nil {
		logger = slog.Default()
	}
	if summary == nil {
		summary = errors.NewSummary(0)
	}
	if cfg.FTSStemmer == "" {
		cfg.FTSStemmer = "porter"
	}
	return &Persister{cfg: cfg, backend: backend, logger: logger, summary: summary}
}

// Stats reports what a Run persisted, feeding meta.json's stats block.
type Stats struct {
	Files           int
	Nodes           int
	Edges           int
	Communities     int
	Processes       int
	FallbackInserts int
	FallbackFailed  int
}

// Run executes passes 2-4 against g (pass 1, schema + truncate, is the
// caller's responsibility via PrepareDatabase, since it must happen
// before backend is opened).
func (p *Persister) Run(ctx context.Context, g *graph.Builder) (Stats, error) {
	if err := os.MkdirAll(p.cfg.CSVDir, 0o755); err != nil {
		return Stats{}, errors.Fatal("cannot create CSV staging directory", err.Error(),
			fmt.Sprintf("check write permissions on %s", p.cfg.CSVDir), err)
	}
	defer os.RemoveAll(p.cfg.CSVDir)

	nodeCount, _ := g.Len()
	kindByID := make(map[string]graph.Kind, nodeCount)
	var stats Stats
	for _, n := range g.Nodes() {
		kindByID[n.ID] = n.Kind
		stats.Nodes++
		switch n.Kind {
		case graph.KindFile:
			stats.Files++
		case graph.KindCommunity:
			stats.Communities++
		case graph.KindProcess:
			stats.Processes++
		}
	}

	if err := p.persistNodes(ctx, g); err != nil {
		return stats, err
	}

	fallback, err := p.persistEdges(ctx, g, kindByID)
	if err != nil {
		return stats, err
	}
	stats.Edges = len(g.Edges())

	inserted, failed := p.insertFallback(ctx, fallback)
	stats.FallbackInserts = inserted
	stats.FallbackFailed = failed

	p.createFTSIndexes(ctx)

	return stats, nil
}

// PrepareDatabase implements pass 1: truncate stale database files at
// path. Schema creation happens once the caller reopens the backend
// against the now-empty path, via EnsureSchema.
func PrepareDatabase(path string) error {
	if err := storage.Truncate(path); err != nil {
		return errors.Fatal("failed to clear target database path", err.Error(),
			fmt.Sprintf("check write permissions on %s", path), err)
	}
	return nil
}

func (p *Persister) persistNodes(ctx context.Context, g *graph.Builder) error {
	byTable := make(map[table][]graph.Node)
	for _, n := range g.Nodes() {
		t := nodeTableFor(n.Kind)
		byTable[t] = append(byTable[t], n)
	}
	for t, nodes := range byTable {
		if len(nodes) == 0 {
			continue
		}
		csvPath := filepath.Join(p.cfg.CSVDir, fmt.Sprintf("nodes_%s.csv", t))
		if err := writeNodeCSV(csvPath, nodes); err != nil {
			return errors.Fatal(fmt.Sprintf("failed to stage CSV for node table %s", t), err.Error(), "", err)
		}
		opts := storage.DefaultCopyOptions()
		err := p.backend.Copy(ctx, string(t), csvPath, opts)
		if err != nil {
			p.logger.Warn("persist.copy.retry", "table", t, "err", err)
			err = p.backend.Copy(ctx, string(t), csvPath, opts.WithIgnoreErrors())
		}
		if err != nil {
			return errors.Fatal(fmt.Sprintf("all COPY retries failed for node table %s", t), err.Error(),
				"inspect the staged CSV for malformed rows", err)
		}
	}
	return nil
}

// fallbackRow is one edge that failed pair-level COPY and must be
// inserted individually in pass 4.
type fallbackRow struct {
	pair edgePair
	edge graph.Edge
}

func (p *Persister) persistEdges(ctx context.Context, g *graph.Builder, kindByID map[string]graph.Kind) ([]fallbackRow, error) {
	byPair := make(map[edgePair][]graph.Edge)
	var fallback []fallbackRow
	for _, e := range g.Edges() {
		fromKind, ok1 := kindByID[e.From]
		toKind, ok2 := kindByID[e.To]
		if !ok1 || !ok2 {
			p.summary.Warn("persist.edge.dangling: %s -[%s]-> %s references an unknown node", e.From, e.Kind, e.To)
			continue
		}
		pair, ok := edgePairFor(e.Kind, fromKind, toKind)
		if !ok {
			p.summary.Warn("persist.edge.unclassified: %s -[%s]-> %s has no matching table pair", e.From, e.Kind, e.To)
			continue
		}
		byPair[pair] = append(byPair[pair], e)
	}

	for pair, edges := range byPair {
		if len(edges) == 0 {
			continue
		}
		csvPath := filepath.Join(p.cfg.CSVDir, fmt.Sprintf("edges_%s.csv", pair.Kind))
		if err := writeEdgeCSV(csvPath, edges); err != nil {
			return nil, errors.Fatal(fmt.Sprintf("failed to stage CSV for edge pair %s", pair.Kind), err.Error(), "", err)
		}
		opts := storage.DefaultCopyOptions()
		if err := p.backend.Copy(ctx, string(pair.Kind), csvPath, opts); err != nil {
			p.logger.Warn("persist.copy.pair.failed", "pair", pair.Kind, "err", err, "rows", len(edges))
			p.summary.Warn("persist.edge.pair.fallback: %s COPY failed (%d rows), falling back to per-row insert", pair.Kind, len(edges))
			for _, e := range edges {
				fallback = append(fallback, fallbackRow{pair: pair, edge: e})
			}
		}
	}
	return fallback, nil
}

// insertFallback implements pass 4: per-row MATCH...CREATE for rows
// whose pair-level COPY failed. Failures here are absorbed silently
// per row, per spec §4.9 pass 4.
func (p *Persister) insertFallback(ctx context.Context, rows []fallbackRow) (inserted, failed int) {
	cypher := `MATCH (a {id: $from}), (b {id: $to}) CREATE (a)-[:%s {kind: $kind, confidence: $confidence, reason: $reason, step: $step}]->(b)`
	stmtCache := make(map[EdgeTableKind]storage.Statement)
	for _, row := range rows {
		stmt, ok := stmtCache[row.pair.Kind]
		if !ok {
			var err error
			stmt, err = p.backend.Prepare(ctx, fmt.Sprintf(cypher, row.pair.Kind))
			if err != nil {
				p.logger.Warn("persist.fallback.prepare.failed", "pair", row.pair.Kind, "err", err)
				failed++
				continue
			}
			stmtCache[row.pair.Kind] = stmt
		}
		params := map[string]any{
			"from":       row.edge.From,
			"to":         row.edge.To,
			"kind":       string(row.edge.Kind),
			"confidence": graph.ClampConfidence(row.edge.Confidence),
			"reason":     row.edge.Reason,
			"step":       row.edge.Step,
		}
		if err := stmt.Execute(ctx, params); err != nil {
			failed++
			continue
		}
		inserted++
	}
	if failed > 0 {
		p.summary.Warn("persist.fallback.partial: %d of %d fallback edge inserts failed", failed, inserted+failed)
	}
	return inserted, failed
}

// ftsTargets maps each node table to the columns its full-text index
// covers, collapsing spec §4.9's "(File, Function, Class, Method,
// Interface) over (name, content)" onto our five-table schema: Symbol
// stands in for Function/Class/Method/Interface, and its `codeSlice`
// column stands in for `content` (File already has both `filePath`,
// used in place of `name`, and `content`).
var ftsTargets = map[table][]string{
	tableFile:   {"filePath", "content"},
	tableSymbol: {"name", "codeSlice"},
}

func (p *Persister) createFTSIndexes(ctx context.Context) {
	for t, cols := range ftsTargets {
		indexName := fmt.Sprintf("fts_%s", t)
		if err := p.backend.CreateFTSIndex(ctx, string(t), indexName, cols, p.cfg.FTSStemmer); err != nil {
			p.logger.Warn("persist.fts.create.failed", "table", t, "err", err)
			p.summary.Warn("persist.fts.unavailable: full-text index on %s could not be created: %v", t, err)
		}
	}
}
