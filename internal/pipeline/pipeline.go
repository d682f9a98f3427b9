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

// Package pipeline wires C1 through C10 into a single analyze run. It
// is the orchestrator no single component owns: internal/walk,
// internal/parse, internal/resolve, internal/community,
// internal/process, and internal/persist each implement one stage in
// isolation; pipeline.Run sequences them, carries the incremental
// decision between stages, and turns per-stage warnings into one
// aggregated run Summary.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/gitnexus/engine/internal/bootstrap"
	"github.com/gitnexus/engine/internal/community"
	"github.com/gitnexus/engine/internal/config"
	ierrors "github.com/gitnexus/engine/internal/errors"
	"github.com/gitnexus/engine/internal/graph"
	"github.com/gitnexus/engine/internal/incremental"
	"github.com/gitnexus/engine/internal/metrics"
	"github.com/gitnexus/engine/internal/parse"
	"github.com/gitnexus/engine/internal/persist"
	"github.com/gitnexus/engine/internal/process"
	"github.com/gitnexus/engine/internal/resolve"
	"github.com/gitnexus/engine/internal/symtab"
	"github.com/gitnexus/engine/internal/ui"
	"github.com/gitnexus/engine/internal/vcs"
	"github.com/gitnexus/engine/internal/walk"
	"github.com/gitnexus/engine/pkg/embedding"
	"github.com/gitnexus/engine/pkg/storage"
)

// Options configures a single Run.
type Options struct {
	RepoPath     string
	DatabasePath string // `.gitnexus/kuzu`
	CSVDir       string // `.gitnexus/csv`
	MetaPath     string // `.gitnexus/meta.json`
	RegistryPath string // `~/.gitnexus/registry.json`, empty skips registration

	Force    bool
	Config   config.Config
	Embedder embedding.Provider // nil disables the embedding pass (--skip-embeddings)

	Logger   *slog.Logger
	Metrics  *metrics.Pipeline
	Progress ui.ProgressConfig
}

// Result is what a Run reports back to the CLI.
type Result struct {
	Mode      incremental.Mode
	Commit    string
	Stats     bootstrap.Stats
	Warnings  []string
	Dropped   int
	Duration  time.Duration
}

// Run executes one analyze invocation end to end.
func Run(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	summary := ierrors.NewSummary(200)

	repo := vcs.New(opts.RepoPath)
	if !repo.IsRepository() {
		return nil, ierrors.NotAVCS(opts.RepoPath, nil)
	}

	coordinator := incremental.New(repo, opts.MetaPath, opts.Config.ChangeRatioThreshold, logger)
	decision, err := coordinator.Decide(opts.Force)
	if err != nil {
		return nil, ierrors.Fatal("failed to evaluate incremental state", err.Error(), "", err)
	}

	if decision.Mode == incremental.ModeAlreadyUpToDate {
		logger.Info("pipeline.run.already_up_to_date", "commit", decision.CurrentCommit)
		return &Result{Mode: decision.Mode, Commit: decision.CurrentCommit, Duration: time.Since(start)}, nil
	}

	builder := graph.NewBuilder()
	table := symtab.New()
	var changedPaths []string
	var deletedPaths []string

	if decision.Mode == incremental.ModeIncremental {
		loaded, loadedTable, loadedFileCount, loadErr := loadPriorSubgraph(ctx, opts.DatabasePath, decision.Changed, decision.Deleted)
		if loadErr != nil {
			logger.Warn("pipeline.incremental.load_failed", "err", loadErr)
			decision.Mode = incremental.ModeFullRebuild
			if opts.Metrics != nil {
				opts.Metrics.IncIncrementalFallback()
			}
		} else {
			decision = coordinator.EvaluateRatio(decision, loadedFileCount)
			if decision.Mode == incremental.ModeFullRebuild {
				if opts.Metrics != nil {
					opts.Metrics.IncIncrementalFallback()
				}
			} else {
				builder = loaded
				table = loadedTable
				changedPaths = decision.Changed
				deletedPaths = decision.Deleted
			}
		}
	}

	var filesToParse []walk.File
	walkStart := time.Now()
	if decision.Mode == incremental.ModeFullRebuild {
		files, walkErr := fullWalk(ctx, opts, logger)
		if walkErr != nil {
			return nil, walkErr
		}
		filesToParse = files
	} else {
		files, readErr := readChangedFiles(opts.RepoPath, changedPaths, logger, opts.Config)
		if readErr != nil {
			return nil, readErr
		}
		filesToParse = files
		_ = deletedPaths // already excluded by loadPriorSubgraph's LoadUnchangedSubgraph call
	}
	if opts.Metrics != nil {
		opts.Metrics.AddFilesWalked(len(filesToParse))
		opts.Metrics.ObserveWalk(time.Since(walkStart).Seconds())
	}

	ensureFileNodes(builder, filesToParse)

	pool := parse.NewPool(parse.PoolOptions{
		Workers:       opts.Config.Workers,
		FileSizeLimit: opts.Config.FileSizeLimitBytes,
		FileTimeout:   time.Duration(opts.Config.FileTimeoutSeconds) * time.Second,
	}, summary)

	bar := ui.NewProgressBar(opts.Progress, int64(len(filesToParse)), "parsing")
	parseStart := time.Now()
	results := pool.Run(ctx, filesToParse)
	ui.Finish(bar)
	if opts.Metrics != nil {
		opts.Metrics.AddFilesParsed(len(results))
		opts.Metrics.AddFilesFailed(len(filesToParse) - len(results))
		opts.Metrics.ObserveParse(time.Since(parseStart).Seconds())
	}

	var allImports []resolve.ImportSpec
	var allCalls []resolve.CallSite
	var allHeritage []resolve.HeritageRef

	for _, r := range results {
		for _, def := range r.Extraction.Definitions {
			builder.AddNode(def)
			table.Insert(symtab.Definition{FilePath: def.FilePath, Name: def.Name, NodeID: def.ID, Kind: def.Kind})
			builder.AddEdge(graph.Edge{From: graph.FileID(r.Path), To: def.ID, Kind: graph.EdgeDefines, Confidence: 1.0})
		}
		allImports = append(allImports, r.Extraction.Imports...)
		allCalls = append(allCalls, r.Extraction.Calls...)
		allHeritage = append(allHeritage, r.Extraction.Heritage...)
	}
	if opts.Metrics != nil {
		opts.Metrics.AddSymbolsDefined(table.Len())
	}

	resolveStart := time.Now()
	knownFiles := make(map[string]bool)
	for _, n := range builder.NodesByKind(graph.KindFile) {
		knownFiles[n.FilePath] = true
	}
	importMap, importEdges := resolve.BuildImportMap(allImports, knownFiles)
	for _, e := range importEdges {
		builder.AddEdge(e)
	}
	if opts.Metrics != nil {
		opts.Metrics.AddImportsResolved(len(importEdges))
	}

	callResolver := resolve.NewCallResolver(table, importMap)
	callEdges := callResolver.Resolve(allCalls)
	for _, e := range callEdges {
		builder.AddEdge(e)
		recordCallMetric(opts.Metrics, e)
	}
	if opts.Metrics != nil {
		opts.Metrics.AddCallsUnresolved(len(allCalls) - len(callEdges))
	}

	heritageResolver := resolve.NewHeritageResolver(table, importMap)
	heritageEdges := heritageResolver.Resolve(allHeritage)
	for _, e := range heritageEdges {
		builder.AddEdge(e)
	}
	if opts.Metrics != nil {
		opts.Metrics.AddHeritageResolved(len(heritageEdges))
		opts.Metrics.ObserveResolve(time.Since(resolveStart).Seconds())
	}

	detectStart := time.Now()
	spinner := ui.NewSpinner(opts.Progress, "detecting communities and processes")
	communityNodes, communityEdges := community.Detect(builder, community.Options{})
	for _, n := range communityNodes {
		builder.AddNode(n)
	}
	for _, e := range communityEdges {
		builder.AddEdge(e)
	}

	memberOf := make(map[string]string, len(communityEdges))
	for _, e := range communityEdges {
		memberOf[e.From] = e.To
	}
	processNodes, processEdges := process.Detect(builder, memberOf, process.Options{})
	for _, n := range processNodes {
		builder.AddNode(n)
	}
	for _, e := range processEdges {
		builder.AddEdge(e)
	}
	ui.Finish(spinner)
	if opts.Metrics != nil {
		opts.Metrics.AddCommunitiesDetected(len(communityNodes))
		opts.Metrics.AddProcessesDetected(len(processNodes))
		opts.Metrics.ObserveDetect(time.Since(detectStart).Seconds())
	}

	if opts.Embedder != nil {
		embedStart := time.Now()
		gen := embedding.NewGenerator(opts.Embedder, opts.Config.EmbeddingBatchSize, logger, opts.Metrics)
		symbols := symbolsNeedingEmbedding(builder)
		spinner := ui.NewSpinner(opts.Progress, "embedding symbols")
		embedded := gen.EmbedSymbols(ctx, symbols, summary)
		for _, n := range embedded {
			builder.AddNode(n)
		}
		ui.Finish(spinner)
		if opts.Metrics != nil {
			opts.Metrics.ObserveEmbed(time.Since(embedStart).Seconds())
		}
	}

	if err := persist.PrepareDatabase(opts.DatabasePath); err != nil {
		return nil, err
	}
	backend, err := storage.Open(storage.Config{Path: opts.DatabasePath})
	if err != nil {
		return nil, ierrors.Fatal("failed to open graph store", err.Error(), "", err)
	}
	defer func() { _ = backend.Close() }()

	if err := persist.EnsureSchema(ctx, backend); err != nil {
		return nil, ierrors.Fatal("failed to create graph schema", err.Error(), "", err)
	}

	persistStart := time.Now()
	persister := persist.New(persist.Config{
		DatabasePath: opts.DatabasePath,
		CSVDir:       opts.CSVDir,
		FTSStemmer:   opts.Config.FTSStemmer,
	}, backend, logger, summary)
	pStats, err := persister.Run(ctx, builder)
	if err != nil {
		return nil, err
	}
	if opts.Metrics != nil {
		opts.Metrics.AddPersistFallback(pStats.FallbackInserts)
		opts.Metrics.AddPersistFallbackFailed(pStats.FallbackFailed)
		opts.Metrics.ObservePersist(time.Since(persistStart).Seconds())
	}

	stats := bootstrap.Stats{
		Files:       pStats.Files,
		Nodes:       pStats.Nodes,
		Edges:       pStats.Edges,
		Communities: pStats.Communities,
		Processes:   pStats.Processes,
	}

	now := time.Now()
	if err := incremental.SaveMeta(opts.MetaPath, &incremental.Meta{
		RepoPath:   opts.RepoPath,
		LastCommit: decision.CurrentCommit,
		IndexedAt:  now,
		Stats:      stats,
	}); err != nil {
		logger.Warn("pipeline.meta.save_failed", "err", err)
	}

	if opts.RegistryPath != "" {
		if err := bootstrap.RecordRun(opts.RegistryPath, bootstrap.Entry{
			RepoPath:   opts.RepoPath,
			LastCommit: decision.CurrentCommit,
			IndexedAt:  now,
			Stats:      stats,
		}); err != nil {
			logger.Warn("pipeline.registry.record_failed", "err", err)
		}
	}

	warnings, dropped := summary.Warnings()
	if opts.Metrics != nil {
		opts.Metrics.ObserveRun(time.Since(start).Seconds())
	}

	return &Result{
		Mode:     decision.Mode,
		Commit:   decision.CurrentCommit,
		Stats:    stats,
		Warnings: warnings,
		Dropped:  dropped,
		Duration: time.Since(start),
	}, nil
}

func recordCallMetric(m *metrics.Pipeline, e graph.Edge) {
	if m == nil {
		return
	}
	isSingle := e.Confidence == graph.ConfidenceFuzzySingle
	m.AddCallResolution(e.Reason, isSingle)
}

// ignoreRulesFor builds the ignore-rule set for a run, layering config
// overrides on top of the curated defaults — shared by fullWalk and
// readChangedFiles so a full rebuild and an incremental run apply the
// identical ignore-filter closure spec §4.1 requires.
func ignoreRulesFor(cfg config.Config) walk.IgnoreRules {
	rules := walk.DefaultIgnoreRules()
	if len(cfg.IgnoreSegments) > 0 {
		rules.Segments = cfg.IgnoreSegments
	}
	if len(cfg.IgnoreSuffixes) > 0 {
		rules.Suffixes = cfg.IgnoreSuffixes
	}
	if len(cfg.IgnoreExtensions) > 0 {
		rules.Extensions = cfg.IgnoreExtensions
	}
	return rules
}

// fullWalk runs C1 over the whole repository, applying config
// ignore-rule overrides on top of the curated defaults.
func fullWalk(ctx context.Context, opts Options, logger *slog.Logger) ([]walk.File, error) {
	walker := walk.New(ignoreRulesFor(opts.Config), logger)
	files, err := walker.Walk(ctx, opts.RepoPath)
	if err != nil {
		return nil, err
	}
	return files, nil
}

// readChangedFiles reads exactly the paths an incremental diff named,
// rather than re-walking the whole tree, per spec §4.10's "reparse
// only the changed files". Each path still passes through the same
// ignore-rule set fullWalk applies, so a changed file under an
// ignored segment (e.g. vendor/) never reaches C4 in incremental mode
// either — Testable Property 7 holds regardless of which mode
// produced the file list.
func readChangedFiles(repoRoot string, changed []string, logger *slog.Logger, cfg config.Config) ([]walk.File, error) {
	walker := walk.New(ignoreRulesFor(cfg), logger)
	out := make([]walk.File, 0, len(changed))
	for _, p := range changed {
		if walker.ShouldExclude(p) {
			continue
		}
		full := path.Join(repoRoot, p)
		data, err := os.ReadFile(full)
		if err != nil {
			continue // deleted-then-recreated races, symlink targets gone, etc: skip, don't fail the run.
		}
		lang, _ := walk.LanguageForExtension(pathExt(p))
		out = append(out, walk.File{Path: p, Bytes: data, Language: lang, Size: int64(len(data))})
	}
	return out, nil
}

func pathExt(p string) string {
	for i := len(p) - 1; i >= 0 && p[i] != '/'; i-- {
		if p[i] == '.' {
			return p[i:]
		}
	}
	return ""
}

// ensureFileNodes inserts a File node plus the CONTAINS Folder chain
// for every file the run is about to parse, so C4-C7 always find the
// File node their edges reference even before any definition lands.
func ensureFileNodes(b *graph.Builder, files []walk.File) {
	b.AddNode(graph.Node{ID: graph.FolderID(""), Kind: graph.KindFolder, Name: "", FilePath: ""})

	paths := make([]string, len(files))
	byPath := make(map[string]walk.File, len(files))
	for i, f := range files {
		p := graph.NormalizePath(f.Path)
		paths[i] = p
		byPath[p] = f
	}
	sort.Strings(paths)

	for _, p := range paths {
		f := byPath[p]
		addFolderChain(b, p)
		b.AddNode(graph.Node{
			ID:       graph.FileID(p),
			Kind:     graph.KindFile,
			Name:     path.Base(p),
			FilePath: p,
			Content:  f.Bytes,
		})
	}
}

func addFolderChain(b *graph.Builder, filePath string) {
	dir := path.Dir(filePath)
	parentID := graph.FolderID("")
	if dir != "." && dir != "/" && dir != "" {
		segments := strings.Split(dir, "/")
		cur := ""
		for _, seg := range segments {
			if seg == "" {
				continue
			}
			if cur == "" {
				cur = seg
			} else {
				cur = cur + "/" + seg
			}
			id := graph.FolderID(cur)
			b.AddNode(graph.Node{ID: id, Kind: graph.KindFolder, Name: seg, FilePath: cur})
			b.AddEdge(graph.Edge{From: parentID, To: id, Kind: graph.EdgeContains, Confidence: 1.0})
			parentID = id
		}
	}
	b.AddEdge(graph.Edge{From: parentID, To: graph.FileID(filePath), Kind: graph.EdgeContains, Confidence: 1.0})
}

// symbolsNeedingEmbedding returns every symbol node with non-empty
// CodeSlice and no cached Embedding (freshly parsed, or a File
// changed underneath a retained node). Nodes carried over unchanged
// from an incremental load already have Embedding populated and are
// skipped, matching spec §4.10 step 5 ("re-insert cached embeddings
// for surviving symbol nodes").
func symbolsNeedingEmbedding(b *graph.Builder) []graph.Node {
	var out []graph.Node
	for _, n := range b.Nodes() {
		if !graph.IsSymbolKind(n.Kind) {
			continue
		}
		if len(n.Embedding) > 0 {
			continue
		}
		if strings.TrimSpace(n.CodeSlice) == "" {
			continue
		}
		out = append(out, n)
	}
	return out
}

func loadPriorSubgraph(ctx context.Context, databasePath string, changed, deleted []string) (*graph.Builder, *symtab.Table, int, error) {
	backend, err := storage.Open(storage.Config{Path: databasePath, ReadOnly: true})
	if err != nil {
		return nil, nil, 0, fmt.Errorf("open prior database: %w", err)
	}
	defer func() { _ = backend.Close() }()

	excluded := make([]string, 0, len(changed)+len(deleted))
	excluded = append(excluded, changed...)
	excluded = append(excluded, deleted...)

	return incremental.LoadUnchangedSubgraph(ctx, backend, excluded)
}
