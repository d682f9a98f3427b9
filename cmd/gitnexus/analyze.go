// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	pflag "github.com/spf13/pflag"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gitnexus/engine/internal/bootstrap"
	"github.com/gitnexus/engine/internal/config"
	ierrors "github.com/gitnexus/engine/internal/errors"
	"github.com/gitnexus/engine/internal/metrics"
	"github.com/gitnexus/engine/internal/pipeline"
	"github.com/gitnexus/engine/internal/ui"
	"github.com/gitnexus/engine/pkg/embedding"
)

// runAnalyze executes the 'analyze' CLI command: build or
// incrementally update the knowledge graph for a repository.
//
// Flags:
//   - --force: ignore the prior checkpoint and rebuild from scratch
//   - --skip-embeddings: never call an embedding provider
//   - --embedding-provider: override the configured provider (mock/ollama/openai)
//   - --workers: override the configured parse worker count
//   - --quiet: suppress progress bars
//   - --no-color: disable colored error output
//   - --json: emit the run result as JSON instead of a text summary
//   - --metrics-addr: serve Prometheus metrics at this address while running
func runAnalyze(args []string) {
	fs := pflag.NewFlagSet("analyze", pflag.ExitOnError)
	force := fs.Bool("force", false, "Force a full rebuild, ignoring the prior checkpoint")
	skipEmbeddings := fs.Bool("skip-embeddings", false, "Skip the embedding pass")
	embeddingProvider := fs.String("embedding-provider", "", "Embedding provider (mock, ollama, openai)")
	workers := fs.Int("workers", 0, "Parse worker count (0 uses the configured default)")
	quiet := fs.Bool("quiet", false, "Suppress progress bars")
	noColor := fs.Bool("no-color", false, "Disable colored error output")
	jsonOutput := fs.Bool("json", false, "Emit the run result as JSON")
	metricsAddr := fs.String("metrics-addr", "", "HTTP listen address for Prometheus metrics (empty disables)")
	debug := fs.Bool("debug", false, "Enable debug logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: gitnexus analyze [path] [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if *noColor {
		// UserError.Format honors NO_COLOR, so this also strips color
		// from the fatal-error rendering FatalError prints.
		_ = os.Setenv("NO_COLOR", "1")
	}

	repoPath := "."
	if fs.NArg() > 0 {
		repoPath = fs.Arg(0)
	}
	absRepoPath, err := filepath.Abs(repoPath)
	if err != nil {
		ierrors.FatalError(ierrors.Fatal("cannot resolve repository path", err.Error(), "", err), *jsonOutput)
	}

	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	cfg, err := config.Load(absRepoPath)
	if err != nil {
		ierrors.FatalError(ierrors.Fatal("failed to load .gitnexus.yml", err.Error(), "", err), *jsonOutput)
	}
	cfg = cfg.ApplyFlags(config.Flags{
		Workers:           *workers,
		EmbeddingProvider: *embeddingProvider,
		SkipEmbeddings:    *skipEmbeddings,
	})

	registry := prometheus.NewRegistry()
	pipelineMetrics := metrics.NewPipeline(registry)
	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
			srv := &http.Server{Addr: *metricsAddr, Handler: mux}
			logger.Info("metrics.http.start", "addr", *metricsAddr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Warn("metrics.http.error", "err", err)
			}
		}()
	}

	var embedder embedding.Provider
	if !*skipEmbeddings {
		embedder, err = embedding.NewProviderFromEnv(cfg.EmbeddingProvider, 384, logger)
		if err != nil {
			ierrors.FatalError(ierrors.Fatal("failed to construct embedding provider", err.Error(), "", err), *jsonOutput)
		}
	}

	registryPath, err := bootstrap.DefaultPath()
	if err != nil {
		logger.Warn("analyze.registry_path.unavailable", "err", err)
		registryPath = ""
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("analyze.shutdown.signal", "signal", sig.String())
		cancel()
	}()

	gitnexusDir := filepath.Join(absRepoPath, ".gitnexus")
	result, err := pipeline.Run(ctx, pipeline.Options{
		RepoPath:     absRepoPath,
		DatabasePath: filepath.Join(gitnexusDir, "kuzu"),
		CSVDir:       filepath.Join(gitnexusDir, "csv"),
		MetaPath:     filepath.Join(gitnexusDir, "meta.json"),
		RegistryPath: registryPath,
		Force:        *force,
		Config:       cfg,
		Embedder:     embedder,
		Logger:       logger,
		Metrics:      pipelineMetrics,
		Progress:     ui.NewProgressConfig(*quiet, *noColor),
	})
	if err != nil {
		if ue, ok := err.(*ierrors.UserError); ok {
			ierrors.FatalError(ue, *jsonOutput)
		}
		ierrors.FatalError(ierrors.Fatal("analyze failed", err.Error(), "", err), *jsonOutput)
	}

	printAnalyzeResult(result, *jsonOutput)
}

func printAnalyzeResult(r *pipeline.Result, jsonOutput bool) {
	if jsonOutput {
		printJSON(map[string]any{
			"mode":     r.Mode,
			"commit":   r.Commit,
			"stats":    r.Stats,
			"warnings": r.Warnings,
			"dropped":  r.Dropped,
			"duration": r.Duration.String(),
		})
		return
	}

	fmt.Println()
	fmt.Println("=== Analyze Complete ===")
	fmt.Printf("Mode:        %s\n", r.Mode)
	fmt.Printf("Commit:      %s\n", r.Commit)
	fmt.Printf("Files:       %d\n", r.Stats.Files)
	fmt.Printf("Nodes:       %d\n", r.Stats.Nodes)
	fmt.Printf("Edges:       %d\n", r.Stats.Edges)
	fmt.Printf("Communities: %d\n", r.Stats.Communities)
	fmt.Printf("Processes:   %d\n", r.Stats.Processes)
	fmt.Printf("Duration:    %s\n", r.Duration)
	if len(r.Warnings) > 0 {
		fmt.Printf("\nWarnings (%d", len(r.Warnings))
		if r.Dropped > 0 {
			fmt.Printf(", %d more dropped", r.Dropped)
		}
		fmt.Println("):")
		for _, w := range r.Warnings {
			fmt.Printf("  - %s\n", w)
		}
	}
	fmt.Println()
}
