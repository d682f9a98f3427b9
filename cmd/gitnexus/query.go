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
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gitnexus/engine/internal/config"
	"github.com/gitnexus/engine/pkg/embedding"
	"github.com/gitnexus/engine/pkg/query"
	"github.com/gitnexus/engine/pkg/storage"
)

// runQuery executes the 'query' CLI command: a read-only lookup
// against an already-indexed repository's graph store.
//
// Usage:
//
//	gitnexus query [--repo path] [--json] <subcommand> <args...>
//
// Subcommands: grep, find, callers, callees, impact, heritage, fts,
// semantic, communities, processes.
func runQuery(args []string) {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	repoPath := fs.String("repo", ".", "Path to the indexed repository")
	jsonOutput := fs.Bool("json", false, "Output as JSON")
	limit := fs.Int("limit", 0, "Result limit (0 uses each subcommand's default)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: gitnexus query [options] <subcommand> <args...>

Subcommands:
  grep <text>           Literal search over symbol code
  find <name>           Find a symbol by exact name
  callers <name>        Symbols that call name
  callees <name>        Symbols that name calls
  impact <name> [depth]  Symbols reachable forward from name
  heritage <name>       Symbols name extends/implements
  fts <text>            Full-text ranked search
  semantic <text>       Embedding-based ranked search
  communities           List detected communities
  processes             List detected processes

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() == 0 {
		fs.Usage()
		os.Exit(1)
	}

	absRepoPath, err := filepath.Abs(*repoPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	dbPath := filepath.Join(absRepoPath, ".gitnexus", "kuzu")
	if _, err := os.Stat(dbPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s has not been indexed (run 'gitnexus analyze' first)\n", absRepoPath)
		os.Exit(1)
	}

	backend, err := storage.Open(storage.Config{Path: dbPath, ReadOnly: true})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot open graph store: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = backend.Close() }()

	cfg, _ := config.Load(absRepoPath)
	embedder, err := embedding.NewProviderFromEnv(cfg.EmbeddingProvider, 384, slog.Default())
	if err != nil {
		embedder = nil
	}
	client := query.NewClient(backend, embedder)

	sub := fs.Arg(0)
	subArgs := fs.Args()[1:]
	ctx := context.Background()

	switch sub {
	case "grep":
		requireArgs(fs, subArgs, 1, "grep <text>")
		out, err := client.Grep(ctx, subArgs[0], query.GrepOptions{Limit: *limit})
		renderQueryResult(out, err, *jsonOutput)
	case "find":
		requireArgs(fs, subArgs, 1, "find <name>")
		out, err := client.FindSymbol(ctx, subArgs[0], true)
		renderQueryResult(out, err, *jsonOutput)
	case "callers":
		requireArgs(fs, subArgs, 1, "callers <name>")
		out, err := client.FindCallers(ctx, subArgs[0])
		renderQueryResult(out, err, *jsonOutput)
	case "callees":
		requireArgs(fs, subArgs, 1, "callees <name>")
		out, err := client.FindCallees(ctx, subArgs[0])
		renderQueryResult(out, err, *jsonOutput)
	case "impact":
		requireArgs(fs, subArgs, 1, "impact <name> [depth]")
		depth := 0
		if len(subArgs) > 1 {
			depth, _ = strconv.Atoi(subArgs[1])
		}
		out, err := client.ImpactSet(ctx, subArgs[0], depth)
		renderQueryResult(out, err, *jsonOutput)
	case "heritage":
		requireArgs(fs, subArgs, 1, "heritage <name>")
		out, err := client.HeritageOf(ctx, subArgs[0])
		renderQueryResult(out, err, *jsonOutput)
	case "fts":
		requireArgs(fs, subArgs, 1, "fts <text>")
		out, err := client.FullTextSearch(ctx, subArgs[0], *limit)
		renderQueryResult(out, err, *jsonOutput)
	case "semantic":
		requireArgs(fs, subArgs, 1, "semantic <text>")
		out, err := client.Semantic(ctx, subArgs[0], *limit)
		renderQueryResult(out, err, *jsonOutput)
	case "communities":
		out, err := client.ListCommunities(ctx, *limit)
		renderQueryResult(out, err, *jsonOutput)
	case "processes":
		out, err := client.ListProcesses(ctx, *limit)
		renderQueryResult(out, err, *jsonOutput)
	default:
		fmt.Fprintf(os.Stderr, "Unknown query subcommand: %s\n", sub)
		fs.Usage()
		os.Exit(1)
	}
}

func requireArgs(fs *flag.FlagSet, args []string, n int, usage string) {
	if len(args) < n {
		fmt.Fprintf(os.Stderr, "Usage: gitnexus query %s\n", usage)
		os.Exit(1)
	}
}

// renderQueryResult prints out as JSON regardless of jsonOutput: the
// query library returns structs rather than display text, so JSON is
// the only rendering this command owns. jsonOutput is accepted to
// keep --json a no-op instead of a parse error, in case a caller
// scripts this uniformly across subcommands.
func renderQueryResult(out any, err error, jsonOutput bool) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	printJSON(out)
}
