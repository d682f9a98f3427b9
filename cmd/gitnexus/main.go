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

// Package main implements the gitnexus CLI: build and query a typed
// code knowledge graph for a git repository.
//
// Usage:
//
//	gitnexus analyze [path] [--force] [--skip-embeddings]
//	gitnexus status [path] [--json]
//	gitnexus list [--json]
//	gitnexus query <grep|find|callers|callees|impact|heritage|fts|semantic|communities|processes> ... [--json]
package main

import (
	"flag"
	"fmt"
	"os"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `gitnexus - code knowledge graph engine

Usage:
  gitnexus <command> [options]

Commands:
  analyze   Build or incrementally update the graph for a repository
  status    Show the indexed state of a repository
  list      List every repository this engine has indexed
  query     Run a read-only query against an indexed repository

Global Options:
  --version   Show version and exit

Examples:
  gitnexus analyze                    Index the current repository
  gitnexus analyze --force            Force a full rebuild
  gitnexus analyze --skip-embeddings  Skip the embedding pass
  gitnexus status --json              Machine-readable status
  gitnexus query grep "TODO"          Literal search over indexed code
  gitnexus query callers HandleLogin  Who calls HandleLogin

Data Storage:
  Per-repository state lives in .gitnexus/ at the repository root.
  The cross-repository registry lives in ~/.gitnexus/registry.json.
`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("gitnexus version %s\n", version)
		fmt.Printf("commit: %s\n", commit)
		fmt.Printf("built: %s\n", date)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "analyze":
		runAnalyze(cmdArgs)
	case "status":
		runStatus(cmdArgs)
	case "list":
		runList(cmdArgs)
	case "query":
		runQuery(cmdArgs)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}
