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
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gitnexus/engine/internal/incremental"
)

// runStatus executes the 'status' CLI command: report whether a
// repository has been indexed, and with what stats, by reading its
// .gitnexus/meta.json checkpoint.
func runStatus(args []string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	jsonOutput := fs.Bool("json", false, "Output as JSON")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: gitnexus status [path] [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	repoPath := "."
	if fs.NArg() > 0 {
		repoPath = fs.Arg(0)
	}
	absRepoPath, err := filepath.Abs(repoPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	metaPath := filepath.Join(absRepoPath, ".gitnexus", "meta.json")
	meta, err := incremental.LoadMeta(metaPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if meta == nil {
		if *jsonOutput {
			printJSON(map[string]any{"indexed": false, "repoPath": absRepoPath})
		} else {
			fmt.Printf("%s has not been indexed.\n", absRepoPath)
			fmt.Println("Run 'gitnexus analyze' to build its knowledge graph.")
		}
		os.Exit(0)
	}

	if *jsonOutput {
		printJSON(map[string]any{
			"indexed":    true,
			"repoPath":   absRepoPath,
			"lastCommit": meta.LastCommit,
			"indexedAt":  meta.IndexedAt,
			"stats":      meta.Stats,
		})
		return
	}

	fmt.Println("gitnexus status")
	fmt.Println("================")
	fmt.Printf("Repo:        %s\n", absRepoPath)
	fmt.Printf("Last commit: %s\n", meta.LastCommit)
	fmt.Printf("Indexed at:  %s\n", meta.IndexedAt)
	fmt.Println()
	fmt.Printf("Files:       %d\n", meta.Stats.Files)
	fmt.Printf("Nodes:       %d\n", meta.Stats.Nodes)
	fmt.Printf("Edges:       %d\n", meta.Stats.Edges)
	fmt.Printf("Communities: %d\n", meta.Stats.Communities)
	fmt.Printf("Processes:   %d\n", meta.Stats.Processes)
}
