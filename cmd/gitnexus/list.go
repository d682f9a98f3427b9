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

	"github.com/gitnexus/engine/internal/bootstrap"
)

// runList executes the 'list' CLI command: every repository recorded
// in the cross-repository registry at ~/.gitnexus/registry.json.
func runList(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	jsonOutput := fs.Bool("json", false, "Output as JSON")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: gitnexus list [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	path, err := bootstrap.DefaultPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	reg, err := bootstrap.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	entries := reg.List()

	if *jsonOutput {
		printJSON(entries)
		return
	}

	if len(entries) == 0 {
		fmt.Println("No repositories indexed yet. Run 'gitnexus analyze' in one.")
		return
	}
	for _, e := range entries {
		fmt.Printf("%s\n", e.RepoPath)
		fmt.Printf("  commit:      %s\n", e.LastCommit)
		fmt.Printf("  indexed at:  %s\n", e.IndexedAt)
		fmt.Printf("  files/nodes/edges: %d/%d/%d\n", e.Stats.Files, e.Stats.Nodes, e.Stats.Edges)
	}
}
