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

// Package bootstrap owns the global registry file spec §6 names for
// the CLI's `status`/`list` commands: a flat JSON file at a user-home
// location with one entry per repository this engine has indexed
// (absolute path, last commit, indexed-at timestamp, node/edge/
// community/process counts).
//
// # Recording a run
//
//	path, _ := bootstrap.DefaultPath()
//	err := bootstrap.RecordRun(path, bootstrap.Entry{
//	    RepoPath:   repoPath,
//	    LastCommit: headSHA,
//	    IndexedAt:  time.Now(),
//	    Stats:      bootstrap.Stats{Files: 120, Nodes: 4000, Edges: 9000},
//	})
//
// # Listing indexed repositories
//
//	reg, err := bootstrap.Load(path)
//	for _, e := range reg.List() {
//	    fmt.Println(e.RepoPath, e.LastCommit)
//	}
package bootstrap
