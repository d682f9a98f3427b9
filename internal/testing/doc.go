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

// Package testing provides test helpers for engine integration tests:
// a throwaway Kuzu backend with the persister's schema already
// applied, plus seed/query helpers for the five-table node model
// (Folder, File, Symbol, Community, Process).
//
// # Quick Start
//
//	func TestMyFeature(t *testing.T) {
//	    backend := testing.SetupTestBackend(t)
//
//	    testing.InsertTestSymbol(t, backend, "Function:test.go:Foo", "Foo", "Function", "test.go", 10, 20)
//
//	    result := testing.QuerySymbols(t, backend)
//	    require.Len(t, result.Rows, 1)
//	}
//
// # Seeding Test Data
//
//   - InsertTestFile: add a File node
//   - InsertTestSymbol: add a Symbol node (any language-specific kind)
//   - InsertTestDefines: link a file to a symbol
//   - InsertTestCalls: link caller to callee
//
// # Querying Test Data
//
//   - QuerySymbols: all Symbol nodes
//   - QueryFiles: all File nodes
package testing
