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

// Package symtab implements C3: the symbol table. It holds, for every
// (filePath, symbolName) pair seen during a run, the node id of the
// declaration found there, plus a reverse name index for fuzzy
// lookup. It is append-only during a single run; incremental runs
// start from a cleared table re-seeded with every unchanged
// definition loaded from the store.
package symtab

import (
	"sort"
	"sync"

	"github.com/gitnexus/engine/internal/graph"
)

// Definition is one declaration of a name, as spec §4.3 defines it.
type Definition struct {
	FilePath string
	Name     string
	NodeID   string
	Kind     graph.Kind
}

// Table is the shared, coarse-locked symbol index. A single coarse
// mutex suffices per spec §5 ("throughput is dominated by parsing,
// not lookup").
type Table struct {
	mu sync.RWMutex
	// exact[filePath][name] -> Definition
	exact map[string]map[string]Definition
	// byName[name] -> []Definition, insertion order preserved for
	// fuzzy-global's "first-listed, stable order" tie-break (spec §4.6).
	byName map[string][]Definition
}

// New returns an empty Table.
func New() *Table {
	return &Table{
		exact:  make(map[string]map[string]Definition),
		byName: make(map[string][]Definition),
	}
}

// Insert records one declaration.
func (t *Table) Insert(def Definition) {
	t.mu.Lock()
	defer t.mu.Unlock()

	byName, ok := t.exact[def.FilePath]
	if !ok {
		byName = make(map[string]Definition)
		t.exact[def.FilePath] = byName
	}
	if _, dup := byName[def.Name]; !dup {
		t.byName[def.Name] = append(t.byName[def.Name], def)
	}
	byName[def.Name] = def
}

// LookupExact returns the single declaration of name in path, if any.
func (t *Table) LookupExact(path, name string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	byName, ok := t.exact[path]
	if !ok {
		return "", false
	}
	def, ok := byName[name]
	if !ok {
		return "", false
	}
	return def.NodeID, true
}

// LookupFuzzy returns every file-scoped definition of name, in stable
// insertion order.
func (t *Table) LookupFuzzy(name string) []Definition {
	t.mu.RLock()
	defer t.mu.RUnlock()
	defs := t.byName[name]
	out := make([]Definition, len(defs))
	copy(out, defs)
	return out
}

// Clear drops all entries.
func (t *Table) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.exact = make(map[string]map[string]Definition)
	t.byName = make(map[string][]Definition)
}

// Len reports the number of distinct (filePath, name) definitions.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n := 0
	for _, byName := range t.exact {
		n += len(byName)
	}
	return n
}

// Files returns the sorted set of file paths with at least one
// definition, used by the incremental coordinator to report what a
// reseeded table covers.
func (t *Table) Files() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, 0, len(t.exact))
	for f := range t.exact {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}
