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

// Package storage wraps the embedded Kuzu graph database behind the
// black-box store contract spec §6 defines: init/close, a read query
// path, a prepared-statement mutation path, bulk CSV COPY, and
// best-effort vector/full-text index management. Every other package
// in this module treats the store as exactly this surface — no Cypher
// string leaves this package except the literal queries the persister
// and query layer hand it.
//
// # Why Kuzu, not CozoDB
//
// The teacher this engine is descended from embeds CozoDB, a
// pure-Datalog engine with no bulk COPY primitive and no FTS/vector
// index DDL. Spec §4.9 and §6 describe a store whose native bulk-load
// path is CSV COPY with explicit per-column options, a vector index
// keyed by (table, column, metric), and a stemmed full-text index —
// that is Kuzu's actual surface, not CozoDB's. See DESIGN.md for the
// full justification; this package is the boundary where that
// substitution lives.
//
// Schema DDL is not this package's concern: internal/persist owns the
// fixed CREATE TABLE sequence spec §4.9 describes, since the store
// itself has no opinion on node/edge kinds.
//
// # Quick start
//
//	backend, err := storage.Open(storage.Config{Path: ".gitnexus/kuzu"})
//	if err != nil { ... }
//	defer backend.Close()
//
//	res, err := backend.Query(ctx, `MATCH (f:File) RETURN f.filePath LIMIT 10`, nil)
package storage
