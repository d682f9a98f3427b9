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

// Package resolve implements C5, C6, and C7: import resolution, call
// tracing, and heritage extraction. All three sit downstream of
// parsing (C4) and share one resolution ladder — same-file exact
// match, then import-resolved, then fuzzy-global — driven by the
// symbol table C3 maintains and the import map C5 builds.
//
// None of the three components touch an AST. They operate on the flat
// facts C4 extracts per file: raw import specifiers, call sites (with
// their already-identified enclosing symbol, since only the
// language-specific parser knows what "enclosing function" means for
// its grammar), and heritage references. This keeps the resolution
// ladder identical across every supported language.
package resolve
