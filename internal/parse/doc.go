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

// Package parse implements C4: the parsing processor. A bounded
// worker pool of Workers, each owning its own tree-sitter parser per
// language, turns raw file bytes into symbol definitions, raw import
// specifiers, unresolved call sites, and unresolved heritage
// references. Every language shares one extraction path driven by a
// per-language, pre-compiled tree-sitter query — only the query text
// and the source grammar differ.
package parse
