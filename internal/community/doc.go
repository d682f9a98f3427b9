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

// Package community implements the community-detection half of C8: it
// projects the symbol-level CALLS/IMPORTS subgraph onto a weighted
// undirected graph, runs modularity-maximizing clustering, and labels
// each resulting cluster with a heuristic keyword phrase derived from
// member names and file paths.
package community
