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

package resolve

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gitnexus/engine/internal/graph"
)

func TestBuildImportMapRelativeWithExtensionTrial(t *testing.T) {
	known := map[string]bool{
		"src/handlers/user.ts": true,
		"src/utils/format.ts":  true,
	}
	specs := []ImportSpec{
		{FromFile: "src/handlers/user.ts", Specifier: "../utils/format", Relative: true},
	}

	m, edges := BuildImportMap(specs, known)

	require.True(t, m.Has("src/handlers/user.ts", "src/utils/format.ts"))
	require.Len(t, edges, 1)
	require.Equal(t, graph.FileID("src/handlers/user.ts"), edges[0].From)
	require.Equal(t, graph.FileID("src/utils/format.ts"), edges[0].To)
	require.Equal(t, graph.EdgeImports, edges[0].Kind)
	require.Equal(t, graph.ConfidenceImportEdge, edges[0].Confidence)
}

func TestBuildImportMapDirectoryIndex(t *testing.T) {
	known := map[string]bool{
		"src/app.ts":           true,
		"src/utils/index.ts":   true,
	}
	specs := []ImportSpec{
		{FromFile: "src/app.ts", Specifier: "./utils", Relative: true},
	}

	m, edges := BuildImportMap(specs, known)

	require.True(t, m.Has("src/app.ts", "src/utils/index.ts"))
	require.Len(t, edges, 1)
}

func TestBuildImportMapAbsoluteSpecifier(t *testing.T) {
	known := map[string]bool{
		"pkg/server/server.go": true,
	}
	specs := []ImportSpec{
		{FromFile: "cmd/main.go", Specifier: "pkg/server/server.go", Relative: false},
	}

	m, _ := BuildImportMap(specs, known)
	require.True(t, m.Has("cmd/main.go", "pkg/server/server.go"))
}

func TestBuildImportMapUnresolvedDroppedSilently(t *testing.T) {
	known := map[string]bool{"src/app.ts": true}
	specs := []ImportSpec{
		{FromFile: "src/app.ts", Specifier: "./missing", Relative: true},
	}

	m, edges := BuildImportMap(specs, known)
	require.Empty(t, m["src/app.ts"])
	require.Empty(t, edges)
}

func TestBuildImportMapDuplicatesIdempotent(t *testing.T) {
	known := map[string]bool{
		"a.go": true,
		"b.go": true,
	}
	specs := []ImportSpec{
		{FromFile: "a.go", Specifier: "b.go", Relative: false},
		{FromFile: "a.go", Specifier: "b.go", Relative: false},
	}

	m, edges := BuildImportMap(specs, known)
	require.Len(t, m["a.go"], 1)
	require.Len(t, edges, 1)
}
