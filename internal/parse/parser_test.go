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

package parse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gitnexus/engine/internal/graph"
)

const goSource = `package sample

import "fmt"

type Greeter struct {
	Name string
}

func (g *Greeter) Greet() string {
	return fmt.Sprintf("hello %s", g.Name)
}

func main() {
	g := &Greeter{Name: "world"}
	fmt.Println(g.Greet())
}
`

func TestParseFileExtractsGoDefinitions(t *testing.T) {
	w := NewWorker()
	defer w.Close()

	extraction, err := w.ParseFile(context.Background(), "sample.go", "go", ".go", []byte(goSource))
	require.NoError(t, err)
	require.NotNil(t, extraction)

	var names []string
	for _, d := range extraction.Definitions {
		names = append(names, d.Name)
	}
	require.Contains(t, names, "Greeter")
	require.Contains(t, names, "Greet")
	require.Contains(t, names, "main")
}

func TestParseFileExtractsGoImport(t *testing.T) {
	w := NewWorker()
	defer w.Close()

	extraction, err := w.ParseFile(context.Background(), "sample.go", "go", ".go", []byte(goSource))
	require.NoError(t, err)
	require.Len(t, extraction.Imports, 1)
	require.Equal(t, "fmt", extraction.Imports[0].Specifier)
	require.Equal(t, "sample.go", extraction.Imports[0].FromFile)
}

func TestParseFileExtractsGoCallSites(t *testing.T) {
	w := NewWorker()
	defer w.Close()

	extraction, err := w.ParseFile(context.Background(), "sample.go", "go", ".go", []byte(goSource))
	require.NoError(t, err)

	var calleeNames []string
	for _, c := range extraction.Calls {
		calleeNames = append(calleeNames, c.CalleeName)
	}
	require.Contains(t, calleeNames, "fmt.Println")
}

func TestParseFileCallSiteHasEnclosingFunction(t *testing.T) {
	w := NewWorker()
	defer w.Close()

	extraction, err := w.ParseFile(context.Background(), "sample.go", "go", ".go", []byte(goSource))
	require.NoError(t, err)

	for _, c := range extraction.Calls {
		if c.CalleeName == "fmt.Println" {
			require.NotNil(t, c.Enclosing)
			require.Equal(t, "main", c.Enclosing.Name)
			require.Equal(t, graph.KindFunction, c.Enclosing.Kind)
			return
		}
	}
	t.Fatal("expected a call site for fmt.Println")
}

func TestParseFileUnsupportedExtensionSkipped(t *testing.T) {
	w := NewWorker()
	defer w.Close()

	extraction, err := w.ParseFile(context.Background(), "data.bin", "", ".bin", []byte{0x00, 0x01})
	require.NoError(t, err)
	require.Nil(t, extraction)
}

func TestParseFileReusesCompiledQueryAcrossCalls(t *testing.T) {
	w := NewWorker()
	defer w.Close()

	_, err := w.ParseFile(context.Background(), "a.go", "go", ".go", []byte(goSource))
	require.NoError(t, err)
	_, err = w.ParseFile(context.Background(), "b.go", "go", ".go", []byte(goSource))
	require.NoError(t, err)

	require.Len(t, w.parsers, 1)
	require.Len(t, w.queries, 1)
}
