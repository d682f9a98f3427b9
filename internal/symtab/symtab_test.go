// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package symtab

import (
	"testing"

	"github.com/gitnexus/engine/internal/graph"
	"github.com/stretchr/testify/require"
)

func TestTable_LookupExact(t *testing.T) {
	tab := New()
	tab.Insert(Definition{FilePath: "a.go", Name: "Foo", NodeID: "Function:a.go:Foo", Kind: graph.KindFunction})

	id, ok := tab.LookupExact("a.go", "Foo")
	require.True(t, ok)
	require.Equal(t, "Function:a.go:Foo", id)

	_, ok = tab.LookupExact("a.go", "Bar")
	require.False(t, ok)

	_, ok = tab.LookupExact("b.go", "Foo")
	require.False(t, ok)
}

func TestTable_LookupFuzzy_StableOrder(t *testing.T) {
	tab := New()
	tab.Insert(Definition{FilePath: "a.go", Name: "log", NodeID: "Function:a.go:log", Kind: graph.KindFunction})
	tab.Insert(Definition{FilePath: "b.go", Name: "log", NodeID: "Function:b.go:log", Kind: graph.KindFunction})

	defs := tab.LookupFuzzy("log")
	require.Len(t, defs, 2)
	require.Equal(t, "Function:a.go:log", defs[0].NodeID)
	require.Equal(t, "Function:b.go:log", defs[1].NodeID)
}

func TestTable_Clear(t *testing.T) {
	tab := New()
	tab.Insert(Definition{FilePath: "a.go", Name: "Foo", NodeID: "x", Kind: graph.KindFunction})
	require.Equal(t, 1, tab.Len())
	tab.Clear()
	require.Equal(t, 0, tab.Len())
	_, ok := tab.LookupExact("a.go", "Foo")
	require.False(t, ok)
}

func TestTable_Files(t *testing.T) {
	tab := New()
	tab.Insert(Definition{FilePath: "b.go", Name: "Foo", NodeID: "x", Kind: graph.KindFunction})
	tab.Insert(Definition{FilePath: "a.go", Name: "Bar", NodeID: "y", Kind: graph.KindFunction})
	require.Equal(t, []string{"a.go", "b.go"}, tab.Files())
}
