// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package walk

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func TestWalker_IgnoresConfiguredSegments(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.ts", "export function foo() {}")
	writeFile(t, root, "node_modules/dep/index.js", "module.exports = {}")
	writeFile(t, root, ".git/HEAD", "ref: refs/heads/main")

	w := New(DefaultIgnoreRules(), nil)
	files, err := w.Walk(context.Background(), root)
	require.NoError(t, err)

	for _, f := range files {
		require.NotContains(t, f.Path, "node_modules/")
		require.NotContains(t, f.Path, ".git/")
	}
	require.Len(t, files, 1)
	require.Equal(t, "a.ts", files[0].Path)
	require.Equal(t, "typescript", files[0].Language)
}

func TestWalker_SortedAndDeduplicated(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "b.go", "package b")
	writeFile(t, root, "a.go", "package a")
	writeFile(t, root, "c/d.go", "package d")

	w := New(DefaultIgnoreRules(), nil)
	files, err := w.Walk(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, files, 3)
	require.Equal(t, []string{"a.go", "b.go", "c/d.go"}, []string{files[0].Path, files[1].Path, files[2].Path})
}

func TestWalker_SkipsOversizedFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "big.go", "package big\n// padding")
	writeFile(t, root, "small.go", "package small")

	w := New(DefaultIgnoreRules(), nil)
	w.MaxFileSize = 16
	files, err := w.Walk(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Equal(t, "small.go", files[0].Path)
}

func TestWalker_ErrorsOnMissingRoot(t *testing.T) {
	w := New(DefaultIgnoreRules(), nil)
	_, err := w.Walk(context.Background(), filepath.Join(t.TempDir(), "does-not-exist"))
	require.Error(t, err)
}

func TestLanguageForExtension(t *testing.T) {
	lang, ok := LanguageForExtension(".go")
	require.True(t, ok)
	require.Equal(t, "go", lang)

	_, ok = LanguageForExtension(".unknownext")
	require.False(t, ok)
}
