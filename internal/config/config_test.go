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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWithoutFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, `
workers: 4
embeddingProvider: openai
ignoreSegments:
  - vendor
  - node_modules
`)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, "openai", cfg.EmbeddingProvider)
	assert.Equal(t, []string{"vendor", "node_modules"}, cfg.IgnoreSegments)
	// Untouched fields keep their defaults.
	assert.Equal(t, Default().FileSizeLimitBytes, cfg.FileSizeLimitBytes)
	assert.Equal(t, Default().FTSStemmer, cfg.FTSStemmer)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "workers: [this is not an int\n")

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestLoadRejectsUnreadableFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.Mkdir(path, 0o755))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestMergeIgnoresZeroFields(t *testing.T) {
	cfg := Default()
	cfg.merge(Config{})
	assert.Equal(t, Default(), cfg)
}

func TestApplyFlagsOverridesNonZeroFields(t *testing.T) {
	cfg := Default()

	out := cfg.ApplyFlags(Flags{
		Workers:              8,
		ChangeRatioThreshold: 0.75,
	})

	assert.Equal(t, 8, out.Workers)
	assert.Equal(t, 0.75, out.ChangeRatioThreshold)
	assert.Equal(t, Default().EmbeddingProvider, out.EmbeddingProvider)
}

func TestApplyFlagsSkipEmbeddingsClearsProvider(t *testing.T) {
	cfg := Default()
	require.NotEmpty(t, cfg.EmbeddingProvider)

	out := cfg.ApplyFlags(Flags{SkipEmbeddings: true})

	assert.Empty(t, out.EmbeddingProvider)
}

func TestApplyFlagsSkipEmbeddingsOverridesEmbeddingProvider(t *testing.T) {
	cfg := Default()

	// SkipEmbeddings is applied after EmbeddingProvider, so it wins when
	// both are set on the same invocation.
	out := cfg.ApplyFlags(Flags{EmbeddingProvider: "openai", SkipEmbeddings: true})

	assert.Empty(t, out.EmbeddingProvider)
}

func writeConfigFile(t *testing.T, dir, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(contents), 0o644))
}
