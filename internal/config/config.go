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

// Package config loads run configuration for an analyze invocation:
// built-in defaults, overridden by an optional `.gitnexus.yml` file at
// the repository root, overridden in turn by CLI flags. Nothing here
// parses flags itself — cmd/gitnexus owns the pflag.FlagSet and calls
// ApplyFlags after Load.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/gitnexus/engine/internal/incremental"
	"github.com/gitnexus/engine/internal/parse"
)

// FileName is the configuration file name a repository root may carry.
const FileName = ".gitnexus.yml"

// Config is the full set of tunables spec §9's open questions leave to
// the implementer: worker count, file size/timeout limits, the
// incremental change-ratio threshold, ignore-rule overrides, the
// embedding provider and batch size, and the FTS stemmer.
type Config struct {
	Workers             int     `yaml:"workers"`
	FileSizeLimitBytes  int64   `yaml:"fileSizeLimitBytes"`
	FileTimeoutSeconds  int     `yaml:"fileTimeoutSeconds"`
	ChangeRatioThreshold float64 `yaml:"changeRatioThreshold"`
	IgnoreSegments      []string `yaml:"ignoreSegments"`
	IgnoreSuffixes      []string `yaml:"ignoreSuffixes"`
	IgnoreExtensions    []string `yaml:"ignoreExtensions"`
	EmbeddingProvider   string  `yaml:"embeddingProvider"`
	EmbeddingBatchSize  int     `yaml:"embeddingBatchSize"`
	FTSStemmer          string  `yaml:"ftsStemmer"`
}

// Default returns the built-in configuration, sourced from the same
// defaults internal/parse and internal/incremental already fall back
// to when given a zero value.
func Default() Config {
	return Config{
		Workers:              parse.DefaultWorkers,
		FileSizeLimitBytes:   parse.DefaultFileSizeLimit,
		FileTimeoutSeconds:   int(parse.DefaultFileTimeout.Seconds()),
		ChangeRatioThreshold: incremental.DefaultChangeRatioThreshold,
		EmbeddingProvider:    "mock",
		EmbeddingBatchSize:   32,
		FTSStemmer:           "porter",
	}
}

// Load reads FileName from repoRoot if present, layering its fields
// over Default(). A missing file is not an error — it just means every
// field keeps its default.
func Load(repoRoot string) (Config, error) {
	cfg := Default()
	path := filepath.Join(repoRoot, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}

	var fromFile Config
	if err := yaml.Unmarshal(data, &fromFile); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.merge(fromFile)
	return cfg, nil
}

// merge overlays any non-zero field of other onto c.
func (c *Config) merge(other Config) {
	if other.Workers > 0 {
		c.Workers = other.Workers
	}
	if other.FileSizeLimitBytes > 0 {
		c.FileSizeLimitBytes = other.FileSizeLimitBytes
	}
	if other.FileTimeoutSeconds > 0 {
		c.FileTimeoutSeconds = other.FileTimeoutSeconds
	}
	if other.ChangeRatioThreshold > 0 {
		c.ChangeRatioThreshold = other.ChangeRatioThreshold
	}
	if len(other.IgnoreSegments) > 0 {
		c.IgnoreSegments = other.IgnoreSegments
	}
	if len(other.IgnoreSuffixes) > 0 {
		c.IgnoreSuffixes = other.IgnoreSuffixes
	}
	if len(other.IgnoreExtensions) > 0 {
		c.IgnoreExtensions = other.IgnoreExtensions
	}
	if other.EmbeddingProvider != "" {
		c.EmbeddingProvider = other.EmbeddingProvider
	}
	if other.EmbeddingBatchSize > 0 {
		c.EmbeddingBatchSize = other.EmbeddingBatchSize
	}
	if other.FTSStemmer != "" {
		c.FTSStemmer = other.FTSStemmer
	}
}

// Flags is the subset of Config the CLI exposes as flags. A field left
// at its zero value by the flag set is not applied, so a flag the user
// never passed cannot clobber the file/default value.
type Flags struct {
	Workers              int
	FileTimeoutSeconds   int
	ChangeRatioThreshold float64
	EmbeddingProvider    string
	SkipEmbeddings       bool
}

// ApplyFlags layers CLI flag overrides on top of cfg, the final step
// in the defaults-then-file-then-flags precedence chain.
func (c Config) ApplyFlags(f Flags) Config {
	if f.Workers > 0 {
		c.Workers = f.Workers
	}
	if f.FileTimeoutSeconds > 0 {
		c.FileTimeoutSeconds = f.FileTimeoutSeconds
	}
	if f.ChangeRatioThreshold > 0 {
		c.ChangeRatioThreshold = f.ChangeRatioThreshold
	}
	if f.EmbeddingProvider != "" {
		c.EmbeddingProvider = f.EmbeddingProvider
	}
	if f.SkipEmbeddings {
		c.EmbeddingProvider = ""
	}
	return c
}
