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

// Package incremental implements the incremental coordinator (C10):
// the state machine that gates a full rebuild against an incremental
// update, loads the unchanged subgraph, and computes the change-ratio
// fallback threshold spec §4.10 describes.
package incremental

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/gitnexus/engine/internal/bootstrap"
)

// Meta is the per-repository `.gitnexus/meta.json` file spec §6
// defines: the commit this graph was built from, when, and summary
// stats.
type Meta struct {
	RepoPath   string         `json:"repoPath"`
	LastCommit string         `json:"lastCommit"`
	IndexedAt  time.Time      `json:"indexedAt"`
	Stats      bootstrap.Stats `json:"stats"`
}

// LoadMeta reads meta.json at path. A missing file is not an error:
// it signals "no prior run", which the coordinator treats as a cue
// for FullRebuild.
func LoadMeta(path string) (*Meta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read meta %s: %w", path, err)
	}
	var m Meta
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse meta %s: %w", path, err)
	}
	return &m, nil
}

// SaveMeta writes meta.json atomically (temp file + rename), matching
// the teacher's checkpoint-write idiom.
func SaveMeta(path string, m *Meta) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal meta: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write meta temp: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename meta: %w", err)
	}
	return nil
}
