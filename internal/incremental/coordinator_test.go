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

package incremental

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gitnexus/engine/internal/vcs"
)

func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
		"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com",
	)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
}

func commitFile(t *testing.T, dir, path, content string) string {
	t.Helper()
	full := filepath.Join(dir, path)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	runGit(t, dir, "add", ".")
	runGit(t, dir, "commit", "-q", "-m", "change "+path)
	r := vcs.New(dir)
	sha, err := r.CurrentCommit()
	require.NoError(t, err)
	return sha
}

func TestDecideFullRebuildWhenNoPriorMeta(t *testing.T) {
	dir := t.TempDir()
	runGit(t, dir, "init", "-q")
	commitFile(t, dir, "a.go", "package a\n")

	c := New(vcs.New(dir), filepath.Join(dir, "meta.json"), 0, nil)
	d, err := c.Decide(false)
	require.NoError(t, err)
	require.Equal(t, ModeFullRebuild, d.Mode)
}

func TestDecideFullRebuildWhenForced(t *testing.T) {
	dir := t.TempDir()
	runGit(t, dir, "init", "-q")
	sha := commitFile(t, dir, "a.go", "package a\n")
	metaPath := filepath.Join(dir, "meta.json")
	require.NoError(t, SaveMeta(metaPath, &Meta{RepoPath: dir, LastCommit: sha, IndexedAt: time.Unix(0, 0)}))

	c := New(vcs.New(dir), metaPath, 0, nil)
	d, err := c.Decide(true)
	require.NoError(t, err)
	require.Equal(t, ModeFullRebuild, d.Mode)
}

func TestDecideAlreadyUpToDate(t *testing.T) {
	dir := t.TempDir()
	runGit(t, dir, "init", "-q")
	sha := commitFile(t, dir, "a.go", "package a\n")
	metaPath := filepath.Join(dir, "meta.json")
	require.NoError(t, SaveMeta(metaPath, &Meta{RepoPath: dir, LastCommit: sha, IndexedAt: time.Unix(0, 0)}))

	c := New(vcs.New(dir), metaPath, 0, nil)
	d, err := c.Decide(false)
	require.NoError(t, err)
	require.Equal(t, ModeAlreadyUpToDate, d.Mode)
}

func TestDecideIncrementalOnChangedFiles(t *testing.T) {
	dir := t.TempDir()
	runGit(t, dir, "init", "-q")
	sha1 := commitFile(t, dir, "a.go", "package a\n")
	metaPath := filepath.Join(t.TempDir(), "meta.json")
	require.NoError(t, SaveMeta(metaPath, &Meta{RepoPath: dir, LastCommit: sha1, IndexedAt: time.Unix(0, 0)}))
	commitFile(t, dir, "b.go", "package b\n")

	c := New(vcs.New(dir), metaPath, 0, nil)
	d, err := c.Decide(false)
	require.NoError(t, err)
	require.Equal(t, ModeIncremental, d.Mode)
	require.Equal(t, []string{"b.go"}, d.Changed)
}

func TestEvaluateRatioFallsBackOverThreshold(t *testing.T) {
	c := New(vcs.New(t.TempDir()), "", 0.5, nil)
	d := Decision{Mode: ModeIncremental, Changed: []string{"a.go", "b.go", "c.go"}}
	out := c.EvaluateRatio(d, 1) // 3 changed / (1 loaded + 3 changed) = 0.75 > 0.5
	require.Equal(t, ModeFullRebuild, out.Mode)
	require.InDelta(t, 0.75, out.ChangeRatio, 0.001)
}

func TestEvaluateRatioStaysIncrementalUnderThreshold(t *testing.T) {
	c := New(vcs.New(t.TempDir()), "", 0.6, nil)
	d := Decision{Mode: ModeIncremental, Changed: []string{"a.go"}}
	out := c.EvaluateRatio(d, 9) // 1 / 10 = 0.1
	require.Equal(t, ModeIncremental, out.Mode)
}
