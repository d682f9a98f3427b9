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
	"fmt"
	"log/slog"

	"github.com/gitnexus/engine/internal/vcs"
)

// Mode is the terminal decision the coordinator's state machine
// reaches for a single run.
type Mode string

const (
	ModeAlreadyUpToDate Mode = "already_up_to_date"
	ModeFullRebuild      Mode = "full"
	ModeIncremental       Mode = "incremental"
)

// DefaultChangeRatioThreshold is the fraction of changed-to-total
// files above which the coordinator abandons an incremental load and
// falls back to a full rebuild (spec §4.10 step 2).
const DefaultChangeRatioThreshold = 0.6

// Decision is the outcome of running the state machine once.
type Decision struct {
	Mode          Mode
	PriorCommit   string
	CurrentCommit string
	Changed       []string // ACMR diff ∪ uncommitted working-tree changes
	Deleted       []string
	ChangeRatio   float64
}

// Coordinator runs the C10 state machine against one repository.
type Coordinator struct {
	repo      *vcs.Repo
	metaPath  string
	threshold float64
	logger    *slog.Logger
}

// New returns a Coordinator for repo, persisting/reading its prior
// run metadata at metaPath (`.gitnexus/meta.json`).
func New(repo *vcs.Repo, metaPath string, threshold float64, logger *slog.Logger) *Coordinator {
	if threshold <= 0 {
		threshold = DefaultChangeRatioThreshold
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{repo: repo, metaPath: metaPath, threshold: threshold, logger: logger}
}

// Decide walks the state machine spec §4.10 describes:
//
//	Init → AlreadyUpToDate   if commits match and force is absent
//	Init → FullRebuild       if no prior metadata exists, or force is set
//	Init → LoadPrior → Incremental   if prior metadata present and change-ratio is below threshold
//	LoadPrior → FullRebuild  on any load failure or over-threshold ratio
//
// The over-threshold change-ratio fallback is not decided here:
// EvaluateRatio applies it to an Incremental decision once the caller
// knows how many File nodes it loaded from the store.
func (c *Coordinator) Decide(force bool) (Decision, error) {
	current, err := c.repo.CurrentCommit()
	if err != nil {
		return Decision{}, fmt.Errorf("resolve current commit: %w", err)
	}

	meta, err := LoadMeta(c.metaPath)
	if err != nil {
		c.logger.Warn("incremental.meta.load.failed", "err", err)
		meta = nil
	}

	if meta == nil || force {
		c.logger.Info("incremental.decide.full_rebuild", "reason", metaOrForceReason(meta, force))
		return Decision{Mode: ModeFullRebuild, CurrentCommit: current}, nil
	}

	if meta.LastCommit == current {
		uncommitted, err := c.repo.UncommittedChanges()
		if err != nil {
			return Decision{}, fmt.Errorf("check uncommitted changes: %w", err)
		}
		if len(uncommitted) == 0 {
			c.logger.Info("incremental.decide.already_up_to_date", "commit", current)
			return Decision{Mode: ModeAlreadyUpToDate, PriorCommit: meta.LastCommit, CurrentCommit: current}, nil
		}
	}

	changed, err := c.repo.ChangedFiles(meta.LastCommit, current)
	if err != nil {
		c.logger.Warn("incremental.diff.failed", "err", err)
		return Decision{Mode: ModeFullRebuild, PriorCommit: meta.LastCommit, CurrentCommit: current}, nil
	}
	deleted, err := c.repo.DeletedFiles(meta.LastCommit, current)
	if err != nil {
		c.logger.Warn("incremental.diff.failed", "err", err)
		return Decision{Mode: ModeFullRebuild, PriorCommit: meta.LastCommit, CurrentCommit: current}, nil
	}
	uncommitted, err := c.repo.UncommittedChanges()
	if err != nil {
		return Decision{}, fmt.Errorf("check uncommitted changes: %w", err)
	}
	changed = mergeUnique(changed, uncommitted)

	if len(changed) == 0 && len(deleted) == 0 {
		c.logger.Info("incremental.decide.already_up_to_date", "commit", current)
		return Decision{Mode: ModeAlreadyUpToDate, PriorCommit: meta.LastCommit, CurrentCommit: current}, nil
	}

	return Decision{
		Mode:          ModeIncremental,
		PriorCommit:   meta.LastCommit,
		CurrentCommit: current,
		Changed:       changed,
		Deleted:       deleted,
	}, nil
}

// EvaluateRatio implements spec §4.10 step 2: given how many files
// were actually loaded from the prior graph, decide whether the
// change ratio exceeds the threshold and the caller must discard the
// partial load and fall back to a full rebuild.
func (c *Coordinator) EvaluateRatio(d Decision, loadedFileCount int) Decision {
	total := loadedFileCount + len(d.Changed)
	if total == 0 {
		d.ChangeRatio = 0
	} else {
		d.ChangeRatio = float64(len(d.Changed)) / float64(total)
	}
	if d.ChangeRatio > c.threshold {
		c.logger.Info("incremental.ratio.fallback",
			"ratio", d.ChangeRatio, "threshold", c.threshold,
			"changed", len(d.Changed), "loaded", loadedFileCount,
		)
		d.Mode = ModeFullRebuild
	}
	return d
}

func metaOrForceReason(meta *Meta, force bool) string {
	if force {
		return "force"
	}
	if meta == nil {
		return "no_prior_metadata"
	}
	return "unknown"
}

func mergeUnique(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, s := range append(append([]string{}, a...), b...) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
