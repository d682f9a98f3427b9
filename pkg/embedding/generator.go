// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package embedding

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"log/slog"

	"github.com/gitnexus/engine/internal/errors"
	"github.com/gitnexus/engine/internal/graph"
	"github.com/gitnexus/engine/internal/metrics"
)

// RetryConfig controls the exponential-backoff-with-jitter retry loop
// around a single EmbedBatch call.
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Multiplier     float64
}

func (c RetryConfig) withDefaults() RetryConfig {
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = 200 * time.Millisecond
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = 2 * time.Second
	}
	if c.Multiplier <= 1.0 {
		c.Multiplier = 2.0
	}
	return c
}

// Generator is the single consumer of a Provider: spec §5 requires
// every embedBatch call to be serialized, so unlike internal/parse's
// worker pool this never fans out goroutines across batches.
type Generator struct {
	provider  Provider
	batchSize int
	retry     RetryConfig
	logger    *slog.Logger
	metrics   *metrics.Pipeline
}

// NewGenerator returns a Generator calling provider in batches of
// batchSize (a non-positive batchSize means 32).
func NewGenerator(provider Provider, batchSize int, logger *slog.Logger, m *metrics.Pipeline) *Generator {
	if batchSize <= 0 {
		batchSize = 32
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		provider:  provider,
		batchSize: batchSize,
		retry:     RetryConfig{}.withDefaults(),
		logger:    logger,
		metrics:   m,
	}
}

// SetRetryConfig overrides the default retry policy.
func (g *Generator) SetRetryConfig(cfg RetryConfig) {
	g.retry = cfg.withDefaults()
}

// EmbedSymbols embeds the CodeSlice of every symbol node in nodes,
// batching sequentially, and returns a new slice with Embedding
// populated on the nodes that succeeded. A batch that fails every
// retry is recorded as a warning and its nodes are left with a nil
// embedding, per the item-level failure policy — one bad batch never
// aborts the run.
func (g *Generator) EmbedSymbols(ctx context.Context, nodes []graph.Node, summary *errors.Summary) []graph.Node {
	out := make([]graph.Node, len(nodes))
	copy(out, nodes)

	for start := 0; start < len(out); start += g.batchSize {
		end := start + g.batchSize
		if end > len(out) {
			end = len(out)
		}
		batch := out[start:end]

		texts := make([]string, len(batch))
		for i, n := range batch {
			texts[i] = embedText(n)
		}

		vectors, err := g.embedBatchWithRetry(ctx, texts)
		if err != nil {
			g.logger.Warn("embedding.batch.failed", "start", start, "size", len(batch), "err", err)
			if summary != nil {
				summary.Warn("embedding.batch.failed: batch at offset %d (%d symbols) could not be embedded: %v", start, len(batch), err)
			}
			if g.metrics != nil {
				g.metrics.IncEmbedError()
			}
			continue
		}
		for i := range batch {
			if i < len(vectors) {
				batch[i].Embedding = vectors[i]
			}
		}
		if g.metrics != nil {
			g.metrics.IncEmbedBatch()
			g.metrics.AddEmbedVectors(len(batch))
		}
	}

	return out
}

func embedText(n graph.Node) string {
	if strings.TrimSpace(n.CodeSlice) == "" {
		return n.Name
	}
	return n.Name + "\n" + n.CodeSlice
}

func (g *Generator) embedBatchWithRetry(ctx context.Context, texts []string) ([][]float32, error) {
	var lastErr error
	for attempt := 0; attempt <= g.retry.MaxRetries; attempt++ {
		if attempt > 0 {
			wait := computeBackoffWithJitter(g.retry.InitialBackoff, attempt, g.retry.Multiplier, g.retry.MaxBackoff)
			if g.metrics != nil {
				g.metrics.IncEmbedRetry()
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}
		vectors, err := g.provider.EmbedBatch(ctx, texts)
		if err == nil {
			return vectors, nil
		}
		lastErr = err
		if !isRetryableError(err) {
			return nil, err
		}
	}
	return nil, lastErr
}

// isRetryableError classifies provider errors by substring, since
// Provider implementations return plain wrapped errors rather than a
// typed error hierarchy — timeouts, connection failures, and HTTP
// 429/5xx responses are worth retrying; anything else (bad API key,
// malformed request) is not.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{
		"timeout", "temporarily unavailable", "connection refused",
		"connection reset", "deadline exceeded", "eof",
		"status 429", "status 500", "status 502", "status 503", "status 504",
	} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// computeBackoffWithJitter returns a full-jitter exponential backoff
// duration for the given attempt, capped at capDur.
func computeBackoffWithJitter(base time.Duration, attempt int, mult float64, capDur time.Duration) time.Duration {
	exp := float64(base)
	for i := 0; i < attempt; i++ {
		exp *= mult
	}
	d := time.Duration(exp)
	if d > capDur {
		d = capDur
	}
	if d <= 0 {
		return base
	}
	return time.Duration(rand.Int63n(int64(d) + 1))
}
