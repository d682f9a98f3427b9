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

// Package metrics holds the Prometheus collectors the pipeline
// updates as it runs. The collectors register against whatever
// Registerer NewPipeline is given; `cmd/gitnexus analyze` passes its
// own registry and serves it at /metrics when --metrics-addr is set.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Pipeline holds every counter/histogram a single analyze run updates,
// one per C1-C10 phase plus the embedding pass.
type Pipeline struct {
	once sync.Once

	filesWalked     prometheus.Counter
	filesParsed     prometheus.Counter
	filesSkipped    prometheus.Counter
	filesFailed     prometheus.Counter
	symbolsDefined  prometheus.Counter
	importsResolved prometheus.Counter

	callsResolvedSameFile  prometheus.Counter
	callsResolvedImport    prometheus.Counter
	callsResolvedFuzzy1    prometheus.Counter
	callsResolvedFuzzyN    prometheus.Counter
	callsUnresolved        prometheus.Counter
	heritageResolved       prometheus.Counter

	communitiesDetected prometheus.Counter
	processesDetected   prometheus.Counter

	embedBatchesSent prometheus.Counter
	embedVectors     prometheus.Counter
	embedErrors      prometheus.Counter
	embedRetries     prometheus.Counter

	persistFallbackInserts prometheus.Counter
	persistFallbackFailed  prometheus.Counter
	persistRetries         prometheus.Counter

	incrementalFallbacks prometheus.Counter

	walkDuration      prometheus.Histogram
	parseDuration     prometheus.Histogram
	resolveDuration   prometheus.Histogram
	detectDuration    prometheus.Histogram
	persistDuration   prometheus.Histogram
	embedDuration     prometheus.Histogram
	totalRunDuration  prometheus.Histogram
}

// NewPipeline builds and registers a Pipeline's collectors against reg.
// Passing prometheus.NewRegistry() (rather than the global default
// registry) lets tests and repeated analyze-in-process calls avoid
// "duplicate metrics collector registration" panics.
func NewPipeline(reg prometheus.Registerer) *Pipeline {
	p := &Pipeline{}
	p.once.Do(func() {
		counter := func(name, help string) prometheus.Counter {
			c := prometheus.NewCounter(prometheus.CounterOpts{Name: name, Help: help})
			reg.MustRegister(c)
			return c
		}
		buckets := []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300}
		histogram := func(name, help string) prometheus.Histogram {
			h := prometheus.NewHistogram(prometheus.HistogramOpts{Name: name, Help: help, Buckets: buckets})
			reg.MustRegister(h)
			return h
		}

		p.filesWalked = counter("gitnexus_files_walked_total", "files yielded by the walker after ignore filtering")
		p.filesParsed = counter("gitnexus_files_parsed_total", "files successfully parsed")
		p.filesSkipped = counter("gitnexus_files_skipped_total", "files skipped for size or unsupported language")
		p.filesFailed = counter("gitnexus_files_failed_total", "files that failed to parse within their timeout")
		p.symbolsDefined = counter("gitnexus_symbols_defined_total", "symbol nodes extracted")
		p.importsResolved = counter("gitnexus_imports_resolved_total", "import specifiers resolved to a known file")

		p.callsResolvedSameFile = counter("gitnexus_calls_resolved_same_file_total", "CALLS edges resolved via same-file lookup")
		p.callsResolvedImport = counter("gitnexus_calls_resolved_import_total", "CALLS edges resolved via import-map lookup")
		p.callsResolvedFuzzy1 = counter("gitnexus_calls_resolved_fuzzy_single_total", "CALLS edges resolved via single-candidate fuzzy lookup")
		p.callsResolvedFuzzyN = counter("gitnexus_calls_resolved_fuzzy_multiple_total", "CALLS edges resolved via multi-candidate fuzzy lookup")
		p.callsUnresolved = counter("gitnexus_calls_unresolved_total", "call sites that matched no known definition")
		p.heritageResolved = counter("gitnexus_heritage_resolved_total", "EXTENDS/IMPLEMENTS edges resolved")

		p.communitiesDetected = counter("gitnexus_communities_detected_total", "Community nodes produced")
		p.processesDetected = counter("gitnexus_processes_detected_total", "Process nodes produced")

		p.embedBatchesSent = counter("gitnexus_embed_batches_total", "embedding batches sent to the provider")
		p.embedVectors = counter("gitnexus_embed_vectors_total", "symbol vectors successfully embedded")
		p.embedErrors = counter("gitnexus_embed_errors_total", "embedding batch failures after retry exhaustion")
		p.embedRetries = counter("gitnexus_embed_retries_total", "embedding batch retry attempts")

		p.persistFallbackInserts = counter("gitnexus_persist_fallback_inserts_total", "edges inserted via the per-row fallback path")
		p.persistFallbackFailed = counter("gitnexus_persist_fallback_failed_total", "per-row fallback inserts that still failed")
		p.persistRetries = counter("gitnexus_persist_copy_retries_total", "bulk COPY attempts retried with IGNORE_ERRORS")

		p.incrementalFallbacks = counter("gitnexus_incremental_full_rebuild_fallbacks_total", "incremental runs that fell back to a full rebuild")

		p.walkDuration = histogram("gitnexus_walk_duration_seconds", "C1 file walk duration")
		p.parseDuration = histogram("gitnexus_parse_duration_seconds", "C4 parse phase duration")
		p.resolveDuration = histogram("gitnexus_resolve_duration_seconds", "C5-C7 resolution phase duration")
		p.detectDuration = histogram("gitnexus_detect_duration_seconds", "C8 community/process detection duration")
		p.persistDuration = histogram("gitnexus_persist_duration_seconds", "C9 persist duration")
		p.embedDuration = histogram("gitnexus_embed_duration_seconds", "embedding pass duration")
		p.totalRunDuration = histogram("gitnexus_run_duration_seconds", "total analyze run duration")
	})
	return p
}

// The Observe*/Add*/Inc* methods below are thin, nil-safe wrappers so
// callers can pass a nil *Pipeline (e.g. in unit tests exercising a
// single pipeline stage) without a nil-pointer panic.

func (p *Pipeline) AddFilesWalked(n int) {
	if p == nil {
		return
	}
	p.addCounter(p.filesWalked, n)
}

func (p *Pipeline) AddFilesParsed(n int) {
	if p == nil {
		return
	}
	p.addCounter(p.filesParsed, n)
}

func (p *Pipeline) AddFilesSkipped(n int) {
	if p == nil {
		return
	}
	p.addCounter(p.filesSkipped, n)
}

func (p *Pipeline) AddFilesFailed(n int) {
	if p == nil {
		return
	}
	p.addCounter(p.filesFailed, n)
}

func (p *Pipeline) AddSymbolsDefined(n int) {
	if p == nil {
		return
	}
	p.addCounter(p.symbolsDefined, n)
}

func (p *Pipeline) AddImportsResolved(n int) {
	if p == nil {
		return
	}
	p.addCounter(p.importsResolved, n)
}

// AddCallResolution increments the counter matching reason, one of
// graph.ReasonSameFile/ReasonImportResolved/ReasonFuzzySingle/
// ReasonFuzzyMultiple (the latter two share the constant value
// "fuzzy-global", so reason alone cannot disambiguate single vs.
// multiple candidates — pass isSingle explicitly).
func (p *Pipeline) AddCallResolution(reason string, isSingle bool) {
	if p == nil {
		return
	}
	switch reason {
	case "same-file":
		p.callsResolvedSameFile.Inc()
	case "import-resolved":
		p.callsResolvedImport.Inc()
	case "fuzzy-global":
		if isSingle {
			p.callsResolvedFuzzy1.Inc()
		} else {
			p.callsResolvedFuzzyN.Inc()
		}
	}
}

func (p *Pipeline) AddCallsUnresolved(n int) {
	if p == nil {
		return
	}
	p.addCounter(p.callsUnresolved, n)
}

func (p *Pipeline) AddHeritageResolved(n int) {
	if p == nil {
		return
	}
	p.addCounter(p.heritageResolved, n)
}

func (p *Pipeline) AddCommunitiesDetected(n int) {
	if p == nil {
		return
	}
	p.addCounter(p.communitiesDetected, n)
}

func (p *Pipeline) AddProcessesDetected(n int) {
	if p == nil {
		return
	}
	p.addCounter(p.processesDetected, n)
}

func (p *Pipeline) IncEmbedBatch() {
	if p == nil {
		return
	}
	p.incCounter(p.embedBatchesSent)
}

func (p *Pipeline) AddEmbedVectors(n int) {
	if p == nil {
		return
	}
	p.addCounter(p.embedVectors, n)
}

func (p *Pipeline) IncEmbedError() {
	if p == nil {
		return
	}
	p.incCounter(p.embedErrors)
}

func (p *Pipeline) IncEmbedRetry() {
	if p == nil {
		return
	}
	p.incCounter(p.embedRetries)
}

func (p *Pipeline) AddPersistFallback(n int) {
	if p == nil {
		return
	}
	p.addCounter(p.persistFallbackInserts, n)
}

func (p *Pipeline) AddPersistFallbackFailed(n int) {
	if p == nil {
		return
	}
	p.addCounter(p.persistFallbackFailed, n)
}

func (p *Pipeline) IncPersistRetry() {
	if p == nil {
		return
	}
	p.incCounter(p.persistRetries)
}

func (p *Pipeline) IncIncrementalFallback() {
	if p == nil {
		return
	}
	p.incCounter(p.incrementalFallbacks)
}

func (p *Pipeline) ObserveWalk(seconds float64) {
	if p == nil {
		return
	}
	p.observe(p.walkDuration, seconds)
}

func (p *Pipeline) ObserveParse(seconds float64) {
	if p == nil {
		return
	}
	p.observe(p.parseDuration, seconds)
}

func (p *Pipeline) ObserveResolve(seconds float64) {
	if p == nil {
		return
	}
	p.observe(p.resolveDuration, seconds)
}

func (p *Pipeline) ObserveDetect(seconds float64) {
	if p == nil {
		return
	}
	p.observe(p.detectDuration, seconds)
}

func (p *Pipeline) ObservePersist(seconds float64) {
	if p == nil {
		return
	}
	p.observe(p.persistDuration, seconds)
}

func (p *Pipeline) ObserveEmbed(seconds float64) {
	if p == nil {
		return
	}
	p.observe(p.embedDuration, seconds)
}

func (p *Pipeline) ObserveRun(seconds float64) {
	if p == nil {
		return
	}
	p.observe(p.totalRunDuration, seconds)
}

func (p *Pipeline) addCounter(c prometheus.Counter, n int) {
	if p == nil || c == nil || n <= 0 {
		return
	}
	c.Add(float64(n))
}

func (p *Pipeline) incCounter(c prometheus.Counter) {
	if p == nil || c == nil {
		return
	}
	c.Inc()
}

func (p *Pipeline) observe(h prometheus.Histogram, seconds float64) {
	if p == nil || h == nil {
		return
	}
	h.Observe(seconds)
}
