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

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPipelineRegistersAgainstFreshRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NotPanics(t, func() {
		NewPipeline(reg)
	})
}

func TestAddCountersAccumulate(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPipeline(reg)

	p.AddFilesWalked(3)
	p.AddFilesWalked(2)
	p.AddFilesParsed(4)
	p.AddFilesSkipped(1)
	p.AddFilesFailed(0)
	p.AddSymbolsDefined(10)
	p.AddImportsResolved(7)
	p.AddCallsUnresolved(2)
	p.AddHeritageResolved(5)
	p.AddCommunitiesDetected(1)
	p.AddProcessesDetected(1)
	p.AddEmbedVectors(6)
	p.AddPersistFallback(1)
	p.AddPersistFallbackFailed(0)

	assert.Equal(t, float64(5), testutil.ToFloat64(p.filesWalked))
	assert.Equal(t, float64(4), testutil.ToFloat64(p.filesParsed))
	assert.Equal(t, float64(1), testutil.ToFloat64(p.filesSkipped))
	assert.Equal(t, float64(0), testutil.ToFloat64(p.filesFailed))
	assert.Equal(t, float64(10), testutil.ToFloat64(p.symbolsDefined))
	assert.Equal(t, float64(7), testutil.ToFloat64(p.importsResolved))
	assert.Equal(t, float64(2), testutil.ToFloat64(p.callsUnresolved))
	assert.Equal(t, float64(5), testutil.ToFloat64(p.heritageResolved))
	assert.Equal(t, float64(1), testutil.ToFloat64(p.communitiesDetected))
	assert.Equal(t, float64(1), testutil.ToFloat64(p.processesDetected))
	assert.Equal(t, float64(6), testutil.ToFloat64(p.embedVectors))
	assert.Equal(t, float64(1), testutil.ToFloat64(p.persistFallbackInserts))
	assert.Equal(t, float64(0), testutil.ToFloat64(p.persistFallbackFailed))
}

func TestAddCounterIgnoresNonPositive(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPipeline(reg)

	p.AddFilesWalked(-1)
	assert.Equal(t, float64(0), testutil.ToFloat64(p.filesWalked))
}

func TestIncHelpers(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPipeline(reg)

	p.IncEmbedBatch()
	p.IncEmbedBatch()
	p.IncEmbedError()
	p.IncEmbedRetry()
	p.IncPersistRetry()
	p.IncIncrementalFallback()

	assert.Equal(t, float64(2), testutil.ToFloat64(p.embedBatchesSent))
	assert.Equal(t, float64(1), testutil.ToFloat64(p.embedErrors))
	assert.Equal(t, float64(1), testutil.ToFloat64(p.embedRetries))
	assert.Equal(t, float64(1), testutil.ToFloat64(p.persistRetries))
	assert.Equal(t, float64(1), testutil.ToFloat64(p.incrementalFallbacks))
}

func TestAddCallResolutionDisambiguatesFuzzyBySingle(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPipeline(reg)

	p.AddCallResolution("same-file", false)
	p.AddCallResolution("import-resolved", false)
	p.AddCallResolution("fuzzy-global", true)
	p.AddCallResolution("fuzzy-global", true)
	p.AddCallResolution("fuzzy-global", false)
	p.AddCallResolution("unknown-reason", false)

	assert.Equal(t, float64(1), testutil.ToFloat64(p.callsResolvedSameFile))
	assert.Equal(t, float64(1), testutil.ToFloat64(p.callsResolvedImport))
	assert.Equal(t, float64(2), testutil.ToFloat64(p.callsResolvedFuzzy1))
	assert.Equal(t, float64(1), testutil.ToFloat64(p.callsResolvedFuzzyN))
}

func TestObserveHelpersRecordSamples(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPipeline(reg)

	p.ObserveWalk(0.5)
	p.ObserveParse(1.2)
	p.ObserveResolve(0.1)
	p.ObserveDetect(0.2)
	p.ObservePersist(0.3)
	p.ObserveEmbed(2.5)
	p.ObserveRun(5.0)

	assert.Equal(t, 1, testutil.CollectAndCount(p.walkDuration))
	assert.Equal(t, 1, testutil.CollectAndCount(p.totalRunDuration))
}

func TestNilPipelineMethodsDoNotPanic(t *testing.T) {
	var p *Pipeline

	assert.NotPanics(t, func() {
		p.AddFilesWalked(1)
		p.AddFilesParsed(1)
		p.AddFilesSkipped(1)
		p.AddFilesFailed(1)
		p.AddSymbolsDefined(1)
		p.AddImportsResolved(1)
		p.AddCallResolution("same-file", false)
		p.AddCallsUnresolved(1)
		p.AddHeritageResolved(1)
		p.AddCommunitiesDetected(1)
		p.AddProcessesDetected(1)
		p.IncEmbedBatch()
		p.AddEmbedVectors(1)
		p.IncEmbedError()
		p.IncEmbedRetry()
		p.AddPersistFallback(1)
		p.AddPersistFallbackFailed(1)
		p.IncPersistRetry()
		p.IncIncrementalFallback()
		p.ObserveWalk(1)
		p.ObserveParse(1)
		p.ObserveResolve(1)
		p.ObserveDetect(1)
		p.ObservePersist(1)
		p.ObserveEmbed(1)
		p.ObserveRun(1)
	})
}
