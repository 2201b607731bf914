// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package sequence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/tia/internal/changelist"
	"github.com/AleutianAI/tia/internal/depmap"
	"github.com/AleutianAI/tia/internal/obslog"
	"github.com/AleutianAI/tia/internal/policy"
	"github.com/AleutianAI/tia/internal/target"
	"github.com/AleutianAI/tia/internal/testengine"
)

func testTargets(t *testing.T, names ...string) *target.List[target.TestTarget] {
	t.Helper()
	descriptors := make([]target.TestTarget, len(names))
	for i, name := range names {
		descriptors[i] = target.NewTestTarget(name, target.SuiteMain, target.LauncherMeta{}, nil)
	}
	list, err := target.New(descriptors)
	require.NoError(t, err)
	return list
}

func newTestOrchestrator(t *testing.T, names []string, dm *depmap.Map, engine testengine.Engine, excludes *target.ExcludeList) *Orchestrator {
	t.Helper()
	tests := testTargets(t, names...)
	prod, err := target.New([]target.ProductionTarget{
		target.NewProductionTarget("lib", []string{"src/a.cpp", "src/b.cpp", "src/c.cpp"}),
	})
	require.NoError(t, err)
	ownership := NewSourceIndex(prod, tests)
	resolver := changelist.NewResolver(ownership, obslog.New(obslog.Config{Quiet: true}))
	return New("main", tests, excludes, dm, resolver, engine, obslog.New(obslog.Config{Quiet: true}), "", "")
}

func TestRunRegular_RunsIncludedTestsUninstrumented(t *testing.T) {
	dm := depmap.New("/repo", []string{"T1", "T2"}, nil)
	engine := testengine.NewInMemoryEngine(nil)
	o := newTestOrchestrator(t, []string{"T1", "T2"}, dm, engine, nil)

	report, err := o.RunRegular(context.Background(), Config{}, Callbacks{})
	require.NoError(t, err)
	assert.Equal(t, "regular", report.Mode)
	assert.False(t, report.Failed)
	require.Len(t, report.Phases, 1)
	assert.Equal(t, "selected", report.Phases[0].Name)
	assert.Len(t, report.Phases[0].RegularJobs, 2)
	assert.Empty(t, report.Phases[0].InstrumentedJobs)
	assert.Equal(t, testengine.SequenceAllTestsPass, report.Result)
}

func TestRunRegular_ExcludedTargetsAreNotRun(t *testing.T) {
	dm := depmap.New("/repo", []string{"T1", "T2", "T3"}, nil)
	engine := testengine.NewInMemoryEngine(nil)
	tests := testTargets(t, "T1", "T2", "T3")
	excludes := target.NewExcludeList(tests, []string{"T3"}, nil, nil)
	o := newTestOrchestrator(t, []string{"T1", "T2", "T3"}, dm, engine, excludes)

	report, err := o.RunRegular(context.Background(), Config{}, Callbacks{})
	require.NoError(t, err)

	var ran []string
	for _, job := range report.Phases[0].RegularJobs {
		ran = append(ran, job.Target)
	}
	assert.ElementsMatch(t, []string{"T1", "T2"}, ran)
	assert.ElementsMatch(t, []string{"T1", "T2"}, report.Selection.Selected)
}

func TestRunSeeded_ClearsMapAndIngestsCoverage(t *testing.T) {
	dm := depmap.New("/repo", []string{"T1", "T2"}, nil)
	dm.ReplaceSourceCoverage(depmap.SourceCoveringTestsList{Entries: []depmap.SourceCoveringTests{
		{SourcePath: "stale.cpp", Tests: []string{"T1"}},
	}})

	engine := testengine.NewInMemoryEngine(map[string]testengine.Canned{
		"T1": {Result: testengine.AllTestsPass, Coverage: &testengine.TestCoverage{SourcePaths: []string{"a.cpp"}}},
		"T2": {Result: testengine.AllTestsPass, Coverage: &testengine.TestCoverage{SourcePaths: []string{"b.cpp"}}},
	})
	o := newTestOrchestrator(t, []string{"T1", "T2"}, dm, engine, nil)

	report, err := o.RunSeeded(context.Background(), Config{Policies: policy.Default()}, Callbacks{})
	require.NoError(t, err)
	assert.False(t, report.Failed)

	assert.Nil(t, dm.CoveringTests("stale.cpp"))
	assert.Equal(t, []string{"T1"}, dm.CoveringTests("a.cpp"))
	assert.Equal(t, []string{"T2"}, dm.CoveringTests("b.cpp"))
	assert.Len(t, report.MapCoverage.Entries, 2)
}

func TestRunImpactAnalysis_SelectedAndDraftedPhasesUpdateMap(t *testing.T) {
	dm := depmap.New("/repo", []string{"T1", "T2", "T3"}, nil)
	dm.ReplaceSourceCoverage(depmap.SourceCoveringTestsList{Entries: []depmap.SourceCoveringTests{
		{SourcePath: "src/a.cpp", Tests: []string{"T1"}},
	}})

	engine := testengine.NewInMemoryEngine(map[string]testengine.Canned{
		"T1": {Result: testengine.AllTestsPass, Coverage: &testengine.TestCoverage{SourcePaths: []string{"src/a.cpp"}}},
		"T2": {Result: testengine.AllTestsPass, Coverage: &testengine.TestCoverage{SourcePaths: []string{"src/b.cpp"}}},
		"T3": {Result: testengine.AllTestsPass, Coverage: &testengine.TestCoverage{SourcePaths: []string{"src/c.cpp"}}},
	})
	o := newTestOrchestrator(t, []string{"T1", "T2", "T3"}, dm, engine, nil)

	cl := changelist.List{Updated: []string{"src/a.cpp"}}
	report, err := o.RunImpactAnalysis(context.Background(), cl, policy.PrioritizationNone, policy.MapUpdateUpdate, Config{Policies: policy.Default()}, Callbacks{})
	require.NoError(t, err)
	assert.False(t, report.Failed)

	require.Len(t, report.Phases, 2)
	assert.Equal(t, "selected", report.Phases[0].Name)
	assert.Equal(t, "drafted", report.Phases[1].Name)
	assert.Equal(t, []string{"T1"}, report.Selection.Selected)
	assert.ElementsMatch(t, []string{"T2", "T3"}, report.Drafted)

	assert.Equal(t, []string{"T1"}, dm.CoveringTests("src/a.cpp"))
	assert.Equal(t, []string{"T2"}, dm.CoveringTests("src/b.cpp"))
	assert.Equal(t, []string{"T3"}, dm.CoveringTests("src/c.cpp"))
	assert.Equal(t, testengine.SequenceAllTestsPass, report.Result)
}

func TestRunImpactAnalysis_NoUpdatePolicyLeavesMapUnchanged(t *testing.T) {
	dm := depmap.New("/repo", []string{"T1", "T2"}, nil)
	dm.ReplaceSourceCoverage(depmap.SourceCoveringTestsList{Entries: []depmap.SourceCoveringTests{
		{SourcePath: "src/a.cpp", Tests: []string{"T1"}},
	}})

	engine := testengine.NewInMemoryEngine(nil)
	o := newTestOrchestrator(t, []string{"T1", "T2"}, dm, engine, nil)

	cl := changelist.List{Updated: []string{"src/a.cpp"}}
	report, err := o.RunImpactAnalysis(context.Background(), cl, policy.PrioritizationNone, policy.MapUpdateNoUpdate, Config{Policies: policy.Default()}, Callbacks{})
	require.NoError(t, err)

	assert.Empty(t, report.MapCoverage.Entries)
	assert.Equal(t, []string{"T1"}, dm.CoveringTests("src/a.cpp"))
	assert.Empty(t, report.Phases[0].InstrumentedJobs)
	assert.NotEmpty(t, report.Phases[0].RegularJobs)
}

func TestRunSafeImpactAnalysis_DiscardedPhaseNeverFeedsMap(t *testing.T) {
	dm := depmap.New("/repo", []string{"T1", "T2", "T3"}, nil)
	dm.ReplaceSourceCoverage(depmap.SourceCoveringTestsList{Entries: []depmap.SourceCoveringTests{
		{SourcePath: "src/a.cpp", Tests: []string{"T1"}},
	}})

	engine := testengine.NewInMemoryEngine(map[string]testengine.Canned{
		"T1": {Result: testengine.AllTestsPass, Coverage: &testengine.TestCoverage{SourcePaths: []string{"src/a.cpp"}}},
		"T2": {Result: testengine.TestFailures},
		"T3": {Result: testengine.AllTestsPass, Coverage: &testengine.TestCoverage{SourcePaths: []string{"src/c.cpp"}}},
	})
	o := newTestOrchestrator(t, []string{"T1", "T2", "T3"}, dm, engine, nil)

	cl := changelist.List{Updated: []string{"src/a.cpp"}}
	report, err := o.RunSafeImpactAnalysis(context.Background(), cl, policy.PrioritizationNone, Config{Policies: policy.Default()}, Callbacks{})
	require.NoError(t, err)

	require.Len(t, report.Phases, 3)
	assert.Equal(t, "selected", report.Phases[0].Name)
	assert.Equal(t, "discarded", report.Phases[1].Name)
	assert.Equal(t, "drafted", report.Phases[2].Name)

	assert.NotEmpty(t, report.Phases[1].RegularJobs)
	assert.Empty(t, report.Phases[1].InstrumentedJobs)

	// T2 fails without a coverage artifact: uninstrumented in the
	// discarded phase, and instrumented in the drafted phase (it covers
	// nothing yet), where the consolidator skips it. Nothing of T2's
	// reaches the map.
	assert.Equal(t, []string{"T1"}, dm.CoveringTests("src/a.cpp"))
	assert.Equal(t, []string{"T3"}, dm.CoveringTests("src/c.cpp"))
	assert.Nil(t, dm.CoveringTests("src/b.cpp"))
}

func TestRunImpactAnalysis_UnresolvablePathAbortsUnderIntegrityAbort(t *testing.T) {
	dm := depmap.New("/repo", []string{"T1"}, nil)
	tests := testTargets(t, "T1")
	ownership := NewSourceIndex(nil, tests)
	resolver := changelist.NewResolver(ownership, obslog.New(obslog.Config{Quiet: true}))
	o := New("main", tests, nil, dm, resolver, testengine.NewInMemoryEngine(nil), obslog.New(obslog.Config{Quiet: true}), "", "")

	cl := changelist.List{Updated: []string{"unknown/path.cpp"}}
	cfg := Config{Policies: policy.Default()}
	cfg.Policies.IntegrityFailure = policy.IntegrityFailureAbort

	report, err := o.RunImpactAnalysis(context.Background(), cl, policy.PrioritizationNone, policy.MapUpdateUpdate, cfg, Callbacks{})
	require.Error(t, err)
	assert.True(t, report.Failed)
	assert.ErrorIs(t, err, ErrRuntimeFailure)
}
