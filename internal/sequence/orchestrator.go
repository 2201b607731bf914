// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package sequence implements the Sequence Orchestrator (C8): it drives
// the four sequence modes (Regular, Seeded, ImpactAnalysis,
// SafeImpactAnalysis) end to end, threading a single progress callback
// and global timeout budget across every phase and producing one Report
// per run (§4.8, §6, §9 of the runtime's design).
package sequence

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/AleutianAI/tia/internal/changelist"
	"github.com/AleutianAI/tia/internal/coverage"
	"github.com/AleutianAI/tia/internal/depmap"
	"github.com/AleutianAI/tia/internal/lockfile"
	"github.com/AleutianAI/tia/internal/obslog"
	"github.com/AleutianAI/tia/internal/policy"
	"github.com/AleutianAI/tia/internal/selector"
	"github.com/AleutianAI/tia/internal/serialize"
	"github.com/AleutianAI/tia/internal/target"
	"github.com/AleutianAI/tia/internal/telemetry"
	"github.com/AleutianAI/tia/internal/testengine"
)

// Config carries the per-run knobs common to every mode: policy state,
// timeouts, and concurrency. It is captured verbatim into the Report.
type Config struct {
	Policies       policy.State
	TargetTimeout  time.Duration
	GlobalTimeout  time.Duration
	MaxConcurrency int
}

// Callbacks are the optional hooks a caller (CLI progress bar, server
// push, test) wires into a run.
type Callbacks struct {
	// OnStart fires once with the total job count for the run, before
	// the first phase starts.
	OnStart func(total int)

	// OnJobComplete fires once per completed job with the sequence-wide
	// monotonic counters.
	OnJobComplete func(completed, total int, target string, result testengine.TestRunResult)

	// OnEnd fires once with the finished Report, whether or not the run
	// failed.
	OnEnd func(report Report)
}

// Orchestrator owns the state a sequence needs across its lifetime: the
// test target list, exclusions, the dependency map, a change-list
// resolver, and the engine that actually executes targets. One
// Orchestrator is built per suite and reused across runs.
type Orchestrator struct {
	suite    string
	tests    *target.List[target.TestTarget]
	excludes *target.ExcludeList
	dm       *depmap.Map
	resolver *changelist.Resolver
	engine   testengine.Engine
	log      *obslog.Logger
	store    serialize.Store
	lockPath string
}

// New builds an Orchestrator backed by a flat-file Store at sparPath.
// sparPath and lockPath may be empty, disabling persistence and
// concurrent-run locking respectively (tests typically leave both empty
// and talk to the dependency map directly).
func New(suite string, tests *target.List[target.TestTarget], excludes *target.ExcludeList, dm *depmap.Map, resolver *changelist.Resolver, engine testengine.Engine, log *obslog.Logger, sparPath, lockPath string) *Orchestrator {
	var store serialize.Store
	if sparPath != "" {
		store = serialize.NewFileStore(sparPath)
	}
	return NewWithStore(suite, tests, excludes, dm, resolver, engine, log, store, lockPath)
}

// NewWithStore builds an Orchestrator against an arbitrary Store
// (FileStore, BadgerStore, or a test double). A nil store disables
// persistence, matching New's empty-sparPath behavior.
func NewWithStore(suite string, tests *target.List[target.TestTarget], excludes *target.ExcludeList, dm *depmap.Map, resolver *changelist.Resolver, engine testengine.Engine, log *obslog.Logger, store serialize.Store, lockPath string) *Orchestrator {
	return &Orchestrator{
		suite:    suite,
		tests:    tests,
		excludes: excludes,
		dm:       dm,
		resolver: resolver,
		engine:   engine,
		log:      log,
		store:    store,
		lockPath: lockPath,
	}
}

// LoadPersisted seeds the dependency map from the SPAR-TIA file, if
// configured. A missing file or a SerializationException is logged and
// tolerated per §7: the orchestrator simply starts with an empty map.
func (o *Orchestrator) LoadPersisted() {
	if o.store == nil {
		return
	}

	list, err := o.store.Read()
	if err != nil {
		if o.log != nil {
			o.log.Warn("failed to load persisted dependency map, starting empty", "error", err)
		}
		return
	}
	o.dm.ReplaceSourceCoverage(list)
}

// includedTestNames returns every test target name not fully excluded,
// in target-list (sorted) order.
func (o *Orchestrator) includedTestNames() []string {
	all := o.tests.Names()
	if o.excludes == nil {
		return all
	}
	out := make([]string, 0, len(all))
	for _, name := range all {
		if !o.excludes.IsFullyExcluded(name) {
			out = append(out, name)
		}
	}
	return out
}

// intersect returns the elements of a present in b, preserving a's
// order.
func intersect(a, b []string) []string {
	set := make(map[string]struct{}, len(b))
	for _, name := range b {
		set[name] = struct{}{}
	}
	out := make([]string, 0, len(a))
	for _, name := range a {
		if _, ok := set[name]; ok {
			out = append(out, name)
		}
	}
	return out
}

// runPhase executes one phase (a named batch of targets, instrumented or
// not) against the remaining timeout budget, charging the budget with
// however long the phase actually took.
func (o *Orchestrator) runPhase(ctx context.Context, mode, name string, targets []string, instrumented bool, relativeStart time.Duration, budget *timeoutBudget, tracker *progressTracker, cfg Config) (PhaseReport, error) {
	report := PhaseReport{Name: name, RelativeStart: relativeStart}

	if len(targets) == 0 {
		report.Result = testengine.SequenceNoTestsRun
		return report, nil
	}

	ctx, span := telemetry.StartPhaseSpan(ctx, mode, name)
	defer span.End()

	opts := testengine.RunOptions{
		ExecutionFailure: cfg.Policies.ExecutionFailure,
		FailedCoverage:   cfg.Policies.FailedTestCoverage,
		OutputCapture:    cfg.Policies.OutputCapture,
		TargetTimeout:    cfg.TargetTimeout,
		GlobalTimeout:    budget.remaining(),
		MaxConcurrency:   cfg.MaxConcurrency,
		Callback:         tracker.callback(),
	}

	start := time.Now()
	if instrumented {
		result, jobs, err := o.engine.InstrumentedRun(ctx, targets, opts)
		report.Result = result
		report.InstrumentedJobs = jobs
		if err != nil {
			telemetry.RecordError(span, err)
			report.Duration = time.Since(start)
			budget.charge(report.Duration)
			return report, err
		}
	} else {
		result, jobs, err := o.engine.RegularRun(ctx, targets, opts)
		report.Result = result
		report.RegularJobs = jobs
		if err != nil {
			telemetry.RecordError(span, err)
			report.Duration = time.Since(start)
			budget.charge(report.Duration)
			return report, err
		}
	}
	report.Duration = time.Since(start)
	budget.charge(report.Duration)
	return report, nil
}

// assembleReport folds the common fields every mode reports.
func (o *Orchestrator) assembleReport(mode string, cfg Config, sel selector.Selection, drafted []string, phases []PhaseReport, started time.Time) Report {
	return Report{
		RunID:          uuid.NewString(),
		Mode:           mode,
		Suite:          o.suite,
		MaxConcurrency: cfg.MaxConcurrency,
		TargetTimeout:  cfg.TargetTimeout,
		GlobalTimeout:  cfg.GlobalTimeout,
		Policies:       cfg.Policies,
		Selection:      sel,
		Drafted:        drafted,
		Phases:         phases,
		Result:         overallResult(phases),
		StartedAt:      started,
		TotalDuration:  time.Since(started),
	}
}

// persist writes list to the SPAR-TIA file under the concurrent-run
// lock, if both are configured. A zero-value sparPath disables
// persistence entirely (the caller keeps the updated map in memory
// only).
func (o *Orchestrator) persist(list depmap.SourceCoveringTestsList) error {
	if o.store == nil {
		return nil
	}
	if o.lockPath != "" {
		lock := lockfile.New(o.lockPath)
		if err := lock.Acquire(); err != nil {
			return err
		}
		defer lock.Release()
	}
	return o.store.Write(list)
}

// removePersisted deletes the on-disk SPAR-TIA file under the
// concurrent-run lock, if configured. Seeded mode calls this before
// re-ingesting so a crash between the clear and the next write never
// leaves a stale on-disk map behind a freshly-cleared in-memory one
// (§12).
func (o *Orchestrator) removePersisted() error {
	if o.store == nil {
		return nil
	}
	if o.lockPath != "" {
		lock := lockfile.New(o.lockPath)
		if err := lock.Acquire(); err != nil {
			return err
		}
		defer lock.Release()
	}
	return o.store.Remove()
}

// runtimeFailure applies §7's RuntimeException handling: abort and
// surface the error under IntegrityFailureAbort, otherwise log and
// return the report as-is.
func (o *Orchestrator) runtimeFailure(report Report, phase string, err error, cfg Config, cb Callbacks) (Report, error) {
	wrapped := &RuntimeError{Phase: phase, Err: err}

	if cfg.Policies.IntegrityFailure == policy.IntegrityFailureAbort {
		report.Failed = true
		report.FailureReason = wrapped.Error()
		if cb.OnEnd != nil {
			cb.OnEnd(report)
		}
		return report, wrapped
	}

	if o.log != nil {
		o.log.Warn("runtime failure, continuing per policy", "phase", phase, "error", err)
	}
	if cb.OnEnd != nil {
		cb.OnEnd(report)
	}
	return report, nil
}

// failReport marks report as failed because of a phase-execution error
// (as opposed to an ingestion/persistence RuntimeException).
func (o *Orchestrator) failReport(report Report, err error, cb Callbacks) (Report, error) {
	report.Failed = true
	report.FailureReason = err.Error()
	if cb.OnEnd != nil {
		cb.OnEnd(report)
	}
	return report, err
}

// RunRegular runs every included test target, uninstrumented, and never
// touches the dependency map (§4.8, mode Regular).
func (o *Orchestrator) RunRegular(ctx context.Context, cfg Config, cb Callbacks) (Report, error) {
	included := o.includedTestNames()
	tracker := newProgressTracker(len(included), cb.OnJobComplete)
	if cb.OnStart != nil {
		cb.OnStart(len(included))
	}

	budget := &timeoutBudget{total: cfg.GlobalTimeout}
	started := time.Now()

	phase, err := o.runPhase(ctx, "regular", "selected", included, false, 0, budget, tracker, cfg)
	phases := []PhaseReport{phase}

	report := o.assembleReport("regular", cfg, selector.Selection{Selected: included}, nil, phases, started)
	if err != nil {
		return o.failReport(report, err, cb)
	}
	if cb.OnEnd != nil {
		cb.OnEnd(report)
	}
	return report, nil
}

// RunSeeded runs every included test target instrumented, against a
// cleared dependency map, and feeds the result straight into the
// Coverage Consolidator: a one-shot "build the map from scratch" mode
// (§4.8, mode Seeded).
func (o *Orchestrator) RunSeeded(ctx context.Context, cfg Config, cb Callbacks) (Report, error) {
	included := o.includedTestNames()
	tracker := newProgressTracker(len(included), cb.OnJobComplete)
	if cb.OnStart != nil {
		cb.OnStart(len(included))
	}

	o.dm.ClearAllSourceCoverage()

	budget := &timeoutBudget{total: cfg.GlobalTimeout}
	started := time.Now()

	if rerr := o.removePersisted(); rerr != nil {
		report := o.assembleReport("seeded", cfg, selector.Selection{Selected: included}, nil, nil, started)
		return o.runtimeFailure(report, "clear", rerr, cfg, cb)
	}

	phase, err := o.runPhase(ctx, "seeded", "selected", included, true, 0, budget, tracker, cfg)
	phases := []PhaseReport{phase}

	report := o.assembleReport("seeded", cfg, selector.Selection{Selected: included}, nil, phases, started)
	if err != nil {
		return o.failReport(report, err, cb)
	}

	list, cerr := coverage.Consolidate(o.dm, phase.InstrumentedJobs, cfg.Policies.FailedTestCoverage)
	if cerr != nil {
		return o.runtimeFailure(report, "ingest", cerr, cfg, cb)
	}
	report.MapCoverage = list
	if !list.IsEmpty() {
		if perr := o.persist(list); perr != nil {
			return o.runtimeFailure(report, "persist", perr, cfg, cb)
		}
	}

	if cb.OnEnd != nil {
		cb.OnEnd(report)
	}
	return report, nil
}

// RunImpactAnalysis resolves cl against the map-selected and drafted
// sets, runs both phases, and — when mapUpdate is MapUpdateUpdate —
// instruments both phases and feeds the result into the Coverage
// Consolidator (§4.8, mode ImpactAnalysis).
func (o *Orchestrator) RunImpactAnalysis(ctx context.Context, cl changelist.List, prio policy.TestPrioritization, mapUpdate policy.DynamicDependencyMapUpdate, cfg Config, cb Callbacks) (Report, error) {
	started := time.Now()

	resolved, rerr := o.resolver.ApplyAndResolveChangeList(cl, cfg.Policies.IntegrityFailure)
	if rerr != nil {
		report := o.assembleReport("impact_analysis", cfg, selector.Selection{}, nil, nil, started)
		return o.runtimeFailure(report, "resolve", rerr, cfg, cb)
	}

	included := o.includedTestNames()
	sel := selector.Select(ctx, included, *resolved, o.dm, prio)
	drafted := intersect(o.dm.GetNotCoveringTests(), included)

	total := len(sel.Selected) + len(drafted)
	tracker := newProgressTracker(total, cb.OnJobComplete)
	if cb.OnStart != nil {
		cb.OnStart(total)
	}

	budget := &timeoutBudget{total: cfg.GlobalTimeout}
	instrumented := mapUpdate == policy.MapUpdateUpdate

	phaseA, errA := o.runPhase(ctx, "impact_analysis", "selected", sel.Selected, instrumented, 0, budget, tracker, cfg)
	phases := []PhaseReport{phaseA}
	if errA != nil {
		report := o.assembleReport("impact_analysis", cfg, sel, drafted, phases, started)
		return o.failReport(report, errA, cb)
	}

	phaseB, errB := o.runPhase(ctx, "impact_analysis", "drafted", drafted, instrumented, phaseA.Duration, budget, tracker, cfg)
	phases = append(phases, phaseB)
	if errB != nil {
		report := o.assembleReport("impact_analysis", cfg, sel, drafted, phases, started)
		return o.failReport(report, errB, cb)
	}

	report := o.assembleReport("impact_analysis", cfg, sel, drafted, phases, started)

	if instrumented {
		jobs := append(append([]testengine.InstrumentedJob{}, phaseA.InstrumentedJobs...), phaseB.InstrumentedJobs...)
		list, cerr := coverage.Consolidate(o.dm, jobs, cfg.Policies.FailedTestCoverage)
		if cerr != nil {
			return o.runtimeFailure(report, "ingest", cerr, cfg, cb)
		}
		report.MapCoverage = list
		if !list.IsEmpty() {
			if perr := o.persist(list); perr != nil {
				return o.runtimeFailure(report, "persist", perr, cfg, cb)
			}
		}
	}

	if cb.OnEnd != nil {
		cb.OnEnd(report)
	}
	return report, nil
}

// RunSafeImpactAnalysis runs the selected and drafted sets instrumented
// (always feeding the map, unlike plain ImpactAnalysis) and additionally
// runs the discarded set uninstrumented as a correctness safety net,
// never feeding its results to the Coverage Consolidator (§4.8, mode
// SafeImpactAnalysis).
func (o *Orchestrator) RunSafeImpactAnalysis(ctx context.Context, cl changelist.List, prio policy.TestPrioritization, cfg Config, cb Callbacks) (Report, error) {
	started := time.Now()

	resolved, rerr := o.resolver.ApplyAndResolveChangeList(cl, cfg.Policies.IntegrityFailure)
	if rerr != nil {
		report := o.assembleReport("safe_impact_analysis", cfg, selector.Selection{}, nil, nil, started)
		return o.runtimeFailure(report, "resolve", rerr, cfg, cb)
	}

	included := o.includedTestNames()
	sel := selector.Select(ctx, included, *resolved, o.dm, prio)
	drafted := intersect(o.dm.GetNotCoveringTests(), included)

	total := len(sel.Selected) + len(sel.Discarded) + len(drafted)
	tracker := newProgressTracker(total, cb.OnJobComplete)
	if cb.OnStart != nil {
		cb.OnStart(total)
	}

	budget := &timeoutBudget{total: cfg.GlobalTimeout}

	phaseA, errA := o.runPhase(ctx, "safe_impact_analysis", "selected", sel.Selected, true, 0, budget, tracker, cfg)
	phases := []PhaseReport{phaseA}
	if errA != nil {
		report := o.assembleReport("safe_impact_analysis", cfg, sel, drafted, phases, started)
		return o.failReport(report, errA, cb)
	}

	discardedPhase, errD := o.runPhase(ctx, "safe_impact_analysis", "discarded", sel.Discarded, false, phaseA.Duration, budget, tracker, cfg)
	phases = append(phases, discardedPhase)
	if errD != nil {
		report := o.assembleReport("safe_impact_analysis", cfg, sel, drafted, phases, started)
		return o.failReport(report, errD, cb)
	}

	phaseB, errB := o.runPhase(ctx, "safe_impact_analysis", "drafted", drafted, true, phaseA.Duration+discardedPhase.Duration, budget, tracker, cfg)
	phases = append(phases, phaseB)
	if errB != nil {
		report := o.assembleReport("safe_impact_analysis", cfg, sel, drafted, phases, started)
		return o.failReport(report, errB, cb)
	}

	report := o.assembleReport("safe_impact_analysis", cfg, sel, drafted, phases, started)

	jobs := append(append([]testengine.InstrumentedJob{}, phaseA.InstrumentedJobs...), phaseB.InstrumentedJobs...)
	list, cerr := coverage.Consolidate(o.dm, jobs, cfg.Policies.FailedTestCoverage)
	if cerr != nil {
		return o.runtimeFailure(report, "ingest", cerr, cfg, cb)
	}
	report.MapCoverage = list
	if !list.IsEmpty() {
		if perr := o.persist(list); perr != nil {
			return o.runtimeFailure(report, "persist", perr, cfg, cb)
		}
	}

	if cb.OnEnd != nil {
		cb.OnEnd(report)
	}
	return report, nil
}
