// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package testengine

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Canned is the scripted outcome for one target in an InMemoryEngine
// run: a simulated duration (charged against the virtual clock used to
// honor GlobalTimeout deterministically, never a real sleep) plus the
// result and, for instrumented runs, a coverage artifact.
type Canned struct {
	Duration time.Duration
	Result   TestRunResult
	Coverage *TestCoverage
}

// InMemoryEngine is a deterministic Engine test double: it never forks
// a process. Each target's outcome is scripted via Results; targets not
// present default to AllTestsPass with no coverage (Regular) or a
// RuntimeException-worthy "no coverage" outcome (Instrumented callers
// must script coverage explicitly to avoid tripping C6's contract
// check).
//
// Virtual time lets scenario 5 (global timeout) run instantly: within a
// single RegularRun/InstrumentedRun call, Results durations are summed
// against that call's GlobalTimeout budget rather than actually
// elapsing. The sequence orchestrator (internal/sequence) is what
// threads the *remaining* budget from phase to phase (§4.8); this
// engine only needs to honor whatever budget it is handed for the one
// call in front of it.
type InMemoryEngine struct {
	Results map[string]Canned
}

// NewInMemoryEngine builds an InMemoryEngine with the given scripted
// per-target outcomes.
func NewInMemoryEngine(results map[string]Canned) *InMemoryEngine {
	return &InMemoryEngine{Results: results}
}

func (e *InMemoryEngine) canned(target string) Canned {
	if c, ok := e.Results[target]; ok {
		return c
	}
	return Canned{Result: AllTestsPass}
}

// virtualClock tracks elapsed simulated time for a single Regular/
// InstrumentedRun call.
type virtualClock struct {
	mu      sync.Mutex
	elapsed time.Duration
}

// charge advances the clock by d and reports whether doing so exceeds
// budget (budget<=0 means unbounded).
func (c *virtualClock) charge(d, budget time.Duration) (over bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.elapsed += d
	return budget > 0 && c.elapsed > budget
}

// RegularRun implements Engine.
func (e *InMemoryEngine) RegularRun(ctx context.Context, targets []string, opts RunOptions) (SequenceResult, []RegularJob, error) {
	jobs := make([]RegularJob, len(targets))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(int(maxConcurrency(opts.MaxConcurrency)))

	clock := &virtualClock{}
	timedOut := false
	var mu sync.Mutex

	for i, target := range targets {
		i, target := i, target
		g.Go(func() error {
			c := e.canned(target)
			over := clock.charge(c.Duration, opts.GlobalTimeout)

			mu.Lock()
			defer mu.Unlock()
			if over {
				timedOut = true
				jobs[i] = RegularJob{JobID: uuid.NewString(), Target: target, Result: Timeout, Duration: c.Duration}
				return nil
			}
			jobs[i] = RegularJob{JobID: uuid.NewString(), Target: target, Result: c.Result, Duration: c.Duration}
			return nil
		})
	}
	_ = g.Wait()

	completed := 0
	for _, job := range jobs {
		completed++
		if opts.Callback != nil {
			opts.Callback(completed, len(targets), job.Target, job.Result)
		}
	}

	if timedOut {
		return SequenceTimeout, jobs, nil
	}
	return summarizeRegular(ctx, jobs), jobs, nil
}

// InstrumentedRun implements Engine.
func (e *InMemoryEngine) InstrumentedRun(ctx context.Context, targets []string, opts RunOptions) (SequenceResult, []InstrumentedJob, error) {
	jobs := make([]InstrumentedJob, len(targets))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(int(maxConcurrency(opts.MaxConcurrency)))

	clock := &virtualClock{}
	timedOut := false
	var mu sync.Mutex

	for i, target := range targets {
		i, target := i, target
		g.Go(func() error {
			c := e.canned(target)
			over := clock.charge(c.Duration, opts.GlobalTimeout)

			mu.Lock()
			defer mu.Unlock()
			if over {
				timedOut = true
				jobs[i] = InstrumentedJob{RegularJob: RegularJob{JobID: uuid.NewString(), Target: target, Result: Timeout, Duration: c.Duration}}
				return nil
			}
			jobs[i] = InstrumentedJob{
				RegularJob: RegularJob{JobID: uuid.NewString(), Target: target, Result: c.Result, Duration: c.Duration},
				Coverage:   c.Coverage,
			}
			return nil
		})
	}
	_ = g.Wait()

	completed := 0
	regular := make([]RegularJob, len(jobs))
	for i, job := range jobs {
		completed++
		regular[i] = job.RegularJob
		if opts.Callback != nil {
			opts.Callback(completed, len(targets), job.Target, job.Result)
		}
	}

	if timedOut {
		return SequenceTimeout, jobs, nil
	}
	return summarizeRegular(ctx, regular), jobs, nil
}
