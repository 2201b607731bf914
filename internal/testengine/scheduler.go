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
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// Runner executes a single target. A production Runner forks the test
// binary and the (out of scope) instrumentation driver; Scheduler only
// handles fan-out, concurrency bounding, and completion-order callback
// delivery around whatever Runner is supplied.
type Runner interface {
	RunRegular(ctx context.Context, target string, timeout time.Duration) RegularJob
	RunInstrumented(ctx context.Context, target string, timeout time.Duration) InstrumentedJob
}

// Scheduler is the concurrency-bounded reference Engine implementation:
// it fans a target list out to at most opts.MaxConcurrency concurrent
// Runner calls (defaulting to runtime.NumCPU(), per §5) and delivers the
// per-job callback in completion order from a single goroutine.
type Scheduler struct {
	runner Runner
}

// NewScheduler builds a Scheduler over runner.
func NewScheduler(runner Runner) *Scheduler {
	return &Scheduler{runner: runner}
}

func maxConcurrency(requested int) int64 {
	if requested > 0 {
		return int64(requested)
	}
	return int64(runtime.NumCPU())
}

// RegularRun implements Engine.
func (s *Scheduler) RegularRun(ctx context.Context, targets []string, opts RunOptions) (SequenceResult, []RegularJob, error) {
	if len(targets) == 0 {
		return SequenceNoTestsRun, nil, nil
	}

	runCtx, cancel := withGlobalTimeout(ctx, opts.GlobalTimeout)
	defer cancel()

	sem := semaphore.NewWeighted(maxConcurrency(opts.MaxConcurrency))
	results := make(chan RegularJob, len(targets))
	var wg sync.WaitGroup

	for _, target := range targets {
		target := target
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := sem.Acquire(runCtx, 1); err != nil {
				results <- RegularJob{JobID: uuid.NewString(), Target: target, Result: NotRun}
				return
			}
			defer sem.Release(1)
			job := s.runner.RunRegular(runCtx, target, opts.TargetTimeout)
			if job.JobID == "" {
				job.JobID = uuid.NewString()
			}
			results <- job
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	jobs := make([]RegularJob, 0, len(targets))
	completed := 0
	for job := range results {
		completed++
		jobs = append(jobs, job)
		if opts.Callback != nil {
			opts.Callback(completed, len(targets), job.Target, job.Result)
		}
	}

	return summarizeRegular(runCtx, jobs), jobs, nil
}

// InstrumentedRun implements Engine.
func (s *Scheduler) InstrumentedRun(ctx context.Context, targets []string, opts RunOptions) (SequenceResult, []InstrumentedJob, error) {
	if len(targets) == 0 {
		return SequenceNoTestsRun, nil, nil
	}

	runCtx, cancel := withGlobalTimeout(ctx, opts.GlobalTimeout)
	defer cancel()

	sem := semaphore.NewWeighted(maxConcurrency(opts.MaxConcurrency))
	results := make(chan InstrumentedJob, len(targets))
	var wg sync.WaitGroup

	for _, target := range targets {
		target := target
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := sem.Acquire(runCtx, 1); err != nil {
				results <- InstrumentedJob{RegularJob: RegularJob{JobID: uuid.NewString(), Target: target, Result: NotRun}}
				return
			}
			defer sem.Release(1)
			job := s.runner.RunInstrumented(runCtx, target, opts.TargetTimeout)
			if job.JobID == "" {
				job.JobID = uuid.NewString()
			}
			results <- job
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	jobs := make([]InstrumentedJob, 0, len(targets))
	completed := 0
	for job := range results {
		completed++
		jobs = append(jobs, job)
		if opts.Callback != nil {
			opts.Callback(completed, len(targets), job.Target, job.Result)
		}
	}

	regular := make([]RegularJob, len(jobs))
	for i, j := range jobs {
		regular[i] = j.RegularJob
	}

	return summarizeRegular(runCtx, regular), jobs, nil
}

func withGlobalTimeout(ctx context.Context, budget time.Duration) (context.Context, context.CancelFunc) {
	if budget <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, budget)
}

func summarizeRegular(ctx context.Context, jobs []RegularJob) SequenceResult {
	if ctx.Err() != nil {
		return SequenceTimeout
	}
	for _, j := range jobs {
		switch j.Result {
		case Timeout:
			return SequenceTimeout
		case FailedToExecute:
			return SequenceFailedToExecute
		}
	}
	for _, j := range jobs {
		if j.Result == TestFailures {
			return SequenceTestFailures
		}
	}
	return SequenceAllTestsPass
}
