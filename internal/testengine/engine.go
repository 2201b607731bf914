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
	"time"

	"github.com/AleutianAI/tia/internal/policy"
)

// JobCallback is invoked exactly once per completed job, in
// completion order, from a single logical thread of control (§5 of the
// spec). Implementations must not block significantly; the engine
// invokes it synchronously between jobs.
type JobCallback func(completed, total int, target string, result TestRunResult)

// RunOptions carries the policy and timeout configuration common to
// both RegularRun and InstrumentedRun.
type RunOptions struct {
	ExecutionFailure policy.ExecutionFailure
	FailedCoverage   policy.FailedTestCoverage
	OutputCapture    policy.OutputCapture
	TargetTimeout    time.Duration // zero means no per-target timeout
	GlobalTimeout    time.Duration // zero means no budget for this call
	MaxConcurrency   int           // <=0 means host logical CPU count
	Callback         JobCallback
}

// Engine is the contract the orchestrator (C8) consumes. A real
// implementation forks test binaries and is out of scope here; this
// runtime ships Scheduler (a concurrency-bounded reference
// implementation that still needs a per-target Runner) and InMemoryEngine
// (a deterministic test double) so C8 is independently testable.
type Engine interface {
	// RegularRun executes targets without coverage instrumentation.
	RegularRun(ctx context.Context, targets []string, opts RunOptions) (SequenceResult, []RegularJob, error)

	// InstrumentedRun executes targets with coverage instrumentation.
	InstrumentedRun(ctx context.Context, targets []string, opts RunOptions) (SequenceResult, []InstrumentedJob, error)
}
