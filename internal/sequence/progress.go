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
	"sync"
	"time"

	"github.com/AleutianAI/tia/internal/testengine"
)

// progressTracker is the single callback handler shared across every
// phase of a sequence (§4.8, §9): it owns the monotonically growing
// (completed, total) counter so the client sees one continuous count
// regardless of which phase a job belongs to. Only the orchestrator's
// own goroutine driving the current phase writes to it, matching §5's
// single-writer scheduling model; the mutex exists because a phase's
// Engine may deliver callbacks from a pool of worker goroutines.
type progressTracker struct {
	mu        sync.Mutex
	completed int
	total     int
	onJob     func(completed, total int, target string, result testengine.TestRunResult)
}

func newProgressTracker(total int, onJob func(completed, total int, target string, result testengine.TestRunResult)) *progressTracker {
	return &progressTracker{total: total, onJob: onJob}
}

// callback adapts the tracker into the testengine.JobCallback shape,
// discarding the phase-local (completed, total) the Engine passes in
// favor of the sequence-wide counters.
func (p *progressTracker) callback() testengine.JobCallback {
	return func(_, _ int, target string, result testengine.TestRunResult) {
		p.mu.Lock()
		p.completed++
		completed := p.completed
		total := p.total
		p.mu.Unlock()

		if p.onJob != nil {
			p.onJob(completed, total, target, result)
		}
	}
}

// timeoutBudget threads the remaining global timeout from phase to
// phase: remaining = total - sum_of_prior_phase_durations. Once that is
// used up, remaining reports one nanosecond rather than zero, so the
// next phase times out instead of running unbounded. total<=0 means
// "no budget", which timeoutBudget preserves by always reporting a zero
// remaining (RunOptions.GlobalTimeout's own "zero means unbounded"
// convention).
type timeoutBudget struct {
	total time.Duration
	spent time.Duration
}

func (b *timeoutBudget) remaining() time.Duration {
	if b.total <= 0 {
		return 0
	}
	r := b.total - b.spent
	if r <= 0 {
		return time.Nanosecond
	}
	return r
}

func (b *timeoutBudget) charge(d time.Duration) {
	b.spent += d
}
