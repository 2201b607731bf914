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
	"time"

	"github.com/AleutianAI/tia/internal/depmap"
	"github.com/AleutianAI/tia/internal/policy"
	"github.com/AleutianAI/tia/internal/selector"
	"github.com/AleutianAI/tia/internal/testengine"
)

// PhaseReport is one phase's contribution to the sequence report.
type PhaseReport struct {
	Name             string                       `json:"name"`
	Result           testengine.SequenceResult    `json:"result"`
	RelativeStart    time.Duration                `json:"relative_start"`
	Duration         time.Duration                `json:"duration"`
	RegularJobs      []testengine.RegularJob      `json:"regular_jobs,omitempty"`
	InstrumentedJobs []testengine.InstrumentedJob `json:"instrumented_jobs,omitempty"`
}

// Report is the one structured record a sequence produces: policy
// snapshot, timings, selection views, and per-phase run data (§6).
type Report struct {
	RunID          string                 `json:"run_id"`
	Mode           string                 `json:"mode"`
	Suite          string                 `json:"suite"`
	MaxConcurrency int                    `json:"max_concurrency"`
	TargetTimeout  time.Duration          `json:"target_timeout,omitempty"`
	GlobalTimeout  time.Duration          `json:"global_timeout,omitempty"`
	Policies       policy.State           `json:"policies"`
	Selection      selector.Selection     `json:"selection"`
	Drafted        []string               `json:"drafted,omitempty"`
	Phases         []PhaseReport          `json:"phases"`
	Result         testengine.SequenceResult `json:"result"`
	StartedAt      time.Time              `json:"started_at"`
	TotalDuration  time.Duration          `json:"total_duration"`
	MapCoverage    depmap.SourceCoveringTestsList `json:"map_coverage,omitempty"`
	Failed         bool                   `json:"failed"`
	FailureReason  string                 `json:"failure_reason,omitempty"`
}

// overallResult folds a list of phase results into one sequence-level
// result: any Timeout dominates, then FailedToExecute, then
// TestFailures, else AllTestsPass. An empty phase list is NoTestsRun.
func overallResult(phases []PhaseReport) testengine.SequenceResult {
	if len(phases) == 0 {
		return testengine.SequenceNoTestsRun
	}
	for _, p := range phases {
		if p.Result == testengine.SequenceTimeout {
			return testengine.SequenceTimeout
		}
	}
	for _, p := range phases {
		if p.Result == testengine.SequenceFailedToExecute {
			return testengine.SequenceFailedToExecute
		}
	}
	for _, p := range phases {
		if p.Result == testengine.SequenceTestFailures {
			return testengine.SequenceTestFailures
		}
	}
	return testengine.SequenceAllTestsPass
}
