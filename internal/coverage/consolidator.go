// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package coverage implements the Coverage Consolidator (C6): it turns
// a batch of completed instrumented jobs into an updated dependency
// map under a failure-aware ingestion policy, and reads lcov/Cobertura
// artifacts into the list of hit source paths a job's coverage carries.
package coverage

import (
	"github.com/AleutianAI/tia/internal/depmap"
	"github.com/AleutianAI/tia/internal/policy"
	"github.com/AleutianAI/tia/internal/testengine"
)

// Consolidate applies jobs to dm in job order, following the five-step
// algorithm:
//
//  1. Always remove the target's existing coverage first, regardless of
//     outcome.
//  2. TestFailures under the Discard policy: skip ingestion.
//  3. AllTestsPass with no coverage artifact: a RuntimeException-class
//     contract violation, returned as *ContractViolationError.
//  4. TestFailures with no artifact (crash-without-artifact): skip.
//  5. Otherwise ingest every covered source, filtered by the dependency
//     map's own repo-root and target-list checks.
//
// It returns the map's resulting exported state. An empty result means
// no job contributed new coverage; the caller (per §4.6) should treat
// that as "no data" rather than overwrite a prior good persisted map.
func Consolidate(dm *depmap.Map, jobs []testengine.InstrumentedJob, failedCoverage policy.FailedTestCoverage) (depmap.SourceCoveringTestsList, error) {
	for _, job := range jobs {
		dm.RemoveTestTargetFromSourceCoverage(job.Target)

		switch {
		case job.Result == testengine.TestFailures && failedCoverage == policy.FailedTestCoverageDiscard:
			continue
		case job.Result == testengine.AllTestsPass && !job.HasCoverage():
			return depmap.SourceCoveringTestsList{}, &ContractViolationError{Target: job.Target}
		case !job.HasCoverage():
			continue
		}

		for _, src := range job.Coverage.SourcePaths {
			dm.InsertSourceCoverage(src, job.Target)
		}
	}

	return dm.ExportSourceCoverage(), nil
}
