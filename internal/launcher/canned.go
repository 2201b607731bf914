// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package launcher bridges the CLI to a testengine.Engine. The real
// child-process launcher and its coverage instrumentation driver are
// out of scope for this runtime (testengine's own package doc, §1): a
// production deployment supplies its own testengine.Runner or
// testengine.Engine. Until then, this package loads a scripted results
// file so `tia run` is independently exercisable in CI and in this
// repository's own tests.
package launcher

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/AleutianAI/tia/internal/testengine"
)

// cannedEntry is the on-disk JSON shape of one target's scripted result;
// the file maps each target name to one entry.
type cannedEntry struct {
	Duration     string   `json:"duration"`
	Result       string   `json:"result"`
	SourcePaths  []string `json:"source_paths,omitempty"`
}

// LoadCannedResults reads a scripted-results JSON file and builds the
// map testengine.NewInMemoryEngine expects. A target absent from the
// file defaults to AllTestsPass with no coverage, per InMemoryEngine's
// own contract.
func LoadCannedResults(path string) (map[string]testengine.Canned, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("launcher: read canned results %s: %w", path, err)
	}

	var raw map[string]cannedEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("launcher: parse canned results %s: %w", path, err)
	}

	out := make(map[string]testengine.Canned, len(raw))
	for name, e := range raw {
		var dur time.Duration
		if e.Duration != "" {
			dur, err = time.ParseDuration(e.Duration)
			if err != nil {
				return nil, fmt.Errorf("launcher: target %q: invalid duration %q: %w", name, e.Duration, err)
			}
		}

		result := testengine.TestRunResult(e.Result)
		if e.Result == "" {
			result = testengine.AllTestsPass
		}
		if !result.IsValid() {
			return nil, fmt.Errorf("launcher: target %q: invalid result %q", name, e.Result)
		}

		canned := testengine.Canned{Duration: dur, Result: result}
		if len(e.SourcePaths) > 0 {
			canned.Coverage = &testengine.TestCoverage{SourcePaths: e.SourcePaths}
		}
		out[name] = canned
	}
	return out, nil
}
