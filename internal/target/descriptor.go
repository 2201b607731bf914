// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package target

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// descriptorFile is the on-disk JSON shape cmd/tia reads to build the
// two target lists. The build-system integration that would normally
// produce this file (reading CMake/Bazel/whatever graph) is out of
// scope (§1); this loader is the seam a real build's target exporter
// plugs into.
type descriptorFile struct {
	Production []productionDescriptor `json:"production"`
	Tests      []testDescriptor       `json:"tests"`
}

type productionDescriptor struct {
	Name    string   `json:"name"`
	Sources []string `json:"sources"`
}

type testDescriptor struct {
	Name        string   `json:"name"`
	Suite       string   `json:"suite"`
	Sources     []string `json:"sources"`
	Command     string   `json:"command"`
	WorkingDir  string   `json:"working_dir"`
	TimeoutHint string   `json:"timeout_hint"`
}

// LoadDescriptors reads path as a descriptorFile and builds both target
// lists from it.
func LoadDescriptors(path string) (*List[ProductionTarget], *List[TestTarget], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("target: read %s: %w", path, err)
	}

	var doc descriptorFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("target: parse %s: %w", path, err)
	}

	prodDescriptors := make([]ProductionTarget, len(doc.Production))
	for i, d := range doc.Production {
		prodDescriptors[i] = NewProductionTarget(d.Name, d.Sources)
	}
	prod, err := New(prodDescriptors)
	if err != nil {
		return nil, nil, fmt.Errorf("target: production targets: %w", err)
	}

	testDescriptors := make([]TestTarget, len(doc.Tests))
	for i, d := range doc.Tests {
		var hint time.Duration
		if d.TimeoutHint != "" {
			hint, err = time.ParseDuration(d.TimeoutHint)
			if err != nil {
				return nil, nil, fmt.Errorf("target: test %q: timeout_hint: %w", d.Name, err)
			}
		}
		testDescriptors[i] = NewTestTarget(d.Name, SuiteType(d.Suite), LauncherMeta{
			Command:     d.Command,
			WorkingDir:  d.WorkingDir,
			TimeoutHint: hint,
		}, d.Sources)
	}
	tests, err := New(testDescriptors)
	if err != nil {
		return nil, nil, fmt.Errorf("target: test targets: %w", err)
	}

	return prod, tests, nil
}
