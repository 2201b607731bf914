// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package depmap implements the bidirectional source↔test-target
// coverage relation (the "dynamic dependency map") that drives test
// selection, plus its persisted-list export form.
package depmap

import "sort"

// SourceCoveringTests pairs a repo-relative source path with the
// non-empty set of test targets known to cover it.
type SourceCoveringTests struct {
	SourcePath string   `json:"source_path"`
	Tests      []string `json:"tests"`
}

// SourceCoveringTestsList is an ordered, source-path-keyed collection.
// Produced by ExportSourceCoverage and consumed by ReplaceSourceCoverage;
// Serialize/Deserialize (internal/serialize) round-trip it to/from bytes.
type SourceCoveringTestsList struct {
	Entries []SourceCoveringTests `json:"entries"`
}

// Sorted returns a copy of the list with entries ordered by source path
// and, within each entry, tests ordered lexicographically. Export is
// required to be deterministic; this is the single place that enforces
// it.
func (l SourceCoveringTestsList) Sorted() SourceCoveringTestsList {
	out := make([]SourceCoveringTests, len(l.Entries))
	for i, e := range l.Entries {
		tests := make([]string, len(e.Tests))
		copy(tests, e.Tests)
		sort.Strings(tests)
		out[i] = SourceCoveringTests{SourcePath: e.SourcePath, Tests: tests}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SourcePath < out[j].SourcePath
	})
	return SourceCoveringTestsList{Entries: out}
}

// Len returns the number of source entries.
func (l SourceCoveringTestsList) Len() int {
	return len(l.Entries)
}

// IsEmpty reports whether the list has no entries.
func (l SourceCoveringTestsList) IsEmpty() bool {
	return len(l.Entries) == 0
}
