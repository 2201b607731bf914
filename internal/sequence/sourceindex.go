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

import "github.com/AleutianAI/tia/internal/target"

// SourceIndex implements changelist.SourceOwnership over the two target
// lists the orchestrator already holds: a changed path owns either a
// production target that declares it, a test target that declares it as
// one of its own sources, or both.
type SourceIndex struct {
	owners map[string][]string
}

// NewSourceIndex indexes every declared source path across prod and
// tests to the name(s) of the target declaring it. Either list may be
// nil.
func NewSourceIndex(prod *target.List[target.ProductionTarget], tests *target.List[target.TestTarget]) *SourceIndex {
	owners := make(map[string][]string)

	if prod != nil {
		for _, p := range prod.Targets() {
			for _, src := range p.Sources() {
				owners[src] = append(owners[src], p.Name())
			}
		}
	}
	if tests != nil {
		for _, t := range tests.Targets() {
			for _, src := range t.Sources() {
				owners[src] = append(owners[src], t.Name())
			}
		}
	}

	return &SourceIndex{owners: owners}
}

// OwningTargets implements changelist.SourceOwnership.
func (s *SourceIndex) OwningTargets(path string) []string {
	return s.owners[path]
}
