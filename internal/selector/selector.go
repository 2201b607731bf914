// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package selector implements the Test Selector & Prioritizer (C5): it
// turns a resolved change list into an ordered, deduplicated set of
// test targets to run, with the full test list's complement forming the
// discarded set.
package selector

import (
	"context"
	"sort"

	"github.com/AleutianAI/tia/internal/changelist"
	"github.com/AleutianAI/tia/internal/depmap"
	"github.com/AleutianAI/tia/internal/policy"
)

// Selection is the output of Select: the chosen test targets, ordered
// per policy, and the complement against the full test list.
type Selection struct {
	Selected  []string
	Discarded []string
}

// Select computes the Selection for a resolved change list.
//
// A test target is selected if either (a) the change list itself
// touches that target directly (e.g. the test's own source changed) or
// (b) the dependency map records it as covering one of the changed
// sources. Ordering follows prio; DependencyLocality's tie-breaking is
// pinned down by distanceOrder below.
func Select(ctx context.Context, allTests []string, resolved changelist.DependencyList, dm *depmap.Map, prio policy.TestPrioritization) Selection {
	allTestSet := make(map[string]struct{}, len(allTests))
	for _, name := range allTests {
		allTestSet[name] = struct{}{}
	}

	selectedSet := make(map[string]struct{})

	for _, name := range resolved.TargetNames() {
		if _, isTest := allTestSet[name]; isTest {
			selectedSet[name] = struct{}{}
		}
	}

	changedSources := resolved.ChangedSources()
	for _, source := range changedSources {
		for _, name := range dm.CoveringTests(source) {
			if _, isTest := allTestSet[name]; isTest {
				selectedSet[name] = struct{}{}
			}
		}
	}

	selected := make([]string, 0, len(selectedSet))
	for name := range selectedSet {
		selected = append(selected, name)
	}

	switch prio {
	case policy.PrioritizationDependencyLocality:
		selected = orderByDependencyLocality(ctx, selected, changedSources, dm)
	default:
		sort.Strings(selected)
	}

	discarded := make([]string, 0, len(allTests)-len(selected))
	for _, name := range allTests {
		if _, ok := selectedSet[name]; !ok {
			discarded = append(discarded, name)
		}
	}

	return Selection{Selected: selected, Discarded: discarded}
}

// orderByDependencyLocality orders selected tests by ascending BFS
// distance to the changed sources (see SPEC_FULL.md §4.5), breaking
// ties by descending count of distinct changed sources covered, and
// finally by lexicographic name.
func orderByDependencyLocality(ctx context.Context, selected, changedSources []string, dm *depmap.Map) []string {
	distances := dm.TestDistances(ctx, changedSources, 0)

	changedSet := make(map[string]struct{}, len(changedSources))
	for _, s := range changedSources {
		changedSet[s] = struct{}{}
	}

	overlap := func(name string) int {
		count := 0
		for _, s := range dm.CoveredSources(name) {
			if _, ok := changedSet[s]; ok {
				count++
			}
		}
		return count
	}

	out := make([]string, len(selected))
	copy(out, selected)

	sort.Slice(out, func(i, j int) bool {
		di, dj := distanceOrDefault(distances, out[i]), distanceOrDefault(distances, out[j])
		if di != dj {
			return di < dj
		}
		oi, oj := overlap(out[i]), overlap(out[j])
		if oi != oj {
			return oi > oj
		}
		return out[i] < out[j]
	})

	return out
}

// distanceOrDefault returns a test's BFS distance, or a sentinel larger
// than any real distance for tests the BFS never reached (e.g. selected
// purely because the test's own source changed, with no map coverage
// yet) so they sort after distance-scored tests but remain stable
// relative to each other via the name tie-break.
func distanceOrDefault(distances map[string]int, name string) int {
	if d, ok := distances[name]; ok {
		return d
	}
	return 1 << 30
}
