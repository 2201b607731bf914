// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package selector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AleutianAI/tia/internal/changelist"
	"github.com/AleutianAI/tia/internal/depmap"
	"github.com/AleutianAI/tia/internal/policy"
)

func scenario2Map() *depmap.Map {
	m := depmap.New("/repo", []string{"T1", "T2", "T3"}, nil)
	m.ReplaceSourceCoverage(depmap.SourceCoveringTestsList{Entries: []depmap.SourceCoveringTests{
		{SourcePath: "a.cpp", Tests: []string{"T1"}},
		{SourcePath: "b.cpp", Tests: []string{"T2"}},
		{SourcePath: "c.cpp", Tests: []string{"T2"}},
	}})
	return m
}

func TestScenario2_SelectedDiscardedDrafted(t *testing.T) {
	m := scenario2Map()
	resolved := changelist.DependencyList{Entries: []changelist.Dependency{
		{Path: "a.cpp", Kind: changelist.Updated, Targets: []string{"ProdA"}},
	}}

	sel := Select(context.Background(), []string{"T1", "T2", "T3"}, resolved, m, policy.PrioritizationNone)
	assert.Equal(t, []string{"T1"}, sel.Selected)
	assert.ElementsMatch(t, []string{"T2", "T3"}, sel.Discarded)

	drafted := m.GetNotCoveringTests()
	assert.Equal(t, []string{"T3"}, drafted)
}

func TestSelect_DirectTestTargetChangeIsSelected(t *testing.T) {
	m := scenario2Map()
	resolved := changelist.DependencyList{Entries: []changelist.Dependency{
		{Path: "t3_test.cpp", Kind: changelist.Updated, Targets: []string{"T3"}},
	}}

	sel := Select(context.Background(), []string{"T1", "T2", "T3"}, resolved, m, policy.PrioritizationNone)
	assert.Equal(t, []string{"T3"}, sel.Selected)
}

func TestSelect_DependencyLocalityOrdersByDistanceThenOverlapThenName(t *testing.T) {
	m := depmap.New("/repo", []string{"T1", "T2"}, nil)
	m.ReplaceSourceCoverage(depmap.SourceCoveringTestsList{Entries: []depmap.SourceCoveringTests{
		{SourcePath: "a.cpp", Tests: []string{"T2"}},
		{SourcePath: "b.cpp", Tests: []string{"T1", "T2"}},
	}})

	resolved := changelist.DependencyList{Entries: []changelist.Dependency{
		{Path: "a.cpp", Kind: changelist.Updated, Targets: []string{"ProdA"}},
		{Path: "b.cpp", Kind: changelist.Updated, Targets: []string{"ProdB"}},
	}}

	sel := Select(context.Background(), []string{"T1", "T2"}, resolved, m, policy.PrioritizationDependencyLocality)
	// T2 covers both changed sources directly (distance 1, overlap 2);
	// T1 covers one directly (distance 1, overlap 1). T2 wins the tie.
	assert.Equal(t, []string{"T2", "T1"}, sel.Selected)
}
