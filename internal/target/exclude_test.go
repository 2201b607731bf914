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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingWarner struct {
	warnings []string
}

func (c *capturingWarner) Warnf(format string, args ...any) {
	c.warnings = append(c.warnings, format)
}

func TestExcludeList_FullExclusion(t *testing.T) {
	list, err := New([]TestTarget{
		NewTestTarget("T1", SuiteMain, LauncherMeta{}, nil),
		NewTestTarget("T2", SuiteMain, LauncherMeta{}, nil),
	})
	require.NoError(t, err)

	el := NewExcludeList(list, []string{"T1"}, nil, nil)
	assert.True(t, el.IsFullyExcluded("T1"))
	assert.False(t, el.IsFullyExcluded("T2"))
	assert.False(t, el.IsPartiallyExcluded("T1"))
}

func TestExcludeList_PartialExclusionIsNotFull(t *testing.T) {
	list, err := New([]TestTarget{NewTestTarget("T1", SuiteMain, LauncherMeta{}, nil)})
	require.NoError(t, err)

	el := NewExcludeList(list, nil, map[string][]string{"T1": {"SuiteA.CaseB"}}, nil)
	assert.False(t, el.IsFullyExcluded("T1"))
	assert.True(t, el.IsPartiallyExcluded("T1"))
	assert.Equal(t, []string{"SuiteA.CaseB"}, el.CaseFilter("T1"))
}

func TestExcludeList_EmptyFilterSetIsFullExclusion(t *testing.T) {
	list, err := New([]TestTarget{NewTestTarget("T1", SuiteMain, LauncherMeta{}, nil)})
	require.NoError(t, err)

	el := NewExcludeList(list, nil, map[string][]string{"T1": {}}, nil)
	assert.True(t, el.IsFullyExcluded("T1"))
}

func TestExcludeList_UnknownNameWarnsAndIsIgnored(t *testing.T) {
	list, err := New([]TestTarget{NewTestTarget("T1", SuiteMain, LauncherMeta{}, nil)})
	require.NoError(t, err)

	warner := &capturingWarner{}
	el := NewExcludeList(list, []string{"Ghost"}, nil, warner)

	assert.False(t, el.IsFullyExcluded("Ghost"))
	assert.Len(t, warner.warnings, 1)
}
