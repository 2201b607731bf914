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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RejectsEmpty(t *testing.T) {
	_, err := New[TestTarget](nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyTargetList)
}

func TestNew_RejectsDuplicate(t *testing.T) {
	targets := []TestTarget{
		NewTestTarget("T1", SuiteMain, LauncherMeta{}, nil),
		NewTestTarget("T1", SuiteMain, LauncherMeta{}, nil),
	}

	_, err := New(targets)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateTarget)

	var dupErr *DuplicateError
	require.True(t, errors.As(err, &dupErr))
	assert.Equal(t, "T1", dupErr.Name)
}

func TestNew_SortsAndRoundTripsLookup(t *testing.T) {
	targets := []TestTarget{
		NewTestTarget("T3", SuiteMain, LauncherMeta{}, nil),
		NewTestTarget("T1", SuiteMain, LauncherMeta{}, nil),
		NewTestTarget("T2", SuiteMain, LauncherMeta{}, nil),
	}

	list, err := New(targets)
	require.NoError(t, err)
	require.Equal(t, 3, list.Len())
	assert.Equal(t, []string{"T1", "T2", "T3"}, list.Names())

	for _, name := range []string{"T1", "T2", "T3"} {
		got := list.Get(name)
		require.NotNil(t, got)
		assert.Equal(t, name, got.Name())
	}
}

func TestGet_UnknownReturnsNil(t *testing.T) {
	list, err := New([]TestTarget{NewTestTarget("T1", SuiteMain, LauncherMeta{}, nil)})
	require.NoError(t, err)

	assert.Nil(t, list.Get("does-not-exist"))
	assert.False(t, list.Has("does-not-exist"))
}

func TestGetOrThrow_Unknown(t *testing.T) {
	list, err := New([]TestTarget{NewTestTarget("T1", SuiteMain, LauncherMeta{}, nil)})
	require.NoError(t, err)

	_, err = list.GetOrThrow("ghost")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTargetNotFound)

	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "ghost", nf.Name)
}

func TestList_PointersStableAfterConstruction(t *testing.T) {
	list, err := New([]TestTarget{
		NewTestTarget("T1", SuiteMain, LauncherMeta{}, nil),
		NewTestTarget("T2", SuiteMain, LauncherMeta{}, nil),
	})
	require.NoError(t, err)

	p1 := list.Get("T1")
	p2 := list.Get("T1")
	assert.Same(t, p1, p2)
}
