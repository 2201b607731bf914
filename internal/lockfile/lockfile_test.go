// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package lockfile

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireRelease_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "active", "main", "lock")
	l := New(path)
	require.NoError(t, l.Acquire())
	require.NoError(t, l.Release())

	// Released lock's file is removed; a fresh acquire must succeed.
	l2 := New(path)
	require.NoError(t, l2.Acquire())
	require.NoError(t, l2.Release())
}

func TestAcquire_SecondHolderFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lock")
	first := New(path)
	require.NoError(t, first.Acquire())
	defer first.Release()

	second := New(path)
	err := second.Acquire()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrHeld))
}

func TestIsStale_FreshLockIsNotStale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lock")
	l := New(path)
	require.NoError(t, l.Acquire())
	defer l.Release()

	assert.False(t, IsStale(path))
}

func TestIsStale_MissingFileIsNotStale(t *testing.T) {
	assert.False(t, IsStale(filepath.Join(t.TempDir(), "missing")))
}
