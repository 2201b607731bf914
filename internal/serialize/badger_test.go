// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package serialize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/tia/internal/depmap"
)

func TestBadgerStore_WriteReadRoundTrip(t *testing.T) {
	store, err := OpenBadgerStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	list := depmap.SourceCoveringTestsList{Entries: []depmap.SourceCoveringTests{
		{SourcePath: "src/a.cpp", Tests: []string{"b_test", "a_test"}},
	}}
	require.NoError(t, store.Write(list))

	got, err := store.Read()
	require.NoError(t, err)
	require.Equal(t, 1, got.Len())
	assert.Equal(t, []string{"a_test", "b_test"}, got.Entries[0].Tests)
}

func TestBadgerStore_ReadBeforeWriteIsEmpty(t *testing.T) {
	store, err := OpenBadgerStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	got, err := store.Read()
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())
}

func TestBadgerStore_RemoveIsIdempotent(t *testing.T) {
	store, err := OpenBadgerStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	assert.NoError(t, store.Remove())
	require.NoError(t, store.Write(depmap.SourceCoveringTestsList{Entries: []depmap.SourceCoveringTests{
		{SourcePath: "a.cpp", Tests: []string{"t"}},
	}}))
	assert.NoError(t, store.Remove())
	assert.NoError(t, store.Remove())

	got, err := store.Read()
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())
}
