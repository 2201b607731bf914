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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildOwner(t *testing.T) *List[TestTarget] {
	t.Helper()
	l, err := New([]TestTarget{
		NewTestTarget("a_test", SuiteMain, LauncherMeta{}, nil),
		NewTestTarget("b_test", SuiteMain, LauncherMeta{}, nil),
	})
	require.NoError(t, err)
	return l
}

func TestLoadExcludeList_MissingPathReturnsEmpty(t *testing.T) {
	el, err := LoadExcludeList[TestTarget]("", buildOwner(t), nil)
	require.NoError(t, err)
	assert.False(t, el.IsFullyExcluded("a_test"))
}

func TestLoadExcludeList_ParsesFullAndPartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exclude.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
full:
  - a_test
partial:
  b_test:
    - SomeCase.Flaky
`), 0640))

	el, err := LoadExcludeList(path, buildOwner(t), nil)
	require.NoError(t, err)

	assert.True(t, el.IsFullyExcluded("a_test"))
	assert.True(t, el.IsPartiallyExcluded("b_test"))
	assert.Equal(t, []string{"SomeCase.Flaky"}, el.CaseFilter("b_test"))
}
