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
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const descriptorFixture = `{
  "production": [
    {"name": "libcore", "sources": ["src/core/a.cpp", "src/core/b.cpp"]}
  ],
  "tests": [
    {"name": "core_test", "suite": "main", "sources": ["test/core_test.cpp"], "command": "./core_test", "timeout_hint": "30s"},
    {"name": "periodic_test", "suite": "periodic", "sources": ["test/periodic_test.cpp"], "command": "./periodic_test"}
  ]
}`

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "targets.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0640))
	return path
}

func TestLoadDescriptors_BuildsBothLists(t *testing.T) {
	path := writeFixture(t, descriptorFixture)

	prod, tests, err := LoadDescriptors(path)
	require.NoError(t, err)

	require.Equal(t, 1, prod.Len())
	lib := prod.Get("libcore")
	require.NotNil(t, lib)
	assert.Equal(t, []string{"src/core/a.cpp", "src/core/b.cpp"}, lib.Sources())

	require.Equal(t, 2, tests.Len())
	core := tests.Get("core_test")
	require.NotNil(t, core)
	assert.Equal(t, SuiteMain, core.Suite())
	assert.Equal(t, "./core_test", core.Launcher().Command)
	assert.Equal(t, 30*time.Second, core.Launcher().TimeoutHint)

	periodic := tests.Get("periodic_test")
	require.NotNil(t, periodic)
	assert.Equal(t, SuitePeriodic, periodic.Suite())
	assert.Zero(t, periodic.Launcher().TimeoutHint)
}

func TestLoadDescriptors_MissingFileReturnsError(t *testing.T) {
	_, _, err := LoadDescriptors(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestLoadDescriptors_InvalidTimeoutHintReturnsError(t *testing.T) {
	path := writeFixture(t, `{
  "production": [{"name": "libcore", "sources": ["a.cpp"]}],
  "tests": [{"name": "t1", "suite": "main", "sources": ["t1.cpp"], "timeout_hint": "not-a-duration"}]
}`)

	_, _, err := LoadDescriptors(path)
	assert.Error(t, err)
}
