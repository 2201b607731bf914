// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package tiaconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_CreatesDefaultOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tia.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestLoad_ReadsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tia.yaml")
	require.NoError(t, os.WriteFile(path, []byte("suite: nightly\nworkspace_root: /var/tia\n"), 0640))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "nightly", cfg.Suite)
	assert.Equal(t, "/var/tia", cfg.WorkspaceRoot)
}

func TestSparTiaPath_JoinsWorkspaceActiveSuiteFile(t *testing.T) {
	cfg := Config{WorkspaceRoot: "/ws", Suite: "main", SparTiaFile: "spar_tia.json"}
	assert.Equal(t, filepath.Join("/ws", "active", "main", "spar_tia.json"), cfg.SparTiaPath())
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	expanded, err := expandHome("~/tia.yaml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "tia.yaml"), expanded)
}
