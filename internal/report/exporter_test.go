// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package report

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/tia/internal/sequence"
)

func TestFileExporter_WritesReportNamedByRunID(t *testing.T) {
	dir := t.TempDir()
	exp := NewFileExporter(dir)

	r := sequence.Report{RunID: "abc-123", Mode: "regular", Suite: "main"}
	require.NoError(t, exp.Export(context.Background(), r))

	path := filepath.Join(dir, "abc-123.json")
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got sequence.Report
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "abc-123", got.RunID)
	assert.Equal(t, "regular", got.Mode)
}

func TestFileExporter_CreatesDirIfMissing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "reports")
	exp := NewFileExporter(dir)

	r := sequence.Report{RunID: "run-1"}
	require.NoError(t, exp.Export(context.Background(), r))

	_, err := os.Stat(filepath.Join(dir, "run-1.json"))
	assert.NoError(t, err)
}
