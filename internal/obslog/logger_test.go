// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package obslog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureExporter struct {
	records []Record
}

func (c *captureExporter) Export(r Record) {
	c.records = append(c.records, r)
}

func TestLogger_ExporterReceivesRecords(t *testing.T) {
	exp := &captureExporter{}
	log := New(Config{Service: "tia-test", Quiet: true, Exporter: exp})

	log.Info("sequence starting", "mode", "regular")

	require.Len(t, exp.records, 1)
	assert.Equal(t, "sequence starting", exp.records[0].Message)
	assert.Equal(t, LevelInfo, exp.records[0].Level)
	assert.Equal(t, "regular", exp.records[0].Attrs["mode"])
}

func TestLogger_WarnfSatisfiesWarnerInterfaces(t *testing.T) {
	exp := &captureExporter{}
	log := New(Config{Quiet: true, Exporter: exp})

	var warner interface{ Warnf(string, ...any) } = log
	warner.Warnf("dropping %s", "x")

	require.Len(t, exp.records, 1)
	assert.Equal(t, "dropping x", exp.records[0].Message)
}

func TestDefault_DoesNotPanic(t *testing.T) {
	log := Default()
	assert.NotPanics(t, func() {
		log.Debug("noop")
		log.Info("noop")
	})
}
