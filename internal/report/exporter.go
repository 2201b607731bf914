// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package report writes a finished sequence.Report to a destination:
// local disk by default, or a GCS bucket for shared CI artifact
// retention.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/AleutianAI/tia/internal/sequence"
)

// Exporter persists a finished Report somewhere durable.
type Exporter interface {
	Export(ctx context.Context, r sequence.Report) error
}

// FileExporter writes the report as indented JSON under dir, named by
// its RunID.
type FileExporter struct {
	Dir string
}

// NewFileExporter builds a FileExporter rooted at dir.
func NewFileExporter(dir string) *FileExporter {
	return &FileExporter{Dir: dir}
}

// Export implements Exporter.
func (f *FileExporter) Export(_ context.Context, r sequence.Report) error {
	if err := os.MkdirAll(f.Dir, 0750); err != nil {
		return fmt.Errorf("report: mkdir %s: %w", f.Dir, err)
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("report: marshal: %w", err)
	}

	path := filepath.Join(f.Dir, r.RunID+".json")
	if err := os.WriteFile(path, data, 0640); err != nil {
		return fmt.Errorf("report: write %s: %w", path, err)
	}
	return nil
}
