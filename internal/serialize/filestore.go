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
	"fmt"
	"os"

	"github.com/AleutianAI/tia/internal/depmap"
)

// Store is the persistence seam the Sequence Orchestrator writes the
// dependency map through. FileStore (the default, atomic-rename flat
// file) and BadgerStore (an embedded-KV alternative for suites with a
// very large map) both implement it.
type Store interface {
	Read() (depmap.SourceCoveringTestsList, error)
	Write(list depmap.SourceCoveringTestsList) error
	Remove() error
}

// FileStore adapts WriteFile/ReadFile's flat-file envelope to Store.
type FileStore struct {
	Path string
}

// NewFileStore builds a FileStore rooted at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Read implements Store. A missing file is reported as an empty list,
// not an error — the caller (Orchestrator.LoadPersisted) treats that as
// "no persisted data yet".
func (f *FileStore) Read() (depmap.SourceCoveringTestsList, error) {
	list, err := ReadFile(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return depmap.SourceCoveringTestsList{}, nil
		}
		return depmap.SourceCoveringTestsList{}, err
	}
	return list, nil
}

// Write implements Store.
func (f *FileStore) Write(list depmap.SourceCoveringTestsList) error {
	return WriteFile(f.Path, list)
}

// Remove implements Store.
func (f *FileStore) Remove() error {
	if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("serialize: remove %s: %w", f.Path, err)
	}
	return nil
}
