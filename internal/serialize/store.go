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
	"path/filepath"

	"github.com/AleutianAI/tia/internal/depmap"
)

// WriteFile serializes list and writes it to path using a
// temp-file-then-rename swap: the SPAR-TIA file is never observed
// half-written, even if the process dies mid-write.
func WriteFile(path string, list depmap.SourceCoveringTestsList) error {
	data, err := Serialize(list)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("%w: mkdir %s: %v", ErrAtomicSwapFailed, dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %v", ErrAtomicSwapFailed, err)
	}
	tmpPath := tmp.Name()
	cleanup := true
	defer func() {
		if cleanup {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: write temp file: %v", ErrAtomicSwapFailed, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close temp file: %v", ErrAtomicSwapFailed, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("%w: rename: %v", ErrAtomicSwapFailed, err)
	}
	cleanup = false
	return nil
}

// ReadFile loads and deserializes the SPAR-TIA file at path. A missing
// file is returned as the os error (os.IsNotExist reports true);
// FileStore.Read is the layer that turns it into an empty list.
func ReadFile(path string) (depmap.SourceCoveringTestsList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return depmap.SourceCoveringTestsList{}, err
	}
	return Deserialize(data)
}
