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

	badger "github.com/dgraph-io/badger/v4"

	"github.com/AleutianAI/tia/internal/depmap"
)

// sparKey is the single key a BadgerStore writes the SPAR-TIA envelope
// under. One store is opened per suite directory, so there is never a
// collision across suites.
var sparKey = []byte("spar_tia")

// BadgerStore is an alternative to WriteFile/ReadFile's flat-file
// envelope: the same Serialize/Deserialize encoding, persisted in an
// embedded Badger key-value store instead of a single JSON file. Suites
// with a very large map (many thousands of sources) get Badger's
// LSM-tree write path instead of rewriting the whole file on every
// persist.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadgerStore opens (creating if absent) a Badger database rooted
// at dir.
func OpenBadgerStore(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("serialize: open badger store %s: %w", dir, err)
	}
	return &BadgerStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// Write persists list using the same versioned envelope WriteFile
// writes to disk.
func (s *BadgerStore) Write(list depmap.SourceCoveringTestsList) error {
	data, err := Serialize(list)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(sparKey, data)
	})
}

// Read loads the persisted list, or a zero-value list and nil error if
// nothing has been written yet — the same "not yet seeded" contract
// ReadFile's callers rely on for a missing file.
func (s *BadgerStore) Read() (depmap.SourceCoveringTestsList, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(sparKey)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			data = append([]byte{}, val...)
			return nil
		})
	})
	if err != nil {
		return depmap.SourceCoveringTestsList{}, fmt.Errorf("serialize: badger read: %w", err)
	}
	if data == nil {
		return depmap.SourceCoveringTestsList{}, nil
	}
	return Deserialize(data)
}

// Remove deletes the persisted entry, mirroring os.Remove's tolerance
// of "already absent" for WriteFile/ReadFile callers that clear state
// between runs (Seeded mode, §12).
func (s *BadgerStore) Remove() error {
	return s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete(sparKey)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		return err
	})
}
