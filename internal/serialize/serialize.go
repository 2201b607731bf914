// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package serialize implements the Serializer (C7): a deterministic,
// explicitly versioned encoding of a SourceCoveringTestsList, plus the
// atomic-write persistence the "SPAR-TIA" file on disk needs.
package serialize

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/AleutianAI/tia/internal/depmap"
)

// FormatVersion is the only version this runtime writes or accepts.
const FormatVersion = "1"

type envelope struct {
	FormatVersion string                       `json:"format_version"`
	Entries       []depmap.SourceCoveringTests `json:"entries"`
}

// Serialize produces deterministic bytes for list: entries sorted by
// source path, each entry's test names sorted, fixed field order via
// struct marshaling (never a bare map).
func Serialize(list depmap.SourceCoveringTestsList) ([]byte, error) {
	sorted := list.Sorted()
	env := envelope{FormatVersion: FormatVersion, Entries: sorted.Entries}

	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serialize: marshal: %w", err)
	}
	return data, nil
}

// Deserialize parses bytes produced by Serialize. Unknown top-level
// fields or unknown fields on an entry are rejected rather than
// ignored; a version other than FormatVersion is rejected rather than
// silently coerced.
func Deserialize(data []byte) (depmap.SourceCoveringTestsList, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var env envelope
	if err := dec.Decode(&env); err != nil {
		return depmap.SourceCoveringTestsList{}, asFieldError(err)
	}

	if env.FormatVersion != FormatVersion {
		return depmap.SourceCoveringTestsList{}, &VersionError{Expected: FormatVersion, Got: env.FormatVersion}
	}

	list := depmap.SourceCoveringTestsList{Entries: env.Entries}
	return list.Sorted(), nil
}

// asFieldError turns encoding/json's unknown-field message into a
// *FieldError wrapping ErrUnknownField, since encoding/json exposes no
// typed error for DisallowUnknownFields rejections.
func asFieldError(err error) error {
	msg := err.Error()
	const marker = `json: unknown field "`
	idx := bytes.Index([]byte(msg), []byte(marker))
	if idx < 0 {
		return fmt.Errorf("serialize: decode: %w", err)
	}
	rest := msg[idx+len(marker):]
	end := bytes.IndexByte([]byte(rest), '"')
	if end < 0 {
		return fmt.Errorf("serialize: decode: %w", err)
	}
	return &FieldError{Field: rest[:end], Err: ErrUnknownField}
}
