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
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/tia/internal/depmap"
)

func sampleList() depmap.SourceCoveringTestsList {
	return depmap.SourceCoveringTestsList{Entries: []depmap.SourceCoveringTests{
		{SourcePath: "b.cpp", Tests: []string{"T2", "T1"}},
		{SourcePath: "a.cpp", Tests: []string{"T1"}},
	}}
}

func TestRoundTrip_DeserializeOfSerializeIsSorted(t *testing.T) {
	data, err := Serialize(sampleList())
	require.NoError(t, err)

	out, err := Deserialize(data)
	require.NoError(t, err)

	assert.Equal(t, sampleList().Sorted(), out)
}

func TestSerialize_IsDeterministic(t *testing.T) {
	a, err := Serialize(sampleList())
	require.NoError(t, err)
	b, err := Serialize(sampleList())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestDeserialize_RejectsUnknownField(t *testing.T) {
	payload := []byte(`{"format_version":"1","entries":[],"bogus_field":true}`)
	_, err := Deserialize(payload)
	require.Error(t, err)

	var fe *FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "bogus_field", fe.Field)
	assert.True(t, errors.Is(err, ErrUnknownField))
}

func TestDeserialize_RejectsVersionMismatch(t *testing.T) {
	payload := []byte(`{"format_version":"99","entries":[]}`)
	_, err := Deserialize(payload)
	require.Error(t, err)

	var ve *VersionError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "1", ve.Expected)
	assert.Equal(t, "99", ve.Got)
	assert.True(t, errors.Is(err, ErrVersionMismatch))
}

func TestWriteFileReadFile_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "active", "main", "spar_tia.json")

	require.NoError(t, WriteFile(path, sampleList()))

	out, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, sampleList().Sorted(), out)
}

func TestReadFile_MissingFileReturnsOSError(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}
