// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package coverage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const lcovFixture = `SF:src/a.cpp
DA:1,1
DA:2,0
end_of_record
SF:src/b.cpp
DA:1,0
DA:2,0
end_of_record
`

func TestParseLcov_HitFileIncludedUnhitFileExcluded(t *testing.T) {
	out, err := parseLcov(strings.NewReader(lcovFixture))
	require.NoError(t, err)
	assert.Equal(t, []string{"src/a.cpp"}, out)
}

const coberturaFixture = `<?xml version="1.0"?>
<coverage>
  <packages>
    <package>
      <classes>
        <class filename="src/a.cpp">
          <lines>
            <line number="1" hits="1"/>
            <line number="2" hits="0"/>
          </lines>
        </class>
        <class filename="src/b.cpp">
          <lines>
            <line number="1" hits="0"/>
          </lines>
        </class>
      </classes>
    </package>
  </packages>
</coverage>
`

func TestParseCobertura_HitFileIncludedUnhitFileExcluded(t *testing.T) {
	out, err := parseCobertura(strings.NewReader(coberturaFixture))
	require.NoError(t, err)
	assert.Equal(t, []string{"src/a.cpp"}, out)
}
