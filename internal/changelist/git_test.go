// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package changelist

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseNameStatus(t *testing.T) {
	out := []byte("A\tnew.cpp\nM\tchanged.cpp\nD\tgone.cpp\nR100\told.cpp\trenamed.cpp\n")

	l := parseNameStatus(out)
	assert.Contains(t, l.Created, "new.cpp")
	assert.Contains(t, l.Updated, "changed.cpp")
	assert.Contains(t, l.Deleted, "gone.cpp")
	assert.Contains(t, l.Deleted, "old.cpp")
	assert.Contains(t, l.Created, "renamed.cpp")
}

func TestParseUnifiedDiff_CreatedUpdatedDeleted(t *testing.T) {
	patch := []byte(`diff --git a/new.go b/new.go
new file mode 100644
index 0000000..e69de29
--- /dev/null
+++ b/new.go
@@ -0,0 +1 @@
+package new
diff --git a/old.go b/old.go
index e69de29..0000000 100644
--- a/old.go
+++ /dev/null
@@ -1 +0,0 @@
-package old
diff --git a/changed.go b/changed.go
index e69de29..abc1234 100644
--- a/changed.go
+++ b/changed.go
@@ -1 +1 @@
-package a
+package b
`)

	l, err := ParseUnifiedDiff(patch)
	assert.NoError(t, err)
	assert.Contains(t, l.Created, "new.go")
	assert.Contains(t, l.Deleted, "old.go")
	assert.Contains(t, l.Updated, "changed.go")
}

func TestParseYAML_RoundTrip(t *testing.T) {
	l := List{Updated: []string{"a.cpp"}, Created: []string{"b.cpp"}}

	data, err := MarshalYAML(l)
	assert.NoError(t, err)

	parsed, err := ParseYAML(data)
	assert.NoError(t, err)
	assert.Equal(t, l.Updated, parsed.Updated)
	assert.Equal(t, l.Created, parsed.Created)
}
