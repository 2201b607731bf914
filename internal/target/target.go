// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package target holds the build/test target model and the sorted,
// duplicate-free List that owns them for the life of a run.
package target

import "time"

// SuiteType tags a TestTarget with the grouping it belongs to.
type SuiteType string

const (
	SuiteMain     SuiteType = "main"
	SuitePeriodic SuiteType = "periodic"
	SuiteSandbox  SuiteType = "sandbox"
)

// IsValid reports whether s is one of the declared suite types.
func (s SuiteType) IsValid() bool {
	switch s {
	case SuiteMain, SuitePeriodic, SuiteSandbox:
		return true
	default:
		return false
	}
}

// Target is the identity contract every List[T] element must satisfy.
// Name is the sort and lookup key; it must be non-empty and unique within
// a list.
type Target interface {
	Name() string
}

// LauncherMeta is the metadata a TestTarget carries for the (out of scope)
// test launcher: how to invoke it, where, and the timeout hint to apply.
type LauncherMeta struct {
	// Command is the launcher-specific invocation string, opaque to this
	// package.
	Command string

	// WorkingDir is the directory the launcher should run Command from.
	WorkingDir string

	// TimeoutHint is a per-target suggested timeout; zero means "use the
	// sequence's target timeout".
	TimeoutHint time.Duration
}

// ProductionTarget is a non-test build artifact: a source of "covered"
// files for the dependency map.
type ProductionTarget struct {
	name    string
	sources []string
}

// NewProductionTarget builds a ProductionTarget. sources are the
// repo-relative paths this target builds from.
func NewProductionTarget(name string, sources []string) ProductionTarget {
	return ProductionTarget{name: name, sources: sources}
}

// Name implements Target.
func (p ProductionTarget) Name() string { return p.name }

// Sources returns the repo-relative source paths owned by this target.
func (p ProductionTarget) Sources() []string { return p.sources }

// TestTarget is a build artifact that runs test cases and, when
// instrumented, reports the source paths it touched.
type TestTarget struct {
	name     string
	suite    SuiteType
	launcher LauncherMeta
	sources  []string
}

// NewTestTarget builds a TestTarget. sources are the test's own
// repo-relative source files (its own .cpp/.go test file, fixtures,
// etc); a change to one of them selects this target directly even
// before the dependency map has ever covered it.
func NewTestTarget(name string, suite SuiteType, launcher LauncherMeta, sources []string) TestTarget {
	return TestTarget{name: name, suite: suite, launcher: launcher, sources: sources}
}

// Name implements Target.
func (t TestTarget) Name() string { return t.name }

// Suite returns the suite this target belongs to.
func (t TestTarget) Suite() SuiteType { return t.suite }

// Launcher returns the launcher metadata for this target.
func (t TestTarget) Launcher() LauncherMeta { return t.launcher }

// Sources returns the target's own repo-relative source paths.
func (t TestTarget) Sources() []string { return t.sources }
