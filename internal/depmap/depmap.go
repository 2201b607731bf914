// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package depmap

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Warner receives non-fatal diagnostics raised while mutating the map
// (out-of-repo sources, unknown test names). Both are "ignore with a
// warning", never a hard failure.
type Warner interface {
	Warnf(format string, args ...any)
}

type noopWarner struct{}

func (noopWarner) Warnf(string, ...any) {}

// Map is the bidirectional source↔test-target coverage relation.
//
// Readers during selection and the single writer during ingestion are
// never interleaved by contract of the sequence orchestrator (§5 of the
// spec); the mutex here exists to make that contract cheap to honor
// correctly rather than to paper over concurrent access it should never
// see.
type Map struct {
	mu sync.RWMutex

	forward map[string]map[string]struct{} // source path -> test names
	inverse map[string]map[string]struct{} // test name -> source paths

	repoRoot      string
	testNames     map[string]struct{}
	testNameOrder []string // target-list order, for GetNotCoveringTests

	warn Warner
}

// New builds an empty Map scoped to repoRoot. testNameOrder is the full,
// target-list-sorted set of test target names the map is permitted to
// reference (invariant I2); entries naming anything else are dropped
// with a warning rather than rejected outright.
func New(repoRoot string, testNameOrder []string, warn Warner) *Map {
	if warn == nil {
		warn = noopWarner{}
	}

	names := make(map[string]struct{}, len(testNameOrder))
	for _, n := range testNameOrder {
		names[n] = struct{}{}
	}

	return &Map{
		forward:       make(map[string]map[string]struct{}),
		inverse:       make(map[string]map[string]struct{}),
		repoRoot:      repoRoot,
		testNames:     names,
		testNameOrder: testNameOrder,
		warn:          warn,
	}
}

// relativize normalizes path against the repo root, returning (relPath,
// true) if it is under the root and (_, false) otherwise (I3).
func (m *Map) relativize(path string) (string, bool) {
	if !filepath.IsAbs(path) {
		return filepath.ToSlash(filepath.Clean(path)), true
	}
	rel, err := filepath.Rel(m.repoRoot, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// ReplaceSourceCoverage rebuilds both directions of the map from list.
// Sources outside the repo root are dropped with a warning (I3); test
// names absent from the owning target list are dropped with a warning
// (I2). After return, invariants I1–I4 hold for the resulting state.
func (m *Map) ReplaceSourceCoverage(list SourceCoveringTestsList) {
	forward := make(map[string]map[string]struct{})
	inverse := make(map[string]map[string]struct{})

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, entry := range list.Entries {
		relSource, ok := m.relativize(entry.SourcePath)
		if !ok {
			m.warn.Warnf("depmap: source %q is outside the repo root, dropping", entry.SourcePath)
			continue
		}

		for _, name := range entry.Tests {
			if _, known := m.testNames[name]; !known {
				m.warn.Warnf("depmap: test target %q is not in the owning target list, dropping", name)
				continue
			}

			if forward[relSource] == nil {
				forward[relSource] = make(map[string]struct{})
			}
			forward[relSource][name] = struct{}{}

			if inverse[name] == nil {
				inverse[name] = make(map[string]struct{})
			}
			inverse[name][relSource] = struct{}{}
		}
	}

	m.forward = forward
	m.inverse = inverse
}

// RemoveTestTargetFromSourceCoverage erases testName from every forward
// image, dropping any source key whose set becomes empty, and clears
// its inverse entry.
func (m *Map) RemoveTestTargetFromSourceCoverage(testName string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sources := m.inverse[testName]
	for source := range sources {
		delete(m.forward[source], testName)
		if len(m.forward[source]) == 0 {
			delete(m.forward, source)
		}
	}
	delete(m.inverse, testName)
}

// InsertSourceCoverage incrementally adds one (source, testName) edge,
// applying the same I2/I3 filtering as ReplaceSourceCoverage. Used by
// the Coverage Consolidator (C6), which mutates the map job-by-job
// rather than rebuilding it wholesale. Reports whether the edge was
// accepted.
func (m *Map) InsertSourceCoverage(sourcePath, testName string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	relSource, ok := m.relativize(sourcePath)
	if !ok {
		m.warn.Warnf("depmap: source %q is outside the repo root, dropping", sourcePath)
		return false
	}
	if _, known := m.testNames[testName]; !known {
		m.warn.Warnf("depmap: test target %q is not in the owning target list, dropping", testName)
		return false
	}

	if m.forward[relSource] == nil {
		m.forward[relSource] = make(map[string]struct{})
	}
	m.forward[relSource][testName] = struct{}{}

	if m.inverse[testName] == nil {
		m.inverse[testName] = make(map[string]struct{})
	}
	m.inverse[testName][relSource] = struct{}{}
	return true
}

// ExportSourceCoverage returns the current state as a deterministic,
// source-sorted, test-sorted list.
func (m *Map) ExportSourceCoverage() SourceCoveringTestsList {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := make([]SourceCoveringTests, 0, len(m.forward))
	for source, tests := range m.forward {
		names := make([]string, 0, len(tests))
		for name := range tests {
			names = append(names, name)
		}
		sort.Strings(names)
		entries = append(entries, SourceCoveringTests{SourcePath: source, Tests: names})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].SourcePath < entries[j].SourcePath
	})

	return SourceCoveringTestsList{Entries: entries}
}

// GetNotCoveringTests returns, in target-list order, every test target
// whose inverse image is absent or empty (I4) — the "drafted" set.
func (m *Map) GetNotCoveringTests() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, 0, len(m.testNameOrder))
	for _, name := range m.testNameOrder {
		if len(m.inverse[name]) == 0 {
			out = append(out, name)
		}
	}
	return out
}

// ClearAllSourceCoverage empties both maps without touching any
// persisted file.
func (m *Map) ClearAllSourceCoverage() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forward = make(map[string]map[string]struct{})
	m.inverse = make(map[string]map[string]struct{})
}

// HasImpactAnalysisData reports whether the map currently covers at
// least one source. A missing or empty SPAR-TIA file on startup leaves
// this false.
func (m *Map) HasImpactAnalysisData() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.forward) > 0
}

// CoveringTests returns the test targets covering source, or nil.
func (m *Map) CoveringTests(source string) []string {
	rel, ok := m.relativize(source)
	if !ok {
		return nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	tests := m.forward[rel]
	if len(tests) == 0 {
		return nil
	}
	names := make([]string, 0, len(tests))
	for name := range tests {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CoveredSources returns the source paths covered by testName, or nil.
func (m *Map) CoveredSources(testName string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sources := m.inverse[testName]
	if len(sources) == 0 {
		return nil
	}
	out := make([]string, 0, len(sources))
	for s := range sources {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// checkInvariant1 reports whether forward and inverse agree (I1). Used
// only by tests; production code maintains I1 by construction.
func (m *Map) checkInvariant1() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for source, tests := range m.forward {
		for name := range tests {
			if _, ok := m.inverse[name][source]; !ok {
				return false
			}
		}
	}
	for name, sources := range m.inverse {
		for source := range sources {
			if _, ok := m.forward[source][name]; !ok {
				return false
			}
		}
	}
	return true
}
