// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package target

// ExcludeList decides whether a test target is fully or partially
// excluded from a sequence.
//
// Two layers: a set of fully-excluded names, and a map of name to test
// case filter for partial exclusion. The orchestrator treats a
// partially-excluded target as included (the filter is the launcher's
// problem, out of scope here).
type ExcludeList struct {
	full    map[string]struct{}
	partial map[string][]string
}

// Warner receives a warning when an exclusion entry names a target that
// does not exist in the owning list. Excluding an unknown target is
// never a hard failure.
type Warner interface {
	Warnf(format string, args ...any)
}

// noopWarner discards warnings; used when the caller passes a nil Warner.
type noopWarner struct{}

func (noopWarner) Warnf(string, ...any) {}

// NewExcludeList builds an ExcludeList from explicit full and partial
// entries, dropping (with a warning) any name absent from owner.
func NewExcludeList[T Target](owner *List[T], fullNames []string, partial map[string][]string, warn Warner) *ExcludeList {
	if warn == nil {
		warn = noopWarner{}
	}

	el := &ExcludeList{
		full:    make(map[string]struct{}),
		partial: make(map[string][]string),
	}

	for _, name := range fullNames {
		if owner != nil && !owner.Has(name) {
			warn.Warnf("exclude list: target %q not found, ignoring", name)
			continue
		}
		el.full[name] = struct{}{}
	}

	for name, filters := range partial {
		if owner != nil && !owner.Has(name) {
			warn.Warnf("exclude list: target %q not found, ignoring", name)
			continue
		}
		if len(filters) == 0 {
			// An empty filter set means full exclusion, per
			// IsFullyExcluded's contract.
			el.full[name] = struct{}{}
			continue
		}
		el.partial[name] = filters
	}

	return el
}

// IsFullyExcluded reports whether name is listed with an empty or
// absent case-filter set.
func (el *ExcludeList) IsFullyExcluded(name string) bool {
	_, ok := el.full[name]
	return ok
}

// IsPartiallyExcluded reports whether name carries a non-empty case
// filter. Partially-excluded targets are still run by the orchestrator.
func (el *ExcludeList) IsPartiallyExcluded(name string) bool {
	_, ok := el.partial[name]
	return ok
}

// CaseFilter returns the test case filter for a partially-excluded
// target, or nil if none is set.
func (el *ExcludeList) CaseFilter(name string) []string {
	return el.partial[name]
}

// FullyExcludedNames returns the names listed for full exclusion.
func (el *ExcludeList) FullyExcludedNames() []string {
	names := make([]string, 0, len(el.full))
	for name := range el.full {
		names = append(names, name)
	}
	return names
}
