// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package changelist resolves a source-control change list (three
// disjoint path sets) into the build targets it touches.
package changelist

// Kind discriminates which of the three disjoint sets a path came from.
type Kind string

const (
	Created Kind = "created"
	Updated Kind = "updated"
	Deleted Kind = "deleted"
)

// List holds the three disjoint, repo-relative, forward-slash path sets
// that make up a change list.
type List struct {
	Created []string `json:"created,omitempty" yaml:"created,omitempty"`
	Updated []string `json:"updated,omitempty" yaml:"updated,omitempty"`
	Deleted []string `json:"deleted,omitempty" yaml:"deleted,omitempty"`
}

// IsEmpty reports whether the change list touches no paths at all.
func (l List) IsEmpty() bool {
	return len(l.Created) == 0 && len(l.Updated) == 0 && len(l.Deleted) == 0
}

// AllPaths returns every path in the change list tagged with its Kind,
// created-then-updated-then-deleted, each group in input order.
func (l List) AllPaths() []struct {
	Path string
	Kind Kind
} {
	out := make([]struct {
		Path string
		Kind Kind
	}, 0, len(l.Created)+len(l.Updated)+len(l.Deleted))

	for _, p := range l.Created {
		out = append(out, struct {
			Path string
			Kind Kind
		}{p, Created})
	}
	for _, p := range l.Updated {
		out = append(out, struct {
			Path string
			Kind Kind
		}{p, Updated})
	}
	for _, p := range l.Deleted {
		out = append(out, struct {
			Path string
			Kind Kind
		}{p, Deleted})
	}
	return out
}

// Dependency annotates one changed path with the build targets it
// touches, as resolved against a source-ownership index.
type Dependency struct {
	Path    string   `json:"path"`
	Kind    Kind     `json:"kind"`
	Targets []string `json:"targets"`
}

// DependencyList is the resolved form of a List: every path annotated
// with the targets it touches.
type DependencyList struct {
	Entries []Dependency `json:"entries"`
}

// TargetNames returns the deduplicated union of every target named
// across all entries, unsorted.
func (d DependencyList) TargetNames() []string {
	seen := make(map[string]struct{})
	var names []string
	for _, entry := range d.Entries {
		for _, t := range entry.Targets {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			names = append(names, t)
		}
	}
	return names
}

// ChangedSources returns the deduplicated path set across all entries,
// in entry order. Used by the selector's DependencyLocality BFS seed.
func (d DependencyList) ChangedSources() []string {
	seen := make(map[string]struct{})
	var paths []string
	for _, entry := range d.Entries {
		if _, ok := seen[entry.Path]; ok {
			continue
		}
		seen[entry.Path] = struct{}{}
		paths = append(paths, entry.Path)
	}
	return paths
}
