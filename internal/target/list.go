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

import (
	"sort"
)

// List is an immutable, name-sorted, duplicate-free collection of T.
//
// Construction takes ownership of the descriptors: the backing slice is
// built once and never reallocated afterward, so *T pointers returned by
// Get remain valid for the list's lifetime (the Go analogue of the
// arena-plus-stable-index ownership described for the original's
// borrowing pointers).
type List[T Target] struct {
	targets []T
}

// New builds a List from descriptors, sorting by name and rejecting an
// empty or duplicate-named input.
func New[T Target](descriptors []T) (*List[T], error) {
	if len(descriptors) == 0 {
		return nil, ErrEmptyTargetList
	}

	sorted := make([]T, len(descriptors))
	copy(sorted, descriptors)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Name() < sorted[j].Name()
	})

	for i := 1; i < len(sorted); i++ {
		if sorted[i].Name() == sorted[i-1].Name() {
			return nil, &DuplicateError{Name: sorted[i].Name()}
		}
	}

	return &List[T]{targets: sorted}, nil
}

// Targets returns the targets in sorted order. The returned slice must
// not be mutated by the caller.
func (l *List[T]) Targets() []T {
	return l.targets
}

// Len returns the number of targets in the list.
func (l *List[T]) Len() int {
	return len(l.targets)
}

// Get returns a pointer to the target with the given name, or nil if
// none exists. Lookup is O(log n) via binary search.
func (l *List[T]) Get(name string) *T {
	i := sort.Search(len(l.targets), func(i int) bool {
		return l.targets[i].Name() >= name
	})
	if i < len(l.targets) && l.targets[i].Name() == name {
		return &l.targets[i]
	}
	return nil
}

// GetOrThrow returns a pointer to the target with the given name, or a
// NotFoundError wrapping ErrTargetNotFound.
func (l *List[T]) GetOrThrow(name string) (*T, error) {
	if t := l.Get(name); t != nil {
		return t, nil
	}
	return nil, &NotFoundError{Name: name}
}

// Has reports whether a target with the given name is present.
func (l *List[T]) Has(name string) bool {
	return l.Get(name) != nil
}

// Names returns the sorted names of every target in the list.
func (l *List[T]) Names() []string {
	names := make([]string, len(l.targets))
	for i, t := range l.targets {
		names[i] = t.Name()
	}
	return names
}
