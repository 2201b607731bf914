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
	"errors"
	"fmt"
)

// ErrEmptyTargetList is returned when a List is constructed from
// zero descriptors.
var ErrEmptyTargetList = errors.New("target list is empty")

// ErrDuplicateTarget is returned when two descriptors share a name.
var ErrDuplicateTarget = errors.New("target list contains duplicate targets")

// ErrTargetNotFound is returned by GetOrThrow when no target with the
// requested name exists.
var ErrTargetNotFound = errors.New("target not found")

// NotFoundError carries the name that failed lookup, for callers that
// want it back without reparsing the error string.
type NotFoundError struct {
	Name string
}

// Error implements error.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("couldn't find target %s", e.Name)
}

// Unwrap lets errors.Is(err, ErrTargetNotFound) succeed.
func (e *NotFoundError) Unwrap() error {
	return ErrTargetNotFound
}

// DuplicateError carries the name that collided.
type DuplicateError struct {
	Name string
}

// Error implements error.
func (e *DuplicateError) Error() string {
	return fmt.Sprintf("target list contains duplicate target %q", e.Name)
}

// Unwrap lets errors.Is(err, ErrDuplicateTarget) succeed.
func (e *DuplicateError) Unwrap() error {
	return ErrDuplicateTarget
}
