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
	"errors"
	"fmt"
)

// ErrUnresolvedDependency is returned when a changed path cannot be
// mapped to any build target.
var ErrUnresolvedDependency = errors.New("change list resolution inconsistency")

// DependencyError carries the path that failed resolution.
type DependencyError struct {
	Path string
}

// Error implements error.
func (e *DependencyError) Error() string {
	return fmt.Sprintf("change list resolution: path %q resolves to no build target", e.Path)
}

// Unwrap lets errors.Is(err, ErrUnresolvedDependency) succeed.
func (e *DependencyError) Unwrap() error {
	return ErrUnresolvedDependency
}
