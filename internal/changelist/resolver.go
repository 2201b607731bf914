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
	"github.com/AleutianAI/tia/internal/obslog"
	"github.com/AleutianAI/tia/internal/policy"
)

// SourceOwnership answers "which build targets does this source path
// belong to". The build-target descriptor loader that populates it is
// out of scope for this runtime; callers inject an implementation
// (typically backed by the same static build graph the production
// targets were loaded from).
type SourceOwnership interface {
	OwningTargets(path string) []string
}

// Resolver implements ApplyAndResolveChangeList (C3): it maps a change
// list's paths to the build targets that own them.
type Resolver struct {
	ownership SourceOwnership
	log       *obslog.Logger
}

// NewResolver builds a Resolver over the given ownership index.
func NewResolver(ownership SourceOwnership, log *obslog.Logger) *Resolver {
	return &Resolver{ownership: ownership, log: log}
}

// ApplyAndResolveChangeList maps each changed path to the build targets
// it touches. A path that resolves to no target raises a
// *DependencyError; under IntegrityFailureAbort that error is returned
// to the caller (who re-raises it as a RuntimeException per §7),
// otherwise it is logged and resolution continues with the partial
// result.
func (r *Resolver) ApplyAndResolveChangeList(cl List, integrity policy.IntegrityFailure) (*DependencyList, error) {
	result := &DependencyList{}

	for _, p := range cl.AllPaths() {
		targets := r.ownership.OwningTargets(p.Path)
		if len(targets) == 0 {
			err := &DependencyError{Path: p.Path}
			if integrity == policy.IntegrityFailureAbort {
				return result, err
			}
			if r.log != nil {
				r.log.Warn("change list path resolves to no build target, continuing", "path", p.Path)
			}
			continue
		}

		result.Entries = append(result.Entries, Dependency{
			Path:    p.Path,
			Kind:    p.Kind,
			Targets: targets,
		})
	}

	return result, nil
}
