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
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// excludeFile is the on-disk YAML shape for an exclude list: a flat
// array of fully-excluded names plus a map of name to case filter for
// partial exclusion.
type excludeFile struct {
	Full    []string            `yaml:"full"`
	Partial map[string][]string `yaml:"partial"`
}

// LoadExcludeList reads path and builds an ExcludeList against owner,
// warning through warn for any unknown name. A missing path is treated
// as an empty exclude list rather than an error, matching the
// dependency map's tolerant-of-absence behavior elsewhere in this
// runtime.
func LoadExcludeList[T Target](path string, owner *List[T], warn Warner) (*ExcludeList, error) {
	if path == "" {
		return NewExcludeList(owner, nil, nil, warn), nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return NewExcludeList(owner, nil, nil, warn), nil
	}
	if err != nil {
		return nil, fmt.Errorf("target: read exclude list %s: %w", path, err)
	}

	var f excludeFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("target: parse exclude list %s: %w", path, err)
	}

	return NewExcludeList(owner, f.Full, f.Partial, warn), nil
}
