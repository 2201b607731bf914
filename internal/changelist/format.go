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
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ParseYAML decodes the literal three-set change-list document format
// (§6): created/updated/deleted path arrays.
func ParseYAML(data []byte) (List, error) {
	var l List
	if err := yaml.Unmarshal(data, &l); err != nil {
		return List{}, fmt.Errorf("changelist: parsing yaml document: %w", err)
	}
	return l, nil
}

// ParseJSON decodes the same document from JSON.
func ParseJSON(data []byte) (List, error) {
	var l List
	if err := json.Unmarshal(data, &l); err != nil {
		return List{}, fmt.Errorf("changelist: parsing json document: %w", err)
	}
	return l, nil
}

// MarshalYAML encodes the change list to the literal document format.
func MarshalYAML(l List) ([]byte, error) {
	return yaml.Marshal(l)
}
