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

import "context"

// TestDistances computes, for every test target reachable from
// changedSources within maxDepth hops of the bipartite source↔test
// graph, the shortest hop distance to it. A test directly covering a
// changed source is distance 1; a test reachable only by hopping through
// another source that shares a covering test with a changed source is
// scored by the length of that chain. maxDepth <= 0 means unbounded.
//
// This is the distance metric backing the DependencyLocality
// prioritization policy (internal/selector).
func (m *Map) TestDistances(ctx context.Context, changedSources []string, maxDepth int) map[string]int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	distances := make(map[string]int)
	visitedSources := make(map[string]struct{})
	visitedTests := make(map[string]struct{})

	type frontierNode struct {
		name   string
		isTest bool
	}

	var frontier []frontierNode
	for _, s := range changedSources {
		rel, ok := m.relativize(s)
		if !ok {
			continue
		}
		if _, seen := visitedSources[rel]; seen {
			continue
		}
		visitedSources[rel] = struct{}{}
		frontier = append(frontier, frontierNode{name: rel, isTest: false})
	}

	depth := 0
	for len(frontier) > 0 {
		if ctx != nil {
			select {
			case <-ctx.Done():
				return distances
			default:
			}
		}
		if maxDepth > 0 && depth >= maxDepth {
			break
		}
		depth++

		var next []frontierNode
		for _, node := range frontier {
			if node.isTest {
				for source := range m.inverse[node.name] {
					if _, seen := visitedSources[source]; seen {
						continue
					}
					visitedSources[source] = struct{}{}
					next = append(next, frontierNode{name: source, isTest: false})
				}
				continue
			}

			for name := range m.forward[node.name] {
				if _, seen := visitedTests[name]; seen {
					continue
				}
				visitedTests[name] = struct{}{}
				distances[name] = depth
				next = append(next, frontierNode{name: name, isTest: true})
			}
		}
		frontier = next
	}

	return distances
}
