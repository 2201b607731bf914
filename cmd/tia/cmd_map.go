// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/tia/internal/depmap"
	"github.com/AleutianAI/tia/internal/target"
)

var mapCmd = &cobra.Command{
	Use:   "map",
	Short: "Inspect the persisted source-to-test coverage map",
}

var mapStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report whether the map has impact analysis data and its drafted test count",
	RunE: func(cmd *cobra.Command, args []string) error {
		dm, err := loadMapOnly()
		if err != nil {
			return err
		}

		drafted := dm.GetNotCoveringTests()
		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{
				"has_impact_analysis_data": dm.HasImpactAnalysisData(),
				"drafted_tests":            drafted,
			})
		}

		fmt.Printf("has impact analysis data: %v\n", dm.HasImpactAnalysisData())
		fmt.Printf("drafted tests (no coverage yet): %d\n", len(drafted))
		return nil
	},
}

var mapExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print the current source-to-test coverage map as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		dm, err := loadMapOnly()
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(dm.ExportSourceCoverage())
	},
}

func init() {
	mapCmd.AddCommand(mapStatusCmd)
	mapCmd.AddCommand(mapExportCmd)
	mapStatusCmd.Flags().BoolVar(&jsonOutput, "json", false, "emit status as JSON instead of text")
}

// loadMapOnly loads just the targets descriptor and dependency map,
// for inspection commands that don't need a full workspace/engine.
func loadMapOnly() (*depmap.Map, error) {
	_, tests, err := target.LoadDescriptors(cfg.TargetsPath())
	if err != nil {
		return nil, fmt.Errorf("load targets: %w", err)
	}

	dm := depmap.New(cfg.WorkspaceRoot, tests.Names(), log)

	list, err := readPersistedOrEmpty()
	if err != nil {
		return nil, err
	}
	dm.ReplaceSourceCoverage(list)
	return dm, nil
}
