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
)

var reportCmd = &cobra.Command{
	Use:   "report <path>",
	Short: "Pretty-print a previously exported run report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}

		var rep Report
		if err := json.Unmarshal(data, &rep); err != nil {
			return fmt.Errorf("parse %s: %w", args[0], err)
		}

		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(rep)
		}

		fmt.Printf("run %s\n", rep.RunID)
		fmt.Printf("  mode:     %s\n", rep.Mode)
		fmt.Printf("  suite:    %s\n", rep.Suite)
		fmt.Printf("  result:   %s\n", rep.Result)
		fmt.Printf("  started:  %s\n", rep.StartedAt)
		fmt.Printf("  duration: %s\n", rep.TotalDuration)
		fmt.Printf("  selected: %d (discarded %d), drafted: %d\n",
			len(rep.Selection.Selected), len(rep.Selection.Discarded), len(rep.Drafted))
		for _, phase := range rep.Phases {
			fmt.Printf("  phase %-10s result=%-20s duration=%s jobs=%d\n",
				phase.Name, phase.Result, phase.Duration, len(phase.RegularJobs)+len(phase.InstrumentedJobs))
		}
		if rep.Failed {
			fmt.Printf("  FAILED: %s\n", rep.FailureReason)
		}
		return nil
	},
}

func init() {
	reportCmd.Flags().BoolVar(&jsonOutput, "json", false, "emit the report as JSON instead of a text summary")
}
