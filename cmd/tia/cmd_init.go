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
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/tia/internal/tiaconfig"
)

var initForce bool

// initCmd scaffolds a fresh workspace: a default tiaconfig YAML (via
// tiaconfig.Load's auto-create path) and a targets descriptor at
// {workspace_root}/{targets_file} holding one example production target
// and one example test target.
//
// # Examples
//
//	tia init                  # scaffold ./tia-workspace and ~/.tia/config.yaml
//	tia init --force          # overwrite an existing targets descriptor
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Scaffold a tia workspace: config file and an example targets descriptor",
	RunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := tiaconfig.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		targetsPath := loaded.TargetsPath()
		if _, err := os.Stat(targetsPath); err == nil && !initForce {
			return fmt.Errorf("%s already exists, pass --force to overwrite", targetsPath)
		}

		if err := os.MkdirAll(filepath.Dir(targetsPath), 0750); err != nil {
			return fmt.Errorf("mkdir %s: %w", filepath.Dir(targetsPath), err)
		}

		// An empty descriptor is rejected by target.New (it refuses an
		// empty target list), so the stub ships one example of each kind
		// for the user to replace.
		stub := map[string]any{
			"production": []map[string]any{
				{"name": "example_lib", "sources": []string{"src/example_lib.cpp"}},
			},
			"tests": []map[string]any{
				{"name": "example_test", "suite": "main", "sources": []string{"test/example_test.cpp"}, "command": "./example_test"},
			},
		}
		data, err := json.MarshalIndent(stub, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(targetsPath, data, 0640); err != nil {
			return fmt.Errorf("write %s: %w", targetsPath, err)
		}

		fmt.Printf("config: %s\n", configPath)
		fmt.Printf("targets: %s\n", targetsPath)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing targets descriptor")
}
