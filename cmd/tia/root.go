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
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/tia/internal/obslog"
	"github.com/AleutianAI/tia/internal/telemetry"
	"github.com/AleutianAI/tia/internal/tiaconfig"
)

var (
	configPath string
	logLevel   string
	logJSON    bool
	quiet      bool

	cfg tiaconfig.Config
	log *obslog.Logger

	telemetryShutdown func(context.Context) error
)

var rootCmd = &cobra.Command{
	Use:           "tia",
	Short:         "Test Impact Analysis runtime",
	Long:          "tia selects and runs the minimal test subset affected by a source change, against a persisted source-to-test coverage map.",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := tiaconfig.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded

		log = obslog.New(obslog.Config{
			Level:   parseLevel(logLevel),
			Service: "tia",
			JSON:    logJSON,
			Quiet:   quiet,
		})

		tcfg := telemetry.DefaultConfig()
		shutdown, err := telemetry.Init(cmd.Context(), tcfg)
		if err != nil {
			log.Warn("telemetry init failed, continuing without it", "error", err)
			return nil
		}
		telemetryShutdown = shutdown
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if telemetryShutdown != nil {
			return telemetryShutdown(context.Background())
		}
		return nil
	},
}

func parseLevel(s string) obslog.Level {
	switch s {
	case "debug":
		return obslog.LevelDebug
	case "warn":
		return obslog.LevelWarn
	case "error":
		return obslog.LevelError
	default:
		return obslog.LevelInfo
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "~/.tia/config.yaml", "path to the tia YAML config")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "debug, info, warn, or error")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "emit structured JSON logs to stderr")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "suppress stderr logging entirely")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(mapCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(serveCmd)
}

// exitf prints a formatted error to stderr and exits non-zero, mirroring
// this codebase's own CLI error-reporting convention.
func exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
