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
	"encoding/json"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/tia/internal/changelist"
	"github.com/AleutianAI/tia/internal/policy"
	"github.com/AleutianAI/tia/internal/progress"
	"github.com/AleutianAI/tia/internal/report"
	"github.com/AleutianAI/tia/internal/sequence"
	"github.com/AleutianAI/tia/internal/testengine"
)

// === mode selection ===
var (
	runMode string // regular | seeded | impact | safe-impact
)

// === change detection (mirrors this runtime's own git-diff-based
// change sources; used by impact/safe-impact modes only) ===
var (
	diffStaged   bool
	diffCommit   string
	diffBranch   string
	changeFile   string
)

// === policy overrides ===
var (
	policyExecutionFailure string
	policyFailedCoverage   string
	policyTestFailure      string
	policyIntegrity        string
	policyPrioritization   string
	policyMapUpdate        string
)

// === execution ===
var (
	cannedResultsPath string
	targetTimeout     time.Duration
	globalTimeout     time.Duration
	maxConcurrency    int
)

// === output ===
var (
	jsonOutput     bool
	reportDir      string
	gcsBucket      string
	gcsPrefix      string
	verifyPolicyOf string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a test sequence against the persisted dependency map",
	Long: `tia run executes one of the four sequence modes:

  regular      run every included test, uninstrumented, never touching the map
  seeded       clear the map and rebuild it from a full instrumented run
  impact       resolve a change list against the map, run selected+drafted tests
  safe-impact  like impact, plus an uninstrumented safety net over discarded tests

Impact and safe-impact modes need a change list, supplied via --diff-staged,
--diff-commit, --diff-branch (against the workspace's git repository), or
--change-list (a YAML/JSON document of created/updated/deleted paths).`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runMode, "mode", "regular", "regular, seeded, impact, or safe-impact")

	runCmd.Flags().BoolVar(&diffStaged, "diff-staged", false, "impact modes: diff the git index against HEAD")
	runCmd.Flags().StringVar(&diffCommit, "diff-commit", "", "impact modes: diff a single commit against its parent")
	runCmd.Flags().StringVar(&diffBranch, "diff-branch", "", "impact modes: diff the working tree against a branch's merge base")
	runCmd.Flags().StringVar(&changeFile, "change-list", "", "impact modes: path to a YAML or JSON change-list document")

	runCmd.Flags().StringVar(&policyExecutionFailure, "policy-execution-failure", "", "abort|continue")
	runCmd.Flags().StringVar(&policyFailedCoverage, "policy-failed-coverage", "", "keep|discard")
	runCmd.Flags().StringVar(&policyTestFailure, "policy-test-failure", "", "continue|abort")
	runCmd.Flags().StringVar(&policyIntegrity, "policy-integrity", "", "abort|continue")
	runCmd.Flags().StringVar(&policyPrioritization, "policy-prioritization", "", "none|dependency_locality")
	runCmd.Flags().StringVar(&policyMapUpdate, "policy-map-update", "", "update|no_update")

	runCmd.Flags().StringVar(&cannedResultsPath, "canned-results", "", "scripted results JSON for the reference engine (no real test launcher is shipped)")
	runCmd.Flags().DurationVar(&targetTimeout, "target-timeout", 0, "per-target timeout override")
	runCmd.Flags().DurationVar(&globalTimeout, "global-timeout", 0, "whole-run timeout override")
	runCmd.Flags().IntVar(&maxConcurrency, "max-concurrency", 0, "max concurrent targets (0 = host CPU count)")

	runCmd.Flags().BoolVar(&jsonOutput, "json", false, "emit the finished report as JSON to stdout")
	runCmd.Flags().StringVar(&reportDir, "report-dir", "", "write the finished report as JSON under this directory")
	runCmd.Flags().StringVar(&gcsBucket, "gcs-bucket", "", "also upload the finished report to this GCS bucket")
	runCmd.Flags().StringVar(&gcsPrefix, "gcs-prefix", "tia-reports", "object prefix within --gcs-bucket")
	runCmd.Flags().StringVar(&verifyPolicyOf, "verify-policy", "", "path to a prior report.json; fail if its policy state differs from this run's")
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	engine, err := buildEngine(cannedResultsPath)
	if err != nil {
		return err
	}

	ws, err := buildWorkspace(engine)
	if err != nil {
		return err
	}

	pol := resolvePolicy()
	if verifyPolicyOf != "" {
		if err := verifyPolicyMatches(verifyPolicyOf, pol); err != nil {
			return err
		}
	}

	runCfg := sequence.Config{
		Policies:       pol,
		TargetTimeout:  orDuration(targetTimeout, parseDurationOrZero(cfg.TargetTimeout)),
		GlobalTimeout:  orDuration(globalTimeout, parseDurationOrZero(cfg.GlobalTimeout)),
		MaxConcurrency: orInt(maxConcurrency, cfg.MaxConcurrency),
	}

	interactive := !jsonOutput && isatty.IsTerminal(os.Stdout.Fd())
	cb, program := buildCallbacks(interactive, runMode)

	var (
		rep Report
		err2 error
	)
	switch runMode {
	case "regular":
		r, e := ws.orch.RunRegular(ctx, runCfg, cb)
		rep, err2 = r, e
	case "seeded":
		r, e := ws.orch.RunSeeded(ctx, runCfg, cb)
		rep, err2 = r, e
	case "impact":
		cl, e := resolveChangeList(ctx)
		if e != nil {
			return e
		}
		r, e2 := ws.orch.RunImpactAnalysis(ctx, cl, pol.Prioritization, pol.MapUpdate, runCfg, cb)
		rep, err2 = r, e2
	case "safe-impact":
		cl, e := resolveChangeList(ctx)
		if e != nil {
			return e
		}
		r, e2 := ws.orch.RunSafeImpactAnalysis(ctx, cl, pol.Prioritization, runCfg, cb)
		rep, err2 = r, e2
	default:
		return fmt.Errorf("unknown --mode %q", runMode)
	}

	if program != nil {
		program.Send(progress.DoneMsg{})
	}

	if err2 != nil {
		log.Error("sequence run failed", "mode", runMode, "error", err2)
	}

	if err := emitReport(ctx, rep); err != nil {
		return err
	}

	if err2 != nil {
		os.Exit(2)
	}
	if rep.Result == testengine.SequenceTestFailures || rep.Result == testengine.SequenceFailedToExecute || rep.Result == testengine.SequenceTimeout {
		os.Exit(3)
	}
	return nil
}

// Report is a local alias so this file doesn't need to qualify every
// occurrence; sequence.Report is the real type.
type Report = sequence.Report

func resolvePolicy() policy.State {
	p := cfg.Policies
	if policyExecutionFailure != "" {
		p.ExecutionFailure = policy.ExecutionFailure(policyExecutionFailure)
	}
	if policyFailedCoverage != "" {
		p.FailedTestCoverage = policy.FailedTestCoverage(policyFailedCoverage)
	}
	if policyTestFailure != "" {
		p.TestFailure = policy.TestFailure(policyTestFailure)
	}
	if policyIntegrity != "" {
		p.IntegrityFailure = policy.IntegrityFailure(policyIntegrity)
	}
	if policyPrioritization != "" {
		p.Prioritization = policy.TestPrioritization(policyPrioritization)
	}
	if policyMapUpdate != "" {
		p.MapUpdate = policy.DynamicDependencyMapUpdate(policyMapUpdate)
	}
	return p
}

func verifyPolicyMatches(priorReportPath string, pol policy.State) error {
	data, err := os.ReadFile(priorReportPath)
	if err != nil {
		return fmt.Errorf("verify-policy: read %s: %w", priorReportPath, err)
	}
	var prior Report
	if err := json.Unmarshal(data, &prior); err != nil {
		return fmt.Errorf("verify-policy: parse %s: %w", priorReportPath, err)
	}
	if !prior.Policies.Equal(pol) {
		return fmt.Errorf("verify-policy: this run's policy state differs from %s", priorReportPath)
	}
	return nil
}

func resolveChangeList(ctx context.Context) (changelist.List, error) {
	switch {
	case changeFile != "":
		data, err := os.ReadFile(changeFile)
		if err != nil {
			return changelist.List{}, fmt.Errorf("read change list %s: %w", changeFile, err)
		}
		if parsed, err := changelist.ParseJSON(data); err == nil {
			return parsed, nil
		}
		return changelist.ParseYAML(data)
	case diffCommit != "":
		src := changelist.NewGitSource(cfg.WorkspaceRoot, changelist.GitModeCommit)
		src.Commit = diffCommit
		return src.Resolve(ctx)
	case diffBranch != "":
		src := changelist.NewGitSource(cfg.WorkspaceRoot, changelist.GitModeBranch)
		src.Branch = diffBranch
		return src.Resolve(ctx)
	case diffStaged:
		return changelist.NewGitSource(cfg.WorkspaceRoot, changelist.GitModeStaged).Resolve(ctx)
	default:
		return changelist.NewGitSource(cfg.WorkspaceRoot, changelist.GitModeWorking).Resolve(ctx)
	}
}

// buildCallbacks wires the orchestrator's progress hooks either to a
// live Bubble Tea program (interactive terminal) or to plain log lines
// (CI/--json). It returns the tea.Program so the caller can send it a
// DoneMsg once the run finishes.
func buildCallbacks(interactive bool, mode string) (sequence.Callbacks, *tea.Program) {
	if !interactive {
		return sequence.Callbacks{
			OnJobComplete: func(completed, total int, target string, result testengine.TestRunResult) {
				log.Debug("job complete", "target", target, "result", result, "completed", completed, "total", total)
			},
		}, nil
	}

	model := progress.New(mode)
	program := tea.NewProgram(model)
	go func() {
		_, _ = program.Run()
	}()

	return sequence.Callbacks{
		OnStart: func(total int) {
			program.Send(progress.StartMsg{Total: total})
		},
		OnJobComplete: func(completed, total int, target string, result testengine.TestRunResult) {
			program.Send(progress.JobMsg{Completed: completed, Total: total, Target: target, Result: result})
		},
	}, program
}

func emitReport(ctx context.Context, rep Report) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
	} else {
		fmt.Printf("run %s: mode=%s result=%s selected=%d drafted=%d discarded=%d duration=%s\n",
			rep.RunID, rep.Mode, rep.Result, len(rep.Selection.Selected), len(rep.Drafted), len(rep.Selection.Discarded), rep.TotalDuration)
	}

	if reportDir != "" {
		if err := report.NewFileExporter(reportDir).Export(ctx, rep); err != nil {
			return fmt.Errorf("export report: %w", err)
		}
	}

	if gcsBucket != "" {
		exp, err := report.NewGCSExporter(ctx, gcsBucket, gcsPrefix, "")
		if err != nil {
			return fmt.Errorf("gcs exporter: %w", err)
		}
		defer exp.Close()
		if err := exp.Export(ctx, rep); err != nil {
			return fmt.Errorf("gcs export: %w", err)
		}
	}
	return nil
}

func orDuration(flag, fromConfig time.Duration) time.Duration {
	if flag > 0 {
		return flag
	}
	return fromConfig
}

func orInt(flag, fromConfig int) int {
	if flag > 0 {
		return flag
	}
	return fromConfig
}

func parseDurationOrZero(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}
