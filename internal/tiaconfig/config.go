// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package tiaconfig loads the runtime's YAML configuration: workspace
// root, suite name, SPAR-TIA file path, default policies, exclude-list
// source, and concurrency override. Unlike the codebase's bare global
// singleton, Load returns an explicit *Config for constructor
// injection, but keeps the same auto-create-default-on-first-run
// behavior and ~-expansion.
package tiaconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/tia/internal/policy"
)

// Config is the full set of knobs a sequence run needs beyond its
// per-invocation flags.
type Config struct {
	WorkspaceRoot   string       `yaml:"workspace_root"`
	Suite           string       `yaml:"suite"`
	SparTiaFile     string       `yaml:"spar_tia_file"`
	ExcludeListPath string       `yaml:"exclude_list_path"`
	TargetsFile     string       `yaml:"targets_file"`
	MaxConcurrency  int          `yaml:"max_concurrency"`
	TargetTimeout   string       `yaml:"target_timeout"`
	GlobalTimeout   string       `yaml:"global_timeout"`
	Policies        policy.State `yaml:"policies"`

	// StorageBackend selects the persisted-map Store: "file" (default,
	// atomic-rename flat file) or "badger" (embedded KV, for suites
	// whose map is large enough that a full-file rewrite per run is
	// expensive).
	StorageBackend string `yaml:"storage_backend"`
}

// Default returns the conservative default configuration: a
// "./tia-workspace" root, suite "main", the default SPAR-TIA filename,
// no exclude list, the default targets descriptor name, host CPU count
// concurrency, and policy.Default().
func Default() Config {
	return Config{
		WorkspaceRoot:   "./tia-workspace",
		Suite:           "main",
		SparTiaFile:     "spar_tia.json",
		ExcludeListPath: "",
		TargetsFile:     "targets.json",
		MaxConcurrency:  0,
		Policies:        policy.Default(),
		StorageBackend:  "file",
	}
}

// SparTiaPath returns the full persisted-map path,
// {workspace}/active/{suite}/{sparTiaFile}, per §6.
func (c Config) SparTiaPath() string {
	return filepath.Join(c.WorkspaceRoot, "active", c.Suite, c.SparTiaFile)
}

// LockPath returns the advisory lock file path guarding concurrent
// runs against this suite.
func (c Config) LockPath() string {
	return filepath.Join(c.WorkspaceRoot, "active", c.Suite, ".lock")
}

// TargetsPath returns the build/test target descriptor file path,
// {workspace}/{targetsFile}.
func (c Config) TargetsPath() string {
	return filepath.Join(c.WorkspaceRoot, c.TargetsFile)
}

// BadgerDir returns the directory a "badger" StorageBackend opens its
// database in, {workspace}/active/{suite}/badger.
func (c Config) BadgerDir() string {
	return filepath.Join(c.WorkspaceRoot, "active", c.Suite, "badger")
}

// Load reads the YAML config at path, auto-creating a commented
// default file on first run. A leading "~" in path is expanded against
// the user's home directory.
func Load(path string) (Config, error) {
	expanded, err := expandHome(path)
	if err != nil {
		return Config{}, err
	}

	if _, err := os.Stat(expanded); os.IsNotExist(err) {
		if err := writeDefault(expanded); err != nil {
			return Config{}, err
		}
	}

	data, err := os.ReadFile(expanded)
	if err != nil {
		return Config{}, fmt.Errorf("tiaconfig: read %s: %w", expanded, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("tiaconfig: parse %s: %w", expanded, err)
	}
	return cfg, nil
}

func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("tiaconfig: mkdir %s: %w", filepath.Dir(path), err)
	}

	header := "# Auto-generated on first run. Edit freely; re-run tia to pick up changes.\n"
	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("tiaconfig: marshal default: %w", err)
	}
	return os.WriteFile(path, append([]byte(header), data...), 0640)
}

func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("tiaconfig: resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
