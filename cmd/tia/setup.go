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
	"fmt"
	"os"

	"github.com/AleutianAI/tia/internal/changelist"
	"github.com/AleutianAI/tia/internal/depmap"
	"github.com/AleutianAI/tia/internal/launcher"
	"github.com/AleutianAI/tia/internal/sequence"
	"github.com/AleutianAI/tia/internal/serialize"
	"github.com/AleutianAI/tia/internal/target"
	"github.com/AleutianAI/tia/internal/testengine"
)

// workspace bundles everything a sequence run needs, built once from
// the loaded tiaconfig.Config and a chosen Engine.
type workspace struct {
	prod  *target.List[target.ProductionTarget]
	tests *target.List[target.TestTarget]
	orch  *sequence.Orchestrator
}

// buildWorkspace loads the targets descriptor and exclude list, builds
// the dependency map and resolver, and wires an Orchestrator over
// engine.
func buildWorkspace(engine testengine.Engine) (*workspace, error) {
	prod, tests, err := target.LoadDescriptors(cfg.TargetsPath())
	if err != nil {
		return nil, fmt.Errorf("load targets: %w", err)
	}

	excludes, err := target.LoadExcludeList(cfg.ExcludeListPath, tests, log)
	if err != nil {
		return nil, fmt.Errorf("load exclude list: %w", err)
	}

	dm := depmap.New(cfg.WorkspaceRoot, tests.Names(), log)

	index := sequence.NewSourceIndex(prod, tests)
	resolver := changelist.NewResolver(index, log)

	store, err := buildStore()
	if err != nil {
		return nil, fmt.Errorf("build storage backend: %w", err)
	}

	orch := sequence.NewWithStore(cfg.Suite, tests, excludes, dm, resolver, engine, log, store, cfg.LockPath())
	orch.LoadPersisted()

	return &workspace{prod: prod, tests: tests, orch: orch}, nil
}

// buildStore selects the persisted-map backend named by
// cfg.StorageBackend ("file", the default, or "badger").
func buildStore() (serialize.Store, error) {
	switch cfg.StorageBackend {
	case "", "file":
		return serialize.NewFileStore(cfg.SparTiaPath()), nil
	case "badger":
		if err := os.MkdirAll(cfg.BadgerDir(), 0750); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", cfg.BadgerDir(), err)
		}
		return serialize.OpenBadgerStore(cfg.BadgerDir())
	default:
		return nil, fmt.Errorf("unknown storage_backend %q", cfg.StorageBackend)
	}
}

// buildEngine returns the InMemoryEngine scripted from cannedPath, or an
// empty one (every target defaults to AllTestsPass) when cannedPath is
// unset. The real child-process launcher is a separate integration
// point this runtime doesn't ship (testengine package doc, §1).
func buildEngine(cannedPath string) (testengine.Engine, error) {
	if cannedPath == "" {
		return testengine.NewInMemoryEngine(nil), nil
	}

	results, err := launcher.LoadCannedResults(cannedPath)
	if err != nil {
		return nil, err
	}
	return testengine.NewInMemoryEngine(results), nil
}

// readPersistedOrEmpty reads the configured persisted map through the
// active storage backend, tolerating its absence the same way
// Orchestrator.LoadPersisted does.
func readPersistedOrEmpty() (depmap.SourceCoveringTestsList, error) {
	store, err := buildStore()
	if err != nil {
		return depmap.SourceCoveringTestsList{}, fmt.Errorf("build storage backend: %w", err)
	}
	if closer, ok := store.(*serialize.BadgerStore); ok {
		defer closer.Close()
	}

	list, err := store.Read()
	if err != nil {
		return depmap.SourceCoveringTestsList{}, fmt.Errorf("read persisted map: %w", err)
	}
	return list, nil
}
