// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package metrics declares the runtime's OTel-backed metric
// instruments: phase durations, per-job results, selection sizes, and
// dependency map size, all under the "tia_" prefix.
package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the runtime's metric instruments, created by New on a
// caller-supplied meter. The sequence orchestrator and the CLI do not
// build a Metrics or record to it.
type Metrics struct {
	// PhaseDuration records how long each named phase (selected,
	// discarded, drafted) took, labeled by mode and phase name.
	PhaseDuration metric.Float64Histogram

	// JobsTotal counts completed target executions, labeled by result.
	JobsTotal metric.Int64Counter

	// SelectedTargets records the size of the selected set per run.
	SelectedTargets metric.Int64Histogram

	// DraftedTargets records the size of the drafted (not-yet-covering)
	// set per run.
	DraftedTargets metric.Int64Histogram

	// MapSizeSources tracks the dependency map's current source count.
	MapSizeSources metric.Int64ObservableGauge

	// RunsTotal counts completed sequence runs, labeled by mode and
	// whether the run failed.
	RunsTotal metric.Int64Counter
}

// New registers every instrument against meter.
func New(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.PhaseDuration, err = meter.Float64Histogram(
		"tia_phase_duration_seconds",
		metric.WithDescription("Duration of one sequence phase"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600),
	)
	if err != nil {
		return nil, fmt.Errorf("metrics: create tia_phase_duration_seconds: %w", err)
	}

	m.JobsTotal, err = meter.Int64Counter(
		"tia_jobs_total",
		metric.WithDescription("Total completed target executions, by result"),
		metric.WithUnit("{job}"),
	)
	if err != nil {
		return nil, fmt.Errorf("metrics: create tia_jobs_total: %w", err)
	}

	m.SelectedTargets, err = meter.Int64Histogram(
		"tia_selected_targets",
		metric.WithDescription("Number of targets selected for one run"),
		metric.WithUnit("{target}"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 50, 100, 500, 1000, 5000),
	)
	if err != nil {
		return nil, fmt.Errorf("metrics: create tia_selected_targets: %w", err)
	}

	m.DraftedTargets, err = meter.Int64Histogram(
		"tia_drafted_targets",
		metric.WithDescription("Number of not-yet-covering targets drafted for one run"),
		metric.WithUnit("{target}"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 50, 100, 500, 1000, 5000),
	)
	if err != nil {
		return nil, fmt.Errorf("metrics: create tia_drafted_targets: %w", err)
	}

	m.RunsTotal, err = meter.Int64Counter(
		"tia_runs_total",
		metric.WithDescription("Total completed sequence runs, by mode and outcome"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, fmt.Errorf("metrics: create tia_runs_total: %w", err)
	}

	return m, nil
}

// RegisterMapSize registers an observable gauge that reports the
// dependency map's current covered-source count via sizeFunc, called
// once per scrape.
func (m *Metrics) RegisterMapSize(meter metric.Meter, sizeFunc func() int64) (metric.Registration, error) {
	var err error
	m.MapSizeSources, err = meter.Int64ObservableGauge(
		"tia_map_size_sources",
		metric.WithDescription("Number of sources currently covered in the dependency map"),
		metric.WithUnit("{source}"),
	)
	if err != nil {
		return nil, fmt.Errorf("metrics: create tia_map_size_sources: %w", err)
	}

	return meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		o.ObserveInt64(m.MapSizeSources, sizeFunc())
		return nil
	}, m.MapSizeSources)
}
