// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

func TestNew_RegistersEveryInstrument(t *testing.T) {
	provider := sdkmetric.NewMeterProvider()
	meter := provider.Meter("tia-test")

	m, err := New(meter)
	require.NoError(t, err)

	m.JobsTotal.Add(context.Background(), 1)
	m.PhaseDuration.Record(context.Background(), 1.5)
	m.SelectedTargets.Record(context.Background(), 3)
	m.DraftedTargets.Record(context.Background(), 2)
	m.RunsTotal.Add(context.Background(), 1)

	assert.NotNil(t, m.JobsTotal)
	assert.NotNil(t, m.PhaseDuration)
}

func TestRegisterMapSize_CallbackReportsSizeFunc(t *testing.T) {
	provider := sdkmetric.NewMeterProvider()
	meter := provider.Meter("tia-test")

	m, err := New(meter)
	require.NoError(t, err)

	reg, err := m.RegisterMapSize(meter, func() int64 { return 42 })
	require.NoError(t, err)
	require.NotNil(t, reg)

	assert.NoError(t, reg.Unregister())
}
