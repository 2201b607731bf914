// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "tia/sequence"

// StartPhaseSpan opens a span for one sequence phase (selected,
// discarded, drafted), tagged with the run's mode.
func StartPhaseSpan(ctx context.Context, mode, phase string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "sequence.phase",
		trace.WithAttributes(
			attribute.String("tia.mode", mode),
			attribute.String("tia.phase", phase),
		),
	)
}

// StartJobSpan opens a span for one target execution within a phase.
func StartJobSpan(ctx context.Context, target string, instrumented bool) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "sequence.job",
		trace.WithAttributes(
			attribute.String("tia.target", target),
			attribute.Bool("tia.instrumented", instrumented),
		),
	)
}

// RecordError records err on span and sets its status to Error. A nil
// span or error is a no-op.
func RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
