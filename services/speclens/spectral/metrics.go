// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package spectral

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for lint runs.
var (
	tracer = otel.Tracer("speclens.spectral")
	meter  = otel.Meter("speclens.spectral")
)

// Metrics for lint runs.
var (
	runLatency    metric.Float64Histogram
	runTotal      metric.Int64Counter
	issuesFound   metric.Int64Histogram
	errorsFound   metric.Int64Counter
	warningsFound metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		runLatency, err = meter.Float64Histogram(
			"spectral_run_duration_seconds",
			metric.WithDescription("Duration of spectral lint runs"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		runTotal, err = meter.Int64Counter(
			"spectral_runs_total",
			metric.WithDescription("Total number of spectral lint runs"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		issuesFound, err = meter.Int64Histogram(
			"spectral_issues_found",
			metric.WithDescription("Number of findings per lint run"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		errorsFound, err = meter.Int64Counter(
			"spectral_errors_found_total",
			metric.WithDescription("Total number of error-severity findings"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		warningsFound, err = meter.Int64Counter(
			"spectral_warnings_found_total",
			metric.WithDescription("Total number of warning-severity findings"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// startRunSpan creates a span for a lint run.
func startRunSpan(ctx context.Context, ruleset string, contentLen int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Runner.LintContent",
		trace.WithAttributes(
			attribute.String("spectral.ruleset", ruleset),
			attribute.Int("spectral.content_bytes", contentLen),
		),
	)
}

// setRunSpanResult sets the result attributes on a run span.
func setRunSpanResult(span trace.Span, issueCount int, success bool) {
	span.SetAttributes(
		attribute.Int("spectral.issue_count", issueCount),
		attribute.Bool("spectral.success", success),
	)
}

// recordRunMetrics records metrics for one lint run.
func recordRunMetrics(ctx context.Context, ruleset string, duration time.Duration, issueCount, errorCount, warningCount int, success bool) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("ruleset", ruleset),
		attribute.Bool("success", success),
	)

	runLatency.Record(ctx, duration.Seconds(), attrs)
	runTotal.Add(ctx, 1, attrs)

	if success {
		rulesetAttr := metric.WithAttributes(attribute.String("ruleset", ruleset))
		issuesFound.Record(ctx, int64(issueCount), rulesetAttr)
		errorsFound.Add(ctx, int64(errorCount), rulesetAttr)
		warningsFound.Add(ctx, int64(warningCount), rulesetAttr)
	}
}
