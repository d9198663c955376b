// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package pipeline

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for pipeline runs.
var (
	tracer = otel.Tracer("pubcloud.pipeline")
	meter  = otel.Meter("pubcloud.pipeline")
)

var (
	renderLatency metric.Float64Histogram
	renderTotal   metric.Int64Counter
	cloudWords    metric.Int64Histogram
	artifactBytes metric.Int64Histogram

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics creates the instruments once.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		renderLatency, err = meter.Float64Histogram(
			"pubcloud_publication_duration_seconds",
			metric.WithDescription("Duration of read, render and save for one publication"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		renderTotal, err = meter.Int64Counter(
			"pubcloud_publications_total",
			metric.WithDescription("Publications processed, by result"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		cloudWords, err = meter.Int64Histogram(
			"pubcloud_cloud_words",
			metric.WithDescription("Words placed in each cloud"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		artifactBytes, err = meter.Int64Histogram(
			"pubcloud_artifact_bytes",
			metric.WithDescription("Encoded artifact size"),
			metric.WithUnit("By"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

func startPublicationSpan(ctx context.Context, publicationID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "pipeline.Publication",
		trace.WithAttributes(attribute.String("publication.id", publicationID)),
	)
}

func recordPublication(ctx context.Context, duration time.Duration, words, size int, err error) {
	if initErr := initMetrics(); initErr != nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	attrs := metric.WithAttributes(attribute.String("result", result))
	renderLatency.Record(ctx, duration.Seconds(), attrs)
	renderTotal.Add(ctx, 1, attrs)
	if err == nil {
		cloudWords.Record(ctx, int64(words))
		artifactBytes.Record(ctx, int64(size))
	}
}
