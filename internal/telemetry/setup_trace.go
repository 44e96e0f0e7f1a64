// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package telemetry provides utilities for setting up and configuring
// application observability, including logging, tracing, and metrics.
// This file focuses on initializing the OpenTelemetry SDK for capturing and
// exporting trace and metric data to Google Cloud's observability suite.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/sdk/metric"

	mexporter "github.com/GoogleCloudPlatform/opentelemetry-operations-go/exporter/metric"
	telemetryexporter "github.com/GoogleCloudPlatform/opentelemetry-operations-go/exporter/trace"

	"github.com/jaycherian/gcp-go-clip-studio/internal/cloud"
	"go.opentelemetry.io/contrib/detectors/gcp"
	"go.opentelemetry.io/contrib/propagators/autoprop"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
)

// SetupOpenTelemetry initializes and configures the OpenTelemetry SDK for the entire application.
// It sets up both tracing and metrics, configuring them to export data to Google Cloud's
// observability suite (Cloud Trace for traces, Cloud Monitoring for metrics). It returns
// a `shutdown` function that must be called on application exit to ensure all buffered
// telemetry data is flushed before the application terminates.
//
// When `application.telemetry_enabled` is false nothing is installed, the
// global no-op providers stay in place and shutdown does nothing.
//
// Inputs:
//   - ctx: The parent context, used for initialization of clients.
//   - config: Provides the Google Project ID and the service name.
//
// Returns:
//   - shutdown: Flushes and stops every provider that was installed.
//   - err: An error if any part of the setup fails.
func SetupOpenTelemetry(ctx context.Context, config *cloud.Config) (shutdown func(context.Context) error, err error) {
	var shutdownFuncs []func(context.Context) error
	shutdown = func(ctx context.Context) error {
		var err error
		for _, fn := range shutdownFuncs {
			err = errors.Join(err, fn(ctx))
		}
		shutdownFuncs = nil
		return err
	}

	if !config.Application.TelemetryEnabled {
		slog.Info("telemetry export disabled")
		return shutdown, nil
	}

	res, err := resource.New(ctx,
		// The GCP detector discovers the instance, cluster or Cloud Run service.
		resource.WithDetectors(gcp.NewDetector()),
		resource.WithTelemetrySDK(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(config.Application.Name),
		),
	)
	if errors.Is(err, resource.ErrPartialResource) || errors.Is(err, resource.ErrSchemaURLConflict) {
		slog.Warn("partial resource detection", "error", err)
	} else if err != nil {
		return nil, fmt.Errorf("resource.New failed: %w", err)
	}

	otel.SetTextMapPropagator(autoprop.NewTextMapPropagator())

	traceExporter, err := telemetryexporter.New(telemetryexporter.WithProjectID(config.Application.GoogleProjectId))
	if err != nil {
		return nil, fmt.Errorf("unable to set up trace exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)
	shutdownFuncs = append(shutdownFuncs, tp.Shutdown)
	otel.SetTracerProvider(tp)

	mExporter, err := mexporter.New(
		mexporter.WithProjectID(config.Application.GoogleProjectId),
	)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("failed to create metric exporter: %w", err), shutdown(ctx))
	}
	mProvider := metric.NewMeterProvider(
		metric.WithReader(metric.NewPeriodicReader(mExporter)),
		metric.WithResource(res),
	)
	shutdownFuncs = append(shutdownFuncs, mProvider.Shutdown)
	otel.SetMeterProvider(mProvider)

	slog.Info("telemetry export enabled", "project", config.Application.GoogleProjectId, "service", config.Application.Name)
	return shutdown, nil
}
