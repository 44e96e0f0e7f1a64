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

// Package cor provides the building blocks for workflows. This file defines
// BaseCommand, which concrete commands embed to get a name, default
// input/output keys, and OpenTelemetry instrumentation.
//
// Each command gets a tracer named after it and two counters on the shared
// meter: "<name>.counter.success" and "<name>.counter.error". The counters
// go to whatever MeterProvider is installed globally, a no-op one when
// telemetry is disabled.
package cor

import (
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// MeterName is the instrumentation scope of every command metric.
const MeterName = "github.com/jaycherian/gcp-go-clip-studio"

// BaseCommand holds what every command has in common. Embed it and
// implement Execute.
type BaseCommand struct {
	Name            string              // Used for spans, metrics and error keys.
	InputParamName  string              // Defaults to CtxIn.
	OutputParamName string              // Defaults to CtxOut.
	Tracer          trace.Tracer        // Tracer named after the command.
	Meter           metric.Meter        // Shared meter.
	SuccessCounter  metric.Int64Counter // Incremented by Succeed.
	ErrorCounter    metric.Int64Counter // Incremented by Fail.
}

// NewBaseCommand creates a BaseCommand reading CtxIn and writing CtxOut.
func NewBaseCommand(name string) *BaseCommand {
	meter := otel.Meter(MeterName)

	successCounter, err := meter.Int64Counter(fmt.Sprintf("%s.counter.success", name))
	if err != nil {
		slog.Error("error creating success counter", "command", name, "error", err)
	}
	errorCounter, err := meter.Int64Counter(fmt.Sprintf("%s.counter.error", name))
	if err != nil {
		slog.Error("error creating error counter", "command", name, "error", err)
	}

	return &BaseCommand{
		Name:           name,
		Tracer:         otel.Tracer(name),
		Meter:          meter,
		SuccessCounter: successCounter,
		ErrorCounter:   errorCounter,
	}
}

func (c *BaseCommand) GetName() string {
	return c.Name
}

// IsExecutable requires a Go context and a value under the input key.
func (c *BaseCommand) IsExecutable(context Context) bool {
	return context != nil && context.GetContext() != nil && context.Get(c.GetInputParam()) != nil
}

func (c *BaseCommand) GetInputParam() string {
	if len(c.InputParamName) == 0 {
		return CtxIn
	}
	return c.InputParamName
}

func (c *BaseCommand) GetOutputParam() string {
	if len(c.OutputParamName) == 0 {
		return CtxOut
	}
	return c.OutputParamName
}

func (c *BaseCommand) GetTracer() trace.Tracer {
	return c.Tracer
}

func (c *BaseCommand) GetMeter() metric.Meter {
	return c.Meter
}

func (c *BaseCommand) GetSuccessCounter() metric.Int64Counter {
	return c.SuccessCounter
}

func (c *BaseCommand) GetErrorCounter() metric.Int64Counter {
	return c.ErrorCounter
}

// Succeed stores output under the output key and counts the success.
func (c *BaseCommand) Succeed(chCtx Context, output interface{}) {
	chCtx.Add(c.GetOutputParam(), output)
	if c.SuccessCounter != nil {
		c.SuccessCounter.Add(chCtx.GetContext(), 1)
	}
}

// Fail records err under the command's name, marks the current span and
// counts the failure.
func (c *BaseCommand) Fail(chCtx Context, err error) {
	ctx := chCtx.GetContext()
	chCtx.AddError(c.GetName(), err)
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if c.ErrorCounter != nil {
		c.ErrorCounter.Add(ctx, 1)
	}
	slog.ErrorContext(ctx, "command failed", "command", c.GetName(), "error", err)
}
