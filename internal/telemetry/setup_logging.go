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
// This file specifically handles the setup of structured logging that
// is compatible with Google Cloud Logging and integrates with OpenTelemetry traces.
package telemetry

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"os"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/trace"
)

// spanContextLogHandler wraps another handler and adds the OpenTelemetry
// trace and span IDs of the record's context, using the field names Cloud
// Logging correlates with Cloud Trace.
type spanContextLogHandler struct {
	slog.Handler
}

func handlerWithSpanContext(handler slog.Handler) *spanContextLogHandler {
	return &spanContextLogHandler{Handler: handler}
}

func (t *spanContextLogHandler) Handle(ctx context.Context, record slog.Record) error {
	if s := trace.SpanContextFromContext(ctx); s.IsValid() {
		// See: https://cloud.google.com/logging/docs/structured-logging#special-payload-fields
		record.AddAttrs(
			slog.Any("logging.googleapis.com/trace", s.TraceID()),
			slog.Any("logging.googleapis.com/spanId", s.SpanID()),
			slog.Bool("logging.googleapis.com/trace_sampled", s.TraceFlags().IsSampled()),
		)
	}
	return t.Handler.Handle(ctx, record)
}

func (t *spanContextLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return handlerWithSpanContext(t.Handler.WithAttrs(attrs))
}

func (t *spanContextLogHandler) WithGroup(name string) slog.Handler {
	return handlerWithSpanContext(t.Handler.WithGroup(name))
}

// replacer renames the default slog keys to the ones Cloud Logging expects
// ("severity", "timestamp", "message").
func replacer(_ []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case slog.LevelKey:
		a.Key = "severity"
		// https://cloud.google.com/logging/docs/reference/v2/rest/v2/LogEntry#LogSeverity
		if level, ok := a.Value.Any().(slog.Level); ok && level == slog.LevelWarn {
			a.Value = slog.StringValue("WARNING")
		}
	case slog.TimeKey:
		a.Key = "timestamp"
	case slog.MessageKey:
		a.Key = "message"
	}
	return a
}

// NewHandler returns the JSON handler used by the whole application: Cloud
// Logging field names plus trace correlation.
func NewHandler(w io.Writer, level slog.Leveler) slog.Handler {
	return handlerWithSpanContext(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level, ReplaceAttr: replacer}))
}

// SetupLogging points the standard `log` package and the default slog
// logger at stdout and, when logFile is set, at that file as well. The
// returned closer closes the file.
func SetupLogging(logFile string) (io.Closer, error) {
	var writer io.Writer = os.Stdout
	var closer io.Closer = io.NopCloser(nil)
	if logFile != "" {
		file, err := os.Create(logFile)
		if err != nil {
			return nil, err
		}
		writer = io.MultiWriter(os.Stdout, file)
		closer = file
	}

	log.SetOutput(writer)
	log.SetPrefix("[INFO] ")
	log.SetFlags(log.Ldate | log.Ltime)

	slog.SetDefault(slog.New(NewHandler(writer, slog.LevelInfo)))
	return closer, nil
}

// NewLogger returns a logger that writes through the default slog handler
// and through the OpenTelemetry log bridge under the given instrumentation
// name.
func NewLogger(name string) *slog.Logger {
	return slog.New(teeHandler{slog.Default().Handler(), otelslog.NewHandler(name)})
}

// teeHandler sends every record to each of its handlers.
type teeHandler []slog.Handler

func (h teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h teeHandler) Handle(ctx context.Context, record slog.Record) error {
	var err error
	for _, handler := range h {
		if handler.Enabled(ctx, record.Level) {
			err = errors.Join(err, handler.Handle(ctx, record.Clone()))
		}
	}
	return err
}

func (h teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(teeHandler, len(h))
	for i, handler := range h {
		out[i] = handler.WithAttrs(attrs)
	}
	return out
}

func (h teeHandler) WithGroup(name string) slog.Handler {
	out := make(teeHandler, len(h))
	for i, handler := range h {
		out[i] = handler.WithGroup(name)
	}
	return out
}
