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

// Package cor (Chain of Responsibility) provides the building blocks for the
// studio's generative workflows. A workflow is a Chain of Commands sharing one
// Context: each command reads its input from the context, does one step
// (render a prompt, call the model, parse the answer) and writes its output
// back for the next command.
package cor

import (
	"context"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// CtxIn and CtxOut are the keys BaseChain uses to pipe one command's output
// into the next command's input.
const (
	CtxIn  = "__IN__"
	CtxOut = "__OUT__"
)

// Context is the shared state of one workflow run.
type Context interface {
	// SetContext sets the Go context that carries cancellation and the
	// current trace span.
	SetContext(context context.Context)

	// GetContext returns the Go context.
	GetContext() context.Context

	// Add stores a value and returns the Context for chaining.
	Add(key string, value interface{}) Context

	// Get returns the value stored under key, or nil.
	Get(key string) interface{}

	// Remove deletes the value stored under key.
	Remove(key string)

	// AddError records an error, keyed by the command that produced it.
	AddError(key string, err error)

	// GetErrors returns every recorded error.
	GetErrors() map[string]error

	// HasErrors reports whether any error has been recorded.
	HasErrors() bool

	// Err joins the recorded errors into one, or returns nil.
	Err() error
}

// Executable is anything that can run against a Context.
type Executable interface {
	Execute(context Context)
}

// Command is one named, instrumented step of a workflow.
type Command interface {
	Executable

	// GetName returns the name used for spans, metrics and error keys.
	GetName() string

	// GetInputParam returns the context key the command reads.
	GetInputParam() string

	// GetOutputParam returns the context key the command writes.
	GetOutputParam() string

	// IsExecutable checks the command's preconditions against the context.
	IsExecutable(context Context) bool

	GetTracer() trace.Tracer
	GetMeter() metric.Meter
	GetSuccessCounter() metric.Int64Counter
	GetErrorCounter() metric.Int64Counter
}

// Chain is a Command that runs other commands in order.
type Chain interface {
	Command

	// ContinueOnFailure controls whether the chain keeps going after a
	// command records an error.
	ContinueOnFailure(bool) Chain

	// AddCommand appends a command.
	AddCommand(command Command) Chain
}
