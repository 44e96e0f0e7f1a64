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
// BaseChain, the default Chain.
//
// Logic Flow:
//  1. Execute opens a span for the chain.
//  2. For each command it stops early when an earlier command failed (unless
//     ContinueOnFailure is set) or when the Go context is done.
//  3. An executable command runs under its own child span; a command whose
//     preconditions fail is recorded as an error.
//  4. Whatever the command left under CtxOut becomes CtxIn for the next one.
package cor

import (
	"fmt"

	"go.opentelemetry.io/otel/codes"
)

// BaseChain runs commands in order, piping CtxOut into CtxIn.
type BaseChain struct {
	BaseCommand
	continueOnFailure bool
	commands          []Command
}

// NewBaseChain creates an empty chain.
func NewBaseChain(name string) *BaseChain {
	return &BaseChain{BaseCommand: *NewBaseCommand(name)}
}

func (c *BaseChain) ContinueOnFailure(continueOnFailure bool) Chain {
	c.continueOnFailure = continueOnFailure
	return c
}

func (c *BaseChain) AddCommand(command Command) Chain {
	c.commands = append(c.commands, command)
	return c
}

// IsExecutable only needs a Go context; the first command checks its own input.
func (c *BaseChain) IsExecutable(context Context) bool {
	return context != nil && context.GetContext() != nil
}

func (c *BaseChain) Execute(chCtx Context) {
	parentCtx := chCtx.GetContext()
	outerCtx, chainSpan := c.Tracer.Start(parentCtx, fmt.Sprintf("%s_execute", c.GetName()))
	defer chainSpan.End()
	defer chCtx.SetContext(parentCtx)

	for _, command := range c.commands {
		if chCtx.HasErrors() && !c.continueOnFailure {
			break
		}
		if err := outerCtx.Err(); err != nil {
			chCtx.AddError(c.GetName(), err)
			break
		}

		commandContext, commandSpan := c.Tracer.Start(outerCtx, command.GetName())
		if command.IsExecutable(chCtx) {
			chCtx.SetContext(commandContext)
			command.Execute(chCtx)
			chCtx.SetContext(outerCtx)
		} else {
			chCtx.AddError(command.GetName(), fmt.Errorf("command not executable: missing %q", command.GetInputParam()))
		}

		if err := chCtx.GetErrors()[command.GetName()]; err != nil {
			commandSpan.SetStatus(codes.Error, err.Error())
		} else {
			commandSpan.SetStatus(codes.Ok, "")
		}
		commandSpan.End()

		// A command that produced nothing leaves the input for the next one.
		if output := chCtx.Get(CtxOut); output != nil {
			chCtx.Add(CtxIn, output)
		}
		chCtx.Remove(CtxOut)
	}

	counter := c.SuccessCounter
	if chCtx.HasErrors() {
		chainSpan.SetStatus(codes.Error, "chain failed")
		counter = c.ErrorCounter
	} else {
		chainSpan.SetStatus(codes.Ok, "")
	}
	if counter != nil {
		counter.Add(outerCtx, 1)
	}
}
