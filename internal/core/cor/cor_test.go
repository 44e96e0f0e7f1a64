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

package cor_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaycherian/gcp-go-clip-studio/internal/core/cor"
)

// upper is a command that upper-cases its string input.
type upper struct {
	cor.BaseCommand
	runs int
}

func newUpper(name string) *upper {
	return &upper{BaseCommand: *cor.NewBaseCommand(name)}
}

func (u *upper) Execute(chCtx cor.Context) {
	u.runs++
	in, ok := cor.GetAs[string](chCtx, u.GetInputParam())
	if !ok {
		u.Fail(chCtx, errors.New("input is not a string"))
		return
	}
	u.Succeed(chCtx, strings.ToUpper(in)+"!")
}

// failing always records an error.
type failing struct {
	cor.BaseCommand
}

func (f *failing) Execute(chCtx cor.Context) {
	f.Fail(chCtx, errors.New("boom"))
}

func TestChainPipesOutputToInput(t *testing.T) {
	first, second := newUpper("first"), newUpper("second")
	chain := cor.NewBaseChain("pipe")
	chain.AddCommand(first).AddCommand(second)

	chCtx := cor.NewBaseContext(context.Background())
	chCtx.Add(cor.CtxIn, "clip")
	chain.Execute(chCtx)

	require.NoError(t, chCtx.Err())
	assert.Equal(t, "CLIP!!", chCtx.Get(cor.CtxIn))
	assert.Nil(t, chCtx.Get(cor.CtxOut))
	assert.Equal(t, 1, second.runs)
}

func TestChainStopsOnFailure(t *testing.T) {
	after := newUpper("after")
	chain := cor.NewBaseChain("stop")
	chain.AddCommand(&failing{BaseCommand: *cor.NewBaseCommand("failing")}).AddCommand(after)

	chCtx := cor.NewBaseContext(context.Background())
	chCtx.Add(cor.CtxIn, "clip")
	chain.Execute(chCtx)

	assert.True(t, chCtx.HasErrors())
	assert.ErrorContains(t, chCtx.Err(), "failing: boom")
	assert.Zero(t, after.runs)
}

func TestChainContinueOnFailure(t *testing.T) {
	after := newUpper("after")
	chain := cor.NewBaseChain("continue")
	chain.ContinueOnFailure(true)
	chain.AddCommand(&failing{BaseCommand: *cor.NewBaseCommand("failing")}).AddCommand(after)

	chCtx := cor.NewBaseContext(context.Background())
	chCtx.Add(cor.CtxIn, "clip")
	chain.Execute(chCtx)

	assert.Equal(t, 1, after.runs)
	assert.Len(t, chCtx.GetErrors(), 1)
	assert.Equal(t, "CLIP!", chCtx.Get(cor.CtxIn))
}

func TestChainRecordsMissingInput(t *testing.T) {
	cmd := newUpper("needs-input")
	chain := cor.NewBaseChain("missing")
	chain.AddCommand(cmd)

	chCtx := cor.NewBaseContext(context.Background())
	chain.Execute(chCtx)

	assert.Zero(t, cmd.runs)
	assert.ErrorContains(t, chCtx.Err(), "command not executable")
}

func TestChainStopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cmd := newUpper("never")
	chain := cor.NewBaseChain("cancelled")
	chain.AddCommand(cmd)

	chCtx := cor.NewBaseContext(ctx)
	chCtx.Add(cor.CtxIn, "clip")
	chain.Execute(chCtx)

	assert.Zero(t, cmd.runs)
	assert.ErrorIs(t, chCtx.Err(), context.Canceled)
	assert.Equal(t, ctx, chCtx.GetContext())
}

func TestCustomParamNames(t *testing.T) {
	cmd := newUpper("named")
	cmd.InputParamName = "title"
	cmd.OutputParamName = "shout"

	chCtx := cor.NewBaseContext(context.Background())
	assert.False(t, cmd.IsExecutable(chCtx))

	chCtx.Add("title", "hello")
	require.True(t, cmd.IsExecutable(chCtx))
	cmd.Execute(chCtx)
	assert.Equal(t, "HELLO!", chCtx.Get("shout"))

	chCtx.Remove("shout")
	assert.Nil(t, chCtx.Get("shout"))
}

func TestGetAsWrongType(t *testing.T) {
	chCtx := cor.NewBaseContext(context.Background()).Add("n", 3)
	_, ok := cor.GetAs[string](chCtx, "n")
	assert.False(t, ok)
	n, ok := cor.GetAs[int](chCtx, "n")
	assert.True(t, ok)
	assert.Equal(t, 3, n)
}
