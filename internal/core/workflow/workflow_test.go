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

// Package workflow_test runs the workflows end to end against a scripted
// model and an in-memory bucket.
package workflow_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaycherian/gcp-go-clip-studio/internal/cloud"
	"github.com/jaycherian/gcp-go-clip-studio/internal/core/commands"
	"github.com/jaycherian/gcp-go-clip-studio/internal/core/model"
	"github.com/jaycherian/gcp-go-clip-studio/internal/core/workflow"
	test "github.com/jaycherian/gcp-go-clip-studio/internal/testutil"
)

var (
	ctx    context.Context
	config *cloud.Config
)

// TestMain loads the test configuration once for the package.
func TestMain(m *testing.M) {
	var cancel context.CancelFunc
	ctx, cancel = context.WithCancel(context.Background())
	config = test.GetConfig()

	code := m.Run()
	cancel()
	os.Exit(code)
}

func modelFor(gen cloud.ContentGenerator) *cloud.QuotaAwareGenerativeAIModel {
	return test.NewTestModels(config, gen)[cloud.DefaultAgentModel]
}

func TestClipAnalysisWorkflow(t *testing.T) {
	gen := test.NewFakeGenerator(test.GetTestClipAnalysisJSON())
	wf, err := workflow.NewClipAnalysisWorkflow(config, modelFor(gen))
	require.NoError(t, err)

	clips, err := wf.Run(ctx, &commands.AnalysisRequest{
		VideoContext:    model.InitialProjects()[0].AnalysisContext(),
		DurationSeconds: float64(config.Application.DemoDurationSeconds),
	})
	require.NoError(t, err)
	require.Len(t, clips, 3)
	for _, c := range clips {
		assert.True(t, strings.HasPrefix(c.Id, commands.GeneratedClipPrefix))
		assert.LessOrEqual(t, c.EndTime, 300.0)
	}

	require.Len(t, gen.Requests(), 1)
	req := gen.LastRequest()
	assert.Equal(t, "gemini-2.5-flash", req.Model)
	assert.Contains(t, req.Prompt(), "Q3 financial results")
	assert.Equal(t, "application/json", req.Config.ResponseMIMEType)
	assert.Equal(t, int32(2048), req.Config.MaxOutputTokens)
}

func TestClipAnalysisWorkflowBadJSON(t *testing.T) {
	gen := test.NewFakeGenerator("Sorry, I cannot help with that.")
	wf, err := workflow.NewClipAnalysisWorkflow(config, modelFor(gen))
	require.NoError(t, err)

	clips, err := wf.Run(ctx, &commands.AnalysisRequest{VideoContext: "x", DurationSeconds: 300})
	assert.Nil(t, clips)
	assert.ErrorContains(t, err, "convert-clip-metadata")
}

func TestClipAnalysisWorkflowModelDown(t *testing.T) {
	gen := test.NewFakeGenerator("[]")
	gen.FailNext(cloud.MaxRetries+1, errors.New("unavailable"))
	wf, err := workflow.NewClipAnalysisWorkflow(config, modelFor(gen))
	require.NoError(t, err)

	_, err = wf.Run(ctx, &commands.AnalysisRequest{VideoContext: "x", DurationSeconds: 300})
	assert.ErrorIs(t, err, cloud.ErrMaxRetries)
	assert.NotContains(t, err.Error(), "convert-clip-metadata", "the chain stops at the first failure")
}

func TestBadTemplates(t *testing.T) {
	broken := *config
	broken.PromptTemplates.ClipAnalysis = "{{ .CONTEXT "
	broken.PromptTemplates.Repurpose = "{{ end }}"

	_, err := workflow.NewClipAnalysisWorkflow(&broken, modelFor(test.NewFakeGenerator()))
	assert.ErrorContains(t, err, "clip analysis template")
	_, err = workflow.NewPostRepurposeWorkflow(&broken, modelFor(test.NewFakeGenerator()))
	assert.ErrorContains(t, err, "repurpose template")
}

func TestPostRepurposeWorkflow(t *testing.T) {
	gen := test.NewFakeGenerator("  Catch the highlights 🎬 #AI #FutureOfWork  ")
	wf, err := workflow.NewPostRepurposeWorkflow(config, modelFor(gen))
	require.NoError(t, err)

	post, err := wf.Run(ctx, model.MockClips()[0], model.PlatformLinkedIn)
	require.NoError(t, err)
	assert.Equal(t, "Catch the highlights 🎬 #AI #FutureOfWork", post)
	assert.Contains(t, gen.LastRequest().Prompt(), "social media post for LinkedIn")
	assert.Empty(t, gen.LastRequest().Config.ResponseMIMEType)
}

func TestPostRepurposeWorkflowNoClip(t *testing.T) {
	wf, err := workflow.NewPostRepurposeWorkflow(config, modelFor(test.NewFakeGenerator("x")))
	require.NoError(t, err)
	_, err = wf.Run(ctx, nil, model.PlatformTwitter)
	assert.Error(t, err)
}

func TestMediaUploadWorkflow(t *testing.T) {
	bucket := &test.MemoryBucket{}
	wf := workflow.NewMediaUploadWorkflow(bucket, "clip-uploads")

	obj, err := wf.Run(ctx, "keynote.mp4", bytes.NewReader(test.MP4Header()))
	require.NoError(t, err)
	assert.Equal(t, "gs://clip-uploads/keynote.mp4", obj.URI())
	assert.Equal(t, test.MP4Header(), bucket.Object("clip-uploads", "keynote.mp4").Bytes())

	_, err = wf.Run(ctx, "notes.txt", strings.NewReader("just some text, definitely not a video"))
	assert.ErrorIs(t, err, commands.ErrNotVideo)
	assert.Nil(t, bucket.Object("clip-uploads", "notes.txt"))
}
