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

package cloud_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"google.golang.org/genai"

	"github.com/jaycherian/gcp-go-clip-studio/internal/cloud"
	"github.com/jaycherian/gcp-go-clip-studio/internal/core/model"
	test "github.com/jaycherian/gcp-go-clip-studio/internal/testutil"
)

func counters(t *testing.T) (in, out, retry metric.Int64Counter) {
	t.Helper()
	meter := noop.NewMeterProvider().Meter("cloud_test")
	var err error
	in, err = meter.Int64Counter("in")
	require.NoError(t, err)
	out, err = meter.Int64Counter("out")
	require.NoError(t, err)
	retry, err = meter.Int64Counter("retry")
	require.NoError(t, err)
	return in, out, retry
}

// TestLoadConfig verifies the test overlay is merged over the base file.
func TestLoadConfig(t *testing.T) {
	config := test.GetConfig()

	assert.Equal(t, "clip-studio-test", config.Application.GoogleProjectId)
	assert.Equal(t, "us-central1", config.Application.GoogleLocation)
	assert.Equal(t, 300, config.Application.DemoDurationSeconds)
	assert.Equal(t, 60, config.Application.WorkspaceIdleMinutes)
	assert.Equal(t, 15, config.Storage.SignedUrlMinutes)

	flash, ok := config.AgentModels[cloud.DefaultAgentModel]
	require.True(t, ok)
	assert.Equal(t, "gemini-2.5-flash", flash.Model)
	assert.Equal(t, 0, flash.RateLimit)
	assert.Equal(t, int32(2048), flash.MaxTokens)

	assert.Equal(t, cloud.DefaultClipAnalysisPrompt, config.PromptTemplates.ClipAnalysis)
	assert.Equal(t, "LinkedIn", config.Platform(model.PlatformLinkedIn).Name)
}

func TestLoadConfigMissingFiles(t *testing.T) {
	t.Setenv(cloud.EnvConfigFilePrefix, t.TempDir())
	t.Setenv(cloud.EnvConfigRuntime, "local")
	t.Setenv(cloud.EnvApiKey, "from-env")

	config := cloud.NewConfig()
	require.NoError(t, cloud.LoadConfig(config))
	assert.Equal(t, ":8080", config.Application.ListenAddress)
	assert.Equal(t, "from-env", config.Application.ApiKey)
}

func TestLoadConfigBadFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.toml"), []byte("[application\nname="), 0o600))
	t.Setenv(cloud.EnvConfigFilePrefix, dir)

	err := cloud.LoadConfig(cloud.NewConfig())
	assert.ErrorContains(t, err, ".env.toml")
}

func TestPlatformFallback(t *testing.T) {
	config := cloud.NewConfig()
	config.Platforms = nil
	style := config.Platform(model.PlatformTwitter)
	assert.Equal(t, "Twitter", style.Name)
	assert.Empty(t, style.Guidance)
}

func TestGenerateMultiModalResponseStripsFence(t *testing.T) {
	in, out, retry := counters(t)
	gen := test.NewFakeGenerator("```json\n[{\"title\":\"x\"}]\n```")

	value, err := cloud.GenerateMultiModalResponse(context.Background(), in, out, retry, 0, test.NewTestModel(gen), cloud.NewTextContent("hi"))
	require.NoError(t, err)
	assert.Equal(t, `[{"title":"x"}]`, value)
	assert.Equal(t, "hi", gen.LastRequest().Prompt())
	assert.Equal(t, "gemini-test", gen.LastRequest().Model)
}

func TestGenerateMultiModalResponseRetries(t *testing.T) {
	in, out, retry := counters(t)
	gen := test.NewFakeGenerator("ok")
	gen.FailNext(cloud.MaxRetries, errors.New("503"))

	value, err := cloud.GenerateMultiModalResponse(context.Background(), in, out, retry, 0, test.NewTestModel(gen), cloud.NewTextContent("hi"))
	require.NoError(t, err)
	assert.Equal(t, "ok", value)
	assert.Len(t, gen.Requests(), cloud.MaxRetries+1)
}

func TestGenerateMultiModalResponseGivesUp(t *testing.T) {
	in, out, retry := counters(t)
	cause := errors.New("quota exceeded")
	gen := test.NewFakeGenerator("never")
	gen.FailNext(cloud.MaxRetries+1, cause)

	_, err := cloud.GenerateMultiModalResponse(context.Background(), in, out, retry, 0, test.NewTestModel(gen), cloud.NewTextContent("hi"))
	assert.ErrorIs(t, err, cloud.ErrMaxRetries)
	assert.ErrorIs(t, err, cause)
}

func TestGenerateMultiModalResponseEmpty(t *testing.T) {
	in, out, retry := counters(t)
	gen := test.NewFakeGenerator("```json\n```")

	_, err := cloud.GenerateMultiModalResponse(context.Background(), in, out, retry, 0, test.NewTestModel(gen), cloud.NewTextContent("hi"))
	assert.ErrorIs(t, err, cloud.ErrEmptyResponse)
}

func TestGenerateMultiModalResponseCancelled(t *testing.T) {
	in, out, retry := counters(t)
	gen := test.NewFakeGenerator("late")
	release := gen.Hold()
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := cloud.GenerateMultiModalResponse(ctx, in, out, retry, 0, test.NewTestModel(gen), cloud.NewTextContent("hi"))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Len(t, gen.Requests(), 1)
}

func TestResponseTextNil(t *testing.T) {
	assert.Empty(t, cloud.ResponseText(nil))
	assert.Empty(t, cloud.ResponseText(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}}))
}

func TestQuotaAwareModelWithConfig(t *testing.T) {
	gen := test.NewFakeGenerator("ok")
	base := cloud.NewQuotaAwareModel(&genai.GenerateContentConfig{Temperature: genai.Ptr[float32](1)}, "m", gen, 2)

	cfg := base.CloneConfig()
	cfg.ResponseMIMEType = "application/json"
	derived := base.WithConfig(cfg)

	assert.Same(t, base.RateLimit, derived.RateLimit)
	assert.Empty(t, base.GenerativeContentConfig.ResponseMIMEType)

	_, err := derived.GenerateContent(context.Background(), cloud.NewTextContent("x"))
	require.NoError(t, err)
	assert.Equal(t, "application/json", gen.LastRequest().Config.ResponseMIMEType)
}

func TestNewAgentModels(t *testing.T) {
	config := cloud.NewConfig()
	config.AgentModels["careful"] = cloud.VertexAiLLMModel{
		Model:               "gemini-2.5-pro",
		Temperature:         0.2,
		SystemInstructions:  "Be brief.",
		RateLimit:           1,
		RetryBackoffSeconds: 3,
	}
	models := test.NewTestModels(config, test.NewFakeGenerator())

	require.Len(t, models, 2)
	careful := models["careful"]
	assert.Equal(t, "gemini-2.5-pro", careful.ModelName)
	assert.Equal(t, float32(0.2), *careful.GenerativeContentConfig.Temperature)
	assert.Equal(t, "Be brief.", test.ContentText(careful.GenerativeContentConfig.SystemInstruction))
	assert.Equal(t, 3*time.Second, careful.RetryBackoff)
	assert.Nil(t, models[cloud.DefaultAgentModel].GenerativeContentConfig.SystemInstruction)

	clients := &cloud.ServiceClients{AgentModels: models}
	m, err := clients.Model("unknown")
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-flash", m.ModelName)

	_, err = (&cloud.ServiceClients{}).Model("")
	assert.Error(t, err)
}

func TestParseGCSURI(t *testing.T) {
	for uri, want := range map[string]cloud.GCSObject{
		"gs://uploads/videos/a.mp4":                                  {Bucket: "uploads", Name: "videos/a.mp4"},
		"https://storage.googleapis.com/uploads/a.mp4":               {Bucket: "uploads", Name: "a.mp4"},
		"https://storage.mtls.cloud.google.com/media_low_res/x.mp4":  {Bucket: "media_low_res", Name: "x.mp4"},
		"https://storage.cloud.google.com/b/nested/path/to/file.mov": {Bucket: "b", Name: "nested/path/to/file.mov"},
	} {
		got, err := cloud.ParseGCSURI(uri)
		require.NoError(t, err, uri)
		assert.Equal(t, want, got)
	}

	for _, uri := range []string{model.DemoVideoUrl, "gs://bucket-only", "gs:///a.mp4", ""} {
		_, err := cloud.ParseGCSURI(uri)
		assert.ErrorIs(t, err, cloud.ErrNotGCS, uri)
	}

	assert.Equal(t, "gs://b/o.mp4", cloud.GCSObject{Bucket: "b", Name: "o.mp4"}.URI())
}
