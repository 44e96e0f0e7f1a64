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

// Package cloud defines the data structures for application configuration,
// loaded from TOML files. It provides a structured way to manage settings
// for the Gemini models, the upload bucket, the prompt templates and the
// social platforms the studio writes for.
//
// Structs:
//   - PromptTemplates: Holds the text templates for prompts sent to GenAI models.
//   - VertexAiLLMModel: Configuration for a Gemini model and its rate limit.
//   - Storage: Configuration for the Google Cloud Storage upload bucket.
//   - PlatformStyle: Writing guidance for one social platform.
//   - Config: The top-level struct that aggregates all other configuration structs.
package cloud

import (
	"google.golang.org/genai"

	"github.com/jaycherian/gcp-go-clip-studio/internal/core/model"
)

// DefaultAgentModel is the logical name of the model used when a workflow
// does not ask for a specific one.
const DefaultAgentModel = "creative-flash"

// DefaultSafetySettings defines the default content safety thresholds for
// GenAI models. Clip titles and post copy are generated from trusted,
// operator-supplied context, so nothing is blocked.
var DefaultSafetySettings = []*genai.SafetySetting{
	{
		Category:  genai.HarmCategoryDangerousContent,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHarassment,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHateSpeech,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategorySexuallyExplicit,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
}

// PromptTemplates holds the Go text/templates for the prompts.
type PromptTemplates struct {
	ClipAnalysis string `toml:"clip_analysis"` // Asks for viral clip metadata as JSON.
	Repurpose    string `toml:"repurpose"`     // Asks for social post copy for one clip.
	ChatSystem   string `toml:"chat_system"`   // System instruction for the video assistant.
}

// VertexAiLLMModel represents the configuration for a large language model.
type VertexAiLLMModel struct {
	Model               string  `toml:"model"`                 // The name of the model, e.g. "gemini-2.5-flash".
	SystemInstructions  string  `toml:"system_instructions"`   // The system instructions for the LLM.
	Temperature         float32 `toml:"temperature"`           // The temperature parameter for the LLM.
	TopP                float32 `toml:"top_p"`                 // The top_p parameter for the LLM.
	TopK                float32 `toml:"top_k"`                 // The top_k parameter for the LLM.
	MaxTokens           int32   `toml:"max_tokens"`            // The maximum number of tokens for the LLM output.
	RateLimit           int     `toml:"rate_limit"`            // Requests per second; also the burst size.
	RetryBackoffSeconds int     `toml:"retry_backoff_seconds"` // Pause before each retry, multiplied by the attempt number.
}

// Storage represents the configuration for storage buckets.
type Storage struct {
	UploadBucket     string `toml:"upload_bucket"`      // Bucket user uploads are written to. Empty disables uploads.
	SignedUrlMinutes int    `toml:"signed_url_minutes"` // Lifetime of signed streaming URLs.
	SignerEmail      string `toml:"signer_email"`       // Service account that signs URLs; detected from credentials when empty.
}

// PlatformStyle is the writing guidance added to the repurpose prompt for
// one social platform.
type PlatformStyle struct {
	Name     string `toml:"name"`
	Guidance string `toml:"guidance"`
}

// Config represents the overall configuration for the application, loaded
// from TOML files. It acts as the root container for all other
// configuration structs.
type Config struct {
	// Application holds general application settings.
	Application struct {
		Name                 string `toml:"name"`                   // The service name reported to telemetry.
		GoogleProjectId      string `toml:"google_project_id"`      // The Google Cloud project ID.
		GoogleLocation       string `toml:"location"`               // The Google Cloud location for Vertex AI.
		ApiKey               string `toml:"api_key"`                // Gemini API key. When set, the Gemini API is used instead of Vertex AI.
		CredentialsFile      string `toml:"credentials_file"`       // Optional service account key for Cloud Storage.
		ListenAddress        string `toml:"listen_address"`         // HTTP listen address.
		DemoVideoUrl         string `toml:"demo_video_url"`         // Source played by the mock projects.
		DemoDurationSeconds  int    `toml:"demo_duration_seconds"`  // Duration the model is told the video has.
		TelemetryEnabled     bool   `toml:"telemetry_enabled"`      // Export traces and metrics to Google Cloud.
		WorkspaceIdleMinutes int    `toml:"workspace_idle_minutes"` // Workspaces unused this long are forgotten. 0 keeps them.
	} `toml:"application"`
	Storage         Storage                     `toml:"storage"`          // Storage configuration.
	PromptTemplates PromptTemplates             `toml:"prompt_templates"` // Prompt templates configuration.
	AgentModels     map[string]VertexAiLLMModel `toml:"agent_models"`     // LLM configurations keyed by a logical name (e.g., "creative-flash").
	Platforms       map[string]PlatformStyle    `toml:"platforms"`        // Social platforms keyed by lower-case name.
}

// NewConfig creates a Config with working defaults. The maps are
// initialized so the TOML loader can populate them, and the defaults let
// the studio run with no configuration files at all.
func NewConfig() *Config {
	c := &Config{
		AgentModels: map[string]VertexAiLLMModel{
			DefaultAgentModel: {
				Model:       "gemini-2.5-flash",
				Temperature: 1,
				TopP:        0.95,
				TopK:        40,
				MaxTokens:   8192,
				RateLimit:   5,
			},
		},
		Platforms: map[string]PlatformStyle{
			"linkedin": {Name: string(model.PlatformLinkedIn), Guidance: "Write for a professional audience. Up to three short paragraphs."},
			"twitter":  {Name: string(model.PlatformTwitter), Guidance: "Stay under 280 characters."},
		},
		PromptTemplates: PromptTemplates{
			ClipAnalysis: DefaultClipAnalysisPrompt,
			Repurpose:    DefaultRepurposePrompt,
			ChatSystem:   DefaultChatSystemPrompt,
		},
		Storage: Storage{SignedUrlMinutes: 15},
	}
	c.Application.Name = "clip-studio"
	c.Application.GoogleLocation = "us-central1"
	c.Application.ListenAddress = ":8080"
	c.Application.DemoVideoUrl = model.DemoVideoUrl
	c.Application.DemoDurationSeconds = 300
	c.Application.WorkspaceIdleMinutes = 60
	return c
}

// Platform returns the style for a platform, falling back to a style with
// only the name set.
func (c *Config) Platform(p model.Platform) PlatformStyle {
	for _, s := range c.Platforms {
		if s.Name == string(p) {
			return s
		}
	}
	return PlatformStyle{Name: string(p)}
}
