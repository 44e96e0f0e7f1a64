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

// Package commands provides the concrete implementations of the Chain of
// Responsibility (COR) pattern's Command interface. This file defines the
// command that asks the generative model for viral clip metadata.
//
// Logic Flow:
//  1. It receives an AnalysisRequest from the context.
//  2. It renders the clip analysis template with the video context, the
//     duration, the clip length bounds and a few-shot example clip.
//  3. When the request names a Cloud Storage video, the video is attached to
//     the prompt as file data so the model can watch it.
//  4. It calls the model in JSON mode with a response schema describing an
//     array of clips.
//  5. It places the raw JSON string into the context for ClipJsonToStruct.
package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"text/template"

	"google.golang.org/genai"

	"github.com/jaycherian/gcp-go-clip-studio/internal/cloud"
	"github.com/jaycherian/gcp-go-clip-studio/internal/core/cor"
	"github.com/jaycherian/gcp-go-clip-studio/internal/core/model"
)

// ClipAnalysisCreator is a command that uses a generative model to invent
// clip metadata for a video.
type ClipAnalysisCreator struct {
	cor.BaseCommand
	generativeAIModel *cloud.QuotaAwareGenerativeAIModel // JSON-mode view of the configured model.
	template          *template.Template                 // The clip analysis prompt.
	gemini            geminiCounters
}

// NewClipAnalysisCreator is the constructor for the ClipAnalysisCreator command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - generativeAIModel: The rate-limited model. The command derives a JSON-mode
//     copy that shares its limiter.
//   - template: The parsed clip analysis prompt.
//
// Outputs:
//   - *ClipAnalysisCreator: A pointer to the newly instantiated command.
func NewClipAnalysisCreator(
	name string,
	generativeAIModel *cloud.QuotaAwareGenerativeAIModel,
	template *template.Template) *ClipAnalysisCreator {

	config := generativeAIModel.CloneConfig()
	config.ResponseMIMEType = "application/json"
	config.ResponseSchema = ClipResponseSchema()

	out := &ClipAnalysisCreator{
		BaseCommand:       *cor.NewBaseCommand(name),
		generativeAIModel: generativeAIModel.WithConfig(config),
		template:          template,
	}
	out.gemini = newGeminiCounters(&out.BaseCommand)
	return out
}

// ClipResponseSchema describes the JSON array of clips the model must return.
func ClipResponseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"title":      {Type: genai.TypeString, Description: "Catchy title for the clip"},
				"startTime":  {Type: genai.TypeNumber, Description: "Start time in seconds"},
				"endTime":    {Type: genai.TypeNumber, Description: "End time in seconds"},
				"summary":    {Type: genai.TypeString, Description: "Brief summary of what happens"},
				"viralScore": {Type: genai.TypeInteger, Description: "Predicted virality score 0-100"},
				"tags": {
					Type:        genai.TypeArray,
					Items:       &genai.Schema{Type: genai.TypeString},
					Description: "3 relevant hashtags",
				},
			},
			Required:         []string{"title", "startTime", "endTime", "summary", "viralScore", "tags"},
			PropertyOrdering: []string{"title", "startTime", "endTime", "summary", "viralScore", "tags"},
		},
	}
}

// GenerateParams creates the template parameters for a request.
func (t *ClipAnalysisCreator) GenerateParams(req *AnalysisRequest) (map[string]interface{}, error) {
	params := make(map[string]interface{})
	params["CONTEXT"] = req.VideoContext
	params["DURATION"] = fmt.Sprintf("%.0f", req.DurationSeconds)
	params["MIN_LENGTH"] = MinClipSeconds
	params["MAX_LENGTH"] = MaxClipSeconds

	example, err := json.Marshal(recordFromClip(model.GetExampleClip()))
	if err != nil {
		return nil, fmt.Errorf("failed to encode example clip: %w", err)
	}
	params["EXAMPLE_JSON"] = string(example)
	return params, nil
}

func (t *ClipAnalysisCreator) Execute(context cor.Context) {
	req, ok := cor.GetAs[*AnalysisRequest](context, t.GetInputParam())
	if !ok || req == nil {
		t.Fail(context, fmt.Errorf("expected *AnalysisRequest under %q", t.GetInputParam()))
		return
	}

	params, err := t.GenerateParams(req)
	if err != nil {
		t.Fail(context, err)
		return
	}

	var buffer bytes.Buffer
	if err := t.template.Execute(&buffer, params); err != nil {
		t.Fail(context, fmt.Errorf("failed to execute prompt template: %w", err))
		return
	}

	parts := []*genai.Part{genai.NewPartFromText(buffer.String())}
	if req.MediaURI != "" {
		parts = append(parts, genai.NewPartFromURI(req.MediaURI, req.MediaMIMEType))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	out, err := cloud.GenerateMultiModalResponse(context.GetContext(), t.gemini.input, t.gemini.output, t.gemini.retry, 0, t.generativeAIModel, contents)
	if err != nil {
		t.Fail(context, fmt.Errorf("gemini request failed: %w", err))
		return
	}
	t.Succeed(context, out)
}
