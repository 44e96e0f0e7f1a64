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

package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"google.golang.org/genai"

	"github.com/jaycherian/gcp-go-clip-studio/internal/cloud"
	"github.com/jaycherian/gcp-go-clip-studio/internal/core/commands"
	"github.com/jaycherian/gcp-go-clip-studio/internal/core/cor"
	"github.com/jaycherian/gcp-go-clip-studio/internal/core/model"
	"github.com/jaycherian/gcp-go-clip-studio/internal/core/workflow"
)

// ChatMetricPrefix names the chat token counters.
const ChatMetricPrefix = "video-chat"

// Assistant is the studio's generative AI boundary: clip analysis, post
// repurposing and chat about the open video.
type Assistant struct {
	analysis        *workflow.ClipAnalysisWorkflow
	repurpose       *workflow.PostRepurposeWorkflow
	chatModel       *cloud.QuotaAwareGenerativeAIModel
	chatTemplate    *template.Template
	durationSeconds float64

	tokenIn  metric.Int64Counter
	tokenOut metric.Int64Counter
	retry    metric.Int64Counter
}

// NewAssistant builds the workflows and the chat template on top of
// genaiModel.
func NewAssistant(config *cloud.Config, genaiModel *cloud.QuotaAwareGenerativeAIModel) (*Assistant, error) {
	analysis, err := workflow.NewClipAnalysisWorkflow(config, genaiModel)
	if err != nil {
		return nil, err
	}
	repurpose, err := workflow.NewPostRepurposeWorkflow(config, genaiModel)
	if err != nil {
		return nil, err
	}
	chatTemplate, err := template.New("chat-system-template").Parse(config.PromptTemplates.ChatSystem)
	if err != nil {
		return nil, fmt.Errorf("failed to parse chat system template: %w", err)
	}

	meter := otel.Meter(cor.MeterName)
	return &Assistant{
		analysis:        analysis,
		repurpose:       repurpose,
		chatModel:       genaiModel,
		chatTemplate:    chatTemplate,
		durationSeconds: float64(config.Application.DemoDurationSeconds),
		tokenIn:         chatCounter(meter, "gemini.token.input"),
		tokenOut:        chatCounter(meter, "gemini.token.output"),
		retry:           chatCounter(meter, "gemini.token.retry"),
	}, nil
}

func chatCounter(meter metric.Meter, suffix string) metric.Int64Counter {
	out, err := meter.Int64Counter(ChatMetricPrefix + "." + suffix)
	if err != nil {
		return noop.Int64Counter{}
	}
	return out
}

// Analyze asks the model for viral clips in project. The duration sent is
// the configured demo duration, since the studio never decodes the video.
// Cloud Storage sources are attached to the prompt so the model can watch
// them.
func (a *Assistant) Analyze(ctx context.Context, project *model.VideoProject) ([]*model.Clip, error) {
	req := &commands.AnalysisRequest{
		VideoContext:    project.AnalysisContext(),
		DurationSeconds: a.durationSeconds,
	}
	if obj, err := cloud.ParseGCSURI(project.SourceUrl); err == nil {
		req.MediaURI = obj.URI()
		req.MediaMIMEType = project.MimeType
		if req.MediaMIMEType == "" {
			req.MediaMIMEType = "video/mp4"
		}
	}
	return a.analysis.Run(ctx, req)
}

// Repurpose writes post copy for clip on platform.
func (a *Assistant) Repurpose(ctx context.Context, clip *model.Clip, platform model.Platform) (string, error) {
	return a.repurpose.Run(ctx, clip, platform)
}

// Chat answers message in the context of project, given the earlier turns
// of the conversation.
func (a *Assistant) Chat(ctx context.Context, project *model.VideoProject, history []*model.ChatMessage, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", ErrEmptyMessage
	}

	var buffer bytes.Buffer
	if err := a.chatTemplate.Execute(&buffer, map[string]interface{}{"CONTEXT": project.AnalysisContext()}); err != nil {
		return "", fmt.Errorf("failed to render chat system template: %w", err)
	}
	config := a.chatModel.CloneConfig()
	config.SystemInstruction = genai.NewContentFromText(buffer.String(), genai.RoleUser)
	config.ResponseMIMEType = ""
	config.ResponseSchema = nil

	contents := make([]*genai.Content, 0, len(history)+1)
	for _, m := range history {
		var role genai.Role = genai.RoleUser
		if m.Role == model.RoleModel {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Text, role))
	}
	contents = append(contents, genai.NewContentFromText(message, genai.RoleUser))

	out, err := cloud.GenerateMultiModalResponse(ctx, a.tokenIn, a.tokenOut, a.retry, 0, a.chatModel.WithConfig(config), contents)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	return strings.TrimSpace(out), nil
}
