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

// Package workflow combines commands into the studio's generative pipelines.
// This file implements the clip analysis workflow: given what a video is
// about and how long it is, ask the model for viral clips and turn the
// answer into clips the player can preview.
package workflow

import (
	"context"
	"fmt"
	"text/template"

	"github.com/jaycherian/gcp-go-clip-studio/internal/cloud"
	"github.com/jaycherian/gcp-go-clip-studio/internal/core/commands"
	"github.com/jaycherian/gcp-go-clip-studio/internal/core/cor"
	"github.com/jaycherian/gcp-go-clip-studio/internal/core/model"
)

// ClipAnalysisWorkflowName names the chain in traces and metrics.
const ClipAnalysisWorkflowName = "analyze-video-for-clips"

// ClipAnalysisWorkflow is a Chain of Responsibility that generates clips.
type ClipAnalysisWorkflow struct {
	cor.BaseCommand
	genaiModel   *cloud.QuotaAwareGenerativeAIModel
	clipTemplate *template.Template
	chain        cor.Chain
}

// Execute runs the chain. The context must hold an *commands.AnalysisRequest
// under both CtxIn and commands.ParamAnalysisRequest.
func (w *ClipAnalysisWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}

// initializeChain builds the sequence of commands that make up this workflow.
func (w *ClipAnalysisWorkflow) initializeChain() {
	out := cor.NewBaseChain(w.GetName())

	// Step 1: Render the prompt and ask the model for a JSON array of clips.
	out.AddCommand(commands.NewClipAnalysisCreator("generate-clip-metadata", w.genaiModel, w.clipTemplate))

	// Step 2: Parse the array, drop unusable records, clamp the rest into the
	// video and assign IDs.
	out.AddCommand(commands.NewClipJsonToStruct("convert-clip-metadata", commands.ParamClips))

	w.chain = out
}

// Run generates clips for req.
//
// Inputs:
//   - ctx: Carries cancellation and the parent span.
//   - req: The video context, duration and optional media URI.
//
// Outputs:
//   - []*model.Clip: The normalized clips, at least one.
//   - error: The joined errors recorded by the chain.
func (w *ClipAnalysisWorkflow) Run(ctx context.Context, req *commands.AnalysisRequest) ([]*model.Clip, error) {
	chCtx := cor.NewBaseContext(ctx)
	chCtx.Add(cor.CtxIn, req)
	chCtx.Add(commands.ParamAnalysisRequest, req)

	w.Execute(chCtx)
	if err := chCtx.Err(); err != nil {
		return nil, err
	}
	clips, ok := cor.GetAs[[]*model.Clip](chCtx, commands.ParamClips)
	if !ok {
		return nil, fmt.Errorf("%s produced no clips", w.GetName())
	}
	return clips, nil
}

// NewClipAnalysisWorkflow is the constructor for the ClipAnalysisWorkflow.
// It compiles the clip analysis template and builds the chain.
//
// Inputs:
//   - config: Supplies the prompt template.
//   - genaiModel: The rate-limited model to prompt.
//
// Returns:
//   - *ClipAnalysisWorkflow: The ready workflow.
//   - error: When the template does not parse.
func NewClipAnalysisWorkflow(config *cloud.Config, genaiModel *cloud.QuotaAwareGenerativeAIModel) (*ClipAnalysisWorkflow, error) {
	clipTemplate, err := template.New("clip-analysis-template").Parse(config.PromptTemplates.ClipAnalysis)
	if err != nil {
		return nil, fmt.Errorf("failed to parse clip analysis template: %w", err)
	}
	w := &ClipAnalysisWorkflow{
		BaseCommand:  *cor.NewBaseCommand(ClipAnalysisWorkflowName),
		genaiModel:   genaiModel,
		clipTemplate: clipTemplate,
	}
	w.initializeChain()
	return w, nil
}
