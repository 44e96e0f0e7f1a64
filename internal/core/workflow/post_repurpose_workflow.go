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

// PostRepurposeWorkflowName names the chain in traces and metrics.
const PostRepurposeWorkflowName = "repurpose-clip"

// PostRepurposeWorkflow writes social post copy for a clip.
type PostRepurposeWorkflow struct {
	cor.BaseCommand
	config            *cloud.Config
	genaiModel        *cloud.QuotaAwareGenerativeAIModel
	repurposeTemplate *template.Template
	chain             cor.Chain
}

func (w *PostRepurposeWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}

func (w *PostRepurposeWorkflow) initializeChain() {
	out := cor.NewBaseChain(w.GetName())
	out.AddCommand(commands.NewPostPromptBuilder("build-post-prompt", w.config, w.repurposeTemplate))
	out.AddCommand(commands.NewPostCreator("generate-post", w.genaiModel, commands.ParamPost))
	w.chain = out
}

// Run returns post copy for clip on platform.
func (w *PostRepurposeWorkflow) Run(ctx context.Context, clip *model.Clip, platform model.Platform) (string, error) {
	chCtx := cor.NewBaseContext(ctx)
	chCtx.Add(cor.CtxIn, &commands.RepurposeRequest{Clip: clip, Platform: platform})

	w.Execute(chCtx)
	if err := chCtx.Err(); err != nil {
		return "", err
	}
	post, _ := cor.GetAs[string](chCtx, commands.ParamPost)
	return post, nil
}

// NewPostRepurposeWorkflow compiles the repurpose template and builds the chain.
func NewPostRepurposeWorkflow(config *cloud.Config, genaiModel *cloud.QuotaAwareGenerativeAIModel) (*PostRepurposeWorkflow, error) {
	repurposeTemplate, err := template.New("repurpose-template").Parse(config.PromptTemplates.Repurpose)
	if err != nil {
		return nil, fmt.Errorf("failed to parse repurpose template: %w", err)
	}
	w := &PostRepurposeWorkflow{
		BaseCommand:       *cor.NewBaseCommand(PostRepurposeWorkflowName),
		config:            config,
		genaiModel:        genaiModel,
		repurposeTemplate: repurposeTemplate,
	}
	w.initializeChain()
	return w, nil
}
