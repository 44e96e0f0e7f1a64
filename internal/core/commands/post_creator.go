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

package commands

import (
	"fmt"
	"strings"

	"github.com/jaycherian/gcp-go-clip-studio/internal/cloud"
	"github.com/jaycherian/gcp-go-clip-studio/internal/core/cor"
)

// PostCreator sends a rendered prompt to the model in text mode and outputs
// the trimmed post copy.
type PostCreator struct {
	cor.BaseCommand
	generativeAIModel *cloud.QuotaAwareGenerativeAIModel
	gemini            geminiCounters
}

// NewPostCreator creates the command. The output is stored under
// outputParamName as well as CtxOut.
func NewPostCreator(name string, generativeAIModel *cloud.QuotaAwareGenerativeAIModel, outputParamName string) *PostCreator {
	out := &PostCreator{BaseCommand: *cor.NewBaseCommand(name), generativeAIModel: generativeAIModel}
	out.OutputParamName = outputParamName
	out.gemini = newGeminiCounters(&out.BaseCommand)
	return out
}

func (p *PostCreator) Execute(context cor.Context) {
	prompt, ok := cor.GetAs[string](context, p.GetInputParam())
	if !ok || strings.TrimSpace(prompt) == "" {
		p.Fail(context, fmt.Errorf("expected a prompt under %q", p.GetInputParam()))
		return
	}

	out, err := cloud.GenerateMultiModalResponse(context.GetContext(), p.gemini.input, p.gemini.output, p.gemini.retry, 0, p.generativeAIModel, cloud.NewTextContent(prompt))
	if err != nil {
		p.Fail(context, fmt.Errorf("gemini request failed: %w", err))
		return
	}
	post := strings.TrimSpace(out)
	context.Add(cor.CtxOut, post)
	p.Succeed(context, post)
}
