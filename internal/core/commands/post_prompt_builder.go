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
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/jaycherian/gcp-go-clip-studio/internal/cloud"
	"github.com/jaycherian/gcp-go-clip-studio/internal/core/cor"
)

// PostPromptBuilder renders the repurpose prompt for a RepurposeRequest.
type PostPromptBuilder struct {
	cor.BaseCommand
	config   *cloud.Config
	template *template.Template
}

// NewPostPromptBuilder creates the command. config supplies the platform
// style guidance.
func NewPostPromptBuilder(name string, config *cloud.Config, template *template.Template) *PostPromptBuilder {
	return &PostPromptBuilder{BaseCommand: *cor.NewBaseCommand(name), config: config, template: template}
}

func (p *PostPromptBuilder) Execute(context cor.Context) {
	req, ok := cor.GetAs[*RepurposeRequest](context, p.GetInputParam())
	if !ok || req == nil || req.Clip == nil {
		p.Fail(context, fmt.Errorf("expected *RepurposeRequest with a clip under %q", p.GetInputParam()))
		return
	}

	style := p.config.Platform(req.Platform)
	params := map[string]interface{}{
		"TITLE":    req.Clip.Title,
		"SUMMARY":  req.Clip.Summary,
		"TAGS":     strings.Join(req.Clip.Tags, ", "),
		"PLATFORM": style.Name,
		"GUIDANCE": style.Guidance,
	}

	var buffer bytes.Buffer
	if err := p.template.Execute(&buffer, params); err != nil {
		p.Fail(context, fmt.Errorf("failed to execute prompt template: %w", err))
		return
	}
	p.Succeed(context, buffer.String())
}
