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

package test

import (
	"context"
	"errors"
	"strings"
	"sync"

	"google.golang.org/genai"

	"github.com/jaycherian/gcp-go-clip-studio/internal/cloud"
)

// ErrNoCannedResponse is returned by FakeGenerator when it has nothing left to say.
var ErrNoCannedResponse = errors.New("fake generator has no canned response")

// FakeRequest is one call recorded by FakeGenerator.
type FakeRequest struct {
	Model    string
	Contents []*genai.Content
	Config   *genai.GenerateContentConfig
}

// Prompt returns the text of the last content in the request.
func (r FakeRequest) Prompt() string {
	if len(r.Contents) == 0 {
		return ""
	}
	return ContentText(r.Contents[len(r.Contents)-1])
}

// SystemInstruction returns the text of the request's system instruction.
func (r FakeRequest) SystemInstruction() string {
	if r.Config == nil {
		return ""
	}
	return ContentText(r.Config.SystemInstruction)
}

// FakeGenerator implements cloud.ContentGenerator with canned answers.
// Responses are returned in order; the last one repeats. It is safe for
// concurrent use.
type FakeGenerator struct {
	mu        sync.Mutex
	responses []string
	failures  int
	failErr   error
	gate      chan struct{}
	requests  []FakeRequest
}

// NewFakeGenerator creates a generator that answers with responses.
func NewFakeGenerator(responses ...string) *FakeGenerator {
	return &FakeGenerator{responses: responses}
}

// FailNext makes the next n calls return err.
func (f *FakeGenerator) FailNext(n int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = n
	f.failErr = err
}

// Hold makes every call block until the returned release function is
// called or the call's context ends.
func (f *FakeGenerator) Hold() (release func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	gate := make(chan struct{})
	f.gate = gate
	var once sync.Once
	return func() { once.Do(func() { close(gate) }) }
}

// GenerateContent records the request and returns the next canned answer.
func (f *FakeGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	f.requests = append(f.requests, FakeRequest{Model: model, Contents: contents, Config: config})
	gate := f.gate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures > 0 {
		f.failures--
		return nil, f.failErr
	}
	if len(f.responses) == 0 {
		return nil, ErrNoCannedResponse
	}
	text := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: genai.NewContentFromText(text, genai.RoleModel)}},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount:     int32(len(contents)),
			CandidatesTokenCount: int32(len(text)),
		},
	}, nil
}

// Requests returns a copy of the recorded requests.
func (f *FakeGenerator) Requests() []FakeRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]FakeRequest(nil), f.requests...)
}

// LastRequest returns the most recent request, or the zero value.
func (f *FakeGenerator) LastRequest() FakeRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return FakeRequest{}
	}
	return f.requests[len(f.requests)-1]
}

// NewTestModels builds the configured agent models on top of generator.
func NewTestModels(config *cloud.Config, generator cloud.ContentGenerator) map[string]*cloud.QuotaAwareGenerativeAIModel {
	return cloud.NewAgentModels(config, generator)
}

// NewTestModel wraps generator in an unlimited model with no retry backoff.
func NewTestModel(generator cloud.ContentGenerator) *cloud.QuotaAwareGenerativeAIModel {
	return cloud.NewQuotaAwareModel(&genai.GenerateContentConfig{}, "gemini-test", generator, 0)
}

// ContentText concatenates the text parts of c.
func ContentText(c *genai.Content) string {
	if c == nil {
		return ""
	}
	var sb strings.Builder
	for _, p := range c.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String()
}
