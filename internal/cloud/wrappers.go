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

// Package cloud provides components for interacting with Google Cloud services.
// This file implements a rate-limiting decorator around the Generative AI
// models client. Vertex AI and the Gemini API both enforce per-minute
// quotas, so every call waits for a token before it is sent.
//
// Structs:
//   - QuotaAwareGenerativeAIModel: Binds a model name and generation config to
//     a ContentGenerator behind a shared rate limiter.
//
// Functions:
//   - NewQuotaAwareModel: A constructor to create a new instance of the wrapped model.
//   - GenerateContent: Waits on the limiter, then calls the wrapped generator.
//   - WithConfig: Derives a model that shares the limiter but uses another config.
package cloud

import (
	"context"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// ContentGenerator is the part of *genai.Models the studio depends on.
// Tests substitute a fake.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// QuotaAwareGenerativeAIModel is a decorator that adds rate limiting to a
// ContentGenerator. Retries are handled by GenerateMultiModalResponse.
type QuotaAwareGenerativeAIModel struct {
	GenerativeContentConfig *genai.GenerateContentConfig // Config sent with every request.
	ModelName               string                       // Model ID, e.g. "gemini-2.5-flash".
	ModelHandle             ContentGenerator             // Usually client.Models.
	RateLimit               *rate.Limiter                // Shared by every model derived with WithConfig.
	RetryBackoff            time.Duration                // Base pause between retries.
}

// NewQuotaAwareModel creates a QuotaAwareGenerativeAIModel that allows a
// burst of requestsPerSecond calls and refills one token per second. A
// non-positive rate disables limiting.
//
// Inputs:
//   - wrapped: The generation config sent with every request.
//   - name: The model ID.
//   - handle: The generator that performs the call.
//   - requestsPerSecond: The burst size of the limiter.
//
// Outputs:
//   - *QuotaAwareGenerativeAIModel: A pointer to the newly created wrapper.
func NewQuotaAwareModel(wrapped *genai.GenerateContentConfig, name string, handle ContentGenerator, requestsPerSecond int) *QuotaAwareGenerativeAIModel {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if requestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Second), requestsPerSecond)
	}
	return &QuotaAwareGenerativeAIModel{
		GenerativeContentConfig: wrapped,
		ModelName:               name,
		ModelHandle:             handle,
		RateLimit:               limiter,
	}
}

// GenerateContent blocks until the limiter admits the request or ctx is
// done, then sends content to the model.
func (q *QuotaAwareGenerativeAIModel) GenerateContent(ctx context.Context, content []*genai.Content) (*genai.GenerateContentResponse, error) {
	if err := q.RateLimit.Wait(ctx); err != nil {
		return nil, err
	}
	return q.ModelHandle.GenerateContent(ctx, q.ModelName, content, q.GenerativeContentConfig)
}

// WithConfig returns a copy of the model that sends config instead of the
// base config. The copy shares the rate limiter.
func (q *QuotaAwareGenerativeAIModel) WithConfig(config *genai.GenerateContentConfig) *QuotaAwareGenerativeAIModel {
	out := *q
	out.GenerativeContentConfig = config
	return &out
}

// CloneConfig returns a shallow copy of the base config, never nil.
func (q *QuotaAwareGenerativeAIModel) CloneConfig() *genai.GenerateContentConfig {
	if q.GenerativeContentConfig == nil {
		return &genai.GenerateContentConfig{}
	}
	c := *q.GenerativeContentConfig
	return &c
}
