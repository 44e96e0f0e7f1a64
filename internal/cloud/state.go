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
// This file initializes and holds the clients the studio needs to reach
// Google Cloud. A single ServiceClients value is created at startup and
// passed to the services and workflows.
//
// Logic Flow:
//  1. NewCloudServiceClients is called at application startup with the loaded Config.
//  2. It creates the GenAI client, using the Gemini API when an API key is
//     configured and Vertex AI otherwise.
//  3. It creates a Cloud Storage client when an upload bucket is configured.
//  4. NewAgentModels wraps each configured model in a QuotaAwareGenerativeAIModel.
//  5. Everything is bundled into ServiceClients.
package cloud

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
	"google.golang.org/genai"
)

// ServiceClients is a central container for the clients that talk to
// Google Cloud.
type ServiceClients struct {
	StorageClient *storage.Client                         // Nil when no upload bucket is configured.
	GenAIClient   *genai.Client                           // Gemini API or Vertex AI client.
	AgentModels   map[string]*QuotaAwareGenerativeAIModel // Configured models, keyed by logical name.
}

// Close releases the storage connection. The GenAI client holds no
// resources that need closing.
func (c *ServiceClients) Close() {
	if c.StorageClient != nil {
		_ = c.StorageClient.Close()
	}
}

// Model returns the named agent model, or the default one when name is
// empty or unknown.
func (c *ServiceClients) Model(name string) (*QuotaAwareGenerativeAIModel, error) {
	if m, ok := c.AgentModels[name]; ok {
		return m, nil
	}
	if m, ok := c.AgentModels[DefaultAgentModel]; ok {
		return m, nil
	}
	return nil, fmt.Errorf("no agent model named %q or %q is configured", name, DefaultAgentModel)
}

// NewCloudServiceClients initializes the Google Cloud clients described by
// config.
//
// Inputs:
//   - ctx: The root context.Context for the application.
//   - config: A pointer to the loaded application configuration.
//
// Outputs:
//   - *ServiceClients: A pointer to the initialized ServiceClients struct.
//   - error: An error if any of the clients fail to initialize.
func NewCloudServiceClients(ctx context.Context, config *Config) (*ServiceClients, error) {
	clientConfig := &genai.ClientConfig{
		Project:  config.Application.GoogleProjectId,
		Location: config.Application.GoogleLocation,
		Backend:  genai.BackendVertexAI,
	}
	if config.Application.ApiKey != "" {
		clientConfig = &genai.ClientConfig{
			APIKey:  config.Application.ApiKey,
			Backend: genai.BackendGeminiAPI,
		}
	}
	gc, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("error creating genai client: %w", err)
	}
	slog.InfoContext(ctx, "genai client created", "backend", clientConfig.Backend, "project", config.Application.GoogleProjectId, "location", config.Application.GoogleLocation)

	var sc *storage.Client
	if config.Storage.UploadBucket != "" {
		var opts []option.ClientOption
		if config.Application.CredentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(config.Application.CredentialsFile))
		}
		sc, err = storage.NewClient(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("error creating storage client: %w", err)
		}
	}

	return &ServiceClients{
		StorageClient: sc,
		GenAIClient:   gc,
		AgentModels:   NewAgentModels(config, gc.Models),
	}, nil
}

// NewAgentModels creates a rate-limited model for each entry in
// config.AgentModels, applying its sampling settings.
func NewAgentModels(config *Config, generator ContentGenerator) map[string]*QuotaAwareGenerativeAIModel {
	agentModels := make(map[string]*QuotaAwareGenerativeAIModel)
	for amKey, values := range config.AgentModels {
		generationConfig := &genai.GenerateContentConfig{
			Temperature:     genai.Ptr(values.Temperature),
			TopP:            genai.Ptr(values.TopP),
			TopK:            genai.Ptr(values.TopK),
			MaxOutputTokens: values.MaxTokens,
			SafetySettings:  DefaultSafetySettings,
		}
		if values.SystemInstructions != "" {
			generationConfig.SystemInstruction = genai.NewContentFromText(values.SystemInstructions, genai.RoleUser)
		}
		wrapped := NewQuotaAwareModel(generationConfig, values.Model, generator, values.RateLimit)
		wrapped.RetryBackoff = time.Duration(values.RetryBackoffSeconds) * time.Second
		agentModels[amKey] = wrapped
	}
	return agentModels
}
