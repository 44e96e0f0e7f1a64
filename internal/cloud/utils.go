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
// This file contains general-purpose utility functions that support the cloud package.
// These helpers cover hierarchical configuration loading and resilient
// interaction with the Generative AI API.
//
// Functions:
//   - LoadConfig: Implements a hierarchical configuration loader. It first reads a base
//     configuration file and then overwrites values with a second, environment-specific
//     file (e.g., .env.local.toml, .env.test.toml). The environment is determined by
//     an environment variable.
//   - GenerateMultiModalResponse: A wrapper for making calls to the GenAI model. It includes
//     a retry mechanism to handle transient errors and records metrics for token usage
//     and retries.
//   - ResponseText, StripCodeFence: Helpers for turning a model response into plain text.
package cloud

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"go.opentelemetry.io/otel/metric"
	"google.golang.org/genai"
)

// Cloud Constants define key strings and values used throughout the package,
// primarily for configuration loading and API interaction policies.
const (
	ConfigFileBaseName  = ".env"              // The base name for configuration files (e.g., ".env.toml").
	ConfigFileExtension = ".toml"             // The file extension for configuration files.
	ConfigSeparator     = "."                 // The separator used in config file names (e.g., ".env.local.toml").
	EnvConfigFilePrefix = "GCP_CONFIG_PREFIX" // The environment variable for specifying the config directory.
	EnvConfigRuntime    = "GCP_RUNTIME"       // The environment variable for specifying the runtime context (e.g., "local", "test", "prod").
	EnvApiKey           = "API_KEY"           // Gemini API key, used when the config files do not set one.
	MaxRetries          = 3                   // The maximum number of times to retry a failed API call.
)

var (
	// ErrMaxRetries is returned when a model call still fails after MaxRetries retries.
	ErrMaxRetries = errors.New("generation failed on max retries")
	// ErrEmptyResponse is returned when the model answers with no text.
	ErrEmptyResponse = errors.New("model returned an empty response")
)

// fileExists checks if a file or directory exists at the given path.
func fileExists(in string) bool {
	_, err := os.Stat(in)
	return !errors.Is(err, os.ErrNotExist)
}

// LoadConfig provides a hierarchical configuration loading mechanism. It first loads a
// base configuration file and then merges or overwrites its values with an environment-specific
// configuration file. The paths and environment are determined by environment variables.
// Missing files are skipped; a file that exists but does not decode is an error.
//
// Inputs:
//   - baseConfig: A pointer to the target configuration struct that will be populated
//     from the TOML files.
//
// Outputs:
//   - error: The first decode error, wrapped with the offending file name.
func LoadConfig(baseConfig interface{}) error {
	// Read the directory path for config files from an environment variable.
	configurationFilePrefix := os.Getenv(EnvConfigFilePrefix)
	// Ensure the prefix ends with a path separator if it's not empty.
	if len(configurationFilePrefix) > 0 && !strings.HasSuffix(configurationFilePrefix, string(os.PathSeparator)) {
		configurationFilePrefix = configurationFilePrefix + string(os.PathSeparator)
	}

	// Default to "test" if the runtime is not set.
	runtimeEnvironment := os.Getenv(EnvConfigRuntime)
	if runtimeEnvironment == "" {
		runtimeEnvironment = "test"
	}

	baseConfigFileName := configurationFilePrefix + ConfigFileBaseName + ConfigFileExtension
	envConfigFileName := configurationFilePrefix + ConfigFileBaseName + ConfigSeparator + runtimeEnvironment + ConfigFileExtension

	for _, fileName := range []string{baseConfigFileName, envConfigFileName} {
		if !fileExists(fileName) {
			slog.Debug("configuration file not found, skipping", "file", fileName)
			continue
		}
		if _, err := toml.DecodeFile(fileName, baseConfig); err != nil {
			return fmt.Errorf("failed to decode configuration file %s: %w", fileName, err)
		}
		slog.Info("loaded configuration file", "file", fileName, "runtime", runtimeEnvironment)
	}

	if c, ok := baseConfig.(*Config); ok && c.Application.ApiKey == "" {
		c.Application.ApiKey = os.Getenv(EnvApiKey)
	}
	return nil
}

// GenerateMultiModalResponse is a helper function for executing requests
// against a Generative AI model. It includes logic for retries and telemetry.
//
// Inputs:
//   - ctx: The context for the request, which controls cancellation and tracing.
//   - inputTokenCounter: An OpenTelemetry counter for prompt tokens used.
//   - outputTokenCounter: An OpenTelemetry counter for response tokens generated.
//   - retryCounter: An OpenTelemetry counter for tracking the number of retries.
//   - tryCount: The current attempt number for this request (starts at 0).
//   - model: The rate-limited, quota-aware generative model to use.
//   - content: The conversation or prompt sent to the model.
//
// Outputs:
//   - string: The concatenated text content from the model's response, with any
//     markdown code fence removed.
//   - error: ErrMaxRetries (wrapping the last failure) when every attempt failed,
//     ErrEmptyResponse when the model returned no text, or the context error.
func GenerateMultiModalResponse(
	ctx context.Context,
	inputTokenCounter metric.Int64Counter,
	outputTokenCounter metric.Int64Counter,
	retryCounter metric.Int64Counter,
	tryCount int,
	model *QuotaAwareGenerativeAIModel,
	content []*genai.Content) (value string, err error) {
	resp, err := model.GenerateContent(ctx, content)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if tryCount >= MaxRetries {
			return "", fmt.Errorf("%w (%d attempts): %w", ErrMaxRetries, tryCount+1, err)
		}
		retryCounter.Add(ctx, 1)
		slog.WarnContext(ctx, "model call failed, retrying", "model", model.ModelName, "attempt", tryCount+1, "error", err)
		if wait := model.RetryBackoff * time.Duration(tryCount+1); wait > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(wait):
			}
		}
		return GenerateMultiModalResponse(ctx, inputTokenCounter, outputTokenCounter, retryCounter, tryCount+1, model, content)
	}

	if resp.UsageMetadata != nil {
		inputTokenCounter.Add(ctx, int64(resp.UsageMetadata.PromptTokenCount))
		outputTokenCounter.Add(ctx, int64(resp.UsageMetadata.CandidatesTokenCount))
	}

	value = StripCodeFence(ResponseText(resp))
	if value == "" {
		return "", ErrEmptyResponse
	}
	return value, nil
}

// ResponseText concatenates the text parts of every candidate.
func ResponseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var sb strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}

// StripCodeFence removes a surrounding ```json (or bare ```) fence.
func StripCodeFence(in string) string {
	out := strings.TrimSpace(in)
	out = strings.TrimPrefix(out, "```json")
	out = strings.TrimPrefix(out, "```")
	out = strings.TrimSuffix(out, "```")
	return strings.TrimSpace(out)
}

// NewTextContent wraps a single user prompt as model content.
func NewTextContent(in string) []*genai.Content {
	return genai.Text(in)
}
