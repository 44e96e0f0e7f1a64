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

// Package test provides utility functions and mock data to support the application's
// test suite. It helps in setting up a consistent test environment, loading
// test-specific configurations, and standing in for the generative model so
// workflows and services can be tested without network access.
package test

import (
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/jaycherian/gcp-go-clip-studio/internal/cloud"
)

// StateManager acts as a simple in-memory cache for the application configuration
// during test runs, so the configuration files are read once per test binary.
type StateManager struct {
	once   sync.Once
	config *cloud.Config
}

var state = &StateManager{}

// HandleErr fails the test when err is not nil.
func HandleErr(err error, t *testing.T) {
	t.Helper()
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

// ConfigDir returns the absolute path of the repository's configs directory,
// independent of the package directory the test binary runs in.
func ConfigDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "configs")
}

// SetupOS points the configuration loader at the test configuration files
// (configs/.env.toml overlaid with configs/.env.test.toml).
func SetupOS() (err error) {
	if err = os.Setenv(cloud.EnvConfigFilePrefix, ConfigDir()); err != nil {
		return err
	}
	return os.Setenv(cloud.EnvConfigRuntime, "test")
}

// GetConfig is a singleton accessor for the test configuration. It is
// loaded once and shared; tests that need to change values should copy it.
func GetConfig() *cloud.Config {
	state.once.Do(func() {
		if err := SetupOS(); err != nil {
			log.Fatalf("failed to setup environment for test: %v\n", err)
		}
		config := cloud.NewConfig()
		if err := cloud.LoadConfig(config); err != nil {
			log.Fatalf("failed to load test configuration: %v\n", err)
		}
		state.config = config
	})
	return state.config
}

// GetTestClipAnalysisJSON returns a model answer for a 300 second video,
// wrapped in a code fence the way Gemini often returns it. The third record
// runs past the end of the video and the fourth ends before it starts, so
// normalization has something to do.
func GetTestClipAnalysisJSON() string {
	return "```json\n" + `[
  {
    "title": "Why AI Changes Everything",
    "startTime": 12,
    "endTime": 48,
    "summary": "The speaker explains how generative AI reshapes daily workflows.",
    "viralScore": 91,
    "tags": ["#AI", "FutureOfWork"]
  },
  {
    "title": "Q3 Numbers In 30 Seconds",
    "startTime": 120.5,
    "endTime": 150.5,
    "summary": "A quick rundown of revenue and growth for the quarter.",
    "viralScore": 72,
    "tags": ["#Finance"]
  },
  {
    "title": "The Q4 Roadmap",
    "startTime": 280,
    "endTime": 330,
    "summary": "What ships next quarter.",
    "viralScore": 140,
    "tags": ["#Roadmap"]
  },
  {
    "title": "Broken Record",
    "startTime": 90,
    "endTime": 60,
    "summary": "End before start.",
    "viralScore": 50,
    "tags": []
  }
]` + "\n```"
}
