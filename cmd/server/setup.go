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

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jaycherian/gcp-go-clip-studio/internal/api"
	"github.com/jaycherian/gcp-go-clip-studio/internal/cloud"
	"github.com/jaycherian/gcp-go-clip-studio/internal/core/commands"
	"github.com/jaycherian/gcp-go-clip-studio/internal/core/model"
	"github.com/jaycherian/gcp-go-clip-studio/internal/core/services"
	"github.com/jaycherian/gcp-go-clip-studio/internal/telemetry"
)

// StateManager holds the shared components of the server.
type StateManager struct {
	config   *cloud.Config
	cloud    *cloud.ServiceClients
	services *api.Services
}

var state = &StateManager{}

// SetupOS points the configuration loader at ./configs with the "local"
// runtime, unless the environment already says otherwise.
func SetupOS() error {
	if _, ok := os.LookupEnv(cloud.EnvConfigFilePrefix); !ok {
		if err := os.Setenv(cloud.EnvConfigFilePrefix, "configs"); err != nil {
			return err
		}
	}
	if _, ok := os.LookupEnv(cloud.EnvConfigRuntime); !ok {
		if err := os.Setenv(cloud.EnvConfigRuntime, "local"); err != nil {
			return err
		}
	}
	return nil
}

// GetConfig loads the configuration once.
func GetConfig() (*cloud.Config, error) {
	if state.config == nil {
		if err := SetupOS(); err != nil {
			return nil, fmt.Errorf("failed to setup os: %w", err)
		}
		config := cloud.NewConfig()
		if err := cloud.LoadConfig(config); err != nil {
			return nil, err
		}
		state.config = config
	}
	return state.config, nil
}

// InitState creates the cloud clients and the services behind the routes.
func InitState(ctx context.Context, config *cloud.Config) error {
	cloudClients, err := cloud.NewCloudServiceClients(ctx, config)
	if err != nil {
		return err
	}
	state.cloud = cloudClients

	genModel, err := cloudClients.Model(cloud.DefaultAgentModel)
	if err != nil {
		return err
	}
	assistant, err := services.NewAssistant(config, genModel)
	if err != nil {
		return err
	}

	var writer commands.BucketWriter
	if cloudClients.StorageClient != nil {
		writer = commands.StorageBucketWriter{Client: cloudClients.StorageClient}
	}

	library := services.NewProjectLibrary(model.InitialProjects()...)
	media := services.NewMediaService(config, cloudClients.StorageClient, writer, library)
	state.services = &api.Services{
		Library:    library,
		Media:      media,
		Workspaces: services.NewWorkspaceStore(library, media, assistant, telemetry.NewLogger("workspaces")),
	}
	return nil
}
