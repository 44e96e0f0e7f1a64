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
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jaycherian/gcp-go-clip-studio/internal/api"
	"github.com/jaycherian/gcp-go-clip-studio/internal/telemetry"
)

func main() {
	logFile, err := telemetry.SetupLogging("app.log")
	if err != nil {
		log.Fatalf("failed to set up logging: %v", err)
	}
	defer logFile.Close()
	slog.Info("Logging initialized")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	config, err := GetConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	shutdownTelemetry, err := telemetry.SetupOpenTelemetry(ctx, config)
	if err != nil {
		slog.Error("Failed to setup OpenTelemetry", "error", err)
		os.Exit(1)
	}
	slog.Info("Tracing initialized")

	if err := InitState(ctx, config); err != nil {
		slog.Error("Failed to initialize state", "error", err)
		os.Exit(1)
	}
	defer state.cloud.Close()
	slog.Info("Initialized State")

	idle := time.Duration(config.Application.WorkspaceIdleMinutes) * time.Minute
	go state.services.Workspaces.ExpireIdle(ctx, idle, time.Minute)

	srv := &http.Server{
		Addr:    config.Application.ListenAddress,
		Handler: api.NewRouter(config.Application.Name, state.services),
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to listen", "error", err)
			cancel()
		}
	}()
	slog.Info("Server Ready", "address", srv.Addr)

	// Wait for an interrupt signal to gracefully shut down the server.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}
	slog.Info("Shutdown Server ...")

	// The server has 5 seconds to finish the requests it is handling.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server Shutdown Failed", "error", err)
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		slog.Error("Telemetry Shutdown Failed", "error", err)
	}

	slog.Info("Server exiting")
}
