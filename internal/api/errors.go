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

package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jaycherian/gcp-go-clip-studio/internal/core/services"
)

// statusFor maps a service error to an HTTP status. Errors without a
// mapping get fallback.
func statusFor(err error, fallback int) int {
	switch {
	case errors.Is(err, services.ErrProjectNotFound),
		errors.Is(err, services.ErrClipNotFound),
		errors.Is(err, services.ErrWorkspaceNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrNoActiveProject),
		errors.Is(err, services.ErrNoActiveClip),
		errors.Is(err, services.ErrInvalidClip),
		errors.Is(err, services.ErrAnalysisInProgress),
		errors.Is(err, services.ErrProjectChanged):
		return http.StatusConflict
	case errors.Is(err, services.ErrEmptyMessage),
		errors.Is(err, services.ErrInvalidFileName),
		errors.Is(err, services.ErrNotVideo):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrUploadsDisabled):
		return http.StatusServiceUnavailable
	default:
		return fallback
	}
}

// abortWithError writes {"error": "..."} with the mapped status.
func abortWithError(c *gin.Context, err error, fallback int) {
	status := statusFor(err, fallback)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "request failed", "path", c.FullPath(), "status", status, "error", err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

// badRequest rejects a body or parameter that does not parse.
func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
