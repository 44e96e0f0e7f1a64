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
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/jaycherian/gcp-go-clip-studio/internal/core/services"
)

// Services are the dependencies of the HTTP routes.
type Services struct {
	Library    *services.ProjectLibrary
	Media      *services.MediaService
	Workspaces *services.WorkspaceStore
	Now        func() time.Time // Defaults to time.Now.
}

// NewRouter builds the gin engine with tracing, CORS and every route under
// /api/v1.
func NewRouter(serviceName string, s *Services) *gin.Engine {
	now := s.Now
	if now == nil {
		now = time.Now
	}

	r := gin.Default()
	r.Use(otelgin.Middleware(serviceName))
	// The frontend is served from another origin during development.
	r.Use(cors.Default())

	apiV1 := r.Group("/api/v1")
	{
		Dashboard(apiV1, s.Library)
		ProjectRouter(apiV1, s.Library, s.Media, now)
		FileUpload(apiV1, s.Media)
		WorkspaceRouter(apiV1, s.Workspaces)
	}
	return r
}
