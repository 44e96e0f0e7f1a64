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

// Package api contains the HTTP routes of the studio server. This file
// defines the dashboard routes: the project library, uploads and the
// statistics shown above the project grid.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jaycherian/gcp-go-clip-studio/internal/core/model"
	"github.com/jaycherian/gcp-go-clip-studio/internal/core/services"
)

// Dashboard configures the statistics endpoint, e.g. /api/v1/stats.
func Dashboard(r *gin.RouterGroup, library *services.ProjectLibrary) {
	stats := r.Group("/stats")
	{
		stats.GET("", func(c *gin.Context) {
			c.JSON(http.StatusOK, library.Stats())
		})
	}
}

// ProjectRouter configures the project library endpoints.
func ProjectRouter(r *gin.RouterGroup, library *services.ProjectLibrary, media *services.MediaService, now func() time.Time) {
	projects := r.Group("/projects")
	{
		projects.GET("", func(c *gin.Context) {
			c.JSON(http.StatusOK, library.List())
		})

		// The "New Project" button adds a placeholder while uploads are
		// not configured.
		projects.POST("", func(c *gin.Context) {
			p := model.NewDemoProject(now())
			library.Add(p)
			c.JSON(http.StatusCreated, p)
		})

		projects.GET("/:id", func(c *gin.Context) {
			p, err := library.Get(c.Param("id"))
			if err != nil {
				abortWithError(c, err, http.StatusInternalServerError)
				return
			}
			c.JSON(http.StatusOK, p)
		})

		projects.GET("/:id/stream", func(c *gin.Context) {
			p, err := library.Get(c.Param("id"))
			if err != nil {
				abortWithError(c, err, http.StatusInternalServerError)
				return
			}
			u, err := media.StreamURL(c.Request.Context(), p)
			if err != nil {
				abortWithError(c, err, http.StatusInternalServerError)
				return
			}
			c.JSON(http.StatusOK, gin.H{"url": u})
		})
	}
}

// FileUpload configures the multipart upload endpoint. Every file in the
// "files" field becomes a project.
func FileUpload(r *gin.RouterGroup, media *services.MediaService) {
	upload := r.Group("/uploads")
	{
		upload.POST("", func(c *gin.Context) {
			form, err := c.MultipartForm()
			if err != nil {
				badRequest(c, err)
				return
			}
			files := form.File["files"]
			if len(files) == 0 {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": `no files in form field "files"`})
				return
			}

			out := make([]*model.VideoProject, 0, len(files))
			for _, file := range files {
				content, err := file.Open()
				if err != nil {
					badRequest(c, err)
					return
				}
				p, err := media.Upload(c.Request.Context(), file.Filename, content)
				_ = content.Close()
				if err != nil {
					abortWithError(c, err, http.StatusBadGateway)
					return
				}
				out = append(out, p)
			}
			c.JSON(http.StatusCreated, out)
		})
	}
}
