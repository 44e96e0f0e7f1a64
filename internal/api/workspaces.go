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
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jaycherian/gcp-go-clip-studio/internal/core/model"
	"github.com/jaycherian/gcp-go-clip-studio/internal/core/services"
)

const workspaceKey = "workspace"

type selectProjectRequest struct {
	ProjectId string `json:"project_id" binding:"required"`
}

type selectClipRequest struct {
	ClipId string `json:"clip_id" binding:"required"`
}

type durationRequest struct {
	Duration *float64 `json:"duration" binding:"required"`
}

type positionRequest struct {
	Position *float64 `json:"position" binding:"required"`
}

type trackClickRequest struct {
	Fraction *float64 `json:"fraction" binding:"required"`
}

type playRejectedRequest struct {
	Reason string `json:"reason"`
}

type repurposeRequest struct {
	Platform string `json:"platform"`
}

type chatRequest struct {
	Message string `json:"message"`
}

// withWorkspace resolves the :id parameter and stores the workspace in the
// gin context.
func withWorkspace(store *services.WorkspaceStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, err := store.Get(c.Param("id"))
		if err != nil {
			abortWithError(c, err, http.StatusInternalServerError)
			return
		}
		c.Set(workspaceKey, ws)
		c.Next()
	}
}

func workspace(c *gin.Context) *services.Workspace {
	return c.MustGet(workspaceKey).(*services.Workspace)
}

// bind decodes the JSON body into a new T, answering 400 on failure.
func bind[T any](c *gin.Context) (*T, bool) {
	var req T
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return nil, false
	}
	return &req, true
}

// WorkspaceRouter configures the workspace endpoints: one workspace per
// browser tab, holding the open project, the clip selection, the chat and
// the player.
func WorkspaceRouter(r *gin.RouterGroup, store *services.WorkspaceStore) {
	r.POST("/workspaces", func(c *gin.Context) {
		c.JSON(http.StatusCreated, store.Open().View())
	})

	ws := r.Group("/workspaces/:id", withWorkspace(store))
	{
		ws.GET("", func(c *gin.Context) {
			c.JSON(http.StatusOK, workspace(c).View())
		})

		ws.DELETE("", func(c *gin.Context) {
			if err := store.Close(c.Param("id")); err != nil {
				abortWithError(c, err, http.StatusInternalServerError)
				return
			}
			c.Status(http.StatusNoContent)
		})

		ws.POST("/project", func(c *gin.Context) {
			req, ok := bind[selectProjectRequest](c)
			if !ok {
				return
			}
			res, err := workspace(c).SelectProject(c.Request.Context(), req.ProjectId)
			if err != nil {
				abortWithError(c, err, http.StatusInternalServerError)
				return
			}
			c.JSON(http.StatusOK, res)
		})

		ws.DELETE("/project", func(c *gin.Context) {
			c.JSON(http.StatusOK, workspace(c).CloseProject(c.Request.Context()))
		})

		ws.POST("/analyze", func(c *gin.Context) {
			clips, err := workspace(c).Analyze(c.Request.Context())
			if err != nil {
				abortWithError(c, err, http.StatusBadGateway)
				return
			}
			c.JSON(http.StatusOK, gin.H{"clips": clips})
		})

		ws.POST("/clip", func(c *gin.Context) {
			req, ok := bind[selectClipRequest](c)
			if !ok {
				return
			}
			res, err := workspace(c).SelectClip(req.ClipId)
			if err != nil {
				abortWithError(c, err, http.StatusInternalServerError)
				return
			}
			c.JSON(http.StatusOK, res)
		})

		ws.POST("/repurpose", func(c *gin.Context) {
			req, ok := bind[repurposeRequest](c)
			if !ok {
				return
			}
			platform, err := model.ParsePlatform(req.Platform)
			if err != nil {
				badRequest(c, err)
				return
			}
			post, err := workspace(c).Repurpose(c.Request.Context(), platform)
			if err != nil {
				abortWithError(c, err, http.StatusBadGateway)
				return
			}
			c.JSON(http.StatusOK, gin.H{"platform": platform, "post": post})
		})

		ws.POST("/chat", func(c *gin.Context) {
			req, ok := bind[chatRequest](c)
			if !ok {
				return
			}
			reply, err := workspace(c).Chat(c.Request.Context(), req.Message)
			if err != nil {
				abortWithError(c, err, http.StatusBadGateway)
				return
			}
			c.JSON(http.StatusOK, reply)
		})

		PlayerRouter(ws.Group("/player"))
	}
}

// PlayerRouter configures the endpoints the page calls as its video element
// reports events and the user presses controls. Every response carries the
// pipeline commands the page must apply, in order.
func PlayerRouter(player *gin.RouterGroup) {
	player.POST("/metadata", func(c *gin.Context) {
		req, ok := bind[durationRequest](c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, workspace(c).Metadata(*req.Duration))
	})

	player.POST("/tick", func(c *gin.Context) {
		req, ok := bind[positionRequest](c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, workspace(c).Tick(*req.Position))
	})

	player.POST("/toggle-play", func(c *gin.Context) {
		c.JSON(http.StatusOK, workspace(c).TogglePlay())
	})

	player.POST("/toggle-mute", func(c *gin.Context) {
		c.JSON(http.StatusOK, workspace(c).ToggleMute())
	})

	player.POST("/seek", func(c *gin.Context) {
		req, ok := bind[positionRequest](c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, workspace(c).Seek(*req.Position))
	})

	player.POST("/track-click", func(c *gin.Context) {
		req, ok := bind[trackClickRequest](c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, workspace(c).TrackClick(*req.Fraction))
	})

	player.POST("/play-rejected", func(c *gin.Context) {
		var req playRejectedRequest
		// The body is optional.
		_ = c.ShouldBindJSON(&req)
		c.JSON(http.StatusOK, workspace(c).PlayRejected(req.Reason))
	})
}
