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

// Package services_test contains the test suite for the services package.
// This file tests the ProjectLibrary.
package services_test

import (
	"errors"
	"testing"
	"time"

	"github.com/zeebo/assert"

	"github.com/jaycherian/gcp-go-clip-studio/internal/core/model"
	"github.com/jaycherian/gcp-go-clip-studio/internal/core/services"
)

func TestProjectLibraryOrder(t *testing.T) {
	library := services.NewProjectLibrary(model.InitialProjects()...)

	projects := library.List()
	assert.Equal(t, len(projects), 3)
	assert.Equal(t, projects[0].Id, "1")
	assert.Equal(t, projects[2].Id, "3")

	demo := model.NewDemoProject(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	library.Add(demo)
	projects = library.List()
	assert.Equal(t, len(projects), 4)
	assert.Equal(t, projects[0].Id, demo.Id)
	assert.Equal(t, projects[0].UploadDate, "2024-05-01")

	// Re-adding keeps the position.
	demo.Status = model.ProjectReady
	library.Add(demo)
	projects = library.List()
	assert.Equal(t, len(projects), 4)
	assert.Equal(t, projects[0].Status, model.ProjectReady)
}

func TestProjectLibraryCopies(t *testing.T) {
	library := services.NewProjectLibrary(model.InitialProjects()...)
	assert.NoError(t, library.SetClips("1", model.MockClips()))

	p, err := library.Get("1")
	assert.NoError(t, err)
	p.Title = "changed"
	p.Clips[0].Tags[0] = "#changed"

	again, err := library.Get("1")
	assert.NoError(t, err)
	assert.Equal(t, again.Title, "Q3 Business Review & AI Strategy")
	assert.Equal(t, again.Clips[0].Tags[0], "#AI")
}

func TestProjectLibraryNotFound(t *testing.T) {
	library := services.NewProjectLibrary(model.InitialProjects()...)

	_, err := library.Get("missing")
	assert.That(t, errors.Is(err, services.ErrProjectNotFound))
	assert.That(t, errors.Is(library.SetClips("missing", nil), services.ErrProjectNotFound))
	assert.That(t, errors.Is(library.SetSuggestedPost("1", "c1", "post"), services.ErrClipNotFound))
}

func TestProjectLibrarySuggestedPost(t *testing.T) {
	library := services.NewProjectLibrary(model.InitialProjects()...)
	assert.NoError(t, library.SetClips("2", model.MockClips()))
	assert.NoError(t, library.SetSuggestedPost("2", "c2", "Q3 in 30 seconds"))

	p, err := library.Get("2")
	assert.NoError(t, err)
	assert.Equal(t, p.FindClip("c2").SuggestedPost, "Q3 in 30 seconds")
	assert.Equal(t, p.FindClip("c1").SuggestedPost, "")
}

func TestProjectLibraryStats(t *testing.T) {
	library := services.NewProjectLibrary(model.InitialProjects()...)
	assert.NoError(t, library.SetClips("1", model.MockClips()))

	stats := library.Stats()
	assert.Equal(t, stats.Projects, 3)
	assert.Equal(t, stats.ByStatus[model.ProjectReady], 2)
	assert.Equal(t, stats.ByStatus[model.ProjectProcessing], 1)
	assert.Equal(t, stats.Clips, 2)
	assert.Equal(t, stats.HotClips, 1)
	assert.Equal(t, stats.AverageViralScore, 75.0)

	empty := services.NewProjectLibrary().Stats()
	assert.Equal(t, empty.Projects, 0)
	assert.Equal(t, empty.AverageViralScore, 0.0)
}
