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

// Package services contains the studio's business logic. This file defines
// the ProjectLibrary, the in-memory list of video projects shared by every
// workspace. Nothing is persisted; the library starts from the mock
// projects each time the server starts.
package services

import (
	"fmt"
	"sync"

	"github.com/jaycherian/gcp-go-clip-studio/internal/core/model"
)

// ProjectLibrary is a concurrency-safe, ordered set of projects. Callers
// always receive copies.
type ProjectLibrary struct {
	mu       sync.RWMutex
	order    []string // Newest first.
	projects map[string]*model.VideoProject
}

// NewProjectLibrary creates a library holding projects in the given order.
func NewProjectLibrary(projects ...*model.VideoProject) *ProjectLibrary {
	l := &ProjectLibrary{projects: make(map[string]*model.VideoProject)}
	for _, p := range projects {
		l.order = append(l.order, p.Id)
		l.projects[p.Id] = p.Clone()
	}
	return l
}

// List returns every project, newest first.
func (l *ProjectLibrary) List() []*model.VideoProject {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*model.VideoProject, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.projects[id].Clone())
	}
	return out
}

// Get returns the project with the given ID.
func (l *ProjectLibrary) Get(id string) (*model.VideoProject, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	p, ok := l.projects[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, id)
	}
	return p.Clone(), nil
}

// Add puts a project at the front of the library. A project with the same
// ID is replaced in place.
func (l *ProjectLibrary) Add(p *model.VideoProject) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.projects[p.Id]; !ok {
		l.order = append([]string{p.Id}, l.order...)
	}
	l.projects[p.Id] = p.Clone()
}

// SetClips replaces the clips of a project.
func (l *ProjectLibrary) SetClips(id string, clips []*model.Clip) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.projects[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrProjectNotFound, id)
	}
	p.Clips = (&model.VideoProject{Clips: clips}).Clone().Clips
	return nil
}

// SetSuggestedPost records the last post generated for a clip.
func (l *ProjectLibrary) SetSuggestedPost(projectID, clipID, post string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.projects[projectID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrProjectNotFound, projectID)
	}
	c := p.FindClip(clipID)
	if c == nil {
		return fmt.Errorf("%w: %s", ErrClipNotFound, clipID)
	}
	c.SuggestedPost = post
	return nil
}

// LibraryStats are the dashboard counters.
type LibraryStats struct {
	Projects          int                         `json:"projects"`
	ByStatus          map[model.ProjectStatus]int `json:"byStatus"`
	Clips             int                         `json:"clips"`
	HotClips          int                         `json:"hotClips"`
	AverageViralScore float64                     `json:"averageViralScore"`
}

// Stats computes the dashboard counters.
func (l *ProjectLibrary) Stats() LibraryStats {
	l.mu.RLock()
	defer l.mu.RUnlock()
	stats := LibraryStats{ByStatus: map[model.ProjectStatus]int{}}
	total := 0
	for _, p := range l.projects {
		stats.Projects++
		stats.ByStatus[p.Status]++
		for _, c := range p.Clips {
			stats.Clips++
			total += c.ViralScore
			if c.IsHot() {
				stats.HotClips++
			}
		}
	}
	if stats.Clips > 0 {
		stats.AverageViralScore = float64(total) / float64(stats.Clips)
	}
	return stats
}
