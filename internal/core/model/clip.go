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

// Package model defines the core data structures for the application.
// This file, `clip.go`, holds the records the studio passes around: video
// projects in the library, the "viral clip" metadata generated for them,
// and the chat messages exchanged with the assistant. None of these are
// persisted; they live in memory for the lifetime of the server.
package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/jaycherian/gcp-go-clip-studio/internal/playback"
)

// HotViralScore is the score above which a clip is flagged as hot in the
// clip list.
const HotViralScore = 80

// Clip is one short, shareable segment of a longer video. The JSON field
// names match the response schema the generative model is asked to fill.
type Clip struct {
	Id            string   `json:"id"`                      // Unique clip ID, assigned after generation.
	Title         string   `json:"title"`                   // Catchy title for the clip.
	StartTime     float64  `json:"startTime"`               // Start of the clip in seconds.
	EndTime       float64  `json:"endTime"`                 // End of the clip in seconds.
	Summary       string   `json:"summary"`                 // One or two sentences describing the clip.
	ViralScore    int      `json:"viralScore"`              // Predicted virality, 0-100.
	Tags          []string `json:"tags"`                    // Hashtags, each starting with '#'.
	SuggestedPost string   `json:"suggestedPost,omitempty"` // Last generated social post for the clip, if any.
}

// Window returns the playback window that previews this clip.
func (c *Clip) Window() *playback.ClipWindow {
	return &playback.ClipWindow{Start: c.StartTime, End: c.EndTime}
}

// IsHot reports whether the clip's viral score is high enough to highlight.
func (c *Clip) IsHot() bool {
	return c.ViralScore > HotViralScore
}

// Label renders the clip range as "M:SS - M:SS".
func (c *Clip) Label() string {
	return fmt.Sprintf("%s - %s", playback.FormatTime(c.StartTime), playback.FormatTime(c.EndTime))
}

// ProjectStatus is the ingestion status shown on a library card.
type ProjectStatus string

const (
	ProjectProcessing ProjectStatus = "processing"
	ProjectReady      ProjectStatus = "ready"
	ProjectError      ProjectStatus = "error"
)

// VideoProject is one video in the library.
type VideoProject struct {
	Id                string        `json:"id"`
	Title             string        `json:"title"`
	UploadDate        string        `json:"uploadDate"` // YYYY-MM-DD
	Duration          string        `json:"duration"`   // Display duration, e.g. "45:20".
	ThumbnailUrl      string        `json:"thumbnailUrl"`
	SourceUrl         string        `json:"sourceUrl"`          // Media the player loads for this project.
	MimeType          string        `json:"mimeType,omitempty"` // Set for uploads, e.g. "video/mp4".
	Status            ProjectStatus `json:"status"`
	Clips             []*Clip       `json:"clips,omitempty"`
	TranscriptContext string        `json:"transcriptContext,omitempty"` // Simulated transcript or topic handed to the model.
}

// AnalysisContext returns the text the model is told the video is about:
// the transcript context when there is one, the title otherwise.
func (p *VideoProject) AnalysisContext() string {
	if strings.TrimSpace(p.TranscriptContext) != "" {
		return p.TranscriptContext
	}
	return p.Title
}

// FindClip returns the clip with the given ID, or nil.
func (p *VideoProject) FindClip(id string) *Clip {
	for _, c := range p.Clips {
		if c.Id == id {
			return c
		}
	}
	return nil
}

// Clone returns a copy of the project that shares no slices with p.
func (p *VideoProject) Clone() *VideoProject {
	out := *p
	out.Clips = make([]*Clip, 0, len(p.Clips))
	for _, c := range p.Clips {
		cc := *c
		cc.Tags = append([]string(nil), c.Tags...)
		out.Clips = append(out.Clips, &cc)
	}
	return &out
}

// ProcessingState tracks the clip analysis of the project open in a
// workspace.
type ProcessingState string

const (
	ProcessingIdle      ProcessingState = "IDLE"
	ProcessingAnalyzing ProcessingState = "ANALYZING"
	ProcessingComplete  ProcessingState = "COMPLETE"
	ProcessingError     ProcessingState = "ERROR"
)

// ChatRole identifies who wrote a chat message. The values match the roles
// the generative model expects in a conversation history.
type ChatRole string

const (
	RoleUser  ChatRole = "user"
	RoleModel ChatRole = "model"
)

// ChatMessage is one turn of the conversation with the video assistant.
type ChatMessage struct {
	Id        string    `json:"id"`
	Role      ChatRole  `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Platform is a social network the studio writes post copy for.
type Platform string

const (
	PlatformLinkedIn Platform = "LinkedIn"
	PlatformTwitter  Platform = "Twitter"
)

// ParsePlatform matches a platform name case-insensitively. An empty name
// selects LinkedIn, the default in the editor panel.
func ParsePlatform(name string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "linkedin":
		return PlatformLinkedIn, nil
	case "twitter", "x":
		return PlatformTwitter, nil
	default:
		return "", fmt.Errorf("unsupported platform %q", name)
	}
}
