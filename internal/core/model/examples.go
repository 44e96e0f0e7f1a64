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

// Package model defines the data structures for the application. This file,
// `examples.go`, provides hardcoded instances of the data models: the
// few-shot example placed in the clip analysis prompt, and the mock library
// the studio starts with.
package model

import (
	"time"

	"github.com/google/uuid"
)

// DemoVideoUrl is the single demo video every mock project plays. Tears of
// Steel has a cinematic/tech look that suits the demo.
const DemoVideoUrl = "http://commondatastorage.googleapis.com/gtv-videos-bucket/sample/TearsOfSteel.mp4"

// GetExampleClip creates a sample Clip used as a "few-shot" example in the
// clip analysis prompt. Showing the model one well-formed record makes the
// JSON it returns far more consistent. The Id is left empty because IDs are
// assigned after generation.
func GetExampleClip() *Clip {
	return &Clip{
		Title:      "AI Impact Overview",
		StartTime:  10,
		EndTime:    45,
		Summary:    "High-level overview of how AI is changing the landscape.",
		ViralScore: 85,
		Tags:       []string{"#AI", "#FutureOfWork", "#TechTrends"},
	}
}

// MockClips returns the clips shown before any analysis has run.
func MockClips() []*Clip {
	return []*Clip{
		{
			Id:         "c1",
			Title:      "AI Impact Overview",
			StartTime:  10,
			EndTime:    45,
			Summary:    "High-level overview of how AI is changing the landscape.",
			ViralScore: 85,
			Tags:       []string{"#AI", "#FutureOfWork", "#TechTrends"},
		},
		{
			Id:         "c2",
			Title:      "Financial Highlights",
			StartTime:  120,
			EndTime:    160,
			Summary:    "Key financial metrics and growth areas for Q3.",
			ViralScore: 65,
			Tags:       []string{"#Finance", "#Growth", "#Q3"},
		},
	}
}

// InitialProjects returns a fresh copy of the library the studio starts
// with. Every call builds new values, so callers may mutate the result.
func InitialProjects() []*VideoProject {
	return []*VideoProject{
		{
			Id:                "1",
			Title:             "Q3 Business Review & AI Strategy",
			UploadDate:        "2023-10-15",
			Duration:          "45:20",
			ThumbnailUrl:      "https://picsum.photos/seed/tech1/300/200",
			SourceUrl:         DemoVideoUrl,
			Status:            ProjectReady,
			TranscriptContext: "A detailed discussion about Q3 financial results, the impact of generative AI on business workflows, and future roadmap strategies for Q4.",
		},
		{
			Id:                "2",
			Title:             "Marketing Automation Masterclass",
			UploadDate:        "2023-10-22",
			Duration:          "1:02:15",
			ThumbnailUrl:      "https://picsum.photos/seed/marketing/300/200",
			SourceUrl:         DemoVideoUrl,
			Status:            ProjectReady,
			TranscriptContext: "An educational webinar explaining the latest trends in marketing automation, email segmentation, and CRM integration for 2024.",
		},
		{
			Id:                "3",
			Title:             "Product Launch: Nexus V2",
			UploadDate:        "2023-10-28",
			Duration:          "28:45",
			ThumbnailUrl:      "https://picsum.photos/seed/product/300/200",
			SourceUrl:         DemoVideoUrl,
			Status:            ProjectProcessing,
			TranscriptContext: "Keynote speech introducing the new Nexus V2 product line, highlighting features like speed, durability, and cloud sync.",
		},
	}
}

// NewDemoProject creates the placeholder project added by the "New Project"
// button. Its duration is unknown until the video is processed.
func NewDemoProject(now time.Time) *VideoProject {
	return &VideoProject{
		Id:                uuid.NewString(),
		Title:             "New Uploaded Webinar (Demo)",
		UploadDate:        now.Format(time.DateOnly),
		Duration:          "00:00",
		ThumbnailUrl:      "https://picsum.photos/seed/new/300/200",
		SourceUrl:         DemoVideoUrl,
		Status:            ProjectProcessing,
		TranscriptContext: "A generic business meeting discussing quarterly goals, hiring plans, and budget allocation.",
	}
}

// NewUploadedProject creates a project for a video the user uploaded to
// sourceUrl. The ID is a UUIDv5 of the source so re-uploading the same
// object maps to the same project.
func NewUploadedProject(title, sourceUrl, mimeType string, now time.Time) *VideoProject {
	return &VideoProject{
		Id:           uuid.NewSHA1(uuid.NameSpaceURL, []byte(sourceUrl)).String(),
		Title:        title,
		UploadDate:   now.Format(time.DateOnly),
		Duration:     "00:00",
		ThumbnailUrl: "https://picsum.photos/seed/new/300/200",
		SourceUrl:    sourceUrl,
		MimeType:     mimeType,
		Status:       ProjectProcessing,
	}
}
