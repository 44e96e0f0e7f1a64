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

// Package commands provides the concrete implementations of the Chain of
// Responsibility (COR) pattern's Command interface. This file defines the
// command that turns the model's JSON into clips the player can preview.
//
// Logic Flow:
//  1. It receives the raw JSON string produced by ClipAnalysisCreator.
//  2. It reads the AnalysisRequest to learn the video duration.
//  3. It parses the JSON array and normalizes every record: times are clamped
//     into [0, duration], records that end at or before their start are
//     dropped, scores are clamped to 0-100 and tags get a '#' prefix.
//  4. Each surviving record gets a fresh "generated-clip-<uuid>" ID.
//  5. The clips are stored under the configured output key and CtxOut.
package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/jaycherian/gcp-go-clip-studio/internal/core/cor"
	"github.com/jaycherian/gcp-go-clip-studio/internal/core/model"
)

// GeneratedClipPrefix starts the ID of every generated clip.
const GeneratedClipPrefix = "generated-clip-"

// ErrNoClips is recorded when no record survives normalization.
var ErrNoClips = errors.New("model returned no usable clips")

// clipRecord is the JSON shape the model is asked to produce. Numbers are
// read as float64 so a score like 85.0 still parses.
type clipRecord struct {
	Title      string   `json:"title"`
	StartTime  float64  `json:"startTime"`
	EndTime    float64  `json:"endTime"`
	Summary    string   `json:"summary"`
	ViralScore float64  `json:"viralScore"`
	Tags       []string `json:"tags"`
}

func recordFromClip(c *model.Clip) clipRecord {
	return clipRecord{
		Title:      c.Title,
		StartTime:  c.StartTime,
		EndTime:    c.EndTime,
		Summary:    c.Summary,
		ViralScore: float64(c.ViralScore),
		Tags:       c.Tags,
	}
}

// ClipJsonToStruct is a command that parses and normalizes generated clips.
type ClipJsonToStruct struct {
	cor.BaseCommand
}

// NewClipJsonToStruct is the constructor for the ClipJsonToStruct command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - outputParamName: The context key where the clips will be stored.
//
// Outputs:
//   - *ClipJsonToStruct: A pointer to the newly instantiated command.
func NewClipJsonToStruct(name string, outputParamName string) *ClipJsonToStruct {
	out := ClipJsonToStruct{BaseCommand: *cor.NewBaseCommand(name)}
	out.OutputParamName = outputParamName
	return &out
}

func (s *ClipJsonToStruct) Execute(context cor.Context) {
	in, ok := cor.GetAs[string](context, s.GetInputParam())
	if !ok {
		s.Fail(context, fmt.Errorf("expected JSON string under %q", s.GetInputParam()))
		return
	}
	var duration float64
	if req, ok := cor.GetAs[*AnalysisRequest](context, ParamAnalysisRequest); ok && req != nil {
		duration = req.DurationSeconds
	}

	var records []clipRecord
	if err := json.Unmarshal([]byte(in), &records); err != nil {
		s.Fail(context, fmt.Errorf("failed to unmarshal clip JSON: %w", err))
		return
	}

	clips := normalizeClips(records, duration)
	if dropped := len(records) - len(clips); dropped > 0 {
		slog.WarnContext(context.GetContext(), "dropped invalid generated clips", "dropped", dropped, "kept", len(clips))
	}
	if len(clips) == 0 {
		s.Fail(context, ErrNoClips)
		return
	}

	context.Add(cor.CtxOut, clips)
	s.Succeed(context, clips)
}

// normalizeClips converts records to clips with fresh IDs. A non-positive
// duration disables the upper bound.
func normalizeClips(records []clipRecord, duration float64) []*model.Clip {
	clips := make([]*model.Clip, 0, len(records))
	for _, r := range records {
		start, end := clampTime(r.StartTime, duration), clampTime(r.EndTime, duration)
		if end <= start {
			continue
		}
		clips = append(clips, &model.Clip{
			Id:         GeneratedClipPrefix + uuid.NewString(),
			Title:      strings.TrimSpace(r.Title),
			StartTime:  start,
			EndTime:    end,
			Summary:    strings.TrimSpace(r.Summary),
			ViralScore: int(math.Round(math.Max(0, math.Min(100, r.ViralScore)))),
			Tags:       normalizeTags(r.Tags),
		})
	}
	return clips
}

func clampTime(t, duration float64) float64 {
	if math.IsNaN(t) || t < 0 {
		return 0
	}
	if duration > 0 && t > duration {
		return duration
	}
	return t
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || tag == "#" {
			continue
		}
		if !strings.HasPrefix(tag, "#") {
			tag = "#" + tag
		}
		out = append(out, tag)
	}
	return out
}
