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
// request values the workflows start from and the context keys the commands
// share.
package commands

import (
	"fmt"
	"io"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/jaycherian/gcp-go-clip-studio/internal/core/cor"
	"github.com/jaycherian/gcp-go-clip-studio/internal/core/model"
)

// Context keys for values that more than one command needs.
const (
	ParamAnalysisRequest = "__ANALYSIS_REQUEST__"
	ParamClips           = "__CLIPS__"
	ParamPost            = "__POST__"
	ParamUploadedObject  = "__UPLOADED_OBJECT__"
)

// Clip length bounds the model is asked to respect.
const (
	MinClipSeconds = 15
	MaxClipSeconds = 60
)

// AnalysisRequest describes the video a clip analysis runs on.
type AnalysisRequest struct {
	VideoContext    string  // Transcript context or title.
	DurationSeconds float64 // Duration the model is told the video has.
	MediaURI        string  // Optional gs:// URI sent to the model alongside the prompt.
	MediaMIMEType   string  // MIME type of MediaURI, e.g. "video/mp4".
}

// RepurposeRequest asks for post copy for one clip.
type RepurposeRequest struct {
	Clip     *model.Clip
	Platform model.Platform
}

// UploadRequest is a user upload on its way to Cloud Storage.
type UploadRequest struct {
	Name     string    // Object name in the upload bucket.
	Body     io.Reader // Upload content.
	MIMEType string    // Set by MediaTypeSniffer.
}

// geminiCounters are the per-command token and retry counters.
type geminiCounters struct {
	input  metric.Int64Counter
	output metric.Int64Counter
	retry  metric.Int64Counter
}

func newGeminiCounters(c *cor.BaseCommand) geminiCounters {
	return geminiCounters{
		input:  counter(c, "gemini.token.input"),
		output: counter(c, "gemini.token.output"),
		retry:  counter(c, "gemini.token.retry"),
	}
}

// counter creates "<command>.<suffix>", falling back to a no-op counter.
func counter(c *cor.BaseCommand, suffix string) metric.Int64Counter {
	out, err := c.GetMeter().Int64Counter(fmt.Sprintf("%s.%s", c.GetName(), suffix))
	if err != nil {
		return noop.Int64Counter{}
	}
	return out
}
