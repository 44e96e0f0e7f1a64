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

package workflow

import (
	"context"
	"fmt"
	"io"

	"github.com/jaycherian/gcp-go-clip-studio/internal/cloud"
	"github.com/jaycherian/gcp-go-clip-studio/internal/core/commands"
	"github.com/jaycherian/gcp-go-clip-studio/internal/core/cor"
)

// MediaUploadWorkflowName names the chain in traces and metrics.
const MediaUploadWorkflowName = "upload-media"

// MediaUploadWorkflow checks that an upload is a video and writes it to the
// upload bucket.
type MediaUploadWorkflow struct {
	cor.BaseCommand
	writer commands.BucketWriter
	bucket string
	chain  cor.Chain
}

func (w *MediaUploadWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}

func (w *MediaUploadWorkflow) initializeChain() {
	out := cor.NewBaseChain(w.GetName())
	out.AddCommand(commands.NewMediaTypeSniffer("sniff-media-type"))
	out.AddCommand(commands.NewGCSFileUpload("write-to-upload-bucket", w.writer, w.bucket))
	w.chain = out
}

// Run uploads body as object name and returns the written object.
func (w *MediaUploadWorkflow) Run(ctx context.Context, name string, body io.Reader) (*cloud.GCSObject, error) {
	chCtx := cor.NewBaseContext(ctx)
	chCtx.Add(cor.CtxIn, &commands.UploadRequest{Name: name, Body: body})

	w.Execute(chCtx)
	if err := chCtx.Err(); err != nil {
		return nil, err
	}
	obj, ok := cor.GetAs[*cloud.GCSObject](chCtx, commands.ParamUploadedObject)
	if !ok {
		return nil, fmt.Errorf("%s produced no object", w.GetName())
	}
	return obj, nil
}

// NewMediaUploadWorkflow builds the upload chain for bucket.
func NewMediaUploadWorkflow(writer commands.BucketWriter, bucket string) *MediaUploadWorkflow {
	w := &MediaUploadWorkflow{
		BaseCommand: *cor.NewBaseCommand(MediaUploadWorkflowName),
		writer:      writer,
		bucket:      bucket,
	}
	w.initializeChain()
	return w
}
