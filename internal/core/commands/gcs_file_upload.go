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
// command that streams a user upload into the upload bucket.
//
// Logic Flow:
//  1. It receives an UploadRequest whose MIME type has already been sniffed.
//  2. It opens a writer on bucket/name and copies the body into it.
//  3. Closing the writer commits the object; a close error fails the command.
//  4. It outputs the written object as a *cloud.GCSObject.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"cloud.google.com/go/storage"

	"github.com/jaycherian/gcp-go-clip-studio/internal/cloud"
	"github.com/jaycherian/gcp-go-clip-studio/internal/core/cor"
)

// BucketWriter opens a writer for one object.
type BucketWriter interface {
	NewWriter(ctx context.Context, bucket, object, contentType string) io.WriteCloser
}

// StorageBucketWriter is the BucketWriter backed by Cloud Storage.
type StorageBucketWriter struct {
	Client *storage.Client
}

func (s StorageBucketWriter) NewWriter(ctx context.Context, bucket, object, contentType string) io.WriteCloser {
	w := s.Client.Bucket(bucket).Object(object).NewWriter(ctx)
	w.ContentType = contentType
	return w
}

// GCSFileUpload copies an upload into a bucket.
type GCSFileUpload struct {
	cor.BaseCommand
	writer BucketWriter
	bucket string
}

func NewGCSFileUpload(name string, writer BucketWriter, bucket string) *GCSFileUpload {
	out := &GCSFileUpload{BaseCommand: *cor.NewBaseCommand(name), writer: writer, bucket: bucket}
	out.OutputParamName = ParamUploadedObject
	return out
}

func (c *GCSFileUpload) Execute(chCtx cor.Context) {
	req, ok := cor.GetAs[*UploadRequest](chCtx, c.GetInputParam())
	if !ok || req == nil || req.Body == nil {
		c.Fail(chCtx, fmt.Errorf("expected *UploadRequest with a body under %q", c.GetInputParam()))
		return
	}

	ctx := chCtx.GetContext()
	writer := c.writer.NewWriter(ctx, c.bucket, req.Name, req.MIMEType)
	written, err := io.Copy(writer, req.Body)
	if err != nil {
		_ = writer.Close()
		c.Fail(chCtx, fmt.Errorf("failed to copy to gs://%s/%s after %d bytes: %w", c.bucket, req.Name, written, err))
		return
	}
	if err := writer.Close(); err != nil {
		c.Fail(chCtx, fmt.Errorf("failed to commit gs://%s/%s: %w", c.bucket, req.Name, err))
		return
	}

	obj := &cloud.GCSObject{Bucket: c.bucket, Name: req.Name, MIMEType: req.MIMEType}
	slog.InfoContext(ctx, "uploaded media", "uri", obj.URI(), "bytes", written, "mime_type", req.MIMEType)
	chCtx.Add(cor.CtxOut, obj)
	c.Succeed(chCtx, obj)
}
