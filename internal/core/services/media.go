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

// This file, `media.go`, defines the MediaService, which turns a project's
// source into something a browser can play and accepts new uploads into
// the upload bucket.

package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"

	"github.com/jaycherian/gcp-go-clip-studio/internal/cloud"
	"github.com/jaycherian/gcp-go-clip-studio/internal/core/commands"
	"github.com/jaycherian/gcp-go-clip-studio/internal/core/model"
	"github.com/jaycherian/gcp-go-clip-studio/internal/core/workflow"
)

// MediaService encapsulates the storage clients and settings used for
// streaming and uploads.
type MediaService struct {
	StorageClient *storage.Client // Signs streaming URLs. May be nil.
	Bucket        string          // Upload bucket; empty disables uploads.
	Expires       time.Duration   // Lifetime of a signed URL.
	SignerEmail   string          // Service account used for signing.
	PrivateKey    []byte          // PEM key; when set, URLs are signed locally.

	library *ProjectLibrary
	upload  *workflow.MediaUploadWorkflow
	now     func() time.Time
}

// NewMediaService creates the service. writer may be nil, in which case
// Upload returns ErrUploadsDisabled.
func NewMediaService(config *cloud.Config, client *storage.Client, writer commands.BucketWriter, library *ProjectLibrary) *MediaService {
	s := &MediaService{
		StorageClient: client,
		Bucket:        config.Storage.UploadBucket,
		Expires:       time.Duration(config.Storage.SignedUrlMinutes) * time.Minute,
		SignerEmail:   config.Storage.SignerEmail,
		library:       library,
		now:           time.Now,
	}
	if writer != nil && s.Bucket != "" {
		s.upload = workflow.NewMediaUploadWorkflow(writer, s.Bucket)
	}
	return s
}

// StreamURL returns the URL the player should load for project. Sources in
// Cloud Storage get a V4 signed GET URL; any other URL is returned as is.
func (s *MediaService) StreamURL(ctx context.Context, project *model.VideoProject) (string, error) {
	obj, err := cloud.ParseGCSURI(project.SourceUrl)
	if errors.Is(err, cloud.ErrNotGCS) {
		return project.SourceUrl, nil
	}
	if err != nil {
		return "", err
	}

	expires := s.Expires
	if expires <= 0 {
		expires = 15 * time.Minute
	}
	opts := &storage.SignedURLOptions{
		Scheme:         storage.SigningSchemeV4,
		Method:         http.MethodGet,
		Expires:        s.now().Add(expires),
		GoogleAccessID: s.SignerEmail,
		PrivateKey:     s.PrivateKey,
	}

	var u string
	switch {
	case len(s.PrivateKey) > 0:
		u, err = storage.SignedURL(obj.Bucket, obj.Name, opts)
	case s.StorageClient != nil:
		u, err = s.StorageClient.Bucket(obj.Bucket).SignedURL(obj.Name, opts)
	default:
		return "", fmt.Errorf("cannot sign %s: no storage client", obj.URI())
	}
	if err != nil {
		return "", fmt.Errorf("Bucket(%q).Object(%q).SignedURL: %w", obj.Bucket, obj.Name, err)
	}
	slog.DebugContext(ctx, "signed stream url", "object", obj.URI(), "expires", opts.Expires)
	return u, nil
}

// Upload writes body to the upload bucket as fileName and adds a
// processing project for it to the library.
func (s *MediaService) Upload(ctx context.Context, fileName string, body io.Reader) (*model.VideoProject, error) {
	if s.upload == nil {
		return nil, ErrUploadsDisabled
	}
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(fileName), "\\", "/"))
	if name == "" || name == "." || name == ".." || name == "/" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFileName, fileName)
	}

	obj, err := s.upload.Run(ctx, name, body)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSuffix(name, path.Ext(name))
	if title == "" {
		title = name
	}
	project := model.NewUploadedProject(title, obj.URI(), obj.MIMEType, s.now())
	s.library.Add(project)
	slog.InfoContext(ctx, "upload added to library", "project", project.Id, "object", obj.URI())
	return project, nil
}
