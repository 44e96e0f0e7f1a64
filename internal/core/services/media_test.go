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

package services_test

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaycherian/gcp-go-clip-studio/internal/core/model"
	"github.com/jaycherian/gcp-go-clip-studio/internal/core/services"
	test "github.com/jaycherian/gcp-go-clip-studio/internal/testutil"
)

func signingKey(t *testing.T) []byte {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
}

func TestStreamURLPassesThroughPublicSources(t *testing.T) {
	media := services.NewMediaService(config, nil, nil, services.NewProjectLibrary())

	u, err := media.StreamURL(ctx, model.InitialProjects()[0])
	require.NoError(t, err)
	assert.Equal(t, model.DemoVideoUrl, u)
}

func TestStreamURLSignsStorageSources(t *testing.T) {
	media := services.NewMediaService(config, nil, nil, services.NewProjectLibrary())
	media.SignerEmail = "signer@clip-studio-test.iam.gserviceaccount.com"
	media.PrivateKey = signingKey(t)

	for _, source := range []string{
		"gs://clip-uploads/keynote.mp4",
		"https://storage.mtls.cloud.google.com/clip-uploads/keynote.mp4",
	} {
		u, err := media.StreamURL(ctx, &model.VideoProject{SourceUrl: source})
		require.NoError(t, err, source)
		assert.True(t, strings.HasPrefix(u, "https://storage.googleapis.com/clip-uploads/keynote.mp4?"), u)
		assert.Contains(t, u, "X-Goog-Algorithm=GOOG4-RSA-SHA256")
		assert.Contains(t, u, "X-Goog-Signature=")
	}
}

func TestStreamURLWithoutSigner(t *testing.T) {
	media := services.NewMediaService(config, nil, nil, services.NewProjectLibrary())
	_, err := media.StreamURL(ctx, &model.VideoProject{SourceUrl: "gs://clip-uploads/keynote.mp4"})
	assert.ErrorContains(t, err, "no storage client")
}

func uploadConfigured(t *testing.T) (*services.MediaService, *test.MemoryBucket, *services.ProjectLibrary) {
	t.Helper()
	cfg := *config
	cfg.Storage.UploadBucket = "clip-uploads"
	bucket := &test.MemoryBucket{}
	library := services.NewProjectLibrary(model.InitialProjects()...)
	return services.NewMediaService(&cfg, nil, bucket, library), bucket, library
}

func TestUpload(t *testing.T) {
	media, bucket, library := uploadConfigured(t)

	project, err := media.Upload(ctx, "Team Offsite.mp4", bytes.NewReader(test.MP4Header()))
	require.NoError(t, err)
	assert.Equal(t, "Team Offsite", project.Title)
	assert.Equal(t, "gs://clip-uploads/Team Offsite.mp4", project.SourceUrl)
	assert.Equal(t, "video/mp4", project.MimeType)
	assert.Equal(t, model.ProjectProcessing, project.Status)

	obj := bucket.Object("clip-uploads", "Team Offsite.mp4")
	require.NotNil(t, obj)
	assert.Equal(t, "video/mp4", obj.ContentType)
	assert.True(t, obj.Closed)

	projects := library.List()
	require.Len(t, projects, 4)
	assert.Equal(t, project.Id, projects[0].Id)

	// Uploading the same object again updates the same project.
	_, err = media.Upload(ctx, "uploads/Team Offsite.mp4", bytes.NewReader(test.MP4Header()))
	require.NoError(t, err)
	assert.Len(t, library.List(), 4)
}

func TestUploadRejects(t *testing.T) {
	media, bucket, library := uploadConfigured(t)

	_, err := media.Upload(ctx, "notes.txt", strings.NewReader("meeting notes, not a video"))
	assert.ErrorIs(t, err, services.ErrNotVideo)
	assert.Nil(t, bucket.Object("clip-uploads", "notes.txt"))

	_, err = media.Upload(ctx, "  ", bytes.NewReader(test.MP4Header()))
	assert.ErrorIs(t, err, services.ErrInvalidFileName)
	_, err = media.Upload(ctx, "../", bytes.NewReader(test.MP4Header()))
	assert.ErrorIs(t, err, services.ErrInvalidFileName)

	assert.Len(t, library.List(), 3)
}

func TestUploadDisabled(t *testing.T) {
	media := services.NewMediaService(config, nil, &test.MemoryBucket{}, services.NewProjectLibrary())
	_, err := media.Upload(ctx, "keynote.mp4", bytes.NewReader(test.MP4Header()))
	assert.ErrorIs(t, err, services.ErrUploadsDisabled)
}
