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

package api_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaycherian/gcp-go-clip-studio/internal/api"
	"github.com/jaycherian/gcp-go-clip-studio/internal/cloud"
	"github.com/jaycherian/gcp-go-clip-studio/internal/core/model"
	"github.com/jaycherian/gcp-go-clip-studio/internal/core/services"
	"github.com/jaycherian/gcp-go-clip-studio/internal/playback"
	test "github.com/jaycherian/gcp-go-clip-studio/internal/testutil"
)

var config *cloud.Config

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	config = test.GetConfig()
	os.Exit(m.Run())
}

type server struct {
	router  *gin.Engine
	gen     *test.FakeGenerator
	library *services.ProjectLibrary
	bucket  *test.MemoryBucket
}

// newServer builds the router on a scripted model. uploadBucket enables
// uploads into an in-memory bucket.
func newServer(t *testing.T, uploadBucket string, responses ...string) *server {
	t.Helper()
	cfg := *config
	cfg.Storage.UploadBucket = uploadBucket

	gen := test.NewFakeGenerator(responses...)
	assistant, err := services.NewAssistant(&cfg, test.NewTestModels(&cfg, gen)[cloud.DefaultAgentModel])
	require.NoError(t, err)
	library := services.NewProjectLibrary(model.InitialProjects()...)
	bucket := &test.MemoryBucket{}
	media := services.NewMediaService(&cfg, nil, bucket, library)

	router := api.NewRouter("clip-studio-test", &api.Services{
		Library:    library,
		Media:      media,
		Workspaces: services.NewWorkspaceStore(library, media, assistant, nil),
		Now:        func() time.Time { return time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC) },
	})
	return &server{router: router, gen: gen, library: library, bucket: bucket}
}

func (s *server) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

type playerResult struct {
	Commands []playback.Command `json:"commands"`
	Handled  bool               `json:"handled"`
	Player   struct {
		Status   string  `json:"status"`
		Position float64 `json:"position"`
		Progress string  `json:"progress"`
	} `json:"player"`
}

type errorBody struct {
	Error string `json:"error"`
}

func TestProjectRoutes(t *testing.T) {
	s := newServer(t, "")

	w := s.do(t, http.MethodGet, "/api/v1/projects", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]model.VideoProject](t, w), 3)

	w = s.do(t, http.MethodPost, "/api/v1/projects", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[model.VideoProject](t, w)
	assert.Equal(t, "New Uploaded Webinar (Demo)", created.Title)
	assert.Equal(t, "2024-06-01", created.UploadDate)
	assert.Equal(t, model.ProjectProcessing, created.Status)

	projects := decode[[]model.VideoProject](t, s.do(t, http.MethodGet, "/api/v1/projects", nil))
	require.Len(t, projects, 4)
	assert.Equal(t, created.Id, projects[0].Id)

	w = s.do(t, http.MethodGet, "/api/v1/projects/2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Marketing Automation Masterclass", decode[model.VideoProject](t, w).Title)

	w = s.do(t, http.MethodGet, "/api/v1/projects/404", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, decode[errorBody](t, w).Error, "project not found")

	w = s.do(t, http.MethodGet, "/api/v1/projects/1/stream", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.DemoVideoUrl, decode[map[string]string](t, w)["url"])
}

func TestStatsRoute(t *testing.T) {
	s := newServer(t, "")
	require.NoError(t, s.library.SetClips("1", model.MockClips()))

	w := s.do(t, http.MethodGet, "/api/v1/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[services.LibraryStats](t, w)
	assert.Equal(t, 3, stats.Projects)
	assert.Equal(t, 2, stats.Clips)
	assert.Equal(t, 1, stats.HotClips)
	assert.Equal(t, 2, stats.ByStatus[model.ProjectReady])
}

func multipartUpload(t *testing.T, files map[string][]byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for name, content := range files {
		part, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadRoute(t *testing.T) {
	s := newServer(t, "clip-uploads")

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, multipartUpload(t, map[string][]byte{"keynote.mp4": test.MP4Header()}))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	uploaded := decode[[]model.VideoProject](t, w)
	require.Len(t, uploaded, 1)
	assert.Equal(t, "gs://clip-uploads/keynote.mp4", uploaded[0].SourceUrl)
	assert.NotNil(t, s.bucket.Object("clip-uploads", "keynote.mp4"))

	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, multipartUpload(t, map[string][]byte{"notes.txt": []byte("not a video at all")}))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, multipartUpload(t, map[string][]byte{}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadRouteDisabled(t *testing.T) {
	s := newServer(t, "")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, multipartUpload(t, map[string][]byte{"keynote.mp4": test.MP4Header()}))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestWorkspaceFlow(t *testing.T) {
	s := newServer(t, "", test.GetTestClipAnalysisJSON(), "Clip of the week! #AI", "It is a Q3 review.")

	w := s.do(t, http.MethodPost, "/api/v1/workspaces", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode[services.WorkspaceView](t, w).Id
	base := "/api/v1/workspaces/" + id

	w = s.do(t, http.MethodPost, base+"/project", gin.H{"project_id": "1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []playback.Command{{Op: playback.OpLoad, Source: model.DemoVideoUrl}}, decode[playerResult](t, w).Commands)

	w = s.do(t, http.MethodPost, base+"/player/metadata", gin.H{"duration": 300})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, base+"/analyze", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	clips := decode[struct {
		Clips []*model.Clip `json:"clips"`
	}](t, w).Clips
	require.Len(t, clips, 3)

	w = s.do(t, http.MethodPost, base+"/clip", gin.H{"clip_id": clips[0].Id})
	require.Equal(t, http.StatusOK, w.Code)
	res := decode[playerResult](t, w)
	assert.Equal(t, []playback.Command{{Op: playback.OpSeek, Seconds: 12}, {Op: playback.OpPlay}}, res.Commands)
	assert.Equal(t, "PLAYING", res.Player.Status)

	w = s.do(t, http.MethodPost, base+"/player/tick", gin.H{"position": 48.5})
	res = decode[playerResult](t, w)
	assert.Equal(t, []playback.Command{{Op: playback.OpPause}, {Op: playback.OpSeek, Seconds: 12}}, res.Commands)
	assert.Equal(t, "PAUSED", res.Player.Status)
	assert.Equal(t, "0:12 / 5:00", res.Player.Progress)

	w = s.do(t, http.MethodPost, base+"/player/track-click", gin.H{"fraction": 0.5})
	res = decode[playerResult](t, w)
	assert.True(t, res.Handled)
	assert.Equal(t, []playback.Command{{Op: playback.OpSeek, Seconds: 150}}, res.Commands)

	w = s.do(t, http.MethodPost, base+"/player/toggle-mute", nil)
	assert.Equal(t, []playback.Command{{Op: playback.OpMute, Muted: true}}, decode[playerResult](t, w).Commands)

	w = s.do(t, http.MethodPost, base+"/player/toggle-play", nil)
	assert.Equal(t, []playback.Command{{Op: playback.OpPlay}}, decode[playerResult](t, w).Commands)

	w = s.do(t, http.MethodPost, base+"/player/play-rejected", gin.H{"reason": "NotAllowedError"})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, base+"/player/seek", gin.H{"position": 0})
	assert.Equal(t, []playback.Command{{Op: playback.OpSeek, Seconds: 0}}, decode[playerResult](t, w).Commands)

	w = s.do(t, http.MethodPost, base+"/repurpose", gin.H{"platform": "twitter"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Clip of the week! #AI", decode[map[string]string](t, w)["post"])

	w = s.do(t, http.MethodPost, base+"/chat", gin.H{"message": "What is this?"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	reply := decode[model.ChatMessage](t, w)
	assert.Equal(t, model.RoleModel, reply.Role)
	assert.Equal(t, "It is a Q3 review.", reply.Text)

	view := decode[services.WorkspaceView](t, s.do(t, http.MethodGet, base, nil))
	assert.Equal(t, "1", view.Project.Id)
	assert.Equal(t, clips[0].Id, view.ActiveClip.Id)
	assert.Equal(t, model.ProcessingComplete, view.ProcessingState)
	assert.Equal(t, "Clip of the week! #AI", view.GeneratedPost)
	assert.Equal(t, "NotAllowedError", view.LastPlayError)
	assert.Len(t, view.Chat, 2)
	assert.Len(t, view.Waveform, playback.DefaultWaveformBars)

	w = s.do(t, http.MethodDelete, base+"/project", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decode[services.WorkspaceView](t, s.do(t, http.MethodGet, base, nil)).Project)

	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, base, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, base, nil).Code)
}

func TestWorkspaceErrors(t *testing.T) {
	s := newServer(t, "", test.GetTestClipAnalysisJSON())

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/v1/workspaces/nope", nil).Code)

	id := decode[services.WorkspaceView](t, s.do(t, http.MethodPost, "/api/v1/workspaces", nil)).Id
	base := "/api/v1/workspaces/" + id

	assert.Equal(t, http.StatusConflict, s.do(t, http.MethodPost, base+"/analyze", nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, base+"/project", gin.H{}).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodPost, base+"/project", gin.H{"project_id": "9"}).Code)

	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, base+"/project", gin.H{"project_id": "1"}).Code)
	assert.Equal(t, http.StatusConflict, s.do(t, http.MethodPost, base+"/repurpose", gin.H{"platform": "LinkedIn"}).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, base+"/repurpose", gin.H{"platform": "MySpace"}).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, base+"/chat", gin.H{"message": "  "}).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, base+"/player/tick", gin.H{}).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodPost, base+"/clip", gin.H{"clip_id": "nope"}).Code)

	res := decode[playerResult](t, s.do(t, http.MethodPost, base+"/player/track-click", gin.H{"fraction": 0.3}))
	assert.False(t, res.Handled)
	assert.Empty(t, res.Commands)

	s.gen.FailNext(cloud.MaxRetries+1, errors.New("quota exceeded"))
	w := s.do(t, http.MethodPost, base+"/analyze", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.True(t, strings.Contains(decode[errorBody](t, w).Error, "quota exceeded"))

	view := decode[services.WorkspaceView](t, s.do(t, http.MethodGet, base, nil))
	assert.Equal(t, model.ProcessingError, view.ProcessingState)
}
