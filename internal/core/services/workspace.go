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

// This file, `workspace.go`, holds the application state of one browser
// tab: the open project, the selected clip, the analysis status, the chat
// and the player. The page reports what its video element does and applies
// the pipeline commands it gets back.
//
// Logic Flow:
//  1. SelectProject loads the project's stream into the player.
//  2. Analyze runs the clip analysis without holding the workspace lock and
//     discards the result if another project was opened meanwhile.
//  3. SelectClip anchors the player to the clip's window and plays it.
//  4. The player endpoints feed metadata, ticks and user input to the
//     player and return the commands it issued.

package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jaycherian/gcp-go-clip-studio/internal/core/model"
	"github.com/jaycherian/gcp-go-clip-studio/internal/playback"
)

// WorkspaceView is the JSON rendering of a workspace.
type WorkspaceView struct {
	Id              string                `json:"id"`
	Project         *model.VideoProject   `json:"project,omitempty"`
	ActiveClip      *model.Clip           `json:"activeClip,omitempty"`
	ProcessingState model.ProcessingState `json:"processingState"`
	AnalysisError   string                `json:"analysisError,omitempty"`
	GeneratedPost   string                `json:"generatedPost,omitempty"`
	Player          playback.State        `json:"player"`
	Waveform        []bool                `json:"waveform"`
	Chat            []*model.ChatMessage  `json:"chat"`
	LastPlayError   string                `json:"lastPlayError,omitempty"`
}

// PlayerResult is returned by every call that drives the player.
type PlayerResult struct {
	Commands []playback.Command `json:"commands"` // Pipeline commands for the page, in order.
	Player   playback.State     `json:"player"`
	Handled  bool               `json:"handled"` // False when the event was ignored, e.g. a track click before metadata.
}

// Workspace is the state of one studio session. It is safe for concurrent
// use.
type Workspace struct {
	id        string
	library   *ProjectLibrary
	media     *MediaService
	assistant *Assistant
	logger    *slog.Logger
	now       func() time.Time

	mu            sync.Mutex
	project       *model.VideoProject
	clip          *model.Clip
	processing    model.ProcessingState
	analysisErr   string
	generatedPost string
	chat          []*model.ChatMessage
	queue         *playback.CommandQueue
	player        *playback.Player
	lastPlayError string
	seq           uint64 // Bumped whenever the open project changes.
}

func newWorkspace(id string, library *ProjectLibrary, media *MediaService, assistant *Assistant, logger *slog.Logger) *Workspace {
	w := &Workspace{
		id:         id,
		library:    library,
		media:      media,
		assistant:  assistant,
		logger:     logger.With("workspace", id),
		now:        time.Now,
		processing: model.ProcessingIdle,
		queue:      &playback.CommandQueue{},
	}
	w.player = playback.NewPlayer(w.queue, playback.Listener{
		OnPlayFailure: func(err error) {
			w.lastPlayError = err.Error()
			w.logger.Warn("play request rejected", "error", err)
		},
	})
	return w
}

// Id returns the workspace ID.
func (w *Workspace) Id() string { return w.id }

// View renders the workspace.
func (w *Workspace) View() WorkspaceView {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.view()
}

func (w *Workspace) view() WorkspaceView {
	v := WorkspaceView{
		Id:              w.id,
		ProcessingState: w.processing,
		AnalysisError:   w.analysisErr,
		GeneratedPost:   w.generatedPost,
		Player:          w.player.Snapshot(),
		Waveform:        playback.Waveform(playback.DefaultWaveformBars, w.player.Position(), w.player.Duration()),
		Chat:            append([]*model.ChatMessage{}, w.chat...),
		LastPlayError:   w.lastPlayError,
	}
	if w.project != nil {
		v.Project = w.project.Clone()
	}
	if w.clip != nil {
		c := *w.clip
		v.ActiveClip = &c
	}
	return v
}

func (w *Workspace) result(handled bool) PlayerResult {
	return PlayerResult{Commands: w.queue.Drain(), Player: w.player.Snapshot(), Handled: handled}
}

// SelectProject opens a project: the clip selection, analysis state,
// generated post and chat are reset and the project's stream is loaded.
func (w *Workspace) SelectProject(ctx context.Context, projectID string) (PlayerResult, error) {
	project, err := w.library.Get(projectID)
	if err != nil {
		return PlayerResult{}, err
	}
	source, err := w.media.StreamURL(ctx, project)
	if err != nil {
		return PlayerResult{}, fmt.Errorf("failed to resolve stream for project %s: %w", projectID, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.seq++
	w.project = project
	w.clip = nil
	w.processing = model.ProcessingIdle
	w.analysisErr = ""
	w.generatedPost = ""
	w.chat = nil
	w.lastPlayError = ""
	w.player.Load(source)
	w.logger.InfoContext(ctx, "project opened", "project", project.Id)
	return w.result(true), nil
}

// CloseProject returns the workspace to the dashboard.
func (w *Workspace) CloseProject(ctx context.Context) PlayerResult {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.seq++
	w.project = nil
	w.clip = nil
	w.processing = model.ProcessingIdle
	w.analysisErr = ""
	w.generatedPost = ""
	w.chat = nil
	w.player.Load("")
	w.logger.InfoContext(ctx, "project closed")
	return w.result(true)
}

// Analyze generates clips for the open project and stores them in the
// library. The workspace stays usable while the model works.
func (w *Workspace) Analyze(ctx context.Context) ([]*model.Clip, error) {
	w.mu.Lock()
	if w.project == nil {
		w.mu.Unlock()
		return nil, ErrNoActiveProject
	}
	if w.processing == model.ProcessingAnalyzing {
		w.mu.Unlock()
		return nil, ErrAnalysisInProgress
	}
	w.processing = model.ProcessingAnalyzing
	w.analysisErr = ""
	project := w.project.Clone()
	seq := w.seq
	w.mu.Unlock()

	clips, err := w.assistant.Analyze(ctx, project)

	w.mu.Lock()
	defer w.mu.Unlock()
	if seq != w.seq {
		w.logger.InfoContext(ctx, "analysis result discarded", "project", project.Id)
		return nil, ErrProjectChanged
	}
	if err != nil {
		w.processing = model.ProcessingError
		w.analysisErr = err.Error()
		w.logger.ErrorContext(ctx, "clip analysis failed", "project", project.Id, "error", err)
		return nil, err
	}

	if err := w.library.SetClips(project.Id, clips); err != nil {
		w.logger.WarnContext(ctx, "failed to store clips", "project", project.Id, "error", err)
	}
	w.project.Clips = (&model.VideoProject{Clips: clips}).Clone().Clips
	w.processing = model.ProcessingComplete
	if w.clip != nil && w.project.FindClip(w.clip.Id) == nil {
		w.clip = nil
		w.generatedPost = ""
		w.player.ActivateWindow(nil, false)
	}
	w.logger.InfoContext(ctx, "clip analysis complete", "project", project.Id, "clips", len(clips))
	return w.project.Clone().Clips, nil
}

// SelectClip previews a clip of the open project: the player seeks to its
// start, plays, and pauses at its end.
func (w *Workspace) SelectClip(clipID string) (PlayerResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.project == nil {
		return PlayerResult{}, ErrNoActiveProject
	}
	c := w.project.FindClip(clipID)
	if c == nil {
		return PlayerResult{}, fmt.Errorf("%w: %s", ErrClipNotFound, clipID)
	}
	if !c.Window().Valid() {
		return PlayerResult{}, fmt.Errorf("%w: %s", ErrInvalidClip, clipID)
	}
	clip := *c
	w.clip = &clip
	w.generatedPost = ""
	w.player.ActivateWindow(clip.Window(), true)
	return w.result(true), nil
}

// Metadata reports the source duration.
func (w *Workspace) Metadata(duration float64) PlayerResult {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.player.OnMetadataLoaded(duration)
	return w.result(true)
}

// Tick reports a natural playback position update.
func (w *Workspace) Tick(position float64) PlayerResult {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.player.OnPositionTick(position)
	return w.result(true)
}

// TogglePlay flips play/pause.
func (w *Workspace) TogglePlay() PlayerResult {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lastPlayError = ""
	w.player.TogglePlay()
	return w.result(true)
}

// ToggleMute flips mute.
func (w *Workspace) ToggleMute() PlayerResult {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.player.ToggleMute()
	return w.result(true)
}

// Seek moves the playhead directly.
func (w *Workspace) Seek(position float64) PlayerResult {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.player.Seek(position)
	return w.result(true)
}

// TrackClick seeks to a fraction of the progress track.
func (w *Workspace) TrackClick(fraction float64) PlayerResult {
	w.mu.Lock()
	defer w.mu.Unlock()
	handled := w.player.OnTrackClick(fraction)
	return w.result(handled)
}

// PlayRejected records that the page's media element refused to play.
func (w *Workspace) PlayRejected(reason string) PlayerResult {
	w.mu.Lock()
	defer w.mu.Unlock()
	if strings.TrimSpace(reason) == "" {
		reason = "play request rejected"
	}
	w.player.PlayRejected(errors.New(reason))
	return w.result(true)
}

// Repurpose writes post copy for the selected clip.
func (w *Workspace) Repurpose(ctx context.Context, platform model.Platform) (string, error) {
	w.mu.Lock()
	if w.clip == nil {
		w.mu.Unlock()
		return "", ErrNoActiveClip
	}
	clip := *w.clip
	projectID := w.project.Id
	seq := w.seq
	w.mu.Unlock()

	post, err := w.assistant.Repurpose(ctx, &clip, platform)
	if err != nil {
		w.logger.ErrorContext(ctx, "repurpose failed", "clip", clip.Id, "error", err)
		return "", err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if seq == w.seq && w.clip != nil && w.clip.Id == clip.Id {
		w.generatedPost = post
	}
	if err := w.library.SetSuggestedPost(projectID, clip.Id, post); err != nil {
		w.logger.WarnContext(ctx, "failed to store post", "clip", clip.Id, "error", err)
	}
	return post, nil
}

// Chat sends message to the assistant and appends both turns to the
// history.
func (w *Workspace) Chat(ctx context.Context, message string) (*model.ChatMessage, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	w.mu.Lock()
	if w.project == nil {
		w.mu.Unlock()
		return nil, ErrNoActiveProject
	}
	project := w.project.Clone()
	history := append([]*model.ChatMessage(nil), w.chat...)
	seq := w.seq
	sent := w.now()
	w.mu.Unlock()

	reply, err := w.assistant.Chat(ctx, project, history, message)
	if err != nil {
		w.logger.ErrorContext(ctx, "chat failed", "project", project.Id, "error", err)
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if seq != w.seq {
		return nil, ErrProjectChanged
	}
	answer := &model.ChatMessage{Id: uuid.NewString(), Role: model.RoleModel, Text: reply, Timestamp: w.now()}
	w.chat = append(w.chat,
		&model.ChatMessage{Id: uuid.NewString(), Role: model.RoleUser, Text: message, Timestamp: sent},
		answer,
	)
	out := *answer
	return &out, nil
}

// WorkspaceStore keeps the open workspaces. A workspace lives until it is
// closed or, when ExpireIdle runs, until it goes unused for too long.
type WorkspaceStore struct {
	library   *ProjectLibrary
	media     *MediaService
	assistant *Assistant
	logger    *slog.Logger

	mu         sync.Mutex
	workspaces map[string]*Workspace
	lastUsed   map[string]time.Time
}

// NewWorkspaceStore creates an empty store whose workspaces share the given
// services. A nil logger logs to slog.Default().
func NewWorkspaceStore(library *ProjectLibrary, media *MediaService, assistant *Assistant, logger *slog.Logger) *WorkspaceStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkspaceStore{
		library:    library,
		media:      media,
		assistant:  assistant,
		logger:     logger,
		workspaces: make(map[string]*Workspace),
		lastUsed:   make(map[string]time.Time),
	}
}

// Open creates a workspace.
func (s *WorkspaceStore) Open() *Workspace {
	w := newWorkspace(uuid.NewString(), s.library, s.media, s.assistant, s.logger)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workspaces[w.id] = w
	s.lastUsed[w.id] = time.Now()
	return w
}

// Get returns the workspace with the given ID and marks it as used.
func (s *WorkspaceStore) Get(id string) (*Workspace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.workspaces[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrWorkspaceNotFound, id)
	}
	s.lastUsed[id] = time.Now()
	return w, nil
}

// Close forgets a workspace.
func (s *WorkspaceStore) Close(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.workspaces[id]; !ok {
		return fmt.Errorf("%w: %s", ErrWorkspaceNotFound, id)
	}
	delete(s.workspaces, id)
	delete(s.lastUsed, id)
	return nil
}

// Prune forgets every workspace last used before cutoff and returns how
// many it removed.
func (s *WorkspaceStore) Prune(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, used := range s.lastUsed {
		if used.Before(cutoff) {
			delete(s.workspaces, id)
			delete(s.lastUsed, id)
			removed++
		}
	}
	return removed
}

// ExpireIdle prunes workspaces unused for longer than ttl, checking every
// interval, until ctx is done. A non-positive ttl or interval returns at
// once.
func (s *WorkspaceStore) ExpireIdle(ctx context.Context, ttl, interval time.Duration) {
	if ttl <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := s.Prune(now.Add(-ttl)); n > 0 {
				s.logger.InfoContext(ctx, "expired idle workspaces", "count", n, "ttl", ttl)
			}
		}
	}
}
