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

// Package playback holds the clip-anchored player state machine. It is the
// single source of truth for play/pause, mute, position and duration of one
// media source, and it keeps playback inside an optional clip window.
//
// The package never decodes media itself. Every effect is issued to a
// Pipeline (a browser video element driven over HTTP, an mpv process, a
// test fake), and the pipeline reports back through the On* methods. All
// methods are synchronous and the Player is not safe for concurrent use;
// callers serialize access.
//
// Logic Flow:
//  1. Load resets the player for a new source.
//  2. OnMetadataLoaded records the duration once the pipeline knows it.
//  3. ActivateWindow seeks to a clip's start (and optionally plays).
//  4. OnPositionTick records progress and pauses at the clip's end,
//     rewinding to the start so the next play replays the clip.
//  5. OnTrackClick maps a click on the progress track to a seek.
package playback

import (
	"fmt"
	"math"
)

// Status is the play/pause state of the player.
type Status int

const (
	// StatusPaused is the initial state and the state after a clip ends.
	StatusPaused Status = iota
	// StatusPlaying means a play request has been issued to the pipeline.
	StatusPlaying
)

// String returns the status label used in API payloads.
func (s Status) String() string {
	switch s {
	case StatusPaused:
		return "PAUSED"
	case StatusPlaying:
		return "PLAYING"
	default:
		return "UNKNOWN"
	}
}

// MarshalText lets Status render as its label in JSON.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a status label.
func (s *Status) UnmarshalText(text []byte) error {
	switch string(text) {
	case "PAUSED":
		*s = StatusPaused
	case "PLAYING":
		*s = StatusPlaying
	default:
		return fmt.Errorf("unknown player status %q", text)
	}
	return nil
}

// ClipWindow is the [Start, End) range, in seconds, that the player previews
// in isolation. Callers keep 0 <= Start < End <= duration.
type ClipWindow struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Valid reports whether the window is a non-empty range starting at or
// after zero.
func (w ClipWindow) Valid() bool {
	return w.Start >= 0 && w.End > w.Start
}

// Pipeline is the underlying media pipeline the player drives.
type Pipeline interface {
	// Load replaces the media source.
	Load(source string)
	// Play starts playback. It may be rejected, e.g. by an autoplay policy.
	Play() error
	// Pause stops playback at the current position.
	Pause()
	// Seek moves the playhead. The pipeline clamps to its own bounds.
	Seek(seconds float64)
	// SetMuted mutes or unmutes audio.
	SetMuted(muted bool)
}

// Listener receives the values the player reports upward. Every field is
// optional.
type Listener struct {
	OnPosition    func(seconds float64)
	OnDuration    func(seconds float64)
	OnPlayFailure func(err error)
}

// Player is the playback controller for exactly one media source.
type Player struct {
	pipeline Pipeline
	listener Listener

	source   string
	position float64
	duration float64
	status   Status
	muted    bool
	window   *ClipWindow
}

// NewPlayer creates a paused player with no source.
func NewPlayer(pipeline Pipeline, listener Listener) *Player {
	return &Player{pipeline: pipeline, listener: listener}
}

// Load replaces the active source and reinitializes all playback state.
// Any pending play intent and any active clip window are dropped.
func (p *Player) Load(source string) {
	p.source = source
	p.position = 0
	p.duration = 0
	p.status = StatusPaused
	p.window = nil
	p.pipeline.Load(source)
	if p.muted {
		p.muted = false
		p.pipeline.SetMuted(false)
	}
}

// OnMetadataLoaded records the source duration and reports it upward.
func (p *Player) OnMetadataLoaded(duration float64) {
	if math.IsNaN(duration) || math.IsInf(duration, 0) || duration < 0 {
		duration = 0
	}
	p.duration = duration
	if p.listener.OnDuration != nil {
		p.listener.OnDuration(duration)
	}
}

// OnPositionTick records a natural playback tick, reports it upward and
// enforces the clip window.
func (p *Player) OnPositionTick(position float64) {
	p.position = position
	if p.listener.OnPosition != nil {
		p.listener.OnPosition(position)
	}
	p.enforceWindow()
}

// TogglePlay flips between playing and paused. A rejected play request is
// passed to OnPlayFailure but the status still flips; the next toggle
// re-syncs the two.
func (p *Player) TogglePlay() {
	if p.status == StatusPlaying {
		p.pipeline.Pause()
		p.status = StatusPaused
		return
	}
	p.play()
}

// ToggleMute flips the mute state.
func (p *Player) ToggleMute() {
	p.muted = !p.muted
	p.pipeline.SetMuted(p.muted)
}

// Seek moves the playhead directly, bypassing the tick-driven update. The
// clip window is not consulted.
func (p *Player) Seek(position float64) {
	p.position = position
	p.pipeline.Seek(position)
}

// PlayRejected reports a play failure the pipeline delivered
// asynchronously. The status is left as is.
func (p *Player) PlayRejected(err error) {
	if p.listener.OnPlayFailure != nil && err != nil {
		p.listener.OnPlayFailure(err)
	}
}

func (p *Player) play() {
	p.status = StatusPlaying
	if err := p.pipeline.Play(); err != nil {
		p.PlayRejected(err)
	}
}

// Source returns the loaded media source.
func (p *Player) Source() string { return p.source }

// Position returns the playhead in seconds.
func (p *Player) Position() float64 { return p.position }

// Duration returns the source duration, or 0 while unknown.
func (p *Player) Duration() float64 { return p.duration }

// Status returns the play/pause state.
func (p *Player) Status() Status { return p.status }

// Muted reports whether audio is muted.
func (p *Player) Muted() bool { return p.muted }

// Window returns a copy of the active clip window, or nil.
func (p *Player) Window() *ClipWindow {
	if p.window == nil {
		return nil
	}
	w := *p.window
	return &w
}

// State is a read-only snapshot of a player, shaped for API payloads.
type State struct {
	Source   string      `json:"source"`
	Position float64     `json:"position"`
	Duration float64     `json:"duration"`
	Status   Status      `json:"status"`
	Muted    bool        `json:"muted"`
	Window   *ClipWindow `json:"window,omitempty"`
	Progress string      `json:"progress"`
	Track    TrackView   `json:"track"`
}

// Snapshot captures the current state.
func (p *Player) Snapshot() State {
	return State{
		Source:   p.source,
		Position: p.position,
		Duration: p.duration,
		Status:   p.status,
		Muted:    p.muted,
		Window:   p.Window(),
		Progress: FormatProgress(p.position, p.duration),
		Track:    p.Track(),
	}
}
