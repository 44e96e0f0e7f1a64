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

package playback

import "math"

// DefaultWaveformBars is the number of bars in the timeline visualization.
const DefaultWaveformBars = 80

// Overlay is a highlighted sub-range of the progress track, as fractions of
// the track width.
type Overlay struct {
	Left  float64 `json:"left"`
	Width float64 `json:"width"`
}

// TrackView is everything needed to draw the progress track. The zero value
// draws nothing.
type TrackView struct {
	Progress float64  `json:"progress"`
	Window   *Overlay `json:"window,omitempty"`
}

// RenderTrack computes the filled fraction and the clip-window overlay. An
// unknown duration renders nothing rather than dividing by zero. Values
// outside [0, duration] are passed through unclamped.
func RenderTrack(position, duration float64, window *ClipWindow) TrackView {
	if !knownDuration(duration) {
		return TrackView{}
	}
	view := TrackView{Progress: position / duration}
	if window != nil {
		view.Window = &Overlay{
			Left:  window.Start / duration,
			Width: (window.End - window.Start) / duration,
		}
	}
	return view
}

// Track renders the player's progress track.
func (p *Player) Track() TrackView {
	return RenderTrack(p.position, p.duration, p.window)
}

// OnTrackClick seeks to the point of the track the user clicked, given as a
// fraction of the track width. It returns false without seeking while the
// duration is unknown.
func (p *Player) OnTrackClick(fraction float64) bool {
	if !knownDuration(p.duration) {
		return false
	}
	p.Seek(fraction * p.duration)
	return true
}

// Waveform reports, for each of bars bars, whether playback has reached it.
// Bar i is lit once i/bars <= position/duration. An unknown duration is
// treated as one second.
func Waveform(bars int, position, duration float64) []bool {
	if bars <= 0 {
		return nil
	}
	if !knownDuration(duration) {
		duration = 1
	}
	played := position / duration
	out := make([]bool, bars)
	for i := range out {
		out[i] = float64(i)/float64(bars) <= played
	}
	return out
}

func knownDuration(d float64) bool {
	return d > 0 && !math.IsInf(d, 0)
}
