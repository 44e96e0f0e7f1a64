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

// ActivateWindow makes window the active clip window, replacing any previous
// one wholesale. A nil window returns the player to free playback.
//
// When the window's start differs from the active window's start (or no
// window was active) the player seeks to the start, and with autoPlay also
// starts playing. A window whose end alone changed is swapped in without
// seeking, so re-selecting the current clip does not interrupt playback.
func (p *Player) ActivateWindow(window *ClipWindow, autoPlay bool) {
	if window == nil {
		p.window = nil
		return
	}
	next := *window
	restart := p.window == nil || p.window.Start != next.Start
	p.window = &next
	if !restart {
		return
	}
	p.Seek(next.Start)
	if autoPlay {
		p.play()
	}
}

// enforceWindow stops playback that has reached the end of the active
// window and rewinds to the window's start. It runs on natural ticks only,
// so manual seeks outside the window are left alone.
func (p *Player) enforceWindow() {
	w := p.window
	if w == nil || w.End <= 0 || p.status != StatusPlaying || p.position < w.End {
		return
	}
	p.pipeline.Pause()
	p.status = StatusPaused
	p.Seek(w.Start)
}
