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

// Pipeline operations carried by a Command.
const (
	OpLoad  = "load"
	OpPlay  = "play"
	OpPause = "pause"
	OpSeek  = "seek"
	OpMute  = "mute"
)

// Command is one pipeline instruction for a remote media element.
type Command struct {
	Op      string  `json:"op"`
	Source  string  `json:"source,omitempty"`
	Seconds float64 `json:"seconds"`
	Muted   bool    `json:"muted"`
}

// CommandQueue is a Pipeline that records instructions for a media element
// living elsewhere, typically a browser page that polls or receives them in
// the response to the event it just reported. Play never fails here; the
// page reports rejections back through Player.PlayRejected.
type CommandQueue struct {
	commands []Command
}

// Load implements Pipeline.
func (q *CommandQueue) Load(source string) {
	q.commands = append(q.commands, Command{Op: OpLoad, Source: source})
}

// Play implements Pipeline.
func (q *CommandQueue) Play() error {
	q.commands = append(q.commands, Command{Op: OpPlay})
	return nil
}

// Pause implements Pipeline.
func (q *CommandQueue) Pause() {
	q.commands = append(q.commands, Command{Op: OpPause})
}

// Seek implements Pipeline.
func (q *CommandQueue) Seek(seconds float64) {
	q.commands = append(q.commands, Command{Op: OpSeek, Seconds: seconds})
}

// SetMuted implements Pipeline.
func (q *CommandQueue) SetMuted(muted bool) {
	q.commands = append(q.commands, Command{Op: OpMute, Muted: muted})
}

// Drain returns the queued commands in issue order and empties the queue.
// It never returns nil.
func (q *CommandQueue) Drain() []Command {
	out := q.commands
	q.commands = nil
	if out == nil {
		out = []Command{}
	}
	return out
}
