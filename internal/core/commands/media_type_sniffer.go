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

package commands

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/h2non/filetype"

	"github.com/jaycherian/gcp-go-clip-studio/internal/core/cor"
)

// sniffLen is the number of bytes filetype needs to match every type it knows.
const sniffLen = 262

// ErrNotVideo is recorded when an upload does not look like a video.
var ErrNotVideo = errors.New("upload is not a video")

// MediaTypeSniffer inspects the first bytes of an UploadRequest, rejects
// anything that is not a video and records the detected MIME type. The
// bytes it reads are put back in front of the body.
type MediaTypeSniffer struct {
	cor.BaseCommand
}

func NewMediaTypeSniffer(name string) *MediaTypeSniffer {
	return &MediaTypeSniffer{BaseCommand: *cor.NewBaseCommand(name)}
}

func (m *MediaTypeSniffer) Execute(context cor.Context) {
	req, ok := cor.GetAs[*UploadRequest](context, m.GetInputParam())
	if !ok || req == nil || req.Body == nil {
		m.Fail(context, fmt.Errorf("expected *UploadRequest with a body under %q", m.GetInputParam()))
		return
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(req.Body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		m.Fail(context, fmt.Errorf("failed to read upload: %w", err))
		return
	}
	head = head[:n]

	if !filetype.IsVideo(head) {
		m.Fail(context, fmt.Errorf("%w: %s", ErrNotVideo, req.Name))
		return
	}
	kind, err := filetype.Match(head)
	if err != nil {
		m.Fail(context, fmt.Errorf("failed to match file type: %w", err))
		return
	}

	req.MIMEType = kind.MIME.Value
	req.Body = io.MultiReader(bytes.NewReader(head), req.Body)
	m.Succeed(context, req)
}
