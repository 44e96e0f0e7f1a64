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

package services

import (
	"errors"

	"github.com/jaycherian/gcp-go-clip-studio/internal/core/commands"
)

// Sentinel errors returned by the services. The HTTP layer maps them to
// status codes with errors.Is.
var (
	ErrProjectNotFound    = errors.New("project not found")
	ErrClipNotFound       = errors.New("clip not found")
	ErrWorkspaceNotFound  = errors.New("workspace not found")
	ErrNoActiveProject    = errors.New("no project is open")
	ErrNoActiveClip       = errors.New("no clip is selected")
	ErrInvalidClip        = errors.New("clip has no playable window")
	ErrAnalysisInProgress = errors.New("analysis already in progress")
	ErrProjectChanged     = errors.New("the open project changed before the request finished")
	ErrEmptyMessage       = errors.New("message is empty")
	ErrInvalidFileName    = errors.New("invalid file name")
	ErrUploadsDisabled    = errors.New("uploads are disabled: no upload bucket is configured")
	ErrNotVideo           = commands.ErrNotVideo
)
