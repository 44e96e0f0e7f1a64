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

package test

import (
	"bytes"
	"context"
	"io"
	"sync"
)

// MP4Header is the start of an ISO base media file with an "mp42" brand,
// enough for content sniffing to call it video/mp4.
func MP4Header() []byte {
	return append([]byte("\x00\x00\x00\x18ftypmp42\x00\x00\x00\x00mp42isom"), make([]byte, 64)...)
}

// MemoryObject is one object written to a MemoryBucket.
type MemoryObject struct {
	bytes.Buffer
	ContentType string
	Closed      bool
	closeErr    error
}

func (o *MemoryObject) Close() error {
	o.Closed = true
	return o.closeErr
}

// MemoryBucket is an in-memory commands.BucketWriter.
type MemoryBucket struct {
	mu       sync.Mutex
	objects  map[string]*MemoryObject
	CloseErr error // Returned by every writer's Close.
}

func (b *MemoryBucket) NewWriter(_ context.Context, bucket, object, contentType string) io.WriteCloser {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.objects == nil {
		b.objects = map[string]*MemoryObject{}
	}
	o := &MemoryObject{ContentType: contentType, closeErr: b.CloseErr}
	b.objects[bucket+"/"+object] = o
	return o
}

// Object returns the object written as bucket/name, or nil.
func (b *MemoryBucket) Object(bucket, name string) *MemoryObject {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.objects[bucket+"/"+name]
}
