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

// Package cloud contains data structures and utilities for interacting with Google Cloud services.
// This file defines a small representation of a Google Cloud Storage (GCS)
// object and the URI forms a project source may use to point at one.
//
// Structs:
//   - GCSObject: A bucket/object pair used when uploading and signing media.
//
// Functions:
//   - ParseGCSURI: Extracts the bucket and object from a gs:// or storage URL.
package cloud

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotGCS is returned by ParseGCSURI for URIs that do not name a GCS object.
var ErrNotGCS = errors.New("not a cloud storage uri")

var gcsHTTPPrefixes = []string{
	"https://storage.googleapis.com/",
	"https://storage.cloud.google.com/",
	"https://storage.mtls.cloud.google.com/",
}

// GCSObject is a bucket/object pair.
type GCSObject struct {
	Bucket   string // The name of the GCS bucket.
	Name     string // The name of the object.
	MIMEType string // The MIME type of the object (e.g., "video/mp4").
}

// URI renders the object as gs://bucket/name.
func (o GCSObject) URI() string {
	return fmt.Sprintf("gs://%s/%s", o.Bucket, o.Name)
}

// ParseGCSURI extracts the bucket and object name from gs://bucket/object
// or from an https storage URL. Any other URI returns ErrNotGCS.
func ParseGCSURI(uri string) (GCSObject, error) {
	rest, ok := strings.CutPrefix(uri, "gs://")
	if !ok {
		for _, prefix := range gcsHTTPPrefixes {
			if rest, ok = strings.CutPrefix(uri, prefix); ok {
				break
			}
		}
	}
	if !ok {
		return GCSObject{}, fmt.Errorf("%w: %s", ErrNotGCS, uri)
	}
	bucket, name, found := strings.Cut(rest, "/")
	if !found || bucket == "" || name == "" {
		return GCSObject{}, fmt.Errorf("%w: missing bucket or object in %s", ErrNotGCS, uri)
	}
	return GCSObject{Bucket: bucket, Name: name}, nil
}
