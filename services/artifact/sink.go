// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package artifact persists rendered word clouds.
//
// A Sink stores PNG bytes under the content-addressed name of a
// publication (see contentaddr.FileName). Writes always overwrite, so
// saving the same publication twice leaves one object.
package artifact

import (
	"context"
	"sync"

	"github.com/AleutianAI/pubcloud/pkg/contentaddr"
)

// ContentType is the declared type of every artifact.
const ContentType = "image/png"

// Sink persists rendered artifacts.
type Sink interface {
	// Save stores data as the artifact of publicationID inside bucket.
	Save(ctx context.Context, publicationID, bucket string, data []byte) error
}

// NopSink discards every artifact. Used for dry runs.
type NopSink struct{}

// Save implements Sink.
func (NopSink) Save(context.Context, string, string, []byte) error { return nil }

// Close is a no-op.
func (NopSink) Close() error { return nil }

// RecordingSink keeps artifacts in memory, keyed by "bucket/name".
//
// Thread Safety: Safe for concurrent use.
type RecordingSink struct {
	mu      sync.Mutex
	objects map[string][]byte
}

// NewRecordingSink creates an empty RecordingSink.
func NewRecordingSink() *RecordingSink {
	return &RecordingSink{objects: make(map[string][]byte)}
}

// Save implements Sink. The data is copied.
func (s *RecordingSink) Save(_ context.Context, publicationID, bucket string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[bucket+"/"+contentaddr.FileName(publicationID)] = append([]byte(nil), data...)
	return nil
}

// Object returns the stored bytes for a publication.
func (s *RecordingSink) Object(bucket, publicationID string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[bucket+"/"+contentaddr.FileName(publicationID)]
	return data, ok
}

// Len returns the number of stored objects.
func (s *RecordingSink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

// Close is a no-op.
func (s *RecordingSink) Close() error { return nil }
