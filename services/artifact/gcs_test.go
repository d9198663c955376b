// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package artifact

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/pubcloud/pkg/backend"
	"github.com/AleutianAI/pubcloud/pkg/contentaddr"
)

// ============================================================================
// Fake JSON API
// ============================================================================

type upload struct {
	path string
	body string
}

type fakeGCS struct {
	mu      sync.Mutex
	uploads []upload
	status  int
}

func (f *fakeGCS) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.uploads = append(f.uploads, upload{path: r.URL.Path, body: string(body)})
	status := f.status
	f.mu.Unlock()

	if status != 0 {
		http.Error(w, `{"error":{"code":403,"message":"forbidden"}}`, status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"bucket":      "artifacts",
		"name":        contentaddr.FileName("vox"),
		"contentType": ContentType,
	})
}

func newFakeSink(t *testing.T, fake *fakeGCS) *GCSSink {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client, err := NewGCSClient(context.Background(), GCSOptions{
		Endpoint:              srv.URL + "/storage/v1/",
		WithoutAuthentication: true,
	})
	require.NoError(t, err)
	sink := NewGCSSink(client, nil)
	t.Cleanup(func() { _ = sink.Close() })
	return sink
}

// ============================================================================
// Unit Tests
// ============================================================================

func TestNewGCSClient_MissingKey(t *testing.T) {
	_, err := NewGCSClient(context.Background(), GCSOptions{CredentialsFile: "/nonexistent/key.json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "service account key not found")
	assert.Contains(t, err.Error(), "/nonexistent/key.json")
}

func TestGCSSink_Save_UploadsPNGUnderHashedName(t *testing.T) {
	fake := &fakeGCS{}
	sink := newFakeSink(t, fake)

	data := []byte("\x89PNG\r\n\x1a\nfake-image-bytes")
	require.NoError(t, sink.Save(context.Background(), "vox", "artifacts", data))

	fake.mu.Lock()
	defer fake.mu.Unlock()
	require.NotEmpty(t, fake.uploads)
	up := fake.uploads[len(fake.uploads)-1]
	assert.Contains(t, up.path, "/b/artifacts/o")
	assert.Contains(t, up.body, contentaddr.FileName("vox"))
	assert.Contains(t, up.body, ContentType)
	assert.True(t, strings.Contains(up.body, "fake-image-bytes"))
}

func TestGCSSink_Save_BackendFailure(t *testing.T) {
	fake := &fakeGCS{status: http.StatusForbidden}
	sink := newFakeSink(t, fake)

	err := sink.Save(context.Background(), "vox", "artifacts", []byte("x"))
	require.Error(t, err)
	assert.True(t, backend.IsFailure(err))
}

func TestGCSSink_Save_RequiresBucket(t *testing.T) {
	sink := NewGCSSink(nil, nil)
	err := sink.Save(context.Background(), "vox", "", []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket name is required")
}

// ============================================================================
// Integration Tests (require real GCS credentials)
// ============================================================================

func TestGCSSink_Integration(t *testing.T) {
	keyPath := os.Getenv("GCS_TEST_SA_KEY_PATH")
	bucket := os.Getenv("GCS_TEST_BUCKET_NAME")
	if keyPath == "" || bucket == "" {
		t.Skip("Skipping integration test: GCS_TEST_SA_KEY_PATH and GCS_TEST_BUCKET_NAME not set")
	}

	ctx := context.Background()
	client, err := NewGCSClient(ctx, GCSOptions{CredentialsFile: keyPath})
	require.NoError(t, err)
	sink := NewGCSSink(client, nil)
	defer sink.Close()

	require.NoError(t, sink.Save(ctx, "pubcloud-integration", bucket, []byte("first")))
	require.NoError(t, sink.Save(ctx, "pubcloud-integration", bucket, []byte("second")))

	attrs, err := client.Bucket(bucket).Object(contentaddr.FileName("pubcloud-integration")).Attrs(ctx)
	require.NoError(t, err)
	assert.Equal(t, ContentType, attrs.ContentType)
	assert.EqualValues(t, len("second"), attrs.Size)
}
