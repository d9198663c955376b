// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package artifact

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/AleutianAI/pubcloud/pkg/backend"
	"github.com/AleutianAI/pubcloud/pkg/contentaddr"
	"github.com/AleutianAI/pubcloud/pkg/logging"
)

const gcsBackend = "gcs"

// GCSSink uploads artifacts to Google Cloud Storage.
type GCSSink struct {
	client *storage.Client
	logger *slog.Logger
}

var _ Sink = (*GCSSink)(nil)

// GCSOptions configures NewGCSClient.
type GCSOptions struct {
	// CredentialsFile is a service account key. Empty uses Application
	// Default Credentials.
	CredentialsFile string

	// Endpoint overrides the JSON API endpoint (emulators, tests).
	Endpoint string

	// WithoutAuthentication disables credentials entirely.
	WithoutAuthentication bool
}

// NewGCSClient creates a storage client from opts.
//
// Outputs:
//
//	*storage.Client - Caller owns it.
//	error - Non-nil if the key file is missing or the client cannot be built.
func NewGCSClient(ctx context.Context, opts GCSOptions) (*storage.Client, error) {
	var clientOpts []option.ClientOption
	if opts.CredentialsFile != "" {
		if _, err := os.Stat(opts.CredentialsFile); os.IsNotExist(err) {
			return nil, fmt.Errorf("service account key not found at path: %s", opts.CredentialsFile)
		}
		clientOpts = append(clientOpts, option.WithCredentialsFile(opts.CredentialsFile))
	}
	if opts.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(opts.Endpoint))
	}
	if opts.WithoutAuthentication {
		clientOpts = append(clientOpts, option.WithoutAuthentication())
	}

	client, err := storage.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, backend.Wrap(gcsBackend, "create storage client", err)
	}
	return client, nil
}

// NewGCSSink wraps client. Close closes the client.
func NewGCSSink(client *storage.Client, logger *slog.Logger) *GCSSink {
	return &GCSSink{client: client, logger: logging.OrDiscard(logger)}
}

// Save implements Sink.
//
// Description:
//
//	Streams data to gs://bucket/<md5(publicationID)>.png with content type
//	image/png. No preconditions are set, so an existing object is replaced.
func (s *GCSSink) Save(ctx context.Context, publicationID, bucket string, data []byte) error {
	if bucket == "" {
		return errors.New("gcs: bucket name is required")
	}
	name := contentaddr.FileName(publicationID)

	w := s.client.Bucket(bucket).Object(name).NewWriter(ctx)
	w.ContentType = ContentType
	w.CacheControl = "no-cache, no-store, must-revalidate"

	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		w.Close()
		return backend.Wrap(gcsBackend, fmt.Sprintf("write gs://%s/%s", bucket, name), err)
	}
	if err := w.Close(); err != nil {
		return backend.Wrap(gcsBackend, fmt.Sprintf("close writer for gs://%s/%s", bucket, name), err)
	}

	s.logger.Info("uploaded artifact",
		slog.String("publication", publicationID),
		slog.String("object", "gs://"+bucket+"/"+name),
		slog.Int("bytes", len(data)),
	)
	return nil
}

// Close closes the storage client.
func (s *GCSSink) Close() error {
	return s.client.Close()
}
