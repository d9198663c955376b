// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package clients selects and constructs backends by kind.
//
// The data backend (word counts and publications) and the blob backend
// (artifacts) are chosen independently at construction time:
//
//	data:  firestore (alias "db"), badger, synthetic
//	blob:  gcs (alias "blob"), nop
//
// Any other kind fails with ErrInvalidClientType.
package clients

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"

	"github.com/AleutianAI/pubcloud/pkg/backend"
	pbadger "github.com/AleutianAI/pubcloud/pkg/storage/badger"
	"github.com/AleutianAI/pubcloud/services/artifact"
	"github.com/AleutianAI/pubcloud/services/frequency"
)

// ErrInvalidClientType is returned for an unrecognized backend kind.
var ErrInvalidClientType = errors.New("invalid client type")

// Kind names a backend implementation.
type Kind string

const (
	KindFirestore Kind = "firestore"
	KindBadger    Kind = "badger"
	KindSynthetic Kind = "synthetic"
	KindGCS       Kind = "gcs"
	KindNop       Kind = "nop"
)

var aliases = map[string]Kind{
	"db":   KindFirestore,
	"blob": KindGCS,
}

// ParseKind normalizes a kind name, resolving aliases. It does not check
// that the kind fits a particular role.
func ParseKind(s string) Kind {
	s = strings.ToLower(strings.TrimSpace(s))
	if k, ok := aliases[s]; ok {
		return k
	}
	return Kind(s)
}

// =============================================================================
// Data backends
// =============================================================================

// Data is a word count store and publication catalog with a lifecycle.
type Data interface {
	frequency.Store
	frequency.Catalog
	io.Closer
}

// DataConfig selects and configures the data backend.
type DataConfig struct {
	Kind string

	// Firestore
	ProjectID       string
	DatabaseID      string
	CredentialsFile string

	// Badger
	BadgerPath     string
	BadgerInMemory bool
}

// OpenData constructs the data backend named by cfg.Kind.
//
// Outputs:
//
//	Data - Caller must Close() it.
//	error - ErrInvalidClientType for an unknown kind, or a backend error.
func OpenData(ctx context.Context, cfg DataConfig, logger *slog.Logger) (Data, error) {
	switch kind := ParseKind(cfg.Kind); kind {
	case KindFirestore:
		var opts []option.ClientOption
		if cfg.CredentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
		}
		projectID := cfg.ProjectID
		if projectID == "" {
			projectID = firestore.DetectProjectID
		}
		var (
			client *firestore.Client
			err    error
		)
		if cfg.DatabaseID != "" {
			client, err = firestore.NewClientWithDatabase(ctx, projectID, cfg.DatabaseID, opts...)
		} else {
			client, err = firestore.NewClient(ctx, projectID, opts...)
		}
		if err != nil {
			return nil, backend.Wrap("firestore", "create client", err)
		}
		return frequency.NewFirestoreStore(client, logger), nil

	case KindBadger:
		bcfg := pbadger.DefaultConfig(cfg.BadgerPath)
		if cfg.BadgerInMemory {
			bcfg = pbadger.InMemoryConfig()
		}
		store, err := frequency.OpenBadgerStore(bcfg, logger)
		if err != nil {
			return nil, err
		}
		return store, nil

	case KindSynthetic:
		return frequency.SyntheticStore{}, nil

	default:
		return nil, fmt.Errorf("%w: data backend %q", ErrInvalidClientType, cfg.Kind)
	}
}

// =============================================================================
// Blob backends
// =============================================================================

// Sink is an artifact sink with a lifecycle.
type Sink interface {
	artifact.Sink
	io.Closer
}

// BlobConfig selects and configures the blob backend.
type BlobConfig struct {
	Kind            string
	CredentialsFile string
	Endpoint        string
}

// OpenSink constructs the artifact sink named by cfg.Kind.
func OpenSink(ctx context.Context, cfg BlobConfig, logger *slog.Logger) (Sink, error) {
	switch kind := ParseKind(cfg.Kind); kind {
	case KindGCS:
		client, err := artifact.NewGCSClient(ctx, artifact.GCSOptions{
			CredentialsFile: cfg.CredentialsFile,
			Endpoint:        cfg.Endpoint,
		})
		if err != nil {
			return nil, err
		}
		return artifact.NewGCSSink(client, logger), nil

	case KindNop:
		return artifact.NopSink{}, nil

	default:
		return nil, fmt.Errorf("%w: blob backend %q", ErrInvalidClientType, cfg.Kind)
	}
}
