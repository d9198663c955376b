// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package frequency

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/AleutianAI/pubcloud/pkg/backend"
	"github.com/AleutianAI/pubcloud/pkg/contentaddr"
	"github.com/AleutianAI/pubcloud/pkg/logging"
)

const (
	firestoreBackend = "firestore"

	// PublicationsCollection holds one document per publication, keyed by
	// publication id, with a "count" field.
	PublicationsCollection = "publications"

	// EntitiesCollection is the per-publication sub-collection of word
	// count documents with "word" and "count" fields.
	EntitiesCollection = "ent"
)

type entityDoc struct {
	Word  string `firestore:"word"`
	Count int64  `firestore:"count"`
}

type publicationDoc struct {
	Count int64 `firestore:"count"`
}

// FirestoreStore reads publications and word counts from Firestore.
//
// The word count query needs a composite index on the "ent" collection
// group: count descending, word ascending.
type FirestoreStore struct {
	client *firestore.Client
	logger *slog.Logger
}

var (
	_ Store   = (*FirestoreStore)(nil)
	_ Catalog = (*FirestoreStore)(nil)
)

// NewFirestoreStore wraps client. Close closes the client.
func NewFirestoreStore(client *firestore.Client, logger *slog.Logger) *FirestoreStore {
	return &FirestoreStore{client: client, logger: logging.OrDiscard(logger)}
}

// Close closes the Firestore client.
func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

// wordCountQuery builds the ordered, bounded, optionally resumed query.
func (s *FirestoreStore) wordCountQuery(publicationID string, n int, cp *Checkpoint) (firestore.Query, error) {
	if publicationID == "" || strings.Contains(publicationID, "/") {
		return firestore.Query{}, fmt.Errorf("%w: publication id %q", ErrInvalidRecord, publicationID)
	}
	q := s.client.Collection(PublicationsCollection).
		Doc(publicationID).
		Collection(EntitiesCollection).
		OrderBy("count", firestore.Desc).
		OrderBy("word", firestore.Asc).
		Limit(n)
	if cp.Usable() {
		// Cursor values follow the OrderBy fields.
		q = q.StartAfter(cp.Count, cp.Word)
	}
	return q, nil
}

// TopN implements Store.
func (s *FirestoreStore) TopN(ctx context.Context, publicationID string, n int, cp *Checkpoint) iter.Seq2[WordCount, error] {
	q, err := s.wordCountQuery(publicationID, n, cp)
	if err != nil {
		return failed[WordCount](err)
	}
	return singleUse(func(yield func(WordCount, error) bool) {
		if n <= 0 {
			return
		}
		docs := q.Documents(ctx)
		defer docs.Stop()

		for {
			doc, err := docs.Next()
			if errors.Is(err, iterator.Done) {
				return
			}
			if err != nil {
				yield(WordCount{}, backend.Wrap(firestoreBackend, "query word counts", err))
				return
			}
			var e entityDoc
			if err := doc.DataTo(&e); err != nil {
				yield(WordCount{}, backend.Wrap(firestoreBackend, "decode word count "+doc.Ref.ID, err))
				return
			}
			if !yield(WordCount{Word: e.Word, Count: e.Count}, nil) {
				return
			}
		}
	})
}

// Publications implements Catalog. Documents are streamed in backend order.
func (s *FirestoreStore) Publications(ctx context.Context, base string) iter.Seq2[Publication, error] {
	return singleUse(func(yield func(Publication, error) bool) {
		docs := s.client.Collection(PublicationsCollection).Documents(ctx)
		defer docs.Stop()

		for {
			doc, err := docs.Next()
			if errors.Is(err, iterator.Done) {
				return
			}
			if err != nil {
				yield(Publication{}, backend.Wrap(firestoreBackend, "stream publications", err))
				return
			}
			var p publicationDoc
			if err := doc.DataTo(&p); err != nil {
				yield(Publication{}, backend.Wrap(firestoreBackend, "decode publication "+doc.Ref.ID, err))
				return
			}
			id := doc.Ref.ID
			s.logger.Debug("publication", slog.String("id", id), slog.Int64("count", p.Count))
			if !yield(Publication{ID: id, TotalCount: p.Count, ArtifactPath: contentaddr.DerivePath(id, base)}, nil) {
				return
			}
		}
	})
}

// =============================================================================
// Writes (seeding and emulator tests)
// =============================================================================

// PutPublication sets a publication document's count.
func (s *FirestoreStore) PutPublication(ctx context.Context, publicationID string, total int64) error {
	if publicationID == "" || strings.Contains(publicationID, "/") {
		return fmt.Errorf("%w: publication id %q", ErrInvalidRecord, publicationID)
	}
	_, err := s.client.Collection(PublicationsCollection).Doc(publicationID).
		Set(ctx, publicationDoc{Count: total})
	return backend.Wrap(firestoreBackend, "put publication", err)
}

// PutWordCount writes one word count document. The document id is the
// word's hash, so rewriting a word replaces its previous count.
func (s *FirestoreStore) PutWordCount(ctx context.Context, publicationID string, wc WordCount) error {
	if publicationID == "" || strings.Contains(publicationID, "/") || wc.Word == "" {
		return fmt.Errorf("%w: publication %q word %q", ErrInvalidRecord, publicationID, wc.Word)
	}
	_, err := s.client.Collection(PublicationsCollection).Doc(publicationID).
		Collection(EntitiesCollection).Doc(contentaddr.Hash(wc.Word)).
		Set(ctx, entityDoc{Word: wc.Word, Count: wc.Count})
	return backend.Wrap(firestoreBackend, "put word count", err)
}
