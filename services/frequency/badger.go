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
	"encoding/binary"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/AleutianAI/pubcloud/pkg/backend"
	"github.com/AleutianAI/pubcloud/pkg/contentaddr"
	"github.com/AleutianAI/pubcloud/pkg/logging"
	pbadger "github.com/AleutianAI/pubcloud/pkg/storage/badger"
)

// =============================================================================
// Key Layout
// =============================================================================
//
//	pub\x00<pub>                       -> total count (8 bytes, big endian)
//	wrd\x00<pub>\x00<word>             -> current count of <word>
//	ent\x00<pub>\x00<^count><word>     -> empty
//
// ^count is the bitwise complement of the count as 8 big-endian bytes, so
// ascending key order in the ent space is count descending, then word
// ascending byte-wise. The wrd index keeps one ent key per word.

const badgerBackend = "badger"

var (
	pubPrefix  = []byte("pub\x00")
	wordPrefix = []byte("wrd\x00")
	entPrefix  = []byte("ent\x00")
)

func publicationKey(pub string) []byte {
	return append(append([]byte{}, pubPrefix...), pub...)
}

func wordKey(pub, word string) []byte {
	k := append(append([]byte{}, wordPrefix...), pub...)
	k = append(k, 0)
	return append(k, word...)
}

func entityPrefix(pub string) []byte {
	k := append(append([]byte{}, entPrefix...), pub...)
	return append(k, 0)
}

func entityKey(pub string, count int64, word string) []byte {
	k := entityPrefix(pub)
	k = binary.BigEndian.AppendUint64(k, ^uint64(count))
	return append(k, word...)
}

func decodeEntity(prefix, key []byte) (WordCount, error) {
	rest := key[len(prefix):]
	if len(rest) < 8 {
		return WordCount{}, fmt.Errorf("corrupt entity key %q", key)
	}
	count := int64(^binary.BigEndian.Uint64(rest[:8]))
	return WordCount{Word: string(rest[8:]), Count: count}, nil
}

func encodeCount(n int64) []byte {
	return binary.BigEndian.AppendUint64(nil, uint64(n))
}

func decodeCount(b []byte) (int64, error) {
	if len(b) != 8 {
		return 0, fmt.Errorf("corrupt count value of %d bytes", len(b))
	}
	return int64(binary.BigEndian.Uint64(b)), nil
}

func validID(id string) error {
	if id == "" || strings.IndexByte(id, 0) >= 0 {
		return fmt.Errorf("%w: publication id %q", ErrInvalidRecord, id)
	}
	return nil
}

// =============================================================================
// BadgerStore
// =============================================================================

// BadgerStore keeps publications and word counts in an embedded BadgerDB.
//
// Thread Safety: Safe for concurrent use. Each TopN call runs in its own
// read transaction, so a page reflects one consistent snapshot.
type BadgerStore struct {
	db     *pbadger.DB
	logger *slog.Logger
}

var (
	_ Store   = (*BadgerStore)(nil)
	_ Catalog = (*BadgerStore)(nil)
)

// NewBadgerStore wraps an open database. The store takes ownership of db;
// Close closes it.
func NewBadgerStore(db *pbadger.DB, logger *slog.Logger) *BadgerStore {
	return &BadgerStore{db: db, logger: logging.OrDiscard(logger)}
}

// OpenBadgerStore opens a database with cfg and wraps it.
func OpenBadgerStore(cfg pbadger.Config, logger *slog.Logger) (*BadgerStore, error) {
	if cfg.Logger == nil {
		cfg.Logger = logger
	}
	db, err := pbadger.Open(cfg)
	if err != nil {
		return nil, backend.Wrap(badgerBackend, "open", err)
	}
	return NewBadgerStore(db, logger), nil
}

// Close closes the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// TopN implements Store.
//
// Description:
//
//	Seeks to the first entity key of the publication, or to the smallest
//	key strictly greater than the checkpoint's key, and reads forward. The
//	checkpoint key need not exist.
func (s *BadgerStore) TopN(ctx context.Context, publicationID string, n int, cp *Checkpoint) iter.Seq2[WordCount, error] {
	if err := validID(publicationID); err != nil {
		return failed[WordCount](err)
	}
	return singleUse(func(yield func(WordCount, error) bool) {
		if n <= 0 {
			return
		}
		prefix := entityPrefix(publicationID)
		start := prefix
		if cp.Usable() {
			if cp.Count < 0 {
				// Every stored count is >= 0 and sorts before it.
				return
			}
			start = append(entityKey(publicationID, cp.Count, cp.Word), 0)
		}

		stopped := false
		err := s.db.View(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.PrefetchValues = false
			opts.Prefix = prefix
			it := txn.NewIterator(opts)
			defer it.Close()

			emitted := 0
			for it.Seek(start); it.ValidForPrefix(prefix) && emitted < n; it.Next() {
				if err := ctx.Err(); err != nil {
					return err
				}
				wc, err := decodeEntity(prefix, it.Item().Key())
				if err != nil {
					return err
				}
				if !yield(wc, nil) {
					stopped = true
					return nil
				}
				emitted++
			}
			return nil
		})
		if err != nil && !stopped {
			yield(WordCount{}, backend.Wrap(badgerBackend, "scan word counts", err))
		}
	})
}

// Publications implements Catalog. Publications are yielded in id order.
func (s *BadgerStore) Publications(ctx context.Context, base string) iter.Seq2[Publication, error] {
	return singleUse(func(yield func(Publication, error) bool) {
		stopped := false
		err := s.db.View(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = pubPrefix
			it := txn.NewIterator(opts)
			defer it.Close()

			for it.Rewind(); it.ValidForPrefix(pubPrefix); it.Next() {
				if err := ctx.Err(); err != nil {
					return err
				}
				item := it.Item()
				id := string(item.Key()[len(pubPrefix):])
				var total int64
				if err := item.Value(func(val []byte) error {
					var err error
					total, err = decodeCount(val)
					return err
				}); err != nil {
					return fmt.Errorf("publication %q: %w", id, err)
				}
				pub := Publication{ID: id, TotalCount: total, ArtifactPath: contentaddr.DerivePath(id, base)}
				if !yield(pub, nil) {
					stopped = true
					return nil
				}
			}
			return nil
		})
		if err != nil && !stopped {
			yield(Publication{}, backend.Wrap(badgerBackend, "scan publications", err))
		}
	})
}

// =============================================================================
// Writes (seeding and tests)
// =============================================================================

// PutPublication creates or replaces a publication's total count.
func (s *BadgerStore) PutPublication(ctx context.Context, publicationID string, total int64) error {
	if err := validID(publicationID); err != nil {
		return err
	}
	if total < 0 {
		return fmt.Errorf("%w: negative total %d for %q", ErrInvalidRecord, total, publicationID)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(publicationKey(publicationID), encodeCount(total))
	})
	return backend.Wrap(badgerBackend, "put publication", err)
}

// PutWordCount creates or replaces one word's count for a publication.
//
// Any previous ordering key for the word is removed in the same
// transaction, so a word never appears twice in TopN.
func (s *BadgerStore) PutWordCount(ctx context.Context, publicationID string, wc WordCount) error {
	if err := validID(publicationID); err != nil {
		return err
	}
	if wc.Word == "" {
		return fmt.Errorf("%w: empty word for %q", ErrInvalidRecord, publicationID)
	}
	if wc.Count < 0 {
		return fmt.Errorf("%w: negative count %d for %q", ErrInvalidRecord, wc.Count, wc.Word)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		if err := s.deleteEntity(txn, publicationID, wc.Word); err != nil {
			return err
		}
		if err := txn.Set(wordKey(publicationID, wc.Word), encodeCount(wc.Count)); err != nil {
			return err
		}
		return txn.Set(entityKey(publicationID, wc.Count, wc.Word), nil)
	})
	return backend.Wrap(badgerBackend, "put word count", err)
}

// DeleteWordCount removes a word from a publication. Missing words are ignored.
func (s *BadgerStore) DeleteWordCount(ctx context.Context, publicationID, word string) error {
	if err := validID(publicationID); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return s.deleteEntity(txn, publicationID, word)
	})
	return backend.Wrap(badgerBackend, "delete word count", err)
}

func (s *BadgerStore) deleteEntity(txn *badger.Txn, pub, word string) error {
	item, err := txn.Get(wordKey(pub, word))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	var old int64
	if err := item.Value(func(val []byte) error {
		old, err = decodeCount(val)
		return err
	}); err != nil {
		return err
	}
	if err := txn.Delete(entityKey(pub, old, word)); err != nil {
		return err
	}
	s.logger.Debug("replaced word count", slog.String("publication", pub), slog.String("word", word), slog.Int64("old_count", old))
	return txn.Delete(wordKey(pub, word))
}
