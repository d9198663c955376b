// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package frequency reads per-publication word counts in a deterministic,
// resumable order.
//
// # Ordering and Pagination
//
// Word counts are ordered by count descending, then word ascending. A page
// is requested with TopN(publication, n, checkpoint); the next page passes
// the last record of the previous page as its checkpoint:
//
//	var cp *frequency.Checkpoint
//	for {
//	    page, err := frequency.Collect(store.TopN(ctx, "vox", 100, cp))
//	    if err != nil || len(page) == 0 {
//	        break
//	    }
//	    cp = frequency.After(page[len(page)-1])
//	}
//
// The checkpoint is a composite-key seek, not an offset, so pages stay
// consistent with the order at read time while other records are inserted
// or deleted. Each caller owns its checkpoint; nothing is shared between
// concurrent readers.
//
// # Implementations
//
//   - FirestoreStore: the production document store.
//   - BadgerStore: an embedded ordered key-value store for local use.
//   - SyntheticStore: deterministic fake data with no backend at all.
//
// All three implement both Store and Catalog.
package frequency

import (
	"context"
	"errors"
	"iter"
)

// ErrInvalidRecord is returned for identifiers or records a store cannot hold.
var ErrInvalidRecord = errors.New("invalid record")

// Store reads ordered word counts for a publication.
type Store interface {
	// TopN yields at most n word counts for publicationID in
	// (count desc, word asc) order, starting strictly after cp when cp is
	// usable. n <= 0 yields nothing.
	//
	// The sequence is lazy and single use. A backend failure is yielded once
	// as a *backend.Error and ends the sequence.
	TopN(ctx context.Context, publicationID string, n int, cp *Checkpoint) iter.Seq2[WordCount, error]
}

// Catalog enumerates publications.
type Catalog interface {
	// Publications yields every publication with its artifact path derived
	// under base. Order is whatever the backend yields.
	Publications(ctx context.Context, base string) iter.Seq2[Publication, error]
}

// Frequencies materializes TopN into a FrequencyMapping.
func Frequencies(ctx context.Context, store Store, publicationID string, n int, cp *Checkpoint) (FrequencyMapping, error) {
	freqs := make(FrequencyMapping)
	for wc, err := range store.TopN(ctx, publicationID, n, cp) {
		if err != nil {
			return nil, err
		}
		freqs[wc.Word] = wc.Count
	}
	return freqs, nil
}
