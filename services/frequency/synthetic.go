// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package frequency

import (
	"context"
	"fmt"
	"iter"

	"github.com/AleutianAI/pubcloud/pkg/contentaddr"
)

// SyntheticSize bounds every synthetic sequence.
const SyntheticSize = 10

// SyntheticStore generates deterministic data without a backend.
//
// TopN ignores the publication id and the real ordering. It yields
// "ent<i>" with count i for i from 0 (or from cp.Count+1 when cp is usable)
// up to SyntheticSize-1, and never more than n records. Publications yields
// "pub0".."pub9" with counts 0..9.
type SyntheticStore struct{}

var (
	_ Store   = SyntheticStore{}
	_ Catalog = SyntheticStore{}
)

// TopN implements Store.
func (SyntheticStore) TopN(ctx context.Context, _ string, n int, cp *Checkpoint) iter.Seq2[WordCount, error] {
	return singleUse(func(yield func(WordCount, error) bool) {
		var start int64
		if cp.Usable() {
			start = max(cp.Count+1, 0)
		}
		emitted := 0
		for i := start; i < SyntheticSize && emitted < n; i++ {
			if err := ctx.Err(); err != nil {
				yield(WordCount{}, err)
				return
			}
			if !yield(WordCount{Word: fmt.Sprintf("ent%d", i), Count: i}, nil) {
				return
			}
			emitted++
		}
	})
}

// Publications implements Catalog.
func (SyntheticStore) Publications(ctx context.Context, base string) iter.Seq2[Publication, error] {
	return singleUse(func(yield func(Publication, error) bool) {
		for i := 0; i < SyntheticSize; i++ {
			if err := ctx.Err(); err != nil {
				yield(Publication{}, err)
				return
			}
			id := fmt.Sprintf("pub%d", i)
			pub := Publication{ID: id, TotalCount: int64(i), ArtifactPath: contentaddr.DerivePath(id, base)}
			if !yield(pub, nil) {
				return
			}
		}
	})
}

// Close is a no-op.
func (SyntheticStore) Close() error { return nil }
