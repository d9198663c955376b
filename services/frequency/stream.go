// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package frequency

import (
	"iter"
	"sync/atomic"
)

// singleUse makes seq yield at most once. Ranging over the result a second
// time yields nothing, matching a consumed backend cursor.
func singleUse[T any](seq iter.Seq2[T, error]) iter.Seq2[T, error] {
	var used atomic.Bool
	return func(yield func(T, error) bool) {
		if used.Swap(true) {
			return
		}
		seq(yield)
	}
}

// failed returns a sequence yielding only err.
func failed[T any](err error) iter.Seq2[T, error] {
	return singleUse(func(yield func(T, error) bool) {
		var zero T
		yield(zero, err)
	})
}

// Collect drains seq into a slice, stopping at the first error.
func Collect[T any](seq iter.Seq2[T, error]) ([]T, error) {
	var out []T
	for v, err := range seq {
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
	return out, nil
}
