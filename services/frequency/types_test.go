// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package frequency

import (
	"context"
	"errors"
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(n int64) *int64 { return &n }

func TestLess(t *testing.T) {
	assert.True(t, Less(WordCount{"apple", 30}, WordCount{"banana", 20}))
	assert.True(t, Less(WordCount{"apple", 10}, WordCount{"banana", 10}))
	assert.False(t, Less(WordCount{"banana", 10}, WordCount{"apple", 10}))
	assert.False(t, Less(WordCount{"apple", 10}, WordCount{"apple", 10}))
}

func TestNewCheckpoint(t *testing.T) {
	tests := []struct {
		name  string
		word  string
		count *int64
		want  *Checkpoint
	}{
		{"both present", "apple", ptr(30), &Checkpoint{Word: "apple", Count: 30}},
		{"zero count is present", "zero", ptr(0), &Checkpoint{Word: "zero", Count: 0}},
		{"missing word", "", ptr(5), nil},
		{"missing count", "apple", nil, nil},
		{"both missing", "", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewCheckpoint(tt.word, tt.count))
		})
	}
}

func TestCheckpoint_Usable(t *testing.T) {
	var nilCP *Checkpoint
	assert.False(t, nilCP.Usable())
	assert.False(t, (&Checkpoint{Count: 5}).Usable())
	assert.True(t, (&Checkpoint{Word: "a"}).Usable())
}

func TestCheckpoint_Follows(t *testing.T) {
	cp := After(WordCount{"banana", 20})
	assert.True(t, cp.Follows(WordCount{"cherry", 10}))
	assert.True(t, cp.Follows(WordCount{"carrot", 20}))
	assert.False(t, cp.Follows(WordCount{"banana", 20}))
	assert.False(t, cp.Follows(WordCount{"apple", 20}))
	assert.False(t, cp.Follows(WordCount{"zebra", 30}))

	var nilCP *Checkpoint
	assert.True(t, nilCP.Follows(WordCount{"anything", 1}))
}

type fixedStore []WordCount

func (f fixedStore) TopN(_ context.Context, _ string, n int, _ *Checkpoint) iter.Seq2[WordCount, error] {
	return func(yield func(WordCount, error) bool) {
		for i, wc := range f {
			if i >= n || !yield(wc, nil) {
				return
			}
		}
	}
}

func TestFrequencies(t *testing.T) {
	store := fixedStore{{"apple", 30}, {"banana", 20}, {"cherry", 10}}
	freqs, err := Frequencies(context.Background(), store, "vox", 2, nil)
	require.NoError(t, err)
	assert.Equal(t, FrequencyMapping{"apple": 30, "banana": 20}, freqs)
}

func TestFrequencies_PropagatesError(t *testing.T) {
	boom := errors.New("boom")
	freqs, err := Frequencies(context.Background(), errStore{boom}, "vox", 2, nil)
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, freqs)
}

type errStore struct{ err error }

func (e errStore) TopN(context.Context, string, int, *Checkpoint) iter.Seq2[WordCount, error] {
	return failed[WordCount](e.err)
}

func TestSingleUse(t *testing.T) {
	seq := SyntheticStore{}.TopN(context.Background(), "x", 3, nil)
	first, err := Collect(seq)
	require.NoError(t, err)
	assert.Len(t, first, 3)

	second, err := Collect(seq)
	require.NoError(t, err)
	assert.Empty(t, second)
}
