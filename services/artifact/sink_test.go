// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package artifact

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNopSink_AcceptsEverything(t *testing.T) {
	var s Sink = NopSink{}
	require.NoError(t, s.Save(context.Background(), "vox", "bucket", []byte("png")))
	require.NoError(t, s.Save(context.Background(), "", "", nil))
}

func TestRecordingSink_OverwritesSameName(t *testing.T) {
	s := NewRecordingSink()
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "vox", "clouds", []byte("first")))
	require.NoError(t, s.Save(ctx, "vox", "clouds", []byte("second")))
	require.NoError(t, s.Save(ctx, "vox", "other", []byte("third")))

	assert.Equal(t, 2, s.Len())
	got, ok := s.Object("clouds", "vox")
	require.True(t, ok)
	assert.Equal(t, []byte("second"), got)
}

func TestRecordingSink_CopiesData(t *testing.T) {
	s := NewRecordingSink()
	data := []byte("abc")
	require.NoError(t, s.Save(context.Background(), "vox", "b", data))
	data[0] = 'z'

	got, _ := s.Object("b", "vox")
	assert.Equal(t, []byte("abc"), got)
}
