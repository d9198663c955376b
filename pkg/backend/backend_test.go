// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package backend

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap(t *testing.T) {
	assert.NoError(t, Wrap("gcs", "upload", nil))

	err := Wrap("firestore", "query word counts", context.DeadlineExceeded)
	assert.EqualError(t, err, "firestore: query word counts: context deadline exceeded")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, IsFailure(err))
}

func TestIsFailure_ThroughWrapping(t *testing.T) {
	err := fmt.Errorf("render vox: %w", Wrap("badger", "scan", errors.New("disk")))
	assert.True(t, IsFailure(err))
	assert.False(t, IsFailure(errors.New("plain")))
	assert.False(t, IsFailure(nil))
}
