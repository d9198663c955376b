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
	"os"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Unit Tests (no backend)
// ============================================================================

func TestFirestoreStore_RejectsInvalidPublicationID(t *testing.T) {
	store := NewFirestoreStore(nil, nil)
	for _, id := range []string{"", "a/b"} {
		_, err := Collect(store.TopN(context.Background(), id, 3, nil))
		assert.ErrorIs(t, err, ErrInvalidRecord, "id %q", id)
	}
}

// ============================================================================
// Integration Tests (require the Firestore emulator)
// ============================================================================

func newEmulatorStore(t *testing.T) *FirestoreStore {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("Skipping integration test: FIRESTORE_EMULATOR_HOST not set")
	}
	ctx := context.Background()
	client, err := firestore.NewClient(ctx, "pubcloud-test")
	require.NoError(t, err)
	store := NewFirestoreStore(client, nil)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestFirestoreStore_Integration_Pagination(t *testing.T) {
	store := newEmulatorStore(t)
	ctx := context.Background()
	pub := fmt.Sprintf("vox-%d", time.Now().UnixNano())

	require.NoError(t, store.PutPublication(ctx, pub, 60))
	for _, wc := range []WordCount{{"cherry", 10}, {"apple", 30}, {"banana", 20}, {"avocado", 20}} {
		require.NoError(t, store.PutWordCount(ctx, pub, wc))
	}

	first, err := Collect(store.TopN(ctx, pub, 2, nil))
	require.NoError(t, err)
	assert.Equal(t, []WordCount{{"apple", 30}, {"avocado", 20}}, first)

	rest, err := Collect(store.TopN(ctx, pub, 10, After(first[len(first)-1])))
	require.NoError(t, err)
	assert.Equal(t, []WordCount{{"banana", 20}, {"cherry", 10}}, rest)

	malformed, err := Collect(store.TopN(ctx, pub, 2, NewCheckpoint("", nil)))
	require.NoError(t, err)
	assert.Equal(t, first, malformed)
}

func TestFirestoreStore_Integration_Publications(t *testing.T) {
	store := newEmulatorStore(t)
	ctx := context.Background()
	pub := fmt.Sprintf("atlantic-%d", time.Now().UnixNano())
	require.NoError(t, store.PutPublication(ctx, pub, 5))

	found := false
	for p, err := range store.Publications(ctx, "/img/") {
		require.NoError(t, err)
		if p.ID == pub {
			found = true
			assert.EqualValues(t, 5, p.TotalCount)
			assert.Contains(t, p.ArtifactPath, "/img/")
		}
	}
	assert.True(t, found)
}
