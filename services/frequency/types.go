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

// =============================================================================
// Records
// =============================================================================

// WordCount is one word's frequency within one publication.
type WordCount struct {
	Word  string `json:"word" yaml:"word"`
	Count int64  `json:"count" yaml:"count"`
}

// Publication is a read-only catalog entry.
//
// ArtifactPath is derived from ID when the catalog is enumerated; it is
// never stored.
type Publication struct {
	ID           string `json:"id"`
	TotalCount   int64  `json:"total_count"`
	ArtifactPath string `json:"artifact_path"`
}

// FrequencyMapping maps a word to its count. It has no ordering once built.
type FrequencyMapping map[string]int64

// =============================================================================
// Ordering
// =============================================================================

// Less reports whether a sorts before b in the pagination order:
// count descending, then word ascending.
//
// Two records with the same count and word are the same key; stores keep at
// most one record per (publication, word), so the order is total.
func Less(a, b WordCount) bool {
	if a.Count != b.Count {
		return a.Count > b.Count
	}
	return a.Word < b.Word
}

// =============================================================================
// Checkpoint
// =============================================================================

// Checkpoint is a resumption cursor: "continue strictly after the record
// whose sort key is (Count, Word)".
//
// Stores take a *Checkpoint; nil means start from the first record. A
// checkpoint with an empty Word is treated exactly like nil. Stores do not
// check that the key exists; resuming after a key that was deleted continues
// from where it would have been.
type Checkpoint struct {
	Word  string `json:"word"`
	Count int64  `json:"count"`
}

// NewCheckpoint builds a checkpoint from possibly missing parts.
//
// Description:
//
//	Returns nil (start from the beginning) unless both parts are present.
//	The count is checked for presence, not truthiness: a count of 0 with a
//	non-empty word is a valid checkpoint.
//
// Examples:
//
//	NewCheckpoint("apple", ptr(30)) // after (30, "apple")
//	NewCheckpoint("", ptr(5))       // nil
//	NewCheckpoint("apple", nil)     // nil
//	NewCheckpoint("zero", ptr(0))   // after (0, "zero")
func NewCheckpoint(word string, count *int64) *Checkpoint {
	if word == "" || count == nil {
		return nil
	}
	return &Checkpoint{Word: word, Count: *count}
}

// After returns the checkpoint that resumes after wc.
func After(wc WordCount) *Checkpoint {
	return &Checkpoint{Word: wc.Word, Count: wc.Count}
}

// Usable reports whether cp should be honored. A nil or word-less
// checkpoint is not usable.
func (cp *Checkpoint) Usable() bool {
	return cp != nil && cp.Word != ""
}

// Follows reports whether wc comes strictly after cp in the pagination
// order. Every record follows an unusable checkpoint.
func (cp *Checkpoint) Follows(wc WordCount) bool {
	if !cp.Usable() {
		return true
	}
	return Less(WordCount{Word: cp.Word, Count: cp.Count}, wc)
}
