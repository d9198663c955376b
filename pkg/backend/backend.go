// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package backend defines the error type used for every backend I/O failure.
//
// Storage adapters (Firestore, BadgerDB, GCS) never retry or translate the
// errors their clients return. They wrap them in *Error to record which
// backend and operation failed, and callers can still reach the original
// cause through errors.Is and errors.As.
package backend

import (
	"errors"
	"fmt"
)

// Error reports a failed backend operation.
type Error struct {
	// Backend names the collaborator, e.g. "firestore", "badger", "gcs".
	Backend string

	// Op describes the operation, e.g. "query word counts".
	Op string

	// Err is the error returned by the backend client.
	Err error
}

// Wrap returns nil when err is nil, otherwise an *Error.
func Wrap(backend, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Backend: backend, Op: op, Err: err}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Backend, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsFailure reports whether err came from a backend.
func IsFailure(err error) bool {
	var be *Error
	return errors.As(err, &be)
}
