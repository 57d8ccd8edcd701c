// Package repository contains data access logic separated from HTTP
// handlers and the ingestion core.  This file defines error values that
// are reused across repositories so higher layers can distinguish
// failure scenarios: a missing movie becomes a 404, while
// ErrInconsistent marks a broken invariant that must surface loudly
// instead of being silently patched.
package repository

import "errors"

// ErrMovieNotFound is returned when a movie cannot be found in the DB.
var ErrMovieNotFound = errors.New("movie not found")

// ErrInconsistent is returned when the ledger references a movie row
// that does not exist.  Ingestion persists movies before their
// dependent records, so this state indicates corruption rather than a
// recoverable condition.
var ErrInconsistent = errors.New("data inconsistency: ledger references unknown movie")
