package storage

import "errors"

// ErrNotFound keeps storage-specific misses consistent across in-memory and
// postgres implementations. Services translate it to a coded not_found error.
var ErrNotFound = errors.New("record not found")

// ErrConflict marks unique-constraint violations, e.g. a duplicate email
// within a tenant. Services translate it to a coded conflict error.
var ErrConflict = errors.New("record conflict")
