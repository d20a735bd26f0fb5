// Package repository defines error types that are reused across the
// record stores.  These sentinel values allow higher layers such as
// services and handlers to distinguish between different failure
// scenarios without knowing which store is in use.
package repository

import "errors"

// ErrNotFound is returned when no record with the requested id exists.
// Handlers should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("record not found")
