// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow higher layers such as command
// and query handlers to distinguish between different failure scenarios.
// For example, ErrConflict signals that an operation cannot proceed due to
// existing dependent records (e.g. deleting a playlist that still has
// songs), while ErrNoChange reports an UPDATE whose values matched the
// stored row.
package repository

import "errors"

// ErrConflict is returned when a delete or update cannot be performed
// because of conflicting state.  Handlers should translate this into an
// HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrNoChange indicates the UPDATE attempted to set fields equal to current
// values.
var ErrNoChange = errors.New("no change")

// ErrShowNotFound indicates that a show was not located in the DB.
var ErrShowNotFound = errors.New("show not found")

// ErrSongNotFound indicates that a song was not located in the DB.
var ErrSongNotFound = errors.New("song not found")

// ErrPlaylistNotFound indicates that a playlist was not located in the DB.
var ErrPlaylistNotFound = errors.New("playlist not found")

// ErrOverrideNotFound indicates that a schedule override was not located in
// the DB.
var ErrOverrideNotFound = errors.New("schedule override not found")

// ErrEmailExists is returned when registering an email that is already taken.
var ErrEmailExists = errors.New("email already exists")

// ErrDuplicate is returned when an insert violates a uniqueness constraint
// (e.g. a show's MAL id or a song's video id that already exists).
var ErrDuplicate = errors.New("duplicate")
