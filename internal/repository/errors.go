// Package repository defines the data access layer over MySQL together
// with the sentinel errors shared across repositories. Handlers match
// on these sentinels to pick HTTP status codes: not-found values map to
// 404, conflict values to 409; anything else is a storage failure
// reported as a generic 500.
package repository

import (
	"errors"
	"strings"
)

// ErrSessionNotFound indicates the requested session does not exist.
var ErrSessionNotFound = errors.New("session not found")

// ErrParticipantNotFound indicates the requested participant does not exist.
var ErrParticipantNotFound = errors.New("participant not found")

// ErrSessionNotCompleted is returned when deleting a session whose
// stored status is anything but completed. Only finished sessions may
// be removed.
var ErrSessionNotCompleted = errors.New("session not completed")

// ErrDuplicateKey is returned when a validation key value is already
// taken inside the current two-month uniqueness window.
var ErrDuplicateKey = errors.New("validation key already in use")

// isDuplicateEntry recognizes the MySQL duplicate-entry error (1062)
// raised by unique index violations. The driver error text is matched
// instead of the typed error so tests can fake it with plain errors.
func isDuplicateEntry(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
