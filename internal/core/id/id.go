// Package id provides identifiers for shows, artists, genres and their
// association rows. Identifiers are UUIDv7 so that byte order follows
// creation order, which makes them usable as the tie-break key of a
// keyset ordering.
package id

import (
	"bytes"

	"github.com/google/uuid"
)

// ID is the identifier type shared by every persisted row.
type ID = uuid.UUID

// New returns a fresh UUIDv7.
func New() ID {
	v, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return v
}

// Parse converts s to an ID.
func Parse(s string) (ID, error) {
	return uuid.Parse(s)
}

// MustParse is Parse that panics. Tests and constants only.
func MustParse(s string) ID {
	return uuid.MustParse(s)
}

// Nil returns the zero ID.
func Nil() ID {
	return uuid.Nil
}

// IsNil reports whether v is the zero ID.
func IsNil(v ID) bool {
	return v == uuid.Nil
}

// Compare orders IDs by their bytes, matching PostgreSQL's ordering of the
// uuid type. It returns -1, 0 or +1.
func Compare(a, b ID) int {
	return bytes.Compare(a[:], b[:])
}

// Less reports whether a sorts before b.
func Less(a, b ID) bool {
	return Compare(a, b) < 0
}
