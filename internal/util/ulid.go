package util

import (
	"github.com/oklog/ulid/v2"
)

// NewULID generates a new ULID string using the package's default
// cryptographically secure entropy source. Safe for concurrent use.
func NewULID() string {
	return ulid.Make().String()
}
