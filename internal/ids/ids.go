// Package ids mints identifiers for turns, occasions, nexuses and families.
package ids

import "github.com/google/uuid"

// New returns a fresh random identifier string.
func New() string {
	return uuid.New().String()
}
