package store

import "github.com/google/uuid"

// IDGenerator produces entity IDs.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 entity IDs.
//
// UUIDv7 embeds a timestamp in the most significant bits, so IDs created later
// sort later. Ordering inside the store still uses seq, never the ID.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
// Panics only if the system random source fails.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
