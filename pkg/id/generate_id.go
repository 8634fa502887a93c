package id

import (
	"strings"

	"github.com/google/uuid"
)

// NewID32 returns a random identifier of exactly 32 lowercase hex
// characters: a UUIDv4 with the hyphens stripped. Entity IDs across the
// service (loans, matches, preferences) use this format.
func NewID32() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
