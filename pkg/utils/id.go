package utils

import (
	"strings"

	"github.com/google/uuid"
)

// NewTripID returns a 10 character lowercase hex identifier.
func NewTripID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
}
