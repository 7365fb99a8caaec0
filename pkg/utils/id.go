package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateRunID generates a replicate run ID
func GenerateRunID() string {
	return "rep-" + uuid.NewString()
}

// IsRunID reports whether id has the shape produced by GenerateRunID
func IsRunID(id string) bool {
	rest, ok := strings.CutPrefix(id, "rep-")
	if !ok {
		return false
	}
	_, err := uuid.Parse(rest)
	return err == nil
}
