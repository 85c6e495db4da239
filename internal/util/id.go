package util

import "github.com/google/uuid"

// NewID returns a random identifier for invocations and generated tool
// call ids.
func NewID() string {
	return uuid.NewString()
}
