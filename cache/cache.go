// Package cache defines the response cache contract consumed by the output
// executor. Keys are content addressed over the full call context
// (provider, model, tools, format, pre-call history), so a hit replays
// exactly the messages the call appended the first time it ran.
package cache

import (
	"context"

	"github.com/patrickjm/yapl/core"
)

// Metadata describes the call that produced a cached entry. It is stored
// alongside the messages for inspection and debugging; it does not
// participate in key derivation.
type Metadata struct {
	Provider string      `json:"provider"`
	Model    core.Model  `json:"model"`
	Tools    []string    `json:"tools,omitempty"`
	Format   core.Format `json:"format"`
}

// Cache stores the message suffix appended by an executed output
// instruction. Implementations must support concurrent, independent key
// access; no cross-key locking is required since identical keys imply
// identical work.
type Cache interface {
	// Get returns the cached messages for key. ok is false on a miss.
	Get(ctx context.Context, key string) (messages []core.Message, ok bool, err error)

	// Set stores messages under key tagged with meta.
	Set(ctx context.Context, key string, messages []core.Message, meta Metadata) error
}
