// Package store provides the key-value persistence port and its
// adapters. Values round-trip through JSON; a missing or unreadable
// entry is reported as absent so callers can fall back to a default.
package store

import (
	"encoding/json"

	"xenarc-chat-demo/backend/pkg/logger"
)

// Store is the persistence port. Implementations must never surface a
// decode failure to the caller: corrupt stored content is logged and
// treated as absence.
type Store interface {
	// Load decodes the value stored under key into dest. It returns
	// false when the key is absent or its content cannot be decoded.
	Load(key string, dest any) (bool, error)

	// Save stores value under key. A nil value removes the key rather
	// than storing a null literal.
	Save(key string, value any) error

	// Delete removes the key. Deleting an absent key is not an error.
	Delete(key string) error
}

// decode unmarshals raw into dest, downgrading corrupt content to
// absence. Shared by the adapters.
func decode(log *logger.Logger, key string, raw []byte, dest any) bool {
	if err := json.Unmarshal(raw, dest); err != nil {
		if log != nil {
			log.Warn("discarding corrupt stored value", "key", key, "error", err.Error())
		}
		return false
	}
	return true
}
