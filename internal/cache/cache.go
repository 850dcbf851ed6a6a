package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
}

// VerdictKey generates a cache key from the exact claim text.
// Claims are never merged, so any byte difference yields a different key.
func VerdictKey(claimText string) string {
	hash := sha256.Sum256([]byte(claimText))
	return "rumorguard:verdict:v2:" + hex.EncodeToString(hash[:])
}
