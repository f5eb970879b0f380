package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching equilibrium results.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives a cache key from a canonical calculation request string.
func Key(request string) string {
	hash := sha256.Sum256([]byte(request))
	return "ellingham:v1:" + hex.EncodeToString(hash[:])
}
