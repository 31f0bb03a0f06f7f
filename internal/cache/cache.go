package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/ppiankov/urlsum/internal/model"
)

// Cache stores fetched source text between requests
type Cache interface {
	Get(key string) (string, bool)
	Set(key string, text string, ttl time.Duration)
	Delete(key string)
	Clear()
}

// Key generates a cache key for a source
func Key(src model.Source) string {
	hash := sha256.Sum256([]byte(string(src.Kind) + "\x00" + src.URL))
	return "urlsum:v1:" + hex.EncodeToString(hash[:])
}
