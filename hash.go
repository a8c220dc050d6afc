package xmlpo

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashText computes the SHA-256 hash of a message. Whitespace is
// significant: space-preserving messages differ only by it.
func HashText(text string) string {
	hash := sha256.Sum256([]byte(text))
	return hex.EncodeToString(hash[:])
}

// CacheKey generates a cache key from a text hash and target language.
func CacheKey(hash, targetLang string) string {
	return hash + ":" + targetLang
}
