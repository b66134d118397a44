package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Hash returns the hex-encoded SHA-256 digest of data. Callers use it to
// derive stable identifiers for graphs and configurations.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// hashKey builds a namespaced cache key: the prefix in the clear, followed
// by the digest of the JSON-encoded components.
func hashKey(prefix string, parts ...any) string {
	h := sha256.New()
	enc := json.NewEncoder(h)
	for _, part := range parts {
		// Encoding a string or hash into a stream cannot fail.
		_ = enc.Encode(part)
	}
	return prefix + ":" + hex.EncodeToString(h.Sum(nil))
}
