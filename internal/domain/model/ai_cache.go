package model

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// AIResponseCacheEntry is one cached generation keyed by the prompt
// fingerprint. A nil ExpiresAt means the entry is never swept.
type AIResponseCacheEntry struct {
	PromptFingerprint string
	Response          string
	CreatedAt         time.Time
	ExpiresAt         *time.Time
	ModelName         string
	TokenCount        int
	HitCount          int
}

// Fingerprint returns the 64-char hex digest used as the cache key.
func Fingerprint(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}
