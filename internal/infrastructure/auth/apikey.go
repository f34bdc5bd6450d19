package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

const apiKeyPrefix = "mfg"

// GenerateAPIKey creates a new random API key. It returns the full key
// (shown to the caller exactly once), the identifying prefix and the
// SHA-256 hash that gets persisted.
func GenerateAPIKey() (key, prefix, hash string, err error) {
	raw := make([]byte, 32)
	if _, err = rand.Read(raw); err != nil {
		return "", "", "", fmt.Errorf("failed to generate api key: %w", err)
	}

	secret := hex.EncodeToString(raw)
	key = fmt.Sprintf("%s_%s", apiKeyPrefix, secret)
	prefix = key[:min(len(key), 12)]
	hash = HashAPIKey(key)
	return key, prefix, hash, nil
}

// HashAPIKey returns the hex-encoded SHA-256 digest of a key
func HashAPIKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// ValidAPIKeyFormat reports whether a presented key looks like one of ours
// before the hash lookup is attempted
func ValidAPIKeyFormat(key string) bool {
	return strings.HasPrefix(key, apiKeyPrefix+"_") && len(key) == len(apiKeyPrefix)+1+64
}
