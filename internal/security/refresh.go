package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
)

// refreshSecretBytes is the entropy of a refresh secret before encoding.
const refreshSecretBytes = 48

// NewRefreshSecret returns a new opaque refresh secret: 48 random bytes,
// URL-safe base64 without padding (64 characters). The secret carries no
// claims; possession is the only credential.
func NewRefreshSecret() (string, error) {
	b := make([]byte, refreshSecretBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// HashRefreshSecret returns a SHA-256 hash of the refresh secret, hex-encoded.
// Only the hash is persisted; the raw secret is never stored.
func HashRefreshSecret(secret string) string {
	h := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(h[:])
}

// RefreshSecretEqual performs constant-time comparison of the provided
// secret's hash with the stored hash. Returns true only if they match.
func RefreshSecretEqual(providedSecret, storedHash string) bool {
	providedHash := HashRefreshSecret(providedSecret)
	return subtle.ConstantTimeCompare([]byte(providedHash), []byte(storedHash)) == 1
}
