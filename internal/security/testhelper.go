package security

import "time"

// Test HMAC secret for unit tests only. Do not use in production.
const testSecret = "unit-test-signing-secret-0123456789abcdef"

// NewTestTokenProvider returns a TokenProvider using the embedded test secret.
// For unit tests only. Callers must not use in production.
func NewTestTokenProvider() *TokenProvider {
	return NewTokenProvider([]byte(testSecret), "HS256", "test-issuer", "test-audience", 30*time.Minute)
}
