package security

import (
	"strings"
	"testing"
)

func TestNewRefreshSecret_Shape(t *testing.T) {
	secret, err := NewRefreshSecret()
	if err != nil {
		t.Fatalf("NewRefreshSecret: %v", err)
	}
	if len(secret) != 64 {
		t.Errorf("secret length = %d, want 64 (48 bytes base64url)", len(secret))
	}
	if strings.ContainsAny(secret, "+/=") {
		t.Errorf("secret %q contains non-URL-safe characters", secret)
	}
}

func TestNewRefreshSecret_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		secret, err := NewRefreshSecret()
		if err != nil {
			t.Fatalf("NewRefreshSecret: %v", err)
		}
		if seen[secret] {
			t.Fatalf("duplicate secret after %d iterations", i)
		}
		seen[secret] = true
	}
}

func TestHashRefreshSecret_Consistent(t *testing.T) {
	secret := "test-refresh-secret-123"
	hash1 := HashRefreshSecret(secret)
	hash2 := HashRefreshSecret(secret)

	if hash1 != hash2 {
		t.Errorf("HashRefreshSecret not consistent: hash1 = %q, hash2 = %q", hash1, hash2)
	}
	if len(hash1) != 64 {
		t.Errorf("hash length = %d, want 64 (SHA-256 hex)", len(hash1))
	}
}

func TestHashRefreshSecret_DifferentSecrets(t *testing.T) {
	hash1 := HashRefreshSecret("secret-1")
	hash2 := HashRefreshSecret("secret-2")

	if hash1 == hash2 {
		t.Error("HashRefreshSecret produced same hash for different secrets")
	}
}

func TestRefreshSecretEqual_CorrectMatch(t *testing.T) {
	secret := "test-refresh-secret-456"
	storedHash := HashRefreshSecret(secret)

	if !RefreshSecretEqual(secret, storedHash) {
		t.Error("RefreshSecretEqual should match correct secret")
	}
}

func TestRefreshSecretEqual_RejectsIncorrect(t *testing.T) {
	storedHash := HashRefreshSecret("correct-secret")

	if RefreshSecretEqual("wrong-secret", storedHash) {
		t.Error("RefreshSecretEqual should reject incorrect secret")
	}
}

func TestRefreshSecretEqual_DifferentLengthHash(t *testing.T) {
	secret := "test-secret-789"
	storedHash := HashRefreshSecret(secret)

	wrongHash := "a" + storedHash
	if RefreshSecretEqual(secret, wrongHash) {
		t.Error("RefreshSecretEqual should reject hash with different length")
	}
}

func TestRefreshSecretEqual_EmptyInputs(t *testing.T) {
	if RefreshSecretEqual("", "") {
		t.Error("RefreshSecretEqual should not match empty inputs")
	}

	hash := HashRefreshSecret("some-secret")
	if RefreshSecretEqual("", hash) {
		t.Error("RefreshSecretEqual should not match empty secret")
	}
}
