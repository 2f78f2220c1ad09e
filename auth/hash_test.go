package auth

import (
	"strings"
	"testing"
)

func TestHashToken(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		if HashToken("tn_abc") != HashToken("tn_abc") {
			t.Error("HashToken not deterministic")
		}
	})

	t.Run("different inputs different hashes", func(t *testing.T) {
		if HashToken("token-a") == HashToken("token-b") {
			t.Error("different tokens should have different hashes")
		}
	})

	t.Run("hash length", func(t *testing.T) {
		// SHA-256 produces 32 bytes = 64 hex characters
		if got := len(HashToken("test")); got != 64 {
			t.Errorf("hash length = %d, want 64", got)
		}
	})
}

func TestMatchHash(t *testing.T) {
	hash := HashToken("tn_secret")

	tests := []struct {
		name  string
		token string
		hash  string
		want  bool
	}{
		{"match", "tn_secret", hash, true},
		{"upper case hash", "tn_secret", strings.ToUpper(hash), true},
		{"wrong token", "tn_other", hash, false},
		{"empty hash", "tn_secret", "", false},
		{"empty token", "", hash, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchHash(tt.token, tt.hash); got != tt.want {
				t.Errorf("MatchHash(%q) = %v, want %v", tt.token, got, tt.want)
			}
		})
	}
}
