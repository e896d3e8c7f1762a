package utils

import (
	"strings"
	"testing"
)

func TestGenerateSchedulerToken(t *testing.T) {
	token, err := GenerateSchedulerToken()
	if err != nil {
		t.Fatalf("GenerateSchedulerToken: %v", err)
	}

	// 24 random bytes encode to 32 base64url characters
	if len(token) != 32 {
		t.Errorf("token length = %d, want 32", len(token))
	}
	if strings.ContainsAny(token, "+/= ") {
		t.Errorf("token %q is not URL safe", token)
	}
}

func TestGenerateSchedulerTokenUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		token, err := GenerateSchedulerToken()
		if err != nil {
			t.Fatalf("GenerateSchedulerToken: %v", err)
		}
		if seen[token] {
			t.Fatalf("duplicate token after %d draws", i)
		}
		seen[token] = true
	}
}
