package utils

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// schedulerTokenBytes yields 192 bits of entropy, above the 128-bit minimum
// required for unauthenticated scheduling links.
const schedulerTokenBytes = 24

// GenerateSchedulerToken returns a cryptographically random, URL-safe one-time
// token for the public scheduling link.
func GenerateSchedulerToken() (string, error) {
	buf := make([]byte, schedulerTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate scheduler token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
