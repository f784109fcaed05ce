package utils

import (
	"crypto/rand"
	"encoding/base64"
)

// GenerateSessionToken returns a URL-safe random token used to recognize a
// returning anonymous respondent.
func GenerateSessionToken() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "session_" + base64.RawURLEncoding.EncodeToString(b), nil
}

// GenerateSecret returns 32 random bytes, base64 encoded. Used as an
// unusable password for accounts created through Google sign-in.
func GenerateSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
