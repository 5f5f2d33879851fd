package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// sessionTokenBytes gives 256 bits of entropy per token.
const sessionTokenBytes = 32

// GenerateSessionToken returns a fresh random bearer token in URL-safe text
// form together with its storage digest. The raw token is handed to the
// client; only the digest may be persisted.
func GenerateSessionToken() (string, []byte, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", nil, fmt.Errorf("generate session token: %w", err)
	}

	token := base64.RawURLEncoding.EncodeToString(buf)
	return token, HashSessionToken(token), nil
}

// HashSessionToken maps a raw token to the digest used for storage lookup.
// Deterministic: the same token always yields the same digest.
func HashSessionToken(token string) []byte {
	sum := sha256.Sum256([]byte(token))
	return sum[:]
}
