// Package token generates the opaque tokens that key pending auth requests.
package token

import (
	"crypto/rand"
	"encoding/base64"

	"atelier/internal/domain/service"

	"github.com/pkg/errors"
)

// tokenBytes gives 256 bits of entropy, enough that brute-force guessing
// and birthday collisions are both out of reach without deduplication.
const tokenBytes = 32

type generator struct{}

// NewGenerator returns the production token generator. Tokens are raw
// random bytes in the URL-safe base64 alphabet without padding, so they can
// ride in a query parameter unescaped.
func NewGenerator() service.TokenGenerator {
	return generator{}
}

// Generate produces a fresh token from the system CSPRNG.
func (generator) Generate() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Wrap(err, "failed to read random bytes")
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Validate reports whether raw has the shape of a generated token. It is a
// cheap pre-filter only; the store remains the authority on whether a token
// exists.
func Validate(raw string) bool {
	if raw == "" {
		return false
	}

	decoded, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return false
	}

	return len(decoded) == tokenBytes
}
