// Package service defines interfaces for domain services that are
// implemented by the infrastructure layer.
package service

// TokenGenerator produces the opaque tokens that key pending auth requests.
// Tokens carry at least 256 bits of entropy from a cryptographically secure
// source and use a URL-safe alphabet; collisions are treated as negligible
// and are not deduplicated.
type TokenGenerator interface {
	Generate() (string, error)
}
