package token

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_ShapeAndEntropy(t *testing.T) {
	gen := NewGenerator()

	tok, err := gen.Generate()
	require.NoError(t, err)

	decoded, err := base64.RawURLEncoding.DecodeString(tok)
	require.NoError(t, err, "token must be URL-safe base64 without padding")
	assert.Len(t, decoded, tokenBytes)
	assert.True(t, Validate(tok))
}

func TestGenerate_NoCollisions(t *testing.T) {
	gen := NewGenerator()

	seen := make(map[string]struct{}, 1000)
	for range 1000 {
		tok, err := gen.Generate()
		require.NoError(t, err)

		_, dup := seen[tok]
		require.False(t, dup, "generated a duplicate token")
		seen[tok] = struct{}{}
	}
}

func TestValidate_RejectsMalformedInput(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty", raw: ""},
		{name: "not base64url", raw: "not/a/token=="},
		{name: "too short", raw: base64.RawURLEncoding.EncodeToString([]byte("short"))},
		{name: "too long", raw: base64.RawURLEncoding.EncodeToString(make([]byte, 48))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, Validate(tt.raw))
		})
	}
}
