package tokengen

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// Generator produces opaque bearer tokens from a cryptographically strong
// source. Tokens are hex-encoded, so the emitted string is twice ByteLength.
type Generator struct {
	byteLength int
}

// NewGenerator creates a Generator emitting tokens of the given entropy in bytes
func NewGenerator(byteLength int) *Generator {
	if byteLength <= 0 {
		byteLength = 32
	}
	return &Generator{byteLength: byteLength}
}

// Generate returns a new random token
func (g *Generator) Generate() (string, error) {
	buf := make([]byte, g.byteLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Length returns the length of the emitted token string
func (g *Generator) Length() int {
	return g.byteLength * 2
}
