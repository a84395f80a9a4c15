package tokengen

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_Generate(t *testing.T) {
	gen := NewGenerator(32)

	token, err := gen.Generate()
	require.NoError(t, err)
	assert.Len(t, token, 64)

	// Tokens must be valid hex
	_, err = hex.DecodeString(token)
	require.NoError(t, err)

	// Two tokens must differ
	other, err := gen.Generate()
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}

func TestGenerator_RememberTokensAreLonger(t *testing.T) {
	sessionGen := NewGenerator(32)
	rememberGen := NewGenerator(64)

	sessionToken, err := sessionGen.Generate()
	require.NoError(t, err)
	rememberToken, err := rememberGen.Generate()
	require.NoError(t, err)

	assert.Len(t, sessionToken, 64)
	assert.Len(t, rememberToken, 128)
}

func TestNewGenerator_DefaultLength(t *testing.T) {
	gen := NewGenerator(0)
	assert.Equal(t, 64, gen.Length())
}
