package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewIDIsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewID()
		require.False(t, seen[id])
		seen[id] = true
	}
}

func TestGenerateTokenIsURLSafe(t *testing.T) {
	tok, err := GenerateToken()
	require.NoError(t, err)
	require.Len(t, tok, 44)
	require.NotContains(t, tok, "+")
	require.NotContains(t, tok, "/")
}
