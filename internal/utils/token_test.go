package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPublicToken_LengthAndAlphabet(t *testing.T) {
	tok, err := NewPublicToken()
	require.NoError(t, err)
	require.Len(t, tok, PublicTokenLength)
	for _, r := range tok {
		assert.True(t, strings.ContainsRune(publicTokenAlphabet, r), "unexpected character %q", r)
	}
}

func TestNewPublicToken_Distinct(t *testing.T) {
	const n = 200
	seen := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		tok, err := NewPublicToken()
		require.NoError(t, err)
		require.Len(t, tok, PublicTokenLength)
		assert.False(t, seen[tok], "token %q drawn twice", tok)
		seen[tok] = true
	}
}

func TestNewPublicToken_CoversAlphabetEventually(t *testing.T) {
	// 100 tokens = 3200 draws over 62 symbols; a missing symbol at that
	// volume points at a biased sampler.
	counts := make(map[rune]int)
	for i := 0; i < 100; i++ {
		tok, err := NewPublicToken()
		require.NoError(t, err)
		for _, r := range tok {
			counts[r]++
		}
	}
	assert.Len(t, counts, len(publicTokenAlphabet))
}
