package secrets

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHexToken_ShapeAndUniqueness(t *testing.T) {
	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		tok := HexToken()
		require.Len(t, tok, TokenBytes*2)
		require.Zero(t, len(tok)%2, "hex tokens have even length")
		_, dup := seen[tok]
		require.False(t, dup, "duplicate token after %d draws", i)
		seen[tok] = struct{}{}
	}
}

func TestURLSafeKey_DecodesToKeyBytes(t *testing.T) {
	key := URLSafeKey()
	decoded, err := base64.URLEncoding.DecodeString(key)
	require.NoError(t, err)
	assert.Len(t, decoded, KeyBytes)
}

func TestURLSafeKey_FreshPerCall(t *testing.T) {
	assert.NotEqual(t, URLSafeKey(), URLSafeKey())
}

func TestURLSafeToken_DecodesWithoutPadding(t *testing.T) {
	tok := URLSafeToken()
	assert.NotContains(t, tok, "=")
	decoded, err := base64.RawURLEncoding.DecodeString(tok)
	require.NoError(t, err)
	assert.Len(t, decoded, TokenBytes)
}
