// Package secrets generates the random credential material written to the
// deployment's secrets directory. All generators draw from crypto/rand;
// values differ on every call and only their shape is stable.
//
// Usage:
//
//	pepper := secrets.HexToken()       // 64 hex characters
//	key := secrets.URLSafeKey()        // base64 of a 32-byte key
//	token := secrets.URLSafeToken()    // unpadded base64 token
package secrets

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

const (
	// TokenBytes is the entropy of a hex token (256 bits).
	TokenBytes = 32
	// KeyBytes is the decoded length of a URL-safe key.
	KeyBytes = 32
)

// HexToken returns a hex-encoded random token with 256 bits of entropy.
// The result is always 64 characters, an even number by construction.
func HexToken() string {
	return hex.EncodeToString(randomBytes(TokenBytes))
}

// URLSafeKey returns a URL-safe base64 encoding of a fresh 32-byte key.
// Padding is kept so the value round-trips through a standard URL-safe
// base64 decode back to exactly KeyBytes bytes.
func URLSafeKey() string {
	return base64.URLEncoding.EncodeToString(randomBytes(KeyBytes))
}

// URLSafeToken returns an unpadded URL-safe base64 token of 32 random
// bytes. Used for bootstrap credentials that land in the environment file
// rather than the secrets directory.
func URLSafeToken() string {
	return base64.RawURLEncoding.EncodeToString(randomBytes(TokenBytes))
}

func randomBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		// The platform random source failing is unrecoverable; no
		// caller can proceed safely without entropy.
		panic(fmt.Sprintf("secrets: random source unavailable: %v", err))
	}
	return b
}
