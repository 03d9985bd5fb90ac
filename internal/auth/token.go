package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
)

// TokenBytes is the entropy of a token key; the encoded key is twice as long.
const TokenBytes = 20

// TokenLen is the length of an encoded token key.
const TokenLen = TokenBytes * 2

var (
	// ErrInvalidTokenFormat indicates the token is not a well-formed key.
	ErrInvalidTokenFormat = errors.New("invalid token format")

	tokenFormatRegex = regexp.MustCompile(`^[a-f0-9]{40}$`)
)

// GeneratedToken is a freshly issued token key.
type GeneratedToken struct {
	Plaintext string // returned to the client once
	Digest    string // stored and used as cache key
}

// GenerateToken creates a new random token key.
func GenerateToken() (*GeneratedToken, error) {
	buf := make([]byte, TokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	plaintext := hex.EncodeToString(buf)

	return &GeneratedToken{
		Plaintext: plaintext,
		Digest:    Digest(plaintext),
	}, nil
}

// ValidateTokenFormat checks if the key matches the expected format.
func ValidateTokenFormat(key string) bool {
	return tokenFormatRegex.MatchString(key)
}

// Digest returns the SHA-256 hex digest of a token key.
// Token keys carry 160 bits of entropy, so a fast hash is sufficient for lookup.
func Digest(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}
