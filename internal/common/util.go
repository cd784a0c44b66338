package common

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
)

// MakeRandBase64String generates a base64-encoded string of size random bytes
// drawn from crypto/rand. The encoded length is ceil(size/3)*4 including
// padding, so 64 bytes encode to 88 characters.
//
// It returns an error if the random number generator fails.
func MakeRandBase64String(size int) (string, error) {
	b, err := GenerateRandByteArray(size)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// HashBase64 returns the base64-encoded SHA-256 digest of s. It is used to
// store refresh tokens so a database compromise exposes only digests, never
// values a client could present.
func HashBase64(s string) string {
	sum := sha256.Sum256([]byte(s))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// GenerateRandByteArray returns size random bytes from crypto/rand.
func GenerateRandByteArray(size int) ([]byte, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}

// WipeByteArray overwrites the contents of b with zeros. Useful for removing
// passwords from memory after use. A nil slice is a no-op.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
