package util

import (
	"crypto/rand"
	"encoding/hex"
)

// NewID returns a short URL-safe random hex token.
func NewID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
