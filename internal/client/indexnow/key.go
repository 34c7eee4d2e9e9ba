package indexnow

import (
	"crypto/rand"
	"encoding/hex"
)

// keyBytes gives a 32 character hex key, inside the 8 to 128 characters
// IndexNow accepts.
const keyBytes = 16

// NewKey returns a random hex key. The site must serve it as
// /<key>.txt before submissions are accepted.
func NewKey() (string, error) {
	b := make([]byte, keyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
