package lockmgr

import (
	"crypto/rand"
	"encoding/hex"
)

const (
	ownerIDBytes = 32
)

// generateOwnerID creates a new random owner ID (hex encoded, 256 bit)
func generateOwnerID() (string, error) {
	randomBytes := make([]byte, ownerIDBytes)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(randomBytes), nil
}
