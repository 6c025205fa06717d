package helpers

import (
	"crypto/sha256"
	"encoding/hex"
)

// shortHashLength is the number of hex characters kept by ShortSHA256.
const shortHashLength = 12

// SHA256Bytes returns the full hex digest of input.
func SHA256Bytes(input []byte) string {
	hash := sha256.Sum256(input)
	return hex.EncodeToString(hash[:])
}

// ShortSHA256 returns a truncated hex digest, used to label provider sources in logs and loader URLs.
func ShortSHA256(input []byte) string {
	return SHA256Bytes(input)[:shortHashLength]
}
