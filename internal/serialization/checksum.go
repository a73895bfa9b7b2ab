package serialization

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeChecksum computes SHA-256 checksum of data.
func ComputeChecksum(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// ValidateChecksum compares the checksum of data against a stored hex digest.
// Returns ErrChecksumMismatch if they don't match.
func ValidateChecksum(data []byte, storedHex string) error {
	stored, err := hex.DecodeString(storedHex)
	if err != nil || len(stored) != sha256.Size {
		return fmt.Errorf("malformed stored checksum %q: %w", storedHex, ErrChecksumMismatch)
	}
	computed := ComputeChecksum(data)
	if [32]byte(stored) != computed {
		return ErrChecksumMismatch
	}
	return nil
}
