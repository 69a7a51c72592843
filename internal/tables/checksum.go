package tables

import (
	"crypto/sha256"
	"encoding/hex"
)

// ComputeChecksum fingerprints encoded table bytes for the manifest,
// prefixed with the algorithm name so the format can evolve.
func ComputeChecksum(data []byte) string {
	sum := sha256.Sum256(data)
	return "sha256:" + hex.EncodeToString(sum[:])
}

// VerifyChecksum reports whether data still matches a manifest checksum.
func VerifyChecksum(data []byte, expected string) bool {
	return ComputeChecksum(data) == expected
}
