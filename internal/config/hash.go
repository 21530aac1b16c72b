package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zeebo/blake3"
)

// FileFingerprint computes the BLAKE3 hash of a file. Logged at startup so
// operators can tell exactly which configuration a running daemon carries.
func FileFingerprint(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:]), nil
}

// VerifyFingerprint verifies a file against an expected BLAKE3 hash.
func VerifyFingerprint(path, expected string) error {
	actual, err := FileFingerprint(path)
	if err != nil {
		return fmt.Errorf("failed to compute hash: %w", err)
	}

	if actual != expected {
		return fmt.Errorf("hash mismatch for %s: expected %s, got %s",
			filepath.Base(path), expected, actual)
	}

	return nil
}

// VerifyChecksumFile checks path against the hash recorded in its sibling
// "<path>.checksum" file. A missing checksum file is not an error; the
// config is simply unpinned.
func VerifyChecksumFile(path string) error {
	data, err := os.ReadFile(path + ".checksum")
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read checksum file: %w", err)
	}

	return VerifyFingerprint(path, strings.TrimSpace(string(data)))
}

// BodyFingerprint hashes an update payload; the journal records it beside
// the raw body for cheap equality checks across journal rows.
func BodyFingerprint(body []byte) string {
	hash := blake3.Sum256(body)
	return hex.EncodeToString(hash[:])
}
