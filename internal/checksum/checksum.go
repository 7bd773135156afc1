package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// Sum returns the hex SHA-256 digest of an uploaded file.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Matcher compares file contents against a digest recorded on a batch.
type Matcher struct {
	expected string
}

func NewMatcher(expected string) *Matcher {
	return &Matcher{expected: expected}
}

// Match reports whether data hashes to the recorded digest.
func (m *Matcher) Match(data []byte) (bool, error) {
	if m.expected == "" {
		return false, errors.New("expected checksum is not set")
	}
	return Sum(data) == m.expected, nil
}
