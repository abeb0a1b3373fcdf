package core

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Short returns the first 12 hex characters, enough for log lines
func (h Hash) Short() string {
	if len(h) <= 12 {
		return string(h)
	}
	return string(h)[:12]
}

// DatasetFingerprint hashes tabular contents row by row so that the same
// file contents always produce the same fingerprint regardless of source
// format (CSV vs xlsx).
func DatasetFingerprint(headers []string, rows [][]string) Hash {
	var b strings.Builder
	b.WriteString(strings.Join(headers, "\x1f"))
	b.WriteByte('\n')
	for _, row := range rows {
		b.WriteString(strings.Join(row, "\x1f"))
		b.WriteByte('\n')
	}
	return NewHash([]byte(b.String()))
}
