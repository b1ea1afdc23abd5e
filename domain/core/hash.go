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

// RowHash identifies a row by its rendered cell values, used for
// duplicate-row counting.
type RowHash Hash

// ComputeRowHash hashes the rendered cells of a single row. The unit
// separator keeps adjacent cells from colliding ("ab","c" vs "a","bc").
func ComputeRowHash(cells []string) RowHash {
	var data strings.Builder
	for _, cell := range cells {
		data.WriteString(cell)
		data.WriteByte(0x1f)
	}
	return RowHash(NewHash([]byte(data.String())))
}

// String returns the string representation
func (h RowHash) String() string { return Hash(h).String() }
