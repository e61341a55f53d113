// Package hashutil implements the fragment-hash canonicalization of
// spec.md §3.5: UTF-8 bytes, line endings normalized to LF, trailing
// newline stripped, cryptographic digest (SHA-256).
//
// Grounded on providers/base/cache.go's hash() (SHA-256 over source bytes)
// from the teacher repository; see DESIGN.md.
package hashutil

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Canonicalize normalizes content for hashing: CRLF/CR -> LF, then strips
// exactly one trailing newline if present. Same bytes under this
// normalization always produce the same canonical form (spec §3.5).
func Canonicalize(content string) string {
	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	normalized = strings.TrimSuffix(normalized, "\n")
	return normalized
}

// Fragment computes the fragment hash of content: the opaque token used
// for optimistic-concurrency write conflict detection (spec §3.5, §4.G).
func Fragment(content string) string {
	canon := Canonicalize(content)
	sum := sha256.Sum256([]byte(canon))
	return hex.EncodeToString(sum[:])
}

// Equal reports whether two source fragments hash identically after
// canonicalization, without allocating a hex string for the comparison.
func Equal(a, b string) bool {
	return Canonicalize(a) == Canonicalize(b)
}
