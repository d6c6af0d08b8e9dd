// Package importer turns resolved spreadsheet tables into the canonical
// movement ledger: products and warehouse details from the base snapshot,
// append-only inventory records from update files.
package importer

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// FileChecksum returns the SHA-256 hex digest of one file's content.
func FileChecksum(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Fingerprint combines per-file checksums into one content fingerprint.
// The per-file digests are sorted before hashing, so the same file set
// uploaded in any order yields the same fingerprint.
func Fingerprint(contents [][]byte) string {
	hashes := make([]string, 0, len(contents))
	for _, c := range contents {
		hashes = append(hashes, FileChecksum(c))
	}
	sort.Strings(hashes)
	sum := sha256.Sum256([]byte(strings.Join(hashes, "")))
	return hex.EncodeToString(sum[:])
}
