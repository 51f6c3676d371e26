// Package merkle computes content hashes and rolls them up into a
// directory merkle tree for incremental change detection.
package merkle

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
)

const readBlockSize = 64 * 1024

// HashBytes computes the SHA-256 hash of r, reading in 64KiB blocks. An I/O
// error yields ("", err); callers that treat the empty string as "skip this
// file" should check err first.
func HashBytes(r io.Reader) (string, error) {
	h := sha256.New()
	buf := make([]byte, readBlockSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashString computes the SHA-256 hash of s.
func HashString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
