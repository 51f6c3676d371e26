package metastore

import (
	"crypto/rand"
	"fmt"
)

// newUUID generates a random (version 4) UUID without pulling in a
// dependency nothing else in the module needs — repository ids are opaque
// strings, and 16 random bytes plus RFC 4122 bit-twiddling is all that
// requires.
func newUUID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(fmt.Sprintf("metastore: failed to generate id: %v", err))
	}
	b[6] = (b[6] & 0x0f) | 0x40 // version 4
	b[8] = (b[8] & 0x3f) | 0x80 // variant 10

	return fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:16])
}
