package simulation

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
)

// NewSeed returns a random seed from the operating system.
func NewSeed() (uint64, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}
