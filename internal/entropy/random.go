// Package entropy supplies seeds for stochastic exploration from crypto/rand.
// Simulation runs themselves are deterministic; only the choice of where to
// look comes from here.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	"log/slog"
	"time"
)

// Seed returns a non-zero seed. Zero is reserved to mean "pick one for me".
func Seed() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// This should never happen; fall back to the clock.
		slog.Debug("crypto/rand failed, seeding from clock", "error", err)
		return time.Now().UnixNano() | 1
	}
	s := int64(binary.LittleEndian.Uint64(buf[:]) >> 1)
	if s == 0 {
		s = 1
	}
	return s
}

// SeedOr returns s unless it is zero, in which case a fresh seed is drawn.
func SeedOr(s int64) int64 {
	if s != 0 {
		return s
	}
	return Seed()
}
