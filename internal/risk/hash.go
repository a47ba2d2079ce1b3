package risk

import (
	"crypto/sha256"
	"encoding/binary"
)

// hashSeededValue produces a deterministic pseudo-random value in [lo, hi]
// seeded by the token address. Used only by the non-authoritative fallback
// estimators, so the same token always gets the same estimate and tests can
// assert which path produced a value.
func hashSeededValue(address string, lo, hi float64) float64 {
	sum := sha256.Sum256([]byte(address))
	seed := binary.BigEndian.Uint64(sum[:8])
	frac := float64(seed%10000) / 10000.0
	return lo + frac*(hi-lo)
}
