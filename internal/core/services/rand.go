package services

import (
	"math/rand/v2"

	"github.com/avelar-labs/mixfeed/internal/core/ports"
)

// globalRand backs sampling with the process-wide math/rand/v2 generator,
// which is safe for concurrent use across feed generations.
type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }
func (globalRand) IntN(n int) int   { return rand.IntN(n) }

// DefaultRandSource returns the production random source.
func DefaultRandSource() ports.RandSource {
	return globalRand{}
}
