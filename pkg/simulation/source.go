package simulation

import (
	"math/rand/v2"
	"time"
)

// seedFunc returns a seed when none is configured (override in tests).
var seedFunc = func() uint64 { return uint64(time.Now().UnixNano()) }

// NewSeed returns a fresh base seed.
func NewSeed() uint64 {
	return seedFunc()
}

// NewSource returns the random source for one layer of one generation.
// Every (generation, layer) pair gets its own PCG stream so layers never
// share generator state and every picture can be replayed from its seed.
func NewSource(seed, generation uint64, layer int) rand.Source {
	return rand.NewPCG(seed, generation<<32|uint64(uint32(layer)))
}
