package utils

import (
	"math/rand"
	"sync"
	"time"
)

// RandSource is a mutex-guarded pseudo-random source.
//
// A single RandSource is shared by every sampling step of one process run so
// that a fixed seed reproduces the whole run.
type RandSource struct {
	mu   sync.Mutex
	rng  *rand.Rand
	seed int64
}

// NewRandSource creates a new random source with the given seed.
// A zero seed selects a time-based seed; Seed reports the value actually used.
func NewRandSource(seed int64) *RandSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandSource{
		rng:  rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Seed returns the effective seed of the source
func (r *RandSource) Seed() int64 {
	return r.seed
}

// Intn returns a random int in [0, n). It panics if n <= 0.
func (r *RandSource) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Intn(n)
}
