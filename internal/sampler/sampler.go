// internal/sampler/sampler.go
//
// Uniform random sampling without replacement.
// Responsibilities:
//   - Pick exactly `count` elements from a population, every count-subset equally likely.
//   - Keep extra memory proportional to count, not to the population size.
//
// Notes:
//   - Randomness is injected through the Rand interface so callers (tests, the daily
//     challenge) can make selections reproducible.
//   - Output order is unspecified; callers sort as needed.
package sampler

import (
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand/v2"
)

// ErrInvalidArgument is returned when more elements are requested than available.
var ErrInvalidArgument = errors.New("invalid argument")

// Rand is the randomness source used for sampling.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	// IntN returns a uniform integer in [0, n). n > 0.
	IntN(n int) int
}

// New returns a PCG source seeded from crypto/rand.
func New() *rand.Rand {
	var b [16]byte
	_, _ = crand.Read(b[:])
	return Seeded(binary.LittleEndian.Uint64(b[:8]), binary.LittleEndian.Uint64(b[8:]))
}

// Seeded returns a deterministic PCG source.
func Seeded(seed1, seed2 uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed1, seed2))
}

// Choose returns count elements of population drawn without replacement.
//
// It is a partial Fisher–Yates shuffle over a sparse substitution map:
// each round picks a random slot among the `remaining` logical slots, records
// the value currently living there, then moves the last logical slot's value
// into the picked slot and shrinks the logical length by one. Only swapped
// slots are stored, so the population is never copied.
func Choose[T any](r Rand, population []T, count int) ([]T, error) {
	remaining := len(population)
	if count < 0 || count > remaining {
		return nil, fmt.Errorf("%w: cannot take %d of %d elements", ErrInvalidArgument, count, remaining)
	}

	out := make([]T, count)
	taken := make(map[int]int, count)
	for i := count - 1; i >= 0; i-- {
		x := r.IntN(remaining)
		out[i] = population[slot(taken, x)]
		remaining--
		taken[x] = slot(taken, remaining)
	}
	return out, nil
}

// Indexes chooses count distinct integers from [0, n).
func Indexes(r Rand, n, count int) ([]int, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative population %d", ErrInvalidArgument, n)
	}
	pop := make([]int, n)
	for i := range pop {
		pop[i] = i
	}
	return Choose(r, pop, count)
}

// slot resolves a logical slot to the population index currently stored there.
func slot(taken map[int]int, x int) int {
	if j, ok := taken[x]; ok {
		return j
	}
	return x
}
