// Package dice supplies the seedable randomness used by event generation.
//
// Every random draw made by the generator goes through a Source so that a
// fixed seed and fixed inputs always produce the same event.
package dice

import (
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
)

// ErrInvalidWeights is returned when no item can be drawn from a weight list.
var ErrInvalidWeights = errors.New("invalid weights")

// Source is the randomness consumed by the generator.
type Source interface {
	// Bool returns true with probability p.
	Bool(p float64) bool
	// Float64 returns a value in [0, 1).
	Float64() float64
	// IntN returns a value in [0, n). It panics if n <= 0.
	IntN(n int) int
}

// Rand is a Source backed by a PCG generator.
type Rand struct {
	r *rand.Rand
}

var _ Source = (*Rand)(nil)

// New creates a Rand seeded with seed. The same seed yields the same stream.
func New(seed uint64) *Rand {
	return &Rand{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (r *Rand) Bool(p float64) bool {
	return r.r.Float64() < p
}

func (r *Rand) Float64() float64 {
	return r.r.Float64()
}

func (r *Rand) IntN(n int) int {
	return r.r.IntN(n)
}

// NewSeed generates a seed using crypto/rand.
func NewSeed() (uint64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

// Range returns a uniform value in [lo, hi).
func Range(src Source, lo, hi float64) float64 {
	return lo + src.Float64()*(hi-lo)
}

// Pick returns one element of items chosen uniformly. ok is false when items is empty.
func Pick[T any](src Source, items []T) (item T, ok bool) {
	if len(items) == 0 {
		return item, false
	}
	return items[src.IntN(len(items))], true
}

// Weighted draws an index with probability proportional to its weight.
// Weights must be finite and non-negative with a positive total.
func Weighted(src Source, weights []float64) (int, error) {
	if len(weights) == 0 {
		return 0, fmt.Errorf("%w: empty", ErrInvalidWeights)
	}

	total := 0.0
	for i, w := range weights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return 0, fmt.Errorf("%w: weight %d is %v", ErrInvalidWeights, i, w)
		}
		total += w
	}
	if total <= 0 {
		return 0, fmt.Errorf("%w: total weight is zero", ErrInvalidWeights)
	}

	r := src.Float64() * total
	cumulative := 0.0
	last := 0
	for i, w := range weights {
		if w == 0 {
			continue
		}
		cumulative += w
		last = i
		if r < cumulative {
			return i, nil
		}
	}

	// Float rounding can leave r just above the final cumulative sum.
	return last, nil
}
