package models

import (
	"math"
	"math/rand/v2"
	"slices"
)

// second PCG word, fixed so that one seed always yields the same stream
const seedStream = 0xda3e39cb94b95bdb

// Sampler draws the per-round row and column subsets from its own seeded generator.
// It is not safe for concurrent use.
type Sampler struct {
	rng *rand.Rand
}

func NewSampler(seed uint64) *Sampler {
	return &Sampler{rng: rand.New(rand.NewPCG(seed, seedStream))}
}

// Float64 advances the generator and returns a value in [0,1).
func (s *Sampler) Float64() float64 { return s.rng.Float64() }

// Rows keeps each of n rows with probability rate. At least one row always survives.
func (s *Sampler) Rows(n int, rate float64) []int {
	if rate >= 1 {
		return seq(n)
	}
	rows := make([]int, 0, int(rate*float64(n))+1)
	for i := 0; i < n; i++ {
		if s.rng.Float64() < rate {
			rows = append(rows, i)
		}
	}
	if len(rows) == 0 && n > 0 {
		rows = append(rows, s.rng.IntN(n))
	}
	return rows
}

// Columns keeps round(rate*n) of n features (at least one), returned in ascending order.
func (s *Sampler) Columns(n int, rate float64) []int {
	if rate >= 1 {
		return seq(n)
	}
	k := int(math.Round(rate * float64(n)))
	if k < 1 {
		k = 1
	}
	if k > n {
		k = n
	}
	cols := s.rng.Perm(n)[:k]
	slices.Sort(cols)
	return cols
}

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
