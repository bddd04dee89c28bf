package testutil

import (
	"math/rand/v2"
	"sync"
)

// RNG is a seeded random source. It is safe for concurrent use.
type RNG struct {
	mu   sync.Mutex
	rand *rand.Rand
	seed uint64
}

// NewRNG creates a new RNG with the specified seed.
func NewRNG(seed uint64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		seed: seed,
	}
}

// Seed returns the initial seed.
func (r *RNG) Seed() uint64 {
	return r.seed
}

// IntN returns a pseudo-random number in [0,n).
func (r *RNG) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.IntN(n)
}

// UniformVectors generates num vectors of the given dimension with values in [-1, 1).
// Uses a single backing array.
func (r *RNG) UniformVectors(num, dimensions int) [][]float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float32, num*dimensions)
	vectors := make([][]float32, num)
	for i := range num {
		vec := data[i*dimensions : (i+1)*dimensions : (i+1)*dimensions]
		for j := range vec {
			vec[j] = r.rand.Float32()*2 - 1
		}
		vectors[i] = vec
	}
	return vectors
}

// CoarseVectors generates vectors with small integer components in
// [-span, span], which makes equal dot products common.
func (r *RNG) CoarseVectors(num, dimensions, span int) [][]float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	vectors := make([][]float32, num)
	for i := range vectors {
		vec := make([]float32, dimensions)
		for j := range vec {
			vec[j] = float32(r.rand.IntN(2*span+1) - span)
		}
		vectors[i] = vec
	}
	return vectors
}

// VaryingVectors generates num vectors whose lengths are drawn from [0, maxDim].
func (r *RNG) VaryingVectors(num, maxDim int) [][]float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	vectors := make([][]float32, num)
	for i := range vectors {
		vec := make([]float32, r.rand.IntN(maxDim+1))
		for j := range vec {
			vec[j] = float32(r.rand.NormFloat64())
		}
		vectors[i] = vec
	}
	return vectors
}

// Dot is a plain reference dot product.
func Dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// ExactNearest returns the index of the vector in dataset with the lowest dot
// product against query, keeping the first on ties. It returns -1 for an
// empty dataset. All vectors must have the query's length.
func ExactNearest(query []float32, dataset [][]float32) int {
	best := -1
	var bestScore float32
	for i, v := range dataset {
		score := Dot(query, v)
		if best < 0 || score < bestScore {
			best, bestScore = i, score
		}
	}
	return best
}
