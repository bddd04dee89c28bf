package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUniformVectors(t *testing.T) {
	rng := NewRNG(4711)

	v := rng.UniformVectors(8, 32)
	assert.Len(t, v, 8)
	for _, vec := range v {
		assert.Len(t, vec, 32)
		assert.Equal(t, 32, cap(vec))
		for _, x := range vec {
			assert.GreaterOrEqual(t, x, float32(-1))
			assert.Less(t, x, float32(1))
		}
	}
}

func TestDeterministic(t *testing.T) {
	a := NewRNG(1).VaryingVectors(10, 5)
	b := NewRNG(1).VaryingVectors(10, 5)
	assert.Equal(t, a, b)
	assert.Equal(t, uint64(1), NewRNG(1).Seed())
}

func TestCoarseVectors(t *testing.T) {
	for _, vec := range NewRNG(2).CoarseVectors(50, 4, 2) {
		for _, x := range vec {
			assert.Contains(t, []float32{-2, -1, 0, 1, 2}, x)
		}
	}
}

func TestExactNearest(t *testing.T) {
	data := [][]float32{{1, 0}, {0, 1}, {2, 0}, {0, 1}}
	assert.Equal(t, 1, ExactNearest([]float32{1, 0}, data))
	assert.Equal(t, 0, ExactNearest([]float32{0, 1}, data))
	assert.Equal(t, -1, ExactNearest([]float32{1}, nil))
}
