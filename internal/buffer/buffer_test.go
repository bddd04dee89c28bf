package buffer

import (
	"testing"

	"github.com/hupe1980/tinyvec/internal/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		wantErr  bool
	}{
		{"Zero", 0, false},
		{"Positive", 16, false},
		{"Negative", -1, true},
		{"TooLarge", MaxCapacity + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := New[int](tt.capacity)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrAllocation)
				assert.Nil(t, b)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 0, b.Len())
			assert.Equal(t, tt.capacity, b.Cap())
		})
	}
}

func TestAppendFromZeroCapacity(t *testing.T) {
	for _, n := range []int{0, 1, 2, 3, 7, 8, 9, 100, 1025} {
		b, err := New[int](0)
		require.NoError(t, err)

		for i := 0; i < n; i++ {
			require.NoError(t, b.Append(i*3))
		}

		require.Equal(t, n, b.Len())
		assert.LessOrEqual(t, b.Len(), b.Cap())
		for i := 0; i < n; i++ {
			assert.Equal(t, i*3, b.At(i))
		}
	}
}

func TestGrowthDoubles(t *testing.T) {
	b, err := New[float32](0)
	require.NoError(t, err)

	var caps []int
	for i := 0; i < 9; i++ {
		require.NoError(t, b.Append(float32(i)))
		caps = append(caps, b.Cap())
	}
	assert.Equal(t, []int{1, 2, 4, 4, 8, 8, 8, 8, 16}, caps)
}

func TestAppendFailureLeavesBufferUnchanged(t *testing.T) {
	// 4 int32 slots fit, growing to 8 (32 bytes) does not: 16 + 32 > 40.
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 40})

	b, err := New[int32](4, WithController(rc))
	require.NoError(t, err)
	for i := int32(0); i < 4; i++ {
		require.NoError(t, b.Append(i))
	}

	err = b.Append(4)
	require.ErrorIs(t, err, ErrAllocation)
	assert.ErrorIs(t, err, resource.ErrMemoryLimitExceeded)

	assert.Equal(t, 4, b.Len())
	assert.Equal(t, 4, b.Cap())
	assert.Equal(t, []int32{0, 1, 2, 3}, b.Slice())
	assert.Equal(t, int64(16), rc.MemoryUsage())
}

func TestMemoryAccounting(t *testing.T) {
	rc := resource.NewController(resource.Config{})

	b, err := New[float32](2, WithController(rc))
	require.NoError(t, err)
	assert.Equal(t, int64(8), rc.MemoryUsage())

	for i := 0; i < 3; i++ {
		require.NoError(t, b.Append(1))
	}
	assert.Equal(t, int64(16), rc.MemoryUsage())

	b.Release()
	assert.Equal(t, int64(0), rc.MemoryUsage())
}

func TestNewOverBudget(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 8})

	_, err := New[float64](2, WithController(rc))
	assert.ErrorIs(t, err, ErrAllocation)
	assert.Equal(t, int64(0), rc.MemoryUsage())
}

func TestRelease(t *testing.T) {
	b, err := New[int](0)
	require.NoError(t, err)
	b.Release() // empty buffer

	require.NoError(t, b.Append(1))
	b.Release()
	b.Release() // idempotent

	assert.Equal(t, 0, b.Len())
	assert.Equal(t, 0, b.Cap())
}

func TestSetAndSlice(t *testing.T) {
	b, err := New[string](1)
	require.NoError(t, err)
	require.NoError(t, b.Append("a"))
	require.NoError(t, b.Append("b"))

	b.Set(1, "c")
	assert.Equal(t, []string{"a", "c"}, b.Slice())
	assert.Len(t, b.Slice(), 2)
}

func TestAtOutOfRange(t *testing.T) {
	b, err := New[int](4)
	require.NoError(t, err)

	assert.Panics(t, func() { b.At(0) })
	assert.Panics(t, func() { b.Set(-1, 0) })
}

func TestWrap(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 16})

	b, err := Wrap([]float32{1, 2, 3}, WithController(rc))
	require.NoError(t, err)
	assert.Equal(t, 3, b.Len())
	assert.Equal(t, 3, b.Cap())
	assert.Equal(t, []float32{1, 2, 3}, b.Slice())
	assert.Equal(t, int64(12), rc.MemoryUsage())

	// 12 + 8 bytes exceeds the budget.
	_, err = Wrap([]float32{4, 5}, WithController(rc))
	require.ErrorIs(t, err, ErrAllocation)
	assert.Equal(t, int64(12), rc.MemoryUsage())

	b.Release()
	assert.Equal(t, int64(0), rc.MemoryUsage())

	empty, err := Wrap[float32](nil)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Len())
	require.NoError(t, empty.Append(7))
	assert.Equal(t, 1, empty.Cap())
}
