package tinyvec

import (
	"fmt"

	"github.com/hupe1980/tinyvec/distance"
	"github.com/hupe1980/tinyvec/internal/buffer"
)

// Vector is a growable sequence of float32 components.
//
// A Vector belongs to its creator until it is added to a Store, after which
// the store owns it and releases it together with itself.
type Vector struct {
	buf      *buffer.Buffer[float32]
	owner    *Store
	released bool
}

// NewVector creates an empty vector with room for capacity components.
func NewVector(capacity int, optFns ...Option) (*Vector, error) {
	if capacity < 0 || capacity > buffer.MaxCapacity {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
	}

	o := applyOptions(optFns)
	buf, err := buffer.New[float32](capacity, buffer.WithController(o.controller()))
	if err != nil {
		return nil, err
	}
	return &Vector{buf: buf}, nil
}

// VectorOf creates a vector holding a copy of values.
func VectorOf(values ...float32) *Vector {
	data := make([]float32, len(values))
	copy(data, values)

	buf, err := buffer.Wrap(data)
	if err != nil {
		// Wrap without a controller only fails beyond MaxCapacity.
		panic(err)
	}
	return &Vector{buf: buf}
}

// Append adds a component. On failure the vector is unchanged.
func (v *Vector) Append(value float32) error {
	if v.released {
		return ErrReleased
	}
	return v.buf.Append(value)
}

// Len returns the number of components.
func (v *Vector) Len() int {
	if v.released {
		return 0
	}
	return v.buf.Len()
}

// Cap returns the number of allocated component slots.
func (v *Vector) Cap() int {
	if v.released {
		return 0
	}
	return v.buf.Cap()
}

// At returns component i. It panics if i is out of range.
func (v *Vector) At(i int) float32 {
	return v.buf.At(i)
}

// Values returns a copy of the components.
func (v *Vector) Values() []float32 {
	if v.released {
		return nil
	}
	out := make([]float32, v.buf.Len())
	copy(out, v.buf.Slice())
	return out
}

// Dot returns the dot product of v and other.
func (v *Vector) Dot(other *Vector) (float32, error) {
	return DotProduct(v, other)
}

// DotProduct returns the sum of the element-wise products of a and b.
// Both vectors must have the same length.
func DotProduct(a, b *Vector) (float32, error) {
	if a == nil || b == nil {
		return 0, ErrNilVector
	}
	if a.released || b.released {
		return 0, ErrReleased
	}
	return dot(a, b)
}

func dot(a, b *Vector) (float32, error) {
	if a.buf.Len() != b.buf.Len() {
		return 0, &ErrDimensionMismatch{Expected: a.buf.Len(), Actual: b.buf.Len()}
	}
	return distance.Dot(a.buf.Slice(), b.buf.Slice()), nil
}

// Release frees the components. It is idempotent. A vector owned by a store
// is released by that store and calling Release on it has no effect.
func (v *Vector) Release() {
	if v.owner != nil {
		return
	}
	v.release()
}

func (v *Vector) release() {
	if v.released {
		return
	}
	v.buf.Release()
	v.released = true
}

// String implements fmt.Stringer.
func (v *Vector) String() string {
	if v.released {
		return "Vector(released)"
	}
	return fmt.Sprint(v.buf.Slice())
}
