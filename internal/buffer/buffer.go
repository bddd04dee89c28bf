// Package buffer implements the growable, contiguous, owned sequence used for
// vector components and store slots.
package buffer

import (
	"errors"
	"fmt"
	"math"
	"unsafe"

	"github.com/hupe1980/tinyvec/internal/resource"
)

// MaxCapacity is the largest number of slots a Buffer may hold. It matches the
// int32 counts of the persisted format.
const MaxCapacity = math.MaxInt32

// ErrAllocation is returned when storage could not be obtained.
var ErrAllocation = errors.New("allocation failed")

// Option configures a Buffer.
type Option func(*config)

type config struct {
	rc *resource.Controller
}

// WithController accounts the buffer's storage against rc.
func WithController(rc *resource.Controller) Option {
	return func(c *config) {
		c.rc = rc
	}
}

// Buffer is a growable sequence of T with amortized O(1) append.
//
// Capacity doubles when the buffer is full; a zero capacity grows to one.
// Buffer is not safe for concurrent mutation.
type Buffer[T any] struct {
	data []T // len(data) is the capacity
	n    int
	rc   *resource.Controller
}

// New creates a Buffer with room for capacity elements.
func New[T any](capacity int, opts ...Option) (*Buffer[T], error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	b := &Buffer[T]{rc: cfg.rc}
	if capacity < 0 || capacity > MaxCapacity {
		return nil, fmt.Errorf("%w: invalid capacity %d", ErrAllocation, capacity)
	}
	if capacity == 0 {
		return b, nil
	}

	data, err := b.alloc(capacity)
	if err != nil {
		return nil, err
	}
	b.data = data
	return b, nil
}

// Wrap adopts data as a full buffer: Len and Cap both equal len(data).
// The caller must not use data afterwards. Its memory is accounted like an
// allocation.
func Wrap[T any](data []T, opts ...Option) (*Buffer[T], error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	if len(data) > MaxCapacity {
		return nil, fmt.Errorf("%w: invalid capacity %d", ErrAllocation, len(data))
	}
	if err := cfg.rc.AcquireMemory(bytesFor[T](len(data))); err != nil {
		return nil, fmt.Errorf("%w: %d slots: %w", ErrAllocation, len(data), err)
	}
	data = data[:len(data):len(data)]
	if len(data) == 0 {
		data = nil
	}
	return &Buffer[T]{data: data, n: len(data), rc: cfg.rc}, nil
}

// Len returns the number of live elements.
func (b *Buffer[T]) Len() int { return b.n }

// Cap returns the number of allocated slots.
func (b *Buffer[T]) Cap() int { return len(b.data) }

// Append stores v after the last live element, growing the storage if needed.
// On failure the buffer is left unmodified.
func (b *Buffer[T]) Append(v T) error {
	if b.n == len(b.data) {
		if err := b.grow(); err != nil {
			return err
		}
	}
	b.data[b.n] = v
	b.n++
	return nil
}

// At returns the element at index i. It panics if i is out of range.
func (b *Buffer[T]) At(i int) T {
	if i < 0 || i >= b.n {
		panic(fmt.Sprintf("buffer: index %d out of range [0:%d]", i, b.n))
	}
	return b.data[i]
}

// Set replaces the element at index i. It panics if i is out of range.
func (b *Buffer[T]) Set(i int, v T) {
	if i < 0 || i >= b.n {
		panic(fmt.Sprintf("buffer: index %d out of range [0:%d]", i, b.n))
	}
	b.data[i] = v
}

// Slice returns the live elements. The slice aliases the buffer's storage and
// is valid until the next growth or Release.
func (b *Buffer[T]) Slice() []T {
	return b.data[:b.n:b.n]
}

// Release drops the storage and returns its accounted bytes. It is idempotent.
func (b *Buffer[T]) Release() {
	if b.data == nil {
		return
	}
	b.rc.ReleaseMemory(bytesFor[T](len(b.data)))
	b.data = nil
	b.n = 0
}

func (b *Buffer[T]) grow() error {
	newCap := len(b.data) * 2
	if newCap == 0 {
		newCap = 1
	}
	if newCap > MaxCapacity {
		if len(b.data) == MaxCapacity {
			return fmt.Errorf("%w: capacity exceeds maximum %d", ErrAllocation, MaxCapacity)
		}
		newCap = MaxCapacity
	}

	data, err := b.alloc(newCap)
	if err != nil {
		return err
	}
	copy(data, b.data[:b.n])

	b.rc.ReleaseMemory(bytesFor[T](len(b.data)))
	b.data = data
	return nil
}

func (b *Buffer[T]) alloc(capacity int) ([]T, error) {
	if err := b.rc.AcquireMemory(bytesFor[T](capacity)); err != nil {
		return nil, fmt.Errorf("%w: %d slots: %w", ErrAllocation, capacity, err)
	}
	return make([]T, capacity), nil
}

func bytesFor[T any](n int) int64 {
	var zero T
	return int64(n) * int64(unsafe.Sizeof(zero))
}
