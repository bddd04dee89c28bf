package tinyvec

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/hupe1980/tinyvec/internal/buffer"
	"github.com/hupe1980/tinyvec/internal/resource"
)

// Store is an in-memory collection of vectors answering nearest-neighbor
// queries by exhaustive scan.
//
// A Store owns the vectors added to it. It is not safe for concurrent
// mutation; reads may run concurrently only with other reads.
type Store struct {
	slots    *buffer.Buffer[*Vector]
	rc       *resource.Controller
	opts     options
	released bool
}

// NewStore creates an empty store with room for capacity vectors.
func NewStore(capacity int, optFns ...Option) (*Store, error) {
	if capacity < 0 || capacity > buffer.MaxCapacity {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
	}

	o := applyOptions(optFns)
	rc := o.controller()

	slots, err := buffer.New[*Vector](capacity, buffer.WithController(rc))
	if err != nil {
		return nil, err
	}

	return &Store{slots: slots, rc: rc, opts: o}, nil
}

// Add transfers ownership of v to the store and appends it.
//
// On failure the store is unchanged and v stays with the caller.
func (s *Store) Add(v *Vector) error {
	start := time.Now()
	index, err := s.add(v)

	dim := 0
	if v != nil {
		dim = v.Len()
	}
	s.opts.metricsCollector.RecordAdd(time.Since(start), err)
	s.opts.logger.LogAdd(context.Background(), index, dim, err)
	return err
}

func (s *Store) add(v *Vector) (int, error) {
	switch {
	case s.released:
		return -1, ErrReleased
	case v == nil:
		return -1, ErrNilVector
	case v.released:
		return -1, ErrReleased
	case v.owner != nil:
		return -1, ErrVectorOwned
	}

	if err := s.slots.Append(v); err != nil {
		return -1, err
	}
	v.owner = s
	return s.slots.Len() - 1, nil
}

// Len returns the number of vectors.
func (s *Store) Len() int {
	if s.released {
		return 0
	}
	return s.slots.Len()
}

// At returns the vector at index i. It panics if i is out of range.
// The vector remains owned by the store.
func (s *Store) At(i int) *Vector {
	return s.slots.At(i)
}

// All iterates over the vectors in insertion order.
func (s *Store) All() iter.Seq2[int, *Vector] {
	return func(yield func(int, *Vector) bool) {
		if s.released {
			return
		}
		for i, v := range s.slots.Slice() {
			if !yield(i, v) {
				return
			}
		}
	}
}

// Release releases every owned vector and then the store itself.
// It is idempotent.
func (s *Store) Release() {
	if s.released {
		return
	}
	for _, v := range s.slots.Slice() {
		v.release()
	}
	s.slots.Release()
	s.released = true
}

// MemoryUsage returns the bytes accounted against WithMemoryLimit, or zero
// when no limit is configured.
func (s *Store) MemoryUsage() int64 {
	return s.rc.MemoryUsage()
}
