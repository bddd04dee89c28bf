package tinyvec

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/tinyvec/codec"
	"github.com/hupe1980/tinyvec/internal/buffer"
)

var (
	// ErrAllocation is returned when storage for a buffer could not be obtained,
	// either because the request is out of range or the memory budget is spent.
	ErrAllocation = buffer.ErrAllocation

	// ErrInvalidCapacity is returned for a negative or oversized initial capacity.
	// It matches ErrAllocation.
	ErrInvalidCapacity = fmt.Errorf("%w: invalid capacity", ErrAllocation)

	// ErrIO is returned when a file or stream could not be opened, written or read.
	// The underlying error is wrapped as well.
	ErrIO = errors.New("i/o failure")

	// ErrCorrupt is returned when persisted data is truncated or malformed.
	ErrCorrupt = codec.ErrCorrupt

	// ErrDimension is matched by every *ErrDimensionMismatch.
	ErrDimension = errors.New("dimension mismatch")

	// ErrEmptyStore is returned when a search has no candidates.
	ErrEmptyStore = errors.New("store is empty")

	// ErrNilQuery is returned when a search is given no query vector.
	ErrNilQuery = errors.New("query vector is nil")

	// ErrNilVector is returned when a nil vector is passed where one is required.
	ErrNilVector = errors.New("vector is nil")

	// ErrVectorOwned is returned when adding a vector that already belongs to a store.
	ErrVectorOwned = errors.New("vector already owned by a store")

	// ErrReleased is returned when using a vector or store after Release.
	ErrReleased = errors.New("use after release")
)

// ErrDimensionMismatch indicates that two vectors have different lengths.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// Is reports whether target is ErrDimension.
func (e *ErrDimensionMismatch) Is(target error) bool {
	return target == ErrDimension
}

// translateIOError classifies persistence failures. Corruption, allocation and
// context errors keep their identity; anything else is an I/O failure.
func translateIOError(op string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ErrIO),
		errors.Is(err, ErrCorrupt),
		errors.Is(err, ErrAllocation),
		errors.Is(err, ErrReleased),
		errors.Is(err, codec.ErrTooLarge),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	}

	return fmt.Errorf("%w: %s: %w", ErrIO, op, err)
}
