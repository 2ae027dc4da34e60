package paircount

import (
	"errors"
	"fmt"

	"github.com/hupe1980/paircount/internal/kernel"
	"github.com/hupe1980/paircount/internal/lattice"
	"github.com/hupe1980/paircount/internal/resource"
)

var (
	// ErrInvalidPoints is returned when a point set's coordinate slices
	// have different lengths.
	ErrInvalidPoints = errors.New("coordinate slices must have equal length")

	// ErrInvalidRadius is returned for a non-positive or NaN search radius.
	ErrInvalidRadius = errors.New("search radius must be positive")

	// ErrInvalidWorkers is returned for a negative worker count.
	ErrInvalidWorkers = errors.New("worker count must not be negative")

	// ErrInvalidRefineFactor is returned for a negative refinement factor.
	ErrInvalidRefineFactor = errors.New("refinement factor must not be negative")

	// ErrUnknownKernel is returned for a kernel that does not exist.
	ErrUnknownKernel = errors.New("unknown kernel")

	// ErrMemoryLimitExceeded is returned when lattice or accumulator storage
	// does not fit in the configured memory limit.
	ErrMemoryLimitExceeded = resource.ErrMemoryLimitExceeded
)

// ErrGridMismatch indicates that the two point sets were partitioned into
// lattices of different dimensions.
//
// The original underlying error can be accessed via errors.Unwrap.
type ErrGridMismatch struct {
	First  [3]int
	Second [3]int
	cause  error
}

func (e *ErrGridMismatch) Error() string {
	return fmt.Sprintf("grid mismatch: first lattice %v, second lattice %v", e.First, e.Second)
}

func (e *ErrGridMismatch) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var me *lattice.MismatchError
	if errors.As(err, &me) {
		return &ErrGridMismatch{First: me.First, Second: me.Second, cause: err}
	}
	if errors.Is(err, lattice.ErrInvalidRadius) {
		return fmt.Errorf("%w: %w", ErrInvalidRadius, err)
	}
	if errors.Is(err, lattice.ErrInvalidRefine) {
		return fmt.Errorf("%w: %w", ErrInvalidRefineFactor, err)
	}
	if errors.Is(err, kernel.ErrUnknownKind) {
		return fmt.Errorf("%w: %w", ErrUnknownKernel, err)
	}

	return err
}
