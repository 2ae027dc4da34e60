package kernel

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hupe1980/paircount/internal/accum"
	"github.com/hupe1980/paircount/internal/bins"
	"github.com/hupe1980/paircount/internal/lattice"
	"github.com/hupe1980/paircount/internal/num"
)

const (
	// BlockSize is the tile length of the Blocked kernel.
	BlockSize = 16

	// MaxLanes is the widest lane group the Vector kernel supports.
	MaxLanes = 16
)

// ErrUnknownKind is returned for a kernel name or kind that does not exist.
var ErrUnknownKind = errors.New("unknown kernel")

// Kind selects a kernel variant.
type Kind uint8

const (
	// KindAuto resolves to Blocked.
	KindAuto Kind = iota
	// KindScalar is the reference nested loop.
	KindScalar
	// KindBlocked tiles the inner loop in BlockSize chunks.
	KindBlocked
	// KindVector processes LaneWidth pairs per step with lane masks.
	KindVector
	// KindCustom is a caller-supplied Func. It cannot be built by New.
	KindCustom
)

// String returns the string representation of a Kind.
func (k Kind) String() string {
	switch k {
	case KindAuto:
		return "auto"
	case KindScalar:
		return "scalar"
	case KindBlocked:
		return "blocked"
	case KindVector:
		return "vector"
	case KindCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// ParseKind parses a kernel name.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return KindAuto, nil
	case "scalar":
		return KindScalar, nil
	case "blocked":
		return KindBlocked, nil
	case "vector":
		return KindVector, nil
	default:
		return KindAuto, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Kinds returns every concrete (non-auto) kind.
func Kinds() []Kind {
	return []Kind{KindScalar, KindBlocked, KindVector}
}

// Resolve maps KindAuto to the kind used by default, which is Blocked on
// every ISA. Blocked measures fastest of the three pure-Go variants; the
// ISA only sizes Vector's lane groups.
func Resolve(k Kind) Kind {
	if k == KindAuto {
		return KindBlocked
	}
	return k
}

// Kernel tallies the pairs between two cells.
//
// Count adds every pair (i in a, j in b) whose squared separation lies in
// [tab.MinSq(), tab.MaxSq()) to bin tab.Find(r2) of h. h must have
// tab.NumEdges() entries. Kernels hold no mutable state and may be shared
// between goroutines; h may not.
type Kernel[T num.Float] interface {
	Kind() Kind
	Count(a, b lattice.Cell[T], tab *bins.Table[T], h *accum.Histogram)
}

// New returns the kernel for kind. Vector kernels use LaneWidth[T]().
func New[T num.Float](kind Kind) (Kernel[T], error) {
	switch Resolve(kind) {
	case KindScalar:
		return Scalar[T]{}, nil
	case KindBlocked:
		return Blocked[T]{}, nil
	case KindVector:
		return NewVector[T](LaneWidth[T]())
	case KindCustom:
		return nil, fmt.Errorf("%w: custom kernels are built with NewFunc", ErrUnknownKind)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, kind)
	}
}
