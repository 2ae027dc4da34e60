package kernel

import (
	"errors"

	"github.com/hupe1980/paircount/internal/accum"
	"github.com/hupe1980/paircount/internal/bins"
	"github.com/hupe1980/paircount/internal/lattice"
	"github.com/hupe1980/paircount/internal/num"
)

// SliceFunc counts the pairs between cell a (ax, ay, az) and cell b
// (bx, by, bz). sq holds the ascending squared edges; a pair with squared
// separation r2 in [sq[k-1], sq[k]) is added to counts[k], and sqrt(r2) to
// sums[k] when sums is not nil. Pairs outside [sq[0], sq[len(sq)-1]) are
// skipped. None of the input slices may be modified or retained.
type SliceFunc[T num.Float] func(ax, ay, az, bx, by, bz, sq []T, counts []uint64, sums []float64)

// Func runs a SliceFunc as a Kernel. It is how kernels written outside
// this package, in cgo or assembly, join the engine.
type Func[T num.Float] struct {
	name string
	fn   SliceFunc[T]
}

// NewFunc wraps fn. The name is reported in stats and logs.
func NewFunc[T num.Float](name string, fn SliceFunc[T]) (*Func[T], error) {
	if fn == nil {
		return nil, errors.New("kernel: nil kernel function")
	}
	return &Func[T]{name: name, fn: fn}, nil
}

// Kind implements Kernel.
func (*Func[T]) Kind() Kind { return KindCustom }

// Name returns the name given to NewFunc.
func (f *Func[T]) Name() string { return f.name }

// Count implements Kernel.
func (f *Func[T]) Count(a, b lattice.Cell[T], tab *bins.Table[T], h *accum.Histogram) {
	if tab.NumBins() == 0 || a.Len() == 0 || b.Len() == 0 {
		return
	}
	f.fn(a.X, a.Y, a.Z, b.X, b.Y, b.Z, tab.Squared(), h.Counts, h.Sums)
}
