package paircount

import (
	"fmt"

	"github.com/hupe1980/paircount/internal/kernel"
)

// CellPair is the input of a KernelFunc: the coordinates of the points in
// two lattice cells. The slices are borrowed read-only for one call.
type CellPair[T Float] struct {
	X1, Y1, Z1 []T
	X2, Y2, Z2 []T
}

// KernelFunc counts the pairs between the two cells of p.
//
// sqEdges holds the squared bin edges in ascending order. A pair with
// squared separation r2 in [sqEdges[k-1], sqEdges[k]) adds one to
// counts[k] and, when sums is not nil, sqrt(r2) to sums[k]. Pairs outside
// [sqEdges[0], sqEdges[len-1]) are skipped. counts and sums have
// len(sqEdges) entries and belong to the calling worker; sqEdges must not
// be modified.
//
// With more than one worker the function runs concurrently on different
// cell pairs. This is the hook for kernels compiled outside Go, reached
// through cgo or assembly.
type KernelFunc[T Float] func(p CellPair[T], sqEdges []T, counts []uint64, sums []float64)

// WithCustomKernel runs fn in place of the built-in kernels. T must match
// the precision of the points passed to CountPairs, otherwise the count
// fails with ErrUnknownKernel. name is reported in CountStats.Kernel.
func WithCustomKernel[T Float](name string, fn KernelFunc[T]) Option {
	return func(o *options) {
		o.kernel = KernelCustom
		o.customKernel = fn
		o.customName = name
	}
}

func newKernel[T Float](o *options) (kernel.Kernel[T], error) {
	if o.kernel != KernelCustom {
		return kernel.New[T](o.kernel)
	}

	fn, ok := o.customKernel.(KernelFunc[T])
	if !ok || fn == nil {
		var zero T
		return nil, fmt.Errorf("%w: no custom kernel %q for %T coordinates", ErrUnknownKernel, o.customName, zero)
	}
	return kernel.NewFunc[T](o.customName, func(ax, ay, az, bx, by, bz, sq []T, counts []uint64, sums []float64) {
		fn(CellPair[T]{X1: ax, Y1: ay, Z1: az, X2: bx, Y2: by, Z2: bz}, sq, counts, sums)
	})
}

func kernelName(o *options) string {
	name := kernel.Resolve(o.kernel).String()
	if o.kernel == KernelCustom && o.customName != "" {
		name += ":" + o.customName
	}
	return name
}
