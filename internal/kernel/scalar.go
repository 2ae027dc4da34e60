package kernel

import (
	"math"

	"github.com/hupe1980/paircount/internal/accum"
	"github.com/hupe1980/paircount/internal/bins"
	"github.com/hupe1980/paircount/internal/lattice"
	"github.com/hupe1980/paircount/internal/num"
)

// Scalar is the reference kernel.
type Scalar[T num.Float] struct{}

// Kind implements Kernel.
func (Scalar[T]) Kind() Kind { return KindScalar }

// Count implements Kernel.
func (Scalar[T]) Count(a, b lattice.Cell[T], tab *bins.Table[T], h *accum.Histogram) {
	if tab.NumBins() == 0 {
		return
	}
	sums := h.Sums != nil

	for i := range a.X {
		x1, y1, z1 := a.X[i], a.Y[i], a.Z[i]
		for j := range b.X {
			r2 := num.Dist2(x1, y1, z1, b.X[j], b.Y[j], b.Z[j])
			k := tab.Find(r2)
			if k == 0 {
				continue
			}
			h.Counts[k]++
			if sums {
				h.Sums[k] += math.Sqrt(float64(r2))
			}
		}
	}
}
