package kernel

import (
	"math"

	"github.com/hupe1980/paircount/internal/accum"
	"github.com/hupe1980/paircount/internal/bins"
	"github.com/hupe1980/paircount/internal/lattice"
	"github.com/hupe1980/paircount/internal/num"
)

// Blocked walks the second cell in tiles of BlockSize points.
type Blocked[T num.Float] struct{}

// Kind implements Kernel.
func (Blocked[T]) Kind() Kind { return KindBlocked }

// Count implements Kernel.
func (Blocked[T]) Count(a, b lattice.Cell[T], tab *bins.Table[T], h *accum.Histogram) {
	sq := tab.Squared()
	nb := len(sq)
	if nb < 2 {
		return
	}
	minSq, maxSq := sq[0], sq[nb-1]
	sums := h.Sums != nil
	n2 := b.Len()

	var r2 [BlockSize]T
	for i := range a.X {
		x1, y1, z1 := a.X[i], a.Y[i], a.Z[i]

		for j := 0; j < n2; j += BlockSize {
			bs := min(n2-j, BlockSize)
			bx := b.X[j : j+bs]
			by := b.Y[j : j+bs]
			bz := b.Z[j : j+bs]

			for jj := range bs {
				r2[jj] = num.Dist2(x1, y1, z1, bx[jj], by[jj], bz[jj])
			}

			for jj := range bs {
				d := r2[jj]
				if d >= maxSq || d < minSq {
					continue
				}
				for k := nb - 1; k >= 1; k-- {
					if d >= sq[k-1] {
						h.Counts[k]++
						if sums {
							h.Sums[k] += math.Sqrt(float64(d))
						}
						break
					}
				}
			}
		}
	}
}
