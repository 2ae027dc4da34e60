package kernel

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/hupe1980/paircount/internal/accum"
	"github.com/hupe1980/paircount/internal/bins"
	"github.com/hupe1980/paircount/internal/lattice"
	"github.com/hupe1980/paircount/internal/num"
)

// Vector processes the second cell in lane groups of a fixed width.
type Vector[T num.Float] struct {
	width int
}

// NewVector returns a Vector kernel with the given lane width in
// [1, MaxLanes].
func NewVector[T num.Float](width int) (*Vector[T], error) {
	if width < 1 || width > MaxLanes {
		return nil, fmt.Errorf("kernel: lane width %d out of range [1, %d]", width, MaxLanes)
	}
	return &Vector[T]{width: width}, nil
}

// Kind implements Kernel.
func (*Vector[T]) Kind() Kind { return KindVector }

// Width returns the lane width.
func (v *Vector[T]) Width() int { return v.width }

// Count implements Kernel.
func (v *Vector[T]) Count(a, b lattice.Cell[T], tab *bins.Table[T], h *accum.Histogram) {
	sq := tab.Squared()
	nb := len(sq)
	if nb < 2 {
		return
	}
	minSq, maxSq := sq[0], sq[nb-1]
	sums := h.Sums != nil
	n2 := b.Len()
	w := v.width

	var r2 [MaxLanes]T
	for i := range a.X {
		x1, y1, z1 := a.X[i], a.Y[i], a.Z[i]

		j := 0
		for ; j+w <= n2; j += w {
			bx := b.X[j : j+w]
			by := b.Y[j : j+w]
			bz := b.Z[j : j+w]

			var inRange uint32
			for l := range w {
				d := num.Dist2(x1, y1, z1, bx[l], by[l], bz[l])
				r2[l] = d
				if d < maxSq && d >= minSq {
					inRange |= 1 << l
				}
			}
			if inRange == 0 {
				continue
			}

			// Descending bin scan for all lanes at once. left holds the
			// lanes that have not found their bin yet.
			left := inRange
			for k := nb - 1; k >= 1 && left != 0; k-- {
				edge := sq[k-1]
				var match uint32
				for m := left; m != 0; m &= m - 1 {
					l := bits.TrailingZeros32(m)
					if r2[l] >= edge {
						match |= 1 << l
					}
				}
				if match == 0 {
					continue
				}
				h.Counts[k] += uint64(bits.OnesCount32(match))
				left &^= match

				if sums {
					for m := match; m != 0; m &= m - 1 {
						l := bits.TrailingZeros32(m)
						h.Sums[k] += math.Sqrt(float64(r2[l]))
					}
				}
			}
		}

		// Remainder
		for ; j < n2; j++ {
			d := num.Dist2(x1, y1, z1, b.X[j], b.Y[j], b.Z[j])
			if d >= maxSq || d < minSq {
				continue
			}
			k := tab.Scan(d)
			h.Counts[k]++
			if sums {
				h.Sums[k] += math.Sqrt(float64(d))
			}
		}
	}
}
