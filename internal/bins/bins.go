// Package bins implements the radial bin table used by the pair counter.
//
// A table holds nrpbin ascending upper edges. Bin k (1 <= k < nrpbin)
// covers squared separations in [edge[k-1]^2, edge[k]^2). Edge 0 is the
// global minimum separation and the last edge is the maximum search radius.
// Index 0 is never a valid bin.
package bins

import (
	"github.com/hupe1980/paircount/internal/num"
)

// Table is an immutable bin table with squared edges in precision T.
type Table[T num.Float] struct {
	upper []float64
	sq    []T
}

// New builds a table from ascending edges. The edges are copied.
// Monotonicity is the caller's responsibility and is not checked.
func New[T num.Float](edges []float64) *Table[T] {
	t := &Table[T]{
		upper: make([]float64, len(edges)),
		sq:    make([]T, len(edges)),
	}
	copy(t.upper, edges)
	for i, e := range edges {
		t.sq[i] = T(e * e)
	}
	return t
}

// NumEdges returns nrpbin, the number of edges.
func (t *Table[T]) NumEdges() int {
	return len(t.upper)
}

// NumBins returns the number of usable bins (nrpbin-1, or 0).
func (t *Table[T]) NumBins() int {
	if len(t.upper) < 2 {
		return 0
	}
	return len(t.upper) - 1
}

// Squared returns the squared edges. Callers must not modify it.
func (t *Table[T]) Squared() []T {
	return t.sq
}

// MinSq returns the squared minimum separation.
func (t *Table[T]) MinSq() T {
	if len(t.sq) == 0 {
		return 0
	}
	return t.sq[0]
}

// MaxSq returns the squared maximum separation.
func (t *Table[T]) MaxSq() T {
	if len(t.sq) == 0 {
		return 0
	}
	return t.sq[len(t.sq)-1]
}

// InRange reports whether r2 falls in [MinSq, MaxSq).
func (t *Table[T]) InRange(r2 T) bool {
	if len(t.sq) < 2 {
		return false
	}
	return !(r2 >= t.sq[len(t.sq)-1] || r2 < t.sq[0])
}

// Find returns the bin holding r2, or 0 when r2 is out of range.
//
// Bins are scanned from the top down, stopping at the first k with
// r2 >= edge[k-1]^2, so a separation equal to an edge lands in the bin that
// has it as its lower bound.
func (t *Table[T]) Find(r2 T) int {
	if !t.InRange(r2) {
		return 0
	}
	return t.Scan(r2)
}

// Scan is Find without the range check. r2 must already be in range.
func (t *Table[T]) Scan(r2 T) int {
	for k := len(t.sq) - 1; k >= 1; k-- {
		if r2 >= t.sq[k-1] {
			return k
		}
	}
	return 0
}

// Lower returns the lower edge of bin k.
func (t *Table[T]) Lower(k int) float64 {
	return t.upper[k-1]
}

// Upper returns the upper edge of bin k.
func (t *Table[T]) Upper(k int) float64 {
	return t.upper[k]
}

// Edges returns a copy of the edges.
func (t *Table[T]) Edges() []float64 {
	out := make([]float64, len(t.upper))
	copy(out, t.upper)
	return out
}
