// Package accum holds the per-worker pair-count accumulators and their
// reduction.
//
// Each worker owns one Histogram in an Arena, indexed by worker id. Nothing
// is shared while workers run; Reduce folds the rows together in a single
// pass once every worker has finished.
package accum

import (
	"fmt"
	"unsafe"

	"gonum.org/v1/gonum/floats"

	"github.com/hupe1980/paircount/internal/resource"
)

// Histogram is a pair-count histogram with an optional per-bin sum of
// separations. Index 0 is never incremented.
type Histogram struct {
	Counts []uint64

	// Sums is nil when mean separations are not being tracked.
	Sums []float64
}

// NewHistogram allocates a zeroed histogram with n entries.
func NewHistogram(n int, withSums bool) *Histogram {
	h := &Histogram{Counts: make([]uint64, n)}
	if withSums {
		h.Sums = make([]float64, n)
	}
	return h
}

// Len returns the number of entries, including the unused index 0.
func (h *Histogram) Len() int {
	return len(h.Counts)
}

// Add records one pair at separation r in bin k.
func (h *Histogram) Add(k int, r float64) {
	h.Counts[k]++
	if h.Sums != nil {
		h.Sums[k] += r
	}
}

// Merge adds o into h. Both must have the same length; sums are merged only
// when both carry them.
func (h *Histogram) Merge(o *Histogram) {
	if len(o.Counts) != len(h.Counts) {
		panic(fmt.Sprintf("accum: merge of histograms with %d and %d bins", len(h.Counts), len(o.Counts)))
	}
	for k, c := range o.Counts {
		h.Counts[k] += c
	}
	if h.Sums != nil && o.Sums != nil {
		floats.Add(h.Sums, o.Sums)
	}
}

// Total returns the sum of all counts.
func (h *Histogram) Total() uint64 {
	var total uint64
	for _, c := range h.Counts {
		total += c
	}
	return total
}

// Means returns the mean separation per bin. Empty bins, and every bin when
// sums are not tracked, report zero.
func (h *Histogram) Means() []float64 {
	out := make([]float64, len(h.Counts))
	if h.Sums == nil {
		return out
	}
	for k, c := range h.Counts {
		if c > 0 {
			out[k] = h.Sums[k] / float64(c)
		}
	}
	return out
}

// Arena is a set of per-worker histograms backed by contiguous storage.
type Arena struct {
	rows     []Histogram
	counts   []uint64
	sums     []float64
	nbins    int
	ctrl     *resource.Controller
	reserved int64
}

// NewArena allocates one zeroed histogram of nbins entries per worker. The
// storage is reserved from ctrl, which may be nil.
func NewArena(workers, nbins int, withSums bool, ctrl *resource.Controller) (*Arena, error) {
	if workers < 1 {
		workers = 1
	}

	reserved := int64(workers) * int64(nbins) * int64(unsafe.Sizeof(uint64(0)))
	if withSums {
		reserved *= 2
	}
	if err := ctrl.AcquireMemory(reserved); err != nil {
		return nil, fmt.Errorf("accum: reserve %d bytes for %d workers: %w", reserved, workers, err)
	}

	a := &Arena{
		rows:     make([]Histogram, workers),
		counts:   make([]uint64, workers*nbins),
		nbins:    nbins,
		ctrl:     ctrl,
		reserved: reserved,
	}
	if withSums {
		a.sums = make([]float64, workers*nbins)
	}
	for w := range workers {
		a.rows[w].Counts = a.counts[w*nbins : (w+1)*nbins : (w+1)*nbins]
		if withSums {
			a.rows[w].Sums = a.sums[w*nbins : (w+1)*nbins : (w+1)*nbins]
		}
	}
	return a, nil
}

// Workers returns the number of rows.
func (a *Arena) Workers() int {
	return len(a.rows)
}

// Worker returns the histogram owned by worker id.
func (a *Arena) Worker(id int) *Histogram {
	return &a.rows[id]
}

// Reduce sums every worker row into a new histogram. Call it only after all
// workers are done.
func (a *Arena) Reduce() *Histogram {
	out := NewHistogram(a.nbins, a.sums != nil)
	for w := range a.rows {
		out.Merge(&a.rows[w])
	}
	return out
}

// Release returns the arena's reservation. Calls after the first are no-ops.
func (a *Arena) Release() {
	if a == nil || a.rows == nil {
		return
	}
	a.rows = nil
	a.counts = nil
	a.sums = nil
	a.ctrl.ReleaseMemory(a.reserved)
}
