package paircount

import (
	"bufio"
	"fmt"
	"io"

	"github.com/hupe1980/paircount/internal/accum"
	"github.com/hupe1980/paircount/internal/bins"
)

// Bin is one row of a pair-count result.
type Bin struct {
	// Lower and Upper are the separation edges; the bin is [Lower, Upper).
	Lower float64
	Upper float64

	Count uint64

	// MeanSeparation is the mean pair separation in the bin, or 0 when the
	// bin is empty or mean separations were not requested.
	MeanSeparation float64
}

// Result is the outcome of CountPairs.
type Result struct {
	// Bins holds bins 1..nrpbin-1 in order; Bins[k-1] is bin k.
	Bins []Bin

	// Stats describes the run.
	Stats CountStats

	meanSeparation bool
}

func newResult[T Float](tab *bins.Table[T], h *accum.Histogram, meanSeparation bool) *Result {
	means := h.Means()
	r := &Result{
		Bins:           make([]Bin, tab.NumBins()),
		meanSeparation: meanSeparation,
	}
	for k := 1; k <= tab.NumBins(); k++ {
		r.Bins[k-1] = Bin{
			Lower:          tab.Lower(k),
			Upper:          tab.Upper(k),
			Count:          h.Counts[k],
			MeanSeparation: means[k],
		}
	}
	return r
}

// MeanSeparation reports whether mean separations were accumulated.
func (r *Result) MeanSeparation() bool {
	return r.meanSeparation
}

// Counts returns the per-bin counts; element k-1 holds bin k.
func (r *Result) Counts() []uint64 {
	out := make([]uint64, len(r.Bins))
	r.CopyCounts(out)
	return out
}

// CopyCounts writes the per-bin counts into dst (element k-1 holds bin k)
// and returns the number of elements written.
func (r *Result) CopyCounts(dst []uint64) int {
	n := min(len(dst), len(r.Bins))
	for i := range n {
		dst[i] = r.Bins[i].Count
	}
	return n
}

// Total returns the number of pairs counted over all bins.
func (r *Result) Total() uint64 {
	var total uint64
	for _, b := range r.Bins {
		total += b.Count
	}
	return total
}

// WriteTo writes one line per bin: count, mean separation, lower edge and
// upper edge, in fixed-width columns.
func (r *Result) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var written int64
	for _, b := range r.Bins {
		n, err := fmt.Fprintf(bw, "%10d %20.8f %20.8f %20.8f \n", b.Count, b.MeanSeparation, b.Lower, b.Upper)
		written += int64(n)
		if err != nil {
			return written, err
		}
	}
	return written, bw.Flush()
}
