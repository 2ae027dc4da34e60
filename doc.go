// Package paircount counts pairs of 3-D points by separation.
//
// Given one or two point sets, CountPairs histograms the separation of
// every ordered pair into a sequence of radial bins, up to a maximum search
// radius. This is the kernel of two-point correlation function estimators.
//
// # Quick Start
//
//	data := paircount.Points[float64]{X: xs, Y: ys, Z: zs}
//	box := paircount.Box{XMax: 100, YMax: 100, ZMax: 100}
//	edges := []float64{0.1, 0.5, 1, 2, 5, 10}
//
//	// DD: pairs within one set
//	dd, err := paircount.CountPairs(data, data, true, box, 10, edges)
//
//	// DR: pairs across two sets
//	dr, err := paircount.CountPairs(data, randoms, false, box, 10, edges,
//	    paircount.WithWorkers(8),
//	    paircount.WithMeanSeparation(true),
//	)
//
// # How It Works
//
// Both sets are partitioned into a lattice of cells at least rmax/refine
// wide. Every occupied cell of the first lattice is paired with the cells
// up to refine steps away in the second lattice, and a kernel bins the
// separations of every point pair between the two cells. Boundaries are not
// periodic.
//
// In autocorrelation mode every ordered pair is counted, including each
// point paired with itself: a single point with edges [0, 1, 2] yields one
// pair in the first bin.
//
// # Bins
//
// Bin k covers [edges[k-1], edges[k]); a pair exactly on an edge belongs to
// the bin above it. Comparisons happen on squared separations.
//
// # Parallelism
//
// WithWorkers(n) runs n workers that claim cells dynamically and count into
// private histograms, merged once after all workers finish. Results are
// identical for every worker count and every kernel variant.
package paircount
