package paircount

import (
	"fmt"
	"math"
	"runtime"
	"time"

	"github.com/hupe1980/paircount/internal/accum"
	"github.com/hupe1980/paircount/internal/bins"
	"github.com/hupe1980/paircount/internal/lattice"
	"github.com/hupe1980/paircount/internal/num"
	"github.com/hupe1980/paircount/internal/resource"
)

// Float is the set of supported coordinate precisions.
type Float = num.Float

// Box is the axis-aligned domain shared by both point sets.
type Box = lattice.Box

// Points is a point set as three parallel coordinate slices. The slices are
// borrowed read-only for the duration of a count.
type Points[T Float] struct {
	X, Y, Z []T
}

// Len returns the number of points.
func (p Points[T]) Len() int {
	return len(p.X)
}

func (p Points[T]) validate(name string) error {
	if len(p.Y) != len(p.X) || len(p.Z) != len(p.X) {
		return fmt.Errorf("%w: %s has %d x, %d y, %d z", ErrInvalidPoints, name, len(p.X), len(p.Y), len(p.Z))
	}
	return nil
}

// RefineFactor returns the default refinement factor for a worker count:
// 2 when counting on one goroutine, 1 when counting in parallel. Smaller
// cells cost more loop overhead but test fewer far pairs; in parallel the
// cheaper per-cell work balances better.
func RefineFactor(workers int) int {
	if workers > 1 {
		return 1
	}
	return 2
}

// CountPairs histograms the separations of every ordered pair (p1[i],
// p2[j]) into the bins defined by edges.
//
// edges holds nrpbin ascending upper edges: bin k (1 <= k < nrpbin) counts
// separations in [edges[k-1], edges[k]). Pairs closer than edges[0] or at
// least edges[nrpbin-1] apart are not counted. rmax is the search radius
// used to size the lattice and should be at least the last edge: pairs
// farther apart than rmax may be missed, and a smaller rmax is logged as a
// warning.
//
// With autocorr set, p2 is ignored and pairs are taken within p1, counting
// both (i, j) and (j, i) as well as each point with itself.
//
// The per-bin table is written to the configured output (os.Stdout by
// default). Fewer than two edges, or an empty point set, produce an
// all-zero result.
func CountPairs[T Float](p1, p2 Points[T], autocorr bool, box Box, rmax float64, edges []float64, optFns ...Option) (*Result, error) {
	o := applyOptions(optFns)
	start := time.Now()

	stats := CountStats{Points1: p1.Len(), Points2: p2.Len()}
	if autocorr {
		stats.Points2 = p1.Len()
	}

	res, err := countPairs(p1, p2, autocorr, box, rmax, edges, &o, &stats)
	err = translateError(err)
	if err == nil && o.output != nil {
		if _, werr := res.WriteTo(o.output); werr != nil {
			err = fmt.Errorf("write bin table: %w", werr)
		}
	}
	stats.Duration = time.Since(start)

	o.logger.LogCount(stats, err)
	o.metricsCollector.RecordCount(stats, err)
	if err != nil {
		return nil, err
	}

	res.Stats = stats
	return res, nil
}

func countPairs[T Float](p1, p2 Points[T], autocorr bool, box Box, rmax float64, edges []float64, o *options, stats *CountStats) (*Result, error) {
	if err := p1.validate("first point set"); err != nil {
		return nil, err
	}
	if autocorr {
		p2 = p1
	} else if err := p2.validate("second point set"); err != nil {
		return nil, err
	}
	if math.IsNaN(rmax) || rmax <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRadius, rmax)
	}

	workers := o.workers
	switch {
	case workers < 0:
		return nil, fmt.Errorf("%w: %d", ErrInvalidWorkers, workers)
	case workers == 0:
		workers = runtime.GOMAXPROCS(0)
	}
	refine := o.refine
	switch {
	case refine < 0:
		return nil, fmt.Errorf("%w: %d", ErrInvalidRefineFactor, refine)
	case refine == 0:
		refine = RefineFactor(workers)
	}
	stats.Workers = workers
	stats.RefineFactor = refine

	tab := bins.New[T](edges)
	k, err := newKernel[T](o)
	if err != nil {
		return nil, err
	}
	stats.Kernel = kernelName(o)

	if n := tab.NumEdges(); n >= 2 && rmax < edges[n-1] {
		o.logger.LogRadiusBelowEdge(rmax, edges[n-1])
	}

	if tab.NumBins() == 0 || p1.Len() == 0 || p2.Len() == 0 {
		return newResult(tab, accum.NewHistogram(tab.NumEdges(), o.meanSeparation), o.meanSeparation), nil
	}

	ctrl := resource.NewController(resource.Config{MemoryLimitBytes: o.memoryLimit})
	defer func() { stats.PeakMemory = ctrl.PeakMemoryUsage() }()

	cfg := lattice.Config{
		Box:             box,
		RMax:            rmax,
		Refine:          [3]int{refine, refine, refine},
		MaxCellsPerAxis: o.maxCellsPerAxis,
		Controller:      ctrl,
	}

	l1, err := lattice.Build(p1.X, p1.Y, p1.Z, cfg)
	if err != nil {
		return nil, err
	}
	defer l1.Release()
	o.logger.LogLattice("first", l1.Dims(), l1.NumPoints(), l1.NumOccupied())

	// In autocorrelation mode both handles alias one lattice, which is
	// released once by the deferred call above.
	l2 := l1
	if !autocorr {
		l2, err = lattice.Build(p2.X, p2.Y, p2.Z, cfg)
		if err != nil {
			return nil, err
		}
		defer l2.Release()
		o.logger.LogLattice("second", l2.Dims(), l2.NumPoints(), l2.NumOccupied())

		if err := lattice.CheckCongruent(l1, l2); err != nil {
			return nil, err
		}
	}
	stats.Dims = l1.Dims()
	stats.Cells = l1.NumCells()
	stats.OccupiedCells = l1.NumOccupied()

	arena, err := accum.NewArena(workers, tab.NumEdges(), o.meanSeparation, ctrl)
	if err != nil {
		return nil, err
	}
	defer arena.Release()

	e := &engine[T]{
		first:  l1,
		second: l2,
		tab:    tab,
		kernel: k,
		refine: cfg.Refine,
		arena:  arena,
		logger: o.logger.WithWorkers(workers).WithKernel(stats.Kernel),
	}
	stats.CellPairs = e.run(workers)

	h := arena.Reduce()
	stats.Pairs = h.Total()
	return newResult(tab, h, o.meanSeparation), nil
}
