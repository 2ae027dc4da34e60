package paircount

import (
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/hupe1980/paircount/internal/accum"
	"github.com/hupe1980/paircount/internal/bins"
	"github.com/hupe1980/paircount/internal/kernel"
	"github.com/hupe1980/paircount/internal/lattice"
)

// progressInterval bounds how often a running count logs progress.
const progressInterval = 2 * time.Second

// engine walks every occupied cell of the first lattice, pairs it with its
// neighbour window in the second lattice and feeds each cell pair to the
// kernel.
type engine[T Float] struct {
	first, second *lattice.Lattice[T]
	tab           *bins.Table[T]
	kernel        kernel.Kernel[T]
	refine        [3]int
	arena         *accum.Arena
	logger        *Logger

	outer    []uint32
	cursor   atomic.Int64
	done     atomic.Int64
	progress rate.Sometimes
}

// run counts with the given number of workers and returns the number of
// cell pairs visited. Each worker claims one outer cell at a time from a
// shared cursor and accumulates into its own arena row. run returns once
// every worker has finished; the caller reduces the arena afterwards.
func (e *engine[T]) run(workers int) int64 {
	e.outer = e.first.Occupied()
	e.progress = rate.Sometimes{Interval: progressInterval}
	visited := make([]int64, workers)

	if workers == 1 {
		visited[0] = e.work(e.arena.Worker(0))
		return visited[0]
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for id := range workers {
		g.Go(func() error {
			visited[id] = e.work(e.arena.Worker(id))
			return nil
		})
	}
	_ = g.Wait()

	var total int64
	for _, v := range visited {
		total += v
	}
	return total
}

func (e *engine[T]) work(h *accum.Histogram) int64 {
	var visited int64
	total := int64(len(e.outer))

	for {
		i := e.cursor.Add(1) - 1
		if i >= total {
			return visited
		}

		icell := int(e.outer[i])
		first := e.first.Cell(icell)
		ix, iy, iz := e.first.Coords(icell)

		for idx := range e.second.Neighbors(ix, iy, iz, e.refine) {
			second := e.second.Cell(idx)
			if second.Len() == 0 {
				continue
			}
			e.kernel.Count(first, second, e.tab, h)
			visited++
		}

		done := e.done.Add(1)
		e.progress.Do(func() { e.logger.LogProgress(done, total) })
	}
}
