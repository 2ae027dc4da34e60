package paircount

import (
	"sync/atomic"
	"time"
)

// CountStats describes one CountPairs call.
type CountStats struct {
	Points1 int
	Points2 int

	// Dims is the lattice resolution (nx, ny, nz).
	Dims          [3]int
	Cells         int
	OccupiedCells int

	// CellPairs is the number of non-empty (outer, neighbour) cell pairs
	// handed to the kernel.
	CellPairs int64

	// Pairs is the number of pairs that landed in a bin.
	Pairs uint64

	Workers      int
	RefineFactor int
	Kernel       string
	PeakMemory   int64
	Duration     time.Duration
}

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordCount is called after each CountPairs call. err is nil if the
	// count completed.
	RecordCount(stats CountStats, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

// RecordCount implements MetricsCollector.
func (NoopMetricsCollector) RecordCount(CountStats, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	CountCalls      atomic.Int64
	CountErrors     atomic.Int64
	CountTotalNanos atomic.Int64
	PairsCounted    atomic.Uint64
	CellPairs       atomic.Int64
}

// RecordCount implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCount(stats CountStats, err error) {
	b.CountCalls.Add(1)
	b.CountTotalNanos.Add(stats.Duration.Nanoseconds())
	if err != nil {
		b.CountErrors.Add(1)
		return
	}
	b.PairsCounted.Add(stats.Pairs)
	b.CellPairs.Add(stats.CellPairs)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		CountCalls:    b.CountCalls.Load(),
		CountErrors:   b.CountErrors.Load(),
		CountAvgNanos: b.getAvgCountNanos(),
		PairsCounted:  b.PairsCounted.Load(),
		CellPairs:     b.CellPairs.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgCountNanos() int64 {
	count := b.CountCalls.Load()
	if count == 0 {
		return 0
	}
	return b.CountTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	CountCalls    int64
	CountErrors   int64
	CountAvgNanos int64
	PairsCounted  uint64
	CellPairs     int64
}
