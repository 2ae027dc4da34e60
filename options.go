package paircount

import (
	"io"
	"log/slog"
	"os"

	"github.com/hupe1980/paircount/internal/kernel"
	"github.com/hupe1980/paircount/internal/lattice"
)

// Kernel selects the distance-and-bin kernel variant.
type Kernel = kernel.Kind

const (
	// KernelAuto is KernelBlocked.
	KernelAuto = kernel.KindAuto
	// KernelScalar is the reference nested loop.
	KernelScalar = kernel.KindScalar
	// KernelBlocked tiles the inner loop in blocks of 16 points.
	KernelBlocked = kernel.KindBlocked
	// KernelVector resolves bins for a register's worth of pairs at a time.
	KernelVector = kernel.KindVector
	// KernelCustom runs the function given to WithCustomKernel.
	KernelCustom = kernel.KindCustom
)

// ParseKernel parses a kernel name: auto, scalar, blocked or vector.
func ParseKernel(s string) (Kernel, error) {
	k, err := kernel.ParseKind(s)
	return k, translateError(err)
}

type options struct {
	workers          int
	refine           int
	kernel           Kernel
	customKernel     any
	customName       string
	meanSeparation   bool
	maxCellsPerAxis  int
	memoryLimit      int64
	output           io.Writer
	logger           *Logger
	metricsCollector MetricsCollector
}

// Option configures a CountPairs call.
type Option func(*options)

// WithWorkers sets the number of worker goroutines. 1 (the default) runs
// the count on the calling goroutine; 0 uses runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithRefineFactor fixes the refinement factor: cells are at least
// rmax/factor wide and each cell is paired with the cells up to factor
// steps away on every axis. 0 (the default) applies RefineFactor.
func WithRefineFactor(factor int) Option {
	return func(o *options) {
		o.refine = factor
	}
}

// WithKernel selects the kernel variant.
//
// Every variant yields identical counts; only throughput differs.
func WithKernel(k Kernel) Option {
	return func(o *options) {
		o.kernel = k
	}
}

// WithMeanSeparation enables the per-bin mean separation. When disabled the
// mean is reported as 0.
func WithMeanSeparation(enabled bool) Option {
	return func(o *options) {
		o.meanSeparation = enabled
	}
}

// WithMaxCellsPerAxis caps the lattice resolution on each axis.
// Defaults to 100; values above 1024 are treated as 1024.
func WithMaxCellsPerAxis(n int) Option {
	return func(o *options) {
		o.maxCellsPerAxis = n
	}
}

// WithMemoryLimit bounds the lattice and accumulator storage of a count.
// A count that would exceed it fails with ErrMemoryLimitExceeded.
// 0 (the default) means unlimited.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithOutput sets where the per-bin table is written. Defaults to
// os.Stdout; pass nil to suppress it.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.output = w
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := paircount.NewJSONLogger(slog.LevelInfo)
//	res, _ := paircount.CountPairs(d, d, true, box, rmax, edges, paircount.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector.
// Pass nil to disable metrics collection.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		workers:          1,
		kernel:           KernelAuto,
		maxCellsPerAxis:  lattice.DefaultMaxCellsPerAxis,
		output:           os.Stdout,
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	return o
}
