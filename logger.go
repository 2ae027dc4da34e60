package paircount

import (
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with paircount-specific helpers.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithWorkers adds a workers field to the logger.
func (l *Logger) WithWorkers(workers int) *Logger {
	return &Logger{
		Logger: l.Logger.With("workers", workers),
	}
}

// WithKernel adds a kernel field to the logger.
func (l *Logger) WithKernel(kernel string) *Logger {
	return &Logger{
		Logger: l.Logger.With("kernel", kernel),
	}
}

// LogLattice logs a finished lattice build.
func (l *Logger) LogLattice(name string, dims [3]int, points, occupied int) {
	l.Debug("lattice built",
		"lattice", name,
		"nx", dims[0],
		"ny", dims[1],
		"nz", dims[2],
		"points", points,
		"occupied_cells", occupied,
	)
}

// LogRadiusBelowEdge warns that the search radius cannot reach the last
// bin edge, so the outer bins will be undercounted.
func (l *Logger) LogRadiusBelowEdge(rmax, lastEdge float64) {
	l.Warn("search radius below last bin edge",
		"rmax", rmax,
		"last_edge", lastEdge,
	)
}

// LogProgress logs how many outer cells have been processed.
func (l *Logger) LogProgress(done, total int64) {
	l.Debug("counting",
		"cells_done", done,
		"cells_total", total,
	)
}

// LogCount logs a finished (or failed) count.
func (l *Logger) LogCount(stats CountStats, err error) {
	if err != nil {
		l.Error("pair count failed",
			"points1", stats.Points1,
			"points2", stats.Points2,
			"error", err,
		)
		return
	}
	l.Info("pair count completed",
		"points1", stats.Points1,
		"points2", stats.Points2,
		"pairs", stats.Pairs,
		"cell_pairs", stats.CellPairs,
		"duration", stats.Duration.Round(time.Microsecond),
	)
}
