package paircount

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/paircount/testutil"
)

var unitBox = Box{XMax: 1, YMax: 1, ZMax: 1}

func points[T Float](p testutil.Points[T]) Points[T] {
	return Points[T]{X: p.X, Y: p.Y, Z: p.Z}
}

func quiet(opts ...Option) []Option {
	return append([]Option{WithOutput(io.Discard)}, opts...)
}

func TestSelfPairScenario(t *testing.T) {
	p := Points[float64]{X: []float64{0}, Y: []float64{0}, Z: []float64{0}}

	res, err := CountPairs(p, Points[float64]{}, true, unitBox, 2, []float64{0, 1, 2}, quiet()...)
	require.NoError(t, err)

	// The point paired with itself sits at separation 0, in [0, 1).
	assert.Equal(t, []uint64{1, 0}, res.Counts())
}

func TestEdgeScenario(t *testing.T) {
	a := Points[float64]{X: []float64{0}, Y: []float64{0}, Z: []float64{0}}
	b := Points[float64]{X: []float64{1}, Y: []float64{0}, Z: []float64{0}}

	res, err := CountPairs(a, b, false, unitBox, 2, []float64{0, 1, 2}, quiet()...)
	require.NoError(t, err)

	assert.Equal(t, []uint64{0, 1}, res.Counts(), "a pair on an edge belongs to the bin above")
}

func TestConservation(t *testing.T) {
	rng := testutil.NewRNG(1)
	edges := testutil.LogEdges(0.01, 0.2, 10)

	for _, tc := range []struct {
		name     string
		autocorr bool
	}{
		{"Autocorrelation", true},
		{"Cross", false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			a := rng.Uniform(800, 0, 1)
			b := rng.Uniform(600, 0, 1)
			if tc.autocorr {
				b = a
			}

			res, err := CountPairs(points(a), points(b), tc.autocorr, unitBox, 0.2, edges, quiet()...)
			require.NoError(t, err)

			want, _ := testutil.BruteForce(a, b, edges)
			if diff := cmp.Diff(want[1:], res.Counts()); diff != "" {
				t.Fatalf("counts mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, testutil.InRange(a, b, edges), res.Total())
			assert.Equal(t, res.Total(), res.Stats.Pairs)
		})
	}
}

func TestMeanSeparation(t *testing.T) {
	rng := testutil.NewRNG(2)
	a := rng.Uniform(400, 0, 1)
	edges := testutil.LinearEdges(0, 0.25, 5)

	res, err := CountPairs(points(a), Points[float64]{}, true, unitBox, 0.25, edges, quiet(WithMeanSeparation(true))...)
	require.NoError(t, err)
	require.True(t, res.MeanSeparation())

	counts, sums := testutil.BruteForce(a, a, edges)
	for k, b := range res.Bins {
		require.Equal(t, counts[k+1], b.Count)
		if b.Count == 0 {
			assert.Zero(t, b.MeanSeparation)
			continue
		}
		assert.InDelta(t, sums[k+1]/float64(counts[k+1]), b.MeanSeparation, 1e-9, "bin %d", k+1)
		assert.GreaterOrEqual(t, b.MeanSeparation, b.Lower)
		assert.Less(t, b.MeanSeparation, b.Upper)
	}

	off, err := CountPairs(points(a), Points[float64]{}, true, unitBox, 0.25, edges, quiet()...)
	require.NoError(t, err)
	assert.False(t, off.MeanSeparation())
	for _, b := range off.Bins {
		assert.Zero(t, b.MeanSeparation)
	}
	assert.Equal(t, res.Counts(), off.Counts())
}

func TestSymmetry(t *testing.T) {
	rng := testutil.NewRNG(3)
	a := rng.Clustered(700, 4, 0.05, 0, 1)
	b := rng.Uniform(500, 0, 1)
	edges := testutil.LogEdges(0.005, 0.15, 12)

	ab, err := CountPairs(points(a), points(b), false, unitBox, 0.15, edges, quiet()...)
	require.NoError(t, err)
	ba, err := CountPairs(points(b), points(a), false, unitBox, 0.15, edges, quiet()...)
	require.NoError(t, err)

	assert.Equal(t, ab.Counts(), ba.Counts())
}

func TestThreadingInvariance(t *testing.T) {
	rng := testutil.NewRNG(4)
	a := rng.Clustered(1500, 6, 0.04, 0, 1)
	edges := testutil.LogEdges(0.002, 0.1, 15)

	ref, err := CountPairs(points(a), Points[float64]{}, true, unitBox, 0.1, edges, quiet(WithWorkers(1))...)
	require.NoError(t, err)

	for _, w := range []int{2, 3, 4, 7, 16, 0} {
		t.Run(fmt.Sprintf("workers=%d", w), func(t *testing.T) {
			res, err := CountPairs(points(a), Points[float64]{}, true, unitBox, 0.1, edges, quiet(WithWorkers(w))...)
			require.NoError(t, err)
			if diff := cmp.Diff(ref.Counts(), res.Counts()); diff != "" {
				t.Fatalf("counts differ from single worker (-want +got):\n%s", diff)
			}
			assert.Positive(t, res.Stats.Workers)
		})
	}
}

func TestKernelInvariance(t *testing.T) {
	rng := testutil.NewRNG(5)
	a := testutil.Convert[float32](rng.Uniform(900, 0, 1))
	b := testutil.Convert[float32](rng.Uniform(700, 0, 1))
	edges := testutil.LogEdges(0.01, 0.2, 10)

	want, _ := testutil.BruteForce(a, b, edges)

	for _, k := range []Kernel{KernelAuto, KernelScalar, KernelBlocked, KernelVector} {
		for _, w := range []int{1, 4} {
			t.Run(fmt.Sprintf("%s/workers=%d", k, w), func(t *testing.T) {
				res, err := CountPairs(points(a), points(b), false, unitBox, 0.2, edges, quiet(WithKernel(k), WithWorkers(w))...)
				require.NoError(t, err)
				assert.Equal(t, want[1:], res.Counts())
			})
		}
	}
}

func TestRefineFactorInvariance(t *testing.T) {
	rng := testutil.NewRNG(6)
	a := rng.Uniform(600, 0, 1)
	edges := testutil.LinearEdges(0, 0.3, 6)

	var ref []uint64
	for _, r := range []int{1, 2, 3, 5} {
		res, err := CountPairs(points(a), Points[float64]{}, true, unitBox, 0.3, edges, quiet(WithRefineFactor(r))...)
		require.NoError(t, err)
		assert.Equal(t, r, res.Stats.RefineFactor)
		if ref == nil {
			ref = res.Counts()
			continue
		}
		assert.Equal(t, ref, res.Counts(), "refine factor %d", r)
	}
}

func TestRefineFactorPolicy(t *testing.T) {
	assert.Equal(t, 2, RefineFactor(1))
	assert.Equal(t, 2, RefineFactor(0))
	assert.Equal(t, 1, RefineFactor(2))
	assert.Equal(t, 1, RefineFactor(64))

	p := Points[float64]{X: []float64{0.5}, Y: []float64{0.5}, Z: []float64{0.5}}
	one, err := CountPairs(p, p, true, unitBox, 0.25, []float64{0, 0.25}, quiet()...)
	require.NoError(t, err)
	assert.Equal(t, 2, one.Stats.RefineFactor)
	assert.Equal(t, [3]int{8, 8, 8}, one.Stats.Dims)

	four, err := CountPairs(p, p, true, unitBox, 0.25, []float64{0, 0.25}, quiet(WithWorkers(4))...)
	require.NoError(t, err)
	assert.Equal(t, 1, four.Stats.RefineFactor)
	assert.Equal(t, [3]int{4, 4, 4}, four.Stats.Dims)
}

func TestGridPointsOnEdges(t *testing.T) {
	g := testutil.Grid(4, 0.25)
	edges := []float64{0, 0.25, 0.5, 0.75}

	res, err := CountPairs(points(g), Points[float64]{}, true, unitBox, 0.75, edges, quiet(WithWorkers(3))...)
	require.NoError(t, err)

	want, _ := testutil.BruteForce(g, g, edges)
	assert.Equal(t, want[1:], res.Counts())
	// Only the 64 self pairs are closer than 0.25.
	assert.Equal(t, uint64(64), res.Counts()[0])
}

func TestFloat32(t *testing.T) {
	rng := testutil.NewRNG(7)
	a := testutil.Convert[float32](rng.Uniform(500, -5, 5))
	box := Box{XMin: -5, XMax: 5, YMin: -5, YMax: 5, ZMin: -5, ZMax: 5}
	edges := testutil.LogEdges(0.1, 2, 8)

	res, err := CountPairs(points(a), Points[float32]{}, true, box, 2, edges, quiet(WithWorkers(2))...)
	require.NoError(t, err)

	want, _ := testutil.BruteForce(a, a, edges)
	assert.Equal(t, want[1:], res.Counts())
}

func TestDegenerate(t *testing.T) {
	rng := testutil.NewRNG(8)
	a := points(rng.Uniform(50, 0, 1))

	t.Run("No edges", func(t *testing.T) {
		var buf bytes.Buffer
		res, err := CountPairs(a, a, true, unitBox, 1, nil, WithOutput(&buf))
		require.NoError(t, err)
		assert.Empty(t, res.Bins)
		assert.Empty(t, res.Counts())
		assert.Zero(t, buf.Len())
	})

	t.Run("Single edge", func(t *testing.T) {
		res, err := CountPairs(a, a, true, unitBox, 1, []float64{0.5}, quiet()...)
		require.NoError(t, err)
		assert.Empty(t, res.Bins)
	})

	t.Run("Empty first set", func(t *testing.T) {
		res, err := CountPairs(Points[float64]{}, a, false, unitBox, 1, []float64{0, 0.5, 1}, quiet()...)
		require.NoError(t, err)
		assert.Equal(t, []uint64{0, 0}, res.Counts())
		assert.Equal(t, 0.5, res.Bins[1].Lower)
	})

	t.Run("Empty second set", func(t *testing.T) {
		res, err := CountPairs(a, Points[float64]{}, false, unitBox, 1, []float64{0, 0.5, 1}, quiet()...)
		require.NoError(t, err)
		assert.Equal(t, []uint64{0, 0}, res.Counts())
	})

	t.Run("Empty autocorrelation", func(t *testing.T) {
		res, err := CountPairs(Points[float64]{}, Points[float64]{}, true, unitBox, 1, []float64{0, 1}, quiet()...)
		require.NoError(t, err)
		assert.Equal(t, []uint64{0}, res.Counts())
	})
}

func TestErrors(t *testing.T) {
	good := Points[float64]{X: []float64{0.1}, Y: []float64{0.2}, Z: []float64{0.3}}
	bad := Points[float64]{X: []float64{0.1, 0.2}, Y: []float64{0.2}, Z: []float64{0.3}}
	edges := []float64{0, 0.5}

	tests := []struct {
		name string
		call func() error
		want error
	}{
		{"Bad first set", func() error {
			_, err := CountPairs(bad, good, false, unitBox, 1, edges, quiet()...)
			return err
		}, ErrInvalidPoints},
		{"Bad second set", func() error {
			_, err := CountPairs(good, bad, false, unitBox, 1, edges, quiet()...)
			return err
		}, ErrInvalidPoints},
		{"Zero radius", func() error {
			_, err := CountPairs(good, good, true, unitBox, 0, edges, quiet()...)
			return err
		}, ErrInvalidRadius},
		{"NaN radius", func() error {
			_, err := CountPairs(good, good, true, unitBox, math.NaN(), edges, quiet()...)
			return err
		}, ErrInvalidRadius},
		{"Negative workers", func() error {
			_, err := CountPairs(good, good, true, unitBox, 1, edges, quiet(WithWorkers(-1))...)
			return err
		}, ErrInvalidWorkers},
		{"Negative refine", func() error {
			_, err := CountPairs(good, good, true, unitBox, 1, edges, quiet(WithRefineFactor(-2))...)
			return err
		}, ErrInvalidRefineFactor},
		{"Unknown kernel", func() error {
			_, err := CountPairs(good, good, true, unitBox, 1, edges, quiet(WithKernel(Kernel(99)))...)
			return err
		}, ErrUnknownKernel},
		{"Memory limit", func() error {
			_, err := CountPairs(good, good, true, unitBox, 0.01, edges, quiet(WithMemoryLimit(1024))...)
			return err
		}, ErrMemoryLimitExceeded},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, tc.call(), tc.want)
		})
	}
}

func TestBadPointsIgnoredInAutocorrelation(t *testing.T) {
	good := Points[float64]{X: []float64{0.1}, Y: []float64{0.2}, Z: []float64{0.3}}
	bad := Points[float64]{X: []float64{0.1, 0.2}}

	res, err := CountPairs(good, bad, true, unitBox, 1, []float64{0, 1}, quiet()...)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1}, res.Counts())
}

func TestMemoryIsReleased(t *testing.T) {
	rng := testutil.NewRNG(9)
	a := points(rng.Uniform(1000, 0, 1))
	b := points(rng.Uniform(1000, 0, 1))
	edges := []float64{0, 0.05, 0.1}

	res, err := CountPairs(a, b, false, unitBox, 0.1, edges, quiet(WithWorkers(4), WithMeanSeparation(true))...)
	require.NoError(t, err)
	// Two lattices of 1000 float64 points plus the arena.
	assert.Greater(t, res.Stats.PeakMemory, int64(2*3*1000*8))

	auto, err := CountPairs(a, a, true, unitBox, 0.1, edges, quiet(WithWorkers(4), WithMeanSeparation(true))...)
	require.NoError(t, err)
	assert.Less(t, auto.Stats.PeakMemory, res.Stats.PeakMemory, "autocorrelation builds a single lattice")

	// A limit that fits one lattice but not two.
	limit := auto.Stats.PeakMemory
	_, err = CountPairs(a, a, true, unitBox, 0.1, edges, quiet(WithWorkers(4), WithMeanSeparation(true), WithMemoryLimit(limit))...)
	require.NoError(t, err)
	_, err = CountPairs(a, b, false, unitBox, 0.1, edges, quiet(WithWorkers(4), WithMeanSeparation(true), WithMemoryLimit(limit))...)
	assert.ErrorIs(t, err, ErrMemoryLimitExceeded)
}

func TestStats(t *testing.T) {
	rng := testutil.NewRNG(10)
	a := points(rng.Uniform(300, 0, 1))
	b := points(rng.Uniform(200, 0, 1))

	res, err := CountPairs(a, b, false, unitBox, 0.25, []float64{0, 0.1, 0.25}, quiet(WithWorkers(2), WithKernel(KernelScalar))...)
	require.NoError(t, err)

	s := res.Stats
	assert.Equal(t, 300, s.Points1)
	assert.Equal(t, 200, s.Points2)
	assert.Equal(t, [3]int{4, 4, 4}, s.Dims)
	assert.Equal(t, 64, s.Cells)
	assert.LessOrEqual(t, s.OccupiedCells, 64)
	assert.Positive(t, s.CellPairs)
	assert.Equal(t, 2, s.Workers)
	assert.Equal(t, 1, s.RefineFactor)
	assert.Equal(t, "scalar", s.Kernel)
	assert.Equal(t, res.Total(), s.Pairs)
	assert.Positive(t, s.Duration)
}

func TestOutput(t *testing.T) {
	p := Points[float64]{X: []float64{0, 0.5}, Y: []float64{0, 0}, Z: []float64{0, 0}}

	var buf bytes.Buffer
	_, err := CountPairs(p, p, true, unitBox, 1, []float64{0, 0.25, 1}, WithOutput(&buf), WithMeanSeparation(true))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, fmt.Sprintf("%10d %20.8f %20.8f %20.8f ", 2, 0.0, 0.0, 0.25), lines[0])
	assert.Equal(t, fmt.Sprintf("%10d %20.8f %20.8f %20.8f ", 2, 0.5, 0.25, 1.0), lines[1])
}

func TestMetricsAndLogging(t *testing.T) {
	var logs bytes.Buffer
	logger := NewLogger(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	mc := &BasicMetricsCollector{}

	p := Points[float64]{X: []float64{0.1, 0.2}, Y: []float64{0.1, 0.2}, Z: []float64{0.1, 0.2}}
	_, err := CountPairs(p, p, true, unitBox, 0.5, []float64{0, 0.5}, quiet(WithLogger(logger), WithMetricsCollector(mc))...)
	require.NoError(t, err)
	_, err = CountPairs(p, p, true, unitBox, -1, []float64{0, 0.5}, quiet(WithLogger(logger), WithMetricsCollector(mc))...)
	require.Error(t, err)

	stats := mc.GetStats()
	assert.Equal(t, int64(2), stats.CountCalls)
	assert.Equal(t, int64(1), stats.CountErrors)
	assert.Equal(t, uint64(4), stats.PairsCounted)
	assert.Positive(t, stats.CellPairs)

	out := logs.String()
	assert.Contains(t, out, `"msg":"lattice built"`)
	assert.Contains(t, out, `"msg":"pair count completed"`)
	assert.Contains(t, out, `"msg":"pair count failed"`)
	assert.Contains(t, out, `"msg":"counting"`)
}

func TestNilOptions(t *testing.T) {
	p := Points[float64]{X: []float64{0.1}, Y: []float64{0.1}, Z: []float64{0.1}}

	res, err := CountPairs(p, p, true, unitBox, 0.5, []float64{0, 0.5}, nil, WithOutput(nil), WithLogger(nil), WithMetricsCollector(nil))
	require.NoError(t, err)
	assert.Equal(t, []uint64{1}, res.Counts())
}

func TestAutoKernelIsBlocked(t *testing.T) {
	p := Points[float64]{X: []float64{0.1}, Y: []float64{0.1}, Z: []float64{0.1}}

	res, err := CountPairs(p, p, true, unitBox, 0.5, []float64{0, 0.5}, quiet()...)
	require.NoError(t, err)
	assert.Equal(t, "blocked", res.Stats.Kernel)
}

func TestRadiusBelowLastEdgeWarns(t *testing.T) {
	rng := testutil.NewRNG(13)
	a := points(rng.Uniform(200, 0, 1))
	edges := []float64{0, 0.1, 0.5}

	var logs bytes.Buffer
	logger := NewLogger(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelWarn}))

	_, err := CountPairs(a, a, true, unitBox, 0.1, edges, quiet(WithLogger(logger))...)
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "level=WARN")
	assert.Contains(t, logs.String(), "rmax=0.1")
	assert.Contains(t, logs.String(), "last_edge=0.5")

	logs.Reset()
	_, err = CountPairs(a, a, true, unitBox, 0.5, edges, quiet(WithLogger(logger))...)
	require.NoError(t, err)
	assert.Empty(t, logs.String())
}

func TestOutputErrorIsRecorded(t *testing.T) {
	p := Points[float64]{X: []float64{0.1}, Y: []float64{0.1}, Z: []float64{0.1}}
	mc := &BasicMetricsCollector{}

	var logs bytes.Buffer
	logger := NewLogger(slog.NewTextHandler(&logs, nil))

	res, err := CountPairs(p, p, true, unitBox, 0.5, []float64{0, 0.5},
		WithOutput(failingWriter{}), WithMetricsCollector(mc), WithLogger(logger))
	require.ErrorContains(t, err, "write bin table: disk full")
	assert.Nil(t, res)

	stats := mc.GetStats()
	assert.Equal(t, int64(1), stats.CountCalls)
	assert.Equal(t, int64(1), stats.CountErrors)
	assert.Zero(t, stats.PairsCounted)
	assert.Contains(t, logs.String(), "pair count failed")
	assert.NotContains(t, logs.String(), "pair count completed")
}
