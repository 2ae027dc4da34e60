package lattice

import (
	"errors"
	"fmt"
	"math"
	"unsafe"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/paircount/internal/num"
	"github.com/hupe1980/paircount/internal/resource"
)

const (
	// DefaultMaxCellsPerAxis caps the lattice resolution on each axis.
	DefaultMaxCellsPerAxis = 100

	// MaxCellsPerAxisLimit bounds Config.MaxCellsPerAxis so that flat cell
	// indexes fit in 31 bits.
	MaxCellsPerAxisLimit = 1024
)

var (
	// ErrGridMismatch is returned when two lattices that must be congruent
	// have different dimensions.
	ErrGridMismatch = errors.New("lattice dimensions differ")

	// ErrInvalidRadius is returned for a non-positive or NaN search radius.
	ErrInvalidRadius = errors.New("search radius must be positive")

	// ErrInvalidRefine is returned for a refinement factor below 1.
	ErrInvalidRefine = errors.New("refinement factor must be at least 1")
)

// Box is the axis-aligned domain the lattice spans.
type Box struct {
	XMin, XMax float64
	YMin, YMax float64
	ZMin, ZMax float64
}

// Cell holds the coordinates of the points that fall in one lattice cell.
type Cell[T num.Float] struct {
	X, Y, Z []T
}

// Len returns the number of points in the cell.
func (c Cell[T]) Len() int {
	return len(c.X)
}

// Config controls lattice construction.
type Config struct {
	Box Box

	// RMax is the maximum search radius.
	RMax float64

	// Refine is the refinement factor per axis (x, y, z).
	Refine [3]int

	// MaxCellsPerAxis caps each dimension. Zero means DefaultMaxCellsPerAxis.
	MaxCellsPerAxis int

	// Controller receives the storage reservation. May be nil.
	Controller *resource.Controller
}

// Lattice is a point set partitioned into cells.
type Lattice[T num.Float] struct {
	nx, ny, nz int
	cells      []Cell[T]
	occupied   *roaring.Bitmap
	npoints    int

	ctrl     *resource.Controller
	reserved int64
	released bool
}

// Build partitions the points (x[i], y[i], z[i]) into a lattice.
//
// x, y and z must have the same length. Points outside the box are
// clamped into the edge cells.
func Build[T num.Float](x, y, z []T, cfg Config) (*Lattice[T], error) {
	if len(x) != len(y) || len(x) != len(z) {
		return nil, fmt.Errorf("lattice: coordinate lengths differ (%d, %d, %d)", len(x), len(y), len(z))
	}
	if math.IsNaN(cfg.RMax) || cfg.RMax <= 0 {
		return nil, fmt.Errorf("lattice: %w: %v", ErrInvalidRadius, cfg.RMax)
	}
	for _, r := range cfg.Refine {
		if r < 1 {
			return nil, fmt.Errorf("lattice: %w: %v", ErrInvalidRefine, cfg.Refine)
		}
	}

	maxCells := cfg.MaxCellsPerAxis
	if maxCells <= 0 {
		maxCells = DefaultMaxCellsPerAxis
	}
	maxCells = min(maxCells, MaxCellsPerAxisLimit)

	b := cfg.Box
	nx := cellsPerAxis(b.XMax-b.XMin, cfg.RMax, cfg.Refine[0], maxCells)
	ny := cellsPerAxis(b.YMax-b.YMin, cfg.RMax, cfg.Refine[1], maxCells)
	nz := cellsPerAxis(b.ZMax-b.ZMin, cfg.RMax, cfg.Refine[2], maxCells)
	total := nx * ny * nz

	n := len(x)
	reserved := storageBytes[T](n, total)
	if err := cfg.Controller.AcquireMemory(reserved); err != nil {
		return nil, fmt.Errorf("lattice: reserve %d bytes for %d points in %d cells: %w", reserved, n, total, err)
	}

	l := &Lattice[T]{
		nx:       nx,
		ny:       ny,
		nz:       nz,
		cells:    make([]Cell[T], total),
		occupied: roaring.New(),
		npoints:  n,
		ctrl:     cfg.Controller,
		reserved: reserved,
	}

	xs := axisScale(b.XMin, b.XMax, nx)
	ys := axisScale(b.YMin, b.YMax, ny)
	zs := axisScale(b.ZMin, b.ZMax, nz)

	// Counting sort by cell: one pass to size the cells, one to fill them.
	owner := make([]int32, n)
	counts := make([]int, total)
	for i := range n {
		icell := l.Index(xs.cell(float64(x[i])), ys.cell(float64(y[i])), zs.cell(float64(z[i])))
		owner[i] = int32(icell)
		counts[icell]++
	}

	bx := make([]T, n)
	by := make([]T, n)
	bz := make([]T, n)
	offset := 0
	for icell, c := range counts {
		if c == 0 {
			continue
		}
		l.cells[icell] = Cell[T]{
			X: bx[offset : offset : offset+c],
			Y: by[offset : offset : offset+c],
			Z: bz[offset : offset : offset+c],
		}
		l.occupied.Add(uint32(icell))
		offset += c
	}
	for i, icell := range owner {
		c := &l.cells[icell]
		c.X = append(c.X, x[i])
		c.Y = append(c.Y, y[i])
		c.Z = append(c.Z, z[i])
	}

	return l, nil
}

func cellsPerAxis(extent, rmax float64, refine, maxCells int) int {
	// Compare in float64 first: the quotient can exceed the int range.
	f := float64(refine) * extent / rmax
	switch {
	case f >= float64(maxCells):
		return maxCells
	case !(f >= 1):
		return 1
	}
	return int(f)
}

func storageBytes[T num.Float](points, cells int) int64 {
	var zero T
	var cell Cell[T]
	return 3*int64(points)*int64(unsafe.Sizeof(zero)) + int64(cells)*int64(unsafe.Sizeof(cell))
}

type scale struct {
	min, inv float64
	n        int
}

func axisScale(lo, hi float64, n int) scale {
	s := scale{min: lo, n: n}
	if hi > lo {
		s.inv = float64(n) / (hi - lo)
	}
	return s
}

func (s scale) cell(v float64) int {
	i := int((v - s.min) * s.inv)
	if i >= s.n {
		i = s.n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

// Dims returns (nx, ny, nz).
func (l *Lattice[T]) Dims() [3]int {
	return [3]int{l.nx, l.ny, l.nz}
}

// NumCells returns nx*ny*nz.
func (l *Lattice[T]) NumCells() int {
	return l.nx * l.ny * l.nz
}

// NumPoints returns the number of points partitioned.
func (l *Lattice[T]) NumPoints() int {
	return l.npoints
}

// Cell returns the cell at flat index icell.
func (l *Lattice[T]) Cell(icell int) Cell[T] {
	return l.cells[icell]
}

// Occupied returns the flat indexes of the non-empty cells in ascending
// order.
func (l *Lattice[T]) Occupied() []uint32 {
	return l.occupied.ToArray()
}

// NumOccupied returns the number of non-empty cells.
func (l *Lattice[T]) NumOccupied() int {
	return int(l.occupied.GetCardinality())
}

// IsOccupied reports whether cell icell holds any point.
func (l *Lattice[T]) IsOccupied(icell int) bool {
	return l.occupied.Contains(uint32(icell))
}

// Reserved returns the number of bytes reserved for this lattice.
func (l *Lattice[T]) Reserved() int64 {
	return l.reserved
}

// Released reports whether Release has run.
func (l *Lattice[T]) Released() bool {
	return l.released
}

// Release drops the cell storage and returns its reservation. Calls after
// the first are no-ops.
func (l *Lattice[T]) Release() {
	if l == nil || l.released {
		return
	}
	l.released = true
	l.cells = nil
	l.occupied.Clear()
	l.ctrl.ReleaseMemory(l.reserved)
}

// CheckCongruent returns an error wrapping ErrGridMismatch if a and b do
// not have identical dimensions.
func CheckCongruent[T num.Float](a, b *Lattice[T]) error {
	if a.Dims() != b.Dims() {
		return &MismatchError{First: a.Dims(), Second: b.Dims()}
	}
	return nil
}

// MismatchError describes two lattices with different dimensions.
type MismatchError struct {
	First, Second [3]int
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("lattice dimensions differ: %v vs %v", e.First, e.Second)
}

func (e *MismatchError) Unwrap() error { return ErrGridMismatch }
