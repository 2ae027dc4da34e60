package lattice

import (
	"fmt"
	"iter"
)

// Index returns the flat index of cell (ix, iy, iz).
func (l *Lattice[T]) Index(ix, iy, iz int) int {
	return ix*l.ny*l.nz + iy*l.nz + iz
}

// Coords recovers (ix, iy, iz) from a flat index. It panics if the
// reconstruction does not map back to icell.
func (l *Lattice[T]) Coords(icell int) (ix, iy, iz int) {
	iz = icell % l.nz
	ix = icell / (l.nz * l.ny)
	iy = (icell - iz - ix*l.nz*l.ny) / l.nz
	if l.Index(ix, iy, iz) != icell {
		panic(fmt.Sprintf("lattice: index reconstruction is wrong for cell %d: (%d, %d, %d)", icell, ix, iy, iz))
	}
	return ix, iy, iz
}

// Neighbors yields the flat indexes of every cell within r[axis] cells of
// (ix, iy, iz) on each axis, including the cell itself. Candidates outside
// the lattice are skipped; there is no wraparound.
func (l *Lattice[T]) Neighbors(ix, iy, iz int, r [3]int) iter.Seq[int] {
	return func(yield func(int) bool) {
		for i := max(ix-r[0], 0); i <= min(ix+r[0], l.nx-1); i++ {
			for j := max(iy-r[1], 0); j <= min(iy+r[1], l.ny-1); j++ {
				base := i*l.ny*l.nz + j*l.nz
				for k := max(iz-r[2], 0); k <= min(iz+r[2], l.nz-1); k++ {
					if !yield(base + k) {
						return
					}
				}
			}
		}
	}
}

// AppendNeighbors appends the indexes Neighbors would yield to dst.
func (l *Lattice[T]) AppendNeighbors(dst []int, ix, iy, iz int, r [3]int) []int {
	for idx := range l.Neighbors(ix, iy, iz, r) {
		dst = append(dst, idx)
	}
	return dst
}
