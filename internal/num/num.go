// Package num holds the floating-point constraint and the squared-distance
// primitive shared by the lattice, bin table and kernels.
package num

// Float is the set of coordinate precisions the engine runs in.
type Float interface {
	~float32 | ~float64
}

// Dist2 returns the squared Euclidean distance between (x1,y1,z1) and
// (x2,y2,z2).
//
// Every kernel variant goes through Dist2 so that they all round the same
// way. The explicit conversions stop the compiler from fusing the products
// into FMA instructions on architectures that have them.
func Dist2[T Float](x1, y1, z1, x2, y2, z2 T) T {
	dx := x1 - x2
	dy := y1 - y2
	dz := z1 - z2
	return T(dx*dx) + T(dy*dy) + T(dz*dz)
}
