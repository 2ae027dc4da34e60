// Package kernel implements the distance-and-bin kernel: for two lattice
// cells it computes the squared separation of every point pair and tallies
// the pairs that fall inside the bin table.
//
// # Variants
//
//   - Scalar: plain nested loop with a descending bin scan per pair.
//   - Blocked: the inner loop runs over tiles of BlockSize points, computing
//     a tile of separations before binning it.
//   - Vector: the inner loop runs over groups of LaneWidth points. Each
//     group builds a lane mask of in-range separations and resolves the
//     bins for all lanes at once, popcounting the lanes that match each
//     bin. Leftover points go through the scalar path.
//
// All variants compute separations through num.Dist2 and produce identical
// counts for identical input. Sums of separations may differ in the last
// bits because lanes are summed in a different order.
//
// Func adapts a SliceFunc, a kernel over plain coordinate slices, so that
// kernels compiled outside Go can be plugged in behind the same interface.
//
// # Selection
//
// KindAuto resolves to Blocked. The detected ISA fixes Vector's lane width:
// the vector register size divided by the size of the working precision.
// Set PAIRCOUNT_SIMD to one of generic, neon, avx2 or avx512 to override
// detection.
package kernel
