package testutil

import (
	"math"
	"math/rand"
	"sync"

	"github.com/hupe1980/paircount/internal/num"
)

// Points is a point set as three coordinate slices.
type Points[T num.Float] struct {
	X, Y, Z []T
}

// Len returns the number of points.
func (p Points[T]) Len() int {
	return len(p.X)
}

// Convert returns p in precision U.
func Convert[U, T num.Float](p Points[T]) Points[U] {
	out := Points[U]{
		X: make([]U, len(p.X)),
		Y: make([]U, len(p.Y)),
		Z: make([]U, len(p.Z)),
	}
	for i := range p.X {
		out.X[i] = U(p.X[i])
		out.Y[i] = U(p.Y[i])
		out.Z[i] = U(p.Z[i])
	}
	return out
}

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Uniform returns n points uniform in [lo, hi) on every axis.
func (r *RNG) Uniform(n int, lo, hi float64) Points[float64] {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := Points[float64]{
		X: make([]float64, n),
		Y: make([]float64, n),
		Z: make([]float64, n),
	}
	span := hi - lo
	for i := range n {
		p.X[i] = lo + r.rand.Float64()*span
		p.Y[i] = lo + r.rand.Float64()*span
		p.Z[i] = lo + r.rand.Float64()*span
	}
	return p
}

// Clustered returns n points drawn around the given number of random
// centres with Gaussian spread, clamped to [lo, hi). Cell occupancy is very
// uneven, which is what the dynamic scheduler is for.
func (r *RNG) Clustered(n, clusters int, spread, lo, hi float64) Points[float64] {
	r.mu.Lock()
	defer r.mu.Unlock()

	if clusters < 1 {
		clusters = 1
	}
	span := hi - lo
	centres := make([][3]float64, clusters)
	for c := range centres {
		for d := range 3 {
			centres[c][d] = lo + r.rand.Float64()*span
		}
	}

	clamp := func(v float64) float64 {
		return math.Min(math.Max(v, lo), math.Nextafter(hi, lo))
	}

	p := Points[float64]{
		X: make([]float64, n),
		Y: make([]float64, n),
		Z: make([]float64, n),
	}
	for i := range n {
		c := centres[r.rand.Intn(clusters)]
		p.X[i] = clamp(c[0] + r.rand.NormFloat64()*spread)
		p.Y[i] = clamp(c[1] + r.rand.NormFloat64()*spread)
		p.Z[i] = clamp(c[2] + r.rand.NormFloat64()*spread)
	}
	return p
}

// Grid returns the points of a regular n*n*n grid with the given spacing,
// starting at the origin. Separations are exact multiples of spacing, which
// puts many pairs exactly on bin edges.
func Grid(n int, spacing float64) Points[float64] {
	p := Points[float64]{
		X: make([]float64, 0, n*n*n),
		Y: make([]float64, 0, n*n*n),
		Z: make([]float64, 0, n*n*n),
	}
	for i := range n {
		for j := range n {
			for k := range n {
				p.X = append(p.X, float64(i)*spacing)
				p.Y = append(p.Y, float64(j)*spacing)
				p.Z = append(p.Z, float64(k)*spacing)
			}
		}
	}
	return p
}

// BruteForce counts every ordered pair (i in a, j in b) by exhaustive
// comparison. counts and sums have len(edges) entries; index 0 is unused.
// Squared edges are taken in precision T, the same way the engine does.
func BruteForce[T num.Float](a, b Points[T], edges []float64) (counts []uint64, sums []float64) {
	counts = make([]uint64, len(edges))
	sums = make([]float64, len(edges))
	if len(edges) < 2 {
		return counts, sums
	}

	sq := make([]T, len(edges))
	for i, e := range edges {
		sq[i] = T(e * e)
	}

	for i := range a.X {
		for j := range b.X {
			r2 := num.Dist2(a.X[i], a.Y[i], a.Z[i], b.X[j], b.Y[j], b.Z[j])
			for k := 1; k < len(sq); k++ {
				if r2 >= sq[k-1] && r2 < sq[k] {
					counts[k]++
					sums[k] += math.Sqrt(float64(r2))
					break
				}
			}
		}
	}
	return counts, sums
}

// InRange counts the ordered pairs whose squared separation lies in
// [edges[0]^2, edges[last]^2).
func InRange[T num.Float](a, b Points[T], edges []float64) uint64 {
	if len(edges) < 2 {
		return 0
	}
	lo := T(edges[0] * edges[0])
	hi := T(edges[len(edges)-1] * edges[len(edges)-1])

	var n uint64
	for i := range a.X {
		for j := range b.X {
			r2 := num.Dist2(a.X[i], a.Y[i], a.Z[i], b.X[j], b.Y[j], b.Z[j])
			if r2 >= lo && r2 < hi {
				n++
			}
		}
	}
	return n
}

// LogEdges returns n+1 logarithmically spaced edges from lo to hi.
func LogEdges(lo, hi float64, n int) []float64 {
	edges := make([]float64, n+1)
	step := math.Log(hi/lo) / float64(n)
	for i := range edges {
		edges[i] = lo * math.Exp(step*float64(i))
	}
	edges[n] = hi
	return edges
}

// LinearEdges returns n+1 evenly spaced edges from lo to hi.
func LinearEdges(lo, hi float64, n int) []float64 {
	edges := make([]float64, n+1)
	step := (hi - lo) / float64(n)
	for i := range edges {
		edges[i] = lo + step*float64(i)
	}
	edges[n] = hi
	return edges
}
