package grid

import "github.com/cockroachdb/errors"

// Unbounded is the Len of a mesh defined at every index.
const Unbounded = -1

// Mesh maps the indices of a discrete axis to coordinates.
type Mesh interface {
	Coordinate(i int) float64
	// Len returns the number of indices Coordinate accepts, or Unbounded.
	Len() int
}

// UniformMesh places point i at Origin + i*Step.
type UniformMesh struct {
	Origin float64
	Step   float64
}

// Coordinate returns Origin + i*Step.
func (m UniformMesh) Coordinate(i int) float64 {
	return m.Origin + float64(i)*m.Step
}

// Len returns Unbounded.
func (UniformMesh) Len() int { return Unbounded }

// NewUniformMesh returns the mesh of n points spanning [lo, hi] inclusive.
// n must be at least 2.
func NewUniformMesh(lo, hi float64, n int) UniformMesh {
	if n < 2 {
		panic(errors.AssertionFailedf("grid: uniform mesh needs at least 2 points, got %d", n))
	}
	return UniformMesh{Origin: lo, Step: (hi - lo) / float64(n-1)}
}

// PointsMesh is a mesh given by explicit coordinates.
type PointsMesh []float64

// Coordinate returns the i-th point.
func (m PointsMesh) Coordinate(i int) float64 {
	return m[i]
}

// Len returns the number of points.
func (m PointsMesh) Len() int { return len(m) }

// Covers reports whether m accepts every index below n.
func Covers(m Mesh, n int) bool {
	l := m.Len()
	return l == Unbounded || n <= l
}
