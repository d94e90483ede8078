// Package gjk implements the Gilbert-Johnson-Keerthi (GJK) algorithm for proximity queries.
//
// GJK computes the distance between two convex shapes by searching the point of their
// Minkowski difference closest to the origin. The algorithm builds a simplex incrementally
// from support points, reducing it after every step to the smallest feature (vertex, edge,
// triangle or tetrahedron) that contains the current closest point.
//
// The package offers several iterators built on the same simplex machinery:
//   - GJK: distance and closest points between the full shapes
//   - Margin: distance between the margin-shrunk cores, closest points pushed back out by the margins
//   - SeparatingAxis: coarse boolean overlap test with a separating axis certificate
//   - Penetration: the margin-aware phase of a penetration query, resolving shallow contacts
//   - RecalculateSimplex: the deep phase, producing an origin-enclosing simplex for EPA
//
// References:
//   - Gilbert, Johnson, Keerthi: "A Fast Procedure for Computing the Distance Between
//     Complex Objects in Three-Dimensional Space" (1988)
//   - Van den Bergen: "Collision Detection in Interactive 3D Environments" (2003)
//   - Ericson: "Real-Time Collision Detection" (2005), closest point on triangle
package gjk

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// Simplex represents a set of 1-4 points in the Minkowski difference space.
// Q holds the Minkowski points, A and B the support points of each shape that
// produced them (Q[i] = A[i] - B[i]).
// Size progression: 1 point → 2 points (segment) → 3 points (triangle) → 4 points (tetrahedron)
type Simplex struct {
	Q     [4]mgl64.Vec3
	A     [4]mgl64.Vec3
	B     [4]mgl64.Vec3
	Count int
}

func (s *Simplex) Reset() {
	s.Count = 0
}

// Push appends a support pair. The simplex must hold fewer than 4 points.
func (s *Simplex) Push(a, b mgl64.Vec3) {
	s.A[s.Count] = a
	s.B[s.Count] = b
	s.Q[s.Count] = a.Sub(b)
	s.Count++
}

// set overwrites slot i with slot j of src.
func (s *Simplex) set(i int, src *Simplex, j int) {
	s.Q[i] = src.Q[j]
	s.A[i] = src.A[j]
	s.B[i] = src.B[j]
}

var SimplexPool = sync.Pool{
	New: func() interface{} {
		return &Simplex{}
	},
}

// Closest finds the point of the simplex closest to the origin and reduces
// the simplex in place to the feature containing it.
//
// Returns v, the closest point (v = closestA - closestB), and the matching
// points on shape A and shape B. An empty simplex returns zero vectors.
func (s *Simplex) Closest(tol Tolerances) (v, closestA, closestB mgl64.Vec3) {
	switch s.Count {
	case 1:
		return s.Q[0], s.A[0], s.B[0]
	case 2:
		return closestOnSegment(s)
	case 3:
		return closestOnTriangle(s, tol)
	case 4:
		return closestOnTetrahedron(s, tol)
	}
	return mgl64.Vec3{}, mgl64.Vec3{}, mgl64.Vec3{}
}
