package epa

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// FacetIndex addresses a facet in the polytope arena.
type FacetIndex int

// NoFacet is returned when a facet could not be allocated.
const NoFacet FacetIndex = -1

const (
	// facetDegenerateRatio: triangles whose Gram determinant falls under this
	// fraction of |v1|²|v2|² are treated as flat.
	facetDegenerateRatio = 1e-12

	// facetInsideTolerance accepts closest points a hair outside the
	// triangle, so that an origin projecting exactly on a shared edge keeps
	// at least one of the two facets.
	facetInsideTolerance = 1e-9

	facetVisibleTolerance = 1e-9
)

// Facet is a triangle of the polytope over three support points.
//
// A facet caches the point of its plane closest to the origin, expressed
// both in Minkowski space (Closest) and on each shape (ClosestA, ClosestB).
// Adjacent[e] is the facet across edge e, and AdjacentEdge[e] the index of
// that same edge in the neighbor. Edge e runs from Indices[e] to Indices[e+1 mod 3].
type Facet struct {
	Indices         [3]int
	Closest         mgl64.Vec3
	ClosestA        mgl64.Vec3
	ClosestB        mgl64.Vec3
	SquaredDistance float64
	// Obsolete facets have been removed from the polytope surface. They stay
	// in the arena, and possibly in the heap, until the query ends.
	Obsolete     bool
	Adjacent     [3]FacetIndex
	AdjacentEdge [3]int
}

func incMod3(i int) int {
	return (i + 1) % 3
}

// computeClosest fills the closest point of the facet's plane to the origin.
//
// Returns ok=false for a degenerate (flat) triangle, and inside=true when
// the closest point lies within the triangle.
func (f *Facet) computeClosest(aBuf, bBuf, qBuf []mgl64.Vec3) (ok, inside bool) {
	i0, i1, i2 := f.Indices[0], f.Indices[1], f.Indices[2]
	q0 := qBuf[i0]
	v1 := qBuf[i1].Sub(q0)
	v2 := qBuf[i2].Sub(q0)

	v1v1 := v1.Dot(v1)
	v1v2 := v1.Dot(v2)
	v2v2 := v2.Dot(v2)
	q0v1 := q0.Dot(v1)
	q0v2 := q0.Dot(v2)

	det := v1v1*v2v2 - v1v2*v1v2
	if v1v1 == 0 || v2v2 == 0 || det <= facetDegenerateRatio*v1v1*v2v2 {
		return false, false
	}

	lambda1 := (q0v2*v1v2 - v2v2*q0v1) / det
	lambda2 := (v1v2*q0v1 - v1v1*q0v2) / det

	f.Closest = q0.Add(v1.Mul(lambda1)).Add(v2.Mul(lambda2))
	f.ClosestA = aBuf[i0].Add(aBuf[i1].Sub(aBuf[i0]).Mul(lambda1)).Add(aBuf[i2].Sub(aBuf[i0]).Mul(lambda2))
	f.ClosestB = bBuf[i0].Add(bBuf[i1].Sub(bBuf[i0]).Mul(lambda1)).Add(bBuf[i2].Sub(bBuf[i0]).Mul(lambda2))
	f.SquaredDistance = f.Closest.Dot(f.Closest)

	inside = lambda1 >= -facetInsideTolerance &&
		lambda2 >= -facetInsideTolerance &&
		lambda1+lambda2 <= 1+facetInsideTolerance
	return true, inside
}

// isVisibleFrom reports whether w lies strictly in front of the facet plane,
// by more than facetVisibleTolerance relative to |Closest|*|w|. A point on
// the plane, such as a vertex already shared with the facet, is not visible.
func (f *Facet) isVisibleFrom(w mgl64.Vec3) bool {
	return f.Closest.Dot(w)-f.SquaredDistance > facetVisibleTolerance*math.Sqrt(f.SquaredDistance*w.Dot(w))
}

// Edge is edge Index of facet Facet.
type Edge struct {
	Facet FacetIndex
	Index int
}
