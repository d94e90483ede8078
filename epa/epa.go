// Package epa implements the Expanding Polytope Algorithm for computing penetration depth.
//
// EPA runs after the deep phase of GJK has produced a simplex enclosing the
// origin of the Minkowski difference A - B. It grows a polytope from that
// simplex toward the boundary of the difference, always expanding the facet
// closest to the origin, until that facet is (within tolerance) on the
// boundary. The closest point of that facet gives:
//   - the penetration depth (its distance to the origin)
//   - the contact normal (its direction)
//   - the contact points on each shape (its barycentric interpolation of the support points)
//
// The polytope is kept as a closed triangle mesh with explicit adjacency, in
// fixed-size buffers recycled through a sync.Pool. Degenerate simplices
// (segment, triangle) are first blown up into an octahedron or a hexahedron.
//
// References:
//   - Van den Bergen: "Proximity Queries and Penetration Depth Computation on 3D Game Objects" (2001)
//   - Van den Bergen: "Collision Detection in Interactive 3D Environments" (2003), section 4.3.8
package epa

import (
	"container/heap"
	"math"

	"github.com/akmonengine/proximity/gjk"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

const (
	// MaxFacets is the size of the facet arena. When it is full, the
	// expansion stops and returns the best facet found so far.
	MaxFacets = 64

	// MaxSupportPoints bounds the number of polytope vertices.
	MaxSupportPoints = 64

	// DefaultConvergenceTolerance is the relative gap between the closest
	// facet distance and the upper bound under which EPA stops.
	// Lower values = more precision but more support points.
	DefaultConvergenceTolerance = 0.001

	// minFacetDistanceSquared: a closest facet this near the origin means the
	// shapes only touch.
	minFacetDistanceSquared = 1e-12

	degenerateLengthSquared = 1e-24
)

var (
	// ErrTouching is returned when the shapes touch without measurable
	// penetration: the simplex is a single point, or the closest facet
	// passes through the origin.
	ErrTouching = errors.New("epa: shapes are touching")

	// ErrDegenerateSeed is returned when no initial polytope enclosing the
	// origin could be built from the simplex.
	ErrDegenerateSeed = errors.New("epa: degenerate initial polytope")

	// ErrEmptySilhouette is returned when a support point sees no facet
	// boundary, which only happens on numerically broken polytopes.
	ErrEmptySilhouette = errors.New("epa: empty silhouette")
)

// Contact is the outcome of a successful EPA query.
type Contact struct {
	// ClosestA and ClosestB are the deepest points of A inside B and of B
	// inside A. ClosestA - ClosestB is the penetration vector.
	ClosestA mgl64.Vec3
	ClosestB mgl64.Vec3
	// Iterations is the number of support points added after the seed.
	Iterations int
	// Facets is the number of facets allocated.
	Facets int
	// Exhausted is true when the expansion stopped because the facet arena
	// or the support point buffer was full, rather than on convergence.
	Exhausted bool
}

// PenetrationVector returns ClosestA - ClosestB.
func (c Contact) PenetrationVector() mgl64.Vec3 {
	return c.ClosestA.Sub(c.ClosestB)
}

// Depth returns the length of the penetration vector.
func (c Contact) Depth() float64 {
	return c.PenetrationVector().Len()
}

// PenetrationDepth computes the penetration of two overlapping convex shapes.
//
// Algorithm overview:
//  1. Build the initial polytope from the simplex: tetrahedron as is,
//     triangle and segment expanded with extra support points
//  2. Pop the facet closest to the origin from the heap
//  3. Sample the support point w along its closest point and tighten the
//     upper bound of the penetration depth with it
//  4. If the facet distance is within tolerance of the upper bound, it is
//     on the boundary: done
//  5. Otherwise remove every facet visible from w and close the hole with
//     a fan of new facets from the silhouette edges to w
//  6. Repeat from 2 while the heap holds facets under the upper bound
//
// tolerance is relative (see DefaultConvergenceTolerance). The simplex must
// enclose the origin, as left by gjk.RecalculateSimplex.
//
// Returns ErrTouching, ErrDegenerateSeed or ErrEmptySilhouette on failure.
// Running out of facets or vertices is not an error: the best facet so far
// is returned with Exhausted set.
func PenetrationDepth(a, b gjk.Convex, simplex *gjk.Simplex, tolerance float64) (Contact, error) {
	p := polytopePool.Get().(*Polytope)
	defer polytopePool.Put(p)
	p.Reset()

	for i := 0; i < simplex.Count; i++ {
		p.setVertex(i, simplex.A[i], simplex.B[i])
	}

	switch simplex.Count {
	case 1:
		return Contact{}, ErrTouching
	case 2:
		if !p.expandSegment(a, b) {
			return Contact{}, errors.Wrap(ErrDegenerateSeed, "segment")
		}
	case 3:
		if !p.expandTriangle(a, b) {
			return Contact{}, errors.Wrap(ErrDegenerateSeed, "triangle")
		}
	case 4:
		if !p.seedTetrahedron() {
			return Contact{}, errors.Wrap(ErrDegenerateSeed, "tetrahedron")
		}
	default:
		return Contact{}, errors.Errorf("epa: invalid simplex size %d", simplex.Count)
	}

	upper2 := math.MaxFloat64
	seedVerts := p.numVerts
	var closest FacetIndex

	result := func(exhausted bool) Contact {
		f := &p.facets[closest]
		return Contact{
			ClosestA:   f.ClosestA,
			ClosestB:   f.ClosestB,
			Iterations: p.numVerts - seedVerts,
			Facets:     p.numFacets,
			Exhausted:  exhausted,
		}
	}

	for {
		index := heap.Pop(&p.heap).(FacetIndex)

		if f := &p.facets[index]; !f.Obsolete {
			closest = index

			if f.SquaredDistance < minFacetDistanceSquared {
				return result(false), ErrTouching
			}
			if p.numVerts == MaxSupportPoints {
				return result(true), nil
			}

			supportA := a.Support(f.Closest)
			supportB := b.Support(f.Closest.Mul(-1))
			w := p.numVerts
			p.setVertex(w, supportA, supportB)
			p.numVerts++

			dist := p.qBuf[w].Dot(f.Closest)
			upper2 = math.Min(upper2, dist*dist/f.SquaredDistance)

			// Converged: the facet is within tolerance of the boundary
			if f.SquaredDistance >= upper2*(1-tolerance) {
				break
			}

			if !p.silhouette(index, p.qBuf[w]) || p.numEdges == 0 {
				return result(false), ErrEmptySilhouette
			}

			// Close the hole with a fan of facets around w. A failed facet
			// leaves the polytope open: stop on the popped facet, flagged
			// only when the arena ran out.
			first := p.AddFacet(p.target(p.edges[0]), p.source(p.edges[0]), w, f.SquaredDistance, upper2)
			if first == NoFacet {
				return result(p.full()), nil
			}
			p.Link(first, 0, p.edges[0].Facet, p.edges[0].Index)

			last := first
			for i := 1; i < p.numEdges; i++ {
				edge := p.edges[i]
				next := p.AddFacet(p.target(edge), p.source(edge), w, f.SquaredDistance, upper2)
				if next == NoFacet {
					return result(p.full()), nil
				}
				if !p.Link(next, 0, edge.Facet, edge.Index) || !p.Link(next, 2, last, 1) {
					return result(false), nil
				}
				last = next
			}
			p.Link(first, 2, last, 1)
		}

		if p.heap.Len() == 0 || upper2 < p.heap.top().SquaredDistance {
			break
		}
	}

	return result(false), nil
}
