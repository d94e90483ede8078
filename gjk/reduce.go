package gjk

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// segmentDegenerateThreshold is the squared length under which a segment is
// treated as a single point.
const segmentDegenerateThreshold = 1e-30

// closestOnSegment handles the segment simplex (Q0, Q1).
//
// The origin is projected on the segment and the parameter clamped to [0, 1].
// A clamped parameter means a vertex is the closest feature, so the simplex
// drops to that vertex. A zero-length segment keeps its first point.
func closestOnSegment(s *Simplex) (v, closestA, closestB mgl64.Vec3) {
	ab := s.Q[1].Sub(s.Q[0])
	denom := ab.Dot(ab)

	// Handle degenerate case: identical points
	if denom < segmentDegenerateThreshold {
		s.Count = 1
		return s.Q[0], s.A[0], s.B[0]
	}

	t := -s.Q[0].Dot(ab) / denom
	if t <= 0 {
		s.Count = 1
		return s.Q[0], s.A[0], s.B[0]
	}
	if t >= 1 {
		s.set(0, s, 1)
		s.Count = 1
		return s.Q[0], s.A[0], s.B[0]
	}

	return lerpPair(s, 0, 1, t)
}

// lerpPair interpolates the support pair between slots i and j.
func lerpPair(s *Simplex, i, j int, t float64) (v, closestA, closestB mgl64.Vec3) {
	closestA = s.A[i].Add(s.A[j].Sub(s.A[i]).Mul(t))
	closestB = s.B[i].Add(s.B[j].Sub(s.B[i]).Mul(t))
	return closestA.Sub(closestB), closestA, closestB
}

// closestOnTriangle handles the triangle simplex (Q0, Q1, Q2).
//
// The origin is classified in one of the 7 Voronoi regions of the triangle
// (3 vertices, 3 edges, the face) from the dot products d1..d6 and the
// signed areas va, vb, vc. Vertex and edge regions shrink the simplex.
// A nearly flat triangle collapses to a segment.
func closestOnTriangle(s *Simplex, tol Tolerances) (v, closestA, closestB mgl64.Vec3) {
	a, b, c := s.Q[0], s.Q[1], s.Q[2]

	ab := b.Sub(a)
	ac := c.Sub(a)

	// Detect degenerated case from the squared triangle area
	sqAb := ab.Dot(ab)
	sqAc := ac.Dot(ac)
	abac := ab.Dot(ac)
	eps2 := tol.TriangleDegenerateEpsilon * tol.TriangleDegenerateEpsilon
	if sqAb*sqAc-abac*abac < eps2 {
		// a and b are the same point: keep c instead
		if sqAb == 0 {
			s.set(1, s, 2)
		}
		s.Count = 2
		return closestOnSegment(s)
	}

	ap := a.Mul(-1)
	bp := b.Mul(-1)
	cp := c.Mul(-1)

	d1 := ab.Dot(ap)
	d2 := ac.Dot(ap)
	d3 := ab.Dot(bp)
	d4 := ac.Dot(bp)
	d5 := ab.Dot(cp)
	d6 := ac.Dot(cp)

	// Vertex region A
	if d1 <= 0 && d2 <= 0 {
		s.Count = 1
		return s.Q[0], s.A[0], s.B[0]
	}

	// Vertex region B
	if d3 >= 0 && d4 <= d3 {
		s.set(0, s, 1)
		s.Count = 1
		return s.Q[0], s.A[0], s.B[0]
	}

	// Vertex region C
	if d6 >= 0 && d5 <= d6 {
		s.set(0, s, 2)
		s.Count = 1
		return s.Q[0], s.A[0], s.B[0]
	}

	vc := d1*d4 - d3*d2
	vb := d5*d2 - d1*d6
	va := d3*d6 - d5*d4

	// Edge region AB
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		s.Count = 2
		return lerpPair(s, 0, 1, d1/(d1-d3))
	}

	// Edge region BC
	if va <= 0 && d4-d3 >= 0 && d5-d6 >= 0 {
		u := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		s.set(0, s, 1)
		s.set(1, s, 2)
		s.Count = 2
		return lerpPair(s, 0, 1, u)
	}

	// Edge region AC
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		t := d2 / (d2 - d6)
		s.set(1, s, 2)
		s.Count = 2
		return lerpPair(s, 0, 1, t)
	}

	// Face region: barycentric coordinates
	denom := 1.0 / (va + vb + vc)
	t := vb * denom
	w := vc * denom
	closestA = s.A[0].Add(s.A[1].Sub(s.A[0]).Mul(t)).Add(s.A[2].Sub(s.A[0]).Mul(w))
	closestB = s.B[0].Add(s.B[1].Sub(s.B[0]).Mul(t)).Add(s.B[2].Sub(s.B[0]).Mul(w))
	return closestA.Sub(closestB), closestA, closestB
}

// tetrahedronFaces lists the faces of the tetrahedron simplex, each followed
// by the vertex opposite to it.
var tetrahedronFaces = [4][4]int{
	{0, 1, 2, 3},
	{0, 2, 3, 1},
	{0, 3, 1, 2},
	{1, 3, 2, 0},
}

// closestOnTetrahedron handles the tetrahedron simplex (Q0, Q1, Q2, Q3).
//
// Every face whose plane separates the origin from the opposite vertex is
// reduced as a triangle; the candidate with the smallest squared distance
// wins, ties keep the first examined face. When no face separates the
// origin, it is inside: v is zero and the simplex keeps its 4 points.
// A nearly flat tetrahedron collapses to the triangle (Q0, Q1, Q3).
func closestOnTetrahedron(s *Simplex, tol Tolerances) (v, closestA, closestB mgl64.Vec3) {
	da := s.Q[1].Sub(s.Q[0])
	db := s.Q[2].Sub(s.Q[0])
	dc := s.Q[3].Sub(s.Q[0])

	if math.Abs(da.Dot(db.Cross(dc))) < tol.TetrahedronDegenerateEpsilon {
		s.set(2, s, 3)
		s.Count = 3
		return closestOnTriangle(s, tol)
	}

	var best Simplex
	bestDist := math.Inf(1)
	found := false

	for _, face := range tetrahedronFaces {
		if !originOutsideFace(s.Q[face[0]], s.Q[face[1]], s.Q[face[2]], s.Q[face[3]]) {
			continue
		}

		var candidate Simplex
		candidate.set(0, s, face[0])
		candidate.set(1, s, face[1])
		candidate.set(2, s, face[2])
		candidate.Count = 3

		cv, ca, cb := closestOnTriangle(&candidate, tol)
		if dist := cv.Dot(cv); dist < bestDist {
			bestDist = dist
			best = candidate
			v, closestA, closestB = cv, ca, cb
			found = true
		}
	}

	if !found {
		// The origin is inside the tetrahedron: both shapes share the point
		// with the origin's barycentric coordinates.
		total := da.Dot(db.Cross(dc))
		ao := s.Q[0].Mul(-1)
		l1 := ao.Dot(db.Cross(dc)) / total
		l2 := da.Dot(ao.Cross(dc)) / total
		l3 := da.Dot(db.Cross(ao)) / total
		l0 := 1 - l1 - l2 - l3
		closestA = s.A[0].Mul(l0).Add(s.A[1].Mul(l1)).Add(s.A[2].Mul(l2)).Add(s.A[3].Mul(l3))
		closestB = s.B[0].Mul(l0).Add(s.B[1].Mul(l1)).Add(s.B[2].Mul(l2)).Add(s.B[3].Mul(l3))
		return mgl64.Vec3{}, closestA, closestB
	}

	*s = best
	return v, closestA, closestB
}

// originOutsideFace reports whether the plane through a, b, c strictly
// separates the origin from the opposite vertex d.
func originOutsideFace(a, b, c, d mgl64.Vec3) bool {
	n := b.Sub(a).Cross(c.Sub(a))
	signOrigin := -n.Dot(a)
	signOpposite := n.Dot(d.Sub(a))
	return signOrigin*signOpposite < 0
}
