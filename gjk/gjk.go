package gjk

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// maxPenetrationIterations bounds the penetration iterators, which otherwise
// only stop once the distance no longer strictly decreases.
const maxPenetrationIterations = 64

// degenerateLengthSquared is the squared length under which a vector cannot
// be normalized into a direction.
const degenerateLengthSquared = 1e-24

// DistanceResult is the outcome of a distance query.
type DistanceResult struct {
	// ClosestA and ClosestB are the closest points on shape A and shape B.
	ClosestA mgl64.Vec3
	ClosestB mgl64.Vec3
	// SquaredDistance is measured between the shapes GJK iterated on: the
	// full shapes for GJK, the margin-shrunk cores for Margin.
	SquaredDistance float64
	// MarginA and MarginB are the margins removed from each shape (zero for GJK).
	MarginA float64
	MarginB float64
	Status  Status
	// Iterations is the number of support points sampled after the seed.
	Iterations int
	// Converged is false when the iteration budget ran out.
	Converged bool
}

// Distance returns the signed separation between the shapes: the distance
// between their surfaces, negative when the margin shells overlap.
func (r DistanceResult) Distance() float64 {
	return math.Sqrt(r.SquaredDistance) - r.MarginA - r.MarginB
}

// PenetrationResult is the outcome of the margin-aware penetration phase.
type PenetrationResult struct {
	Status Status
	// ContactA and ContactB are the contact points on the surfaces of A and B.
	ContactA mgl64.Vec3
	ContactB mgl64.Vec3
	// Normal is a unit vector pointing from A toward B.
	Normal mgl64.Vec3
	// Depth is positive when the shapes overlap, negative when separated.
	// ContactA = ContactB + Depth*Normal.
	Depth float64
	// MarginA and MarginB are the margins the iteration used for each shape.
	MarginA    float64
	MarginB    float64
	Iterations int
}

// initialDirection returns centerA - centerB, or +X when the centers coincide.
func initialDirection(a, b Convex) mgl64.Vec3 {
	direction := a.Center().Sub(b.Center())
	if direction.LenSqr() <= 0 {
		return mgl64.Vec3{1, 0, 0}
	}
	return direction
}

// unitOr normalizes v, or returns fallback normalized when v is degenerate.
func unitOr(v, fallback mgl64.Vec3) mgl64.Vec3 {
	if lenSqr := v.LenSqr(); lenSqr > degenerateLengthSquared {
		return v.Mul(1.0 / math.Sqrt(lenSqr))
	}
	if lenSqr := fallback.LenSqr(); lenSqr > degenerateLengthSquared {
		return fallback.Mul(1.0 / math.Sqrt(lenSqr))
	}
	return mgl64.Vec3{1, 0, 0}
}

// GJK computes the distance and closest points between two convex shapes.
//
// Algorithm overview:
//  1. Seed the simplex with the support pair along centerB - centerA
//  2. Sample a new support point opposite the current closest point v
//  3. If the new point does not bring v closer to the origin (relative
//     tolerance), v is the true closest point: shapes are separated
//  4. Otherwise add it to the simplex and reduce the simplex to the
//     feature closest to the origin
//  5. Stop on overlap (squared distance under OverlapEpsilon), when the
//     distance stops strictly decreasing, or when the budget runs out
//
// Returns StatusNonIntersect with the closest pair for separated shapes and
// StatusContact for overlapping ones. It never fails: exhausting the budget
// returns the best estimate with Converged set to false.
//
// The simplex is reset and left holding the final feature.
func GJK(a, b Convex, simplex *Simplex, tol Tolerances) DistanceResult {
	direction := initialDirection(a, b)

	simplex.Reset()
	supportA, supportB, _ := MinkowskiSupport(a, b, direction.Mul(-1))
	simplex.Push(supportA, supportB)

	v := simplex.Q[0]
	closestA, closestB := supportA, supportB
	sDist := v.Dot(v)

	result := DistanceResult{Converged: true}
	for result.Iterations < tol.MaxIterations {
		if sDist <= tol.OverlapEpsilon {
			break
		}
		result.Iterations++

		supportA, supportB, w := MinkowskiSupport(a, b, v.Mul(-1))

		// Early exit test: the new point does not move v toward the origin
		if sDist-v.Dot(w) <= tol.DistanceEpsilon*sDist {
			result.ClosestA, result.ClosestB = closestA, closestB
			result.SquaredDistance = sDist
			result.Status = StatusNonIntersect
			return result
		}

		simplex.Push(supportA, supportB)
		newV, newA, newB := simplex.Closest(tol)
		newDist := newV.Dot(newV)

		// No progress: keep the previous pair, it is the best we have
		if newDist >= sDist {
			result.ClosestA, result.ClosestB = closestA, closestB
			result.SquaredDistance = sDist
			result.Status = StatusNonIntersect
			return result
		}

		v, closestA, closestB, sDist = newV, newA, newB, newDist
	}

	result.ClosestA, result.ClosestB = closestA, closestB
	result.SquaredDistance = sDist
	if sDist <= tol.OverlapEpsilon {
		result.Status = StatusContact
		return result
	}

	// Failed to converge after MaxIterations, return the best estimate
	result.Status = StatusNonIntersect
	result.Converged = false
	return result
}

// Margin computes the distance between the margin-shrunk cores of two shapes.
//
// Each shape is treated as its core inflated by its own margin. The closest
// points are pushed back out by the margins, onto the original surfaces.
//
// Returns:
//   - StatusNonIntersect: the cores are farther apart than the sum of the margins
//   - StatusMargin: the shells overlap while the cores are still apart
//   - StatusDepenetration: the cores overlap
//
// SquaredDistance is the squared core distance; DistanceResult.Distance
// converts it into the separation of the original surfaces.
func Margin(a, b Convex, simplex *Simplex, tol Tolerances) DistanceResult {
	marginA := a.Margin()
	marginB := b.Margin()
	sumMargin := marginA + marginB
	sqMargin := sumMargin * sumMargin

	direction := initialDirection(a, b)

	simplex.Reset()
	supportA, supportB, _ := minkowskiSupportMargin(a, b, direction.Mul(-1), marginA, marginB)
	simplex.Push(supportA, supportB)

	v := simplex.Q[0]
	closestA, closestB := supportA, supportB
	sDist := v.Dot(v)

	result := DistanceResult{MarginA: marginA, MarginB: marginB, Converged: true}

	// finish pushes the core closest points back onto the surfaces
	finish := func(status Status) DistanceResult {
		n := unitOr(v, direction)
		result.ClosestA = closestA.Sub(n.Mul(marginA))
		result.ClosestB = closestB.Add(n.Mul(marginB))
		result.SquaredDistance = sDist
		result.Status = status
		return result
	}

	for sDist > tol.MarginOverlapEpsilon {
		if result.Iterations >= tol.MaxIterations {
			result.Converged = false
			return finish(StatusNonIntersect)
		}
		result.Iterations++

		supportA, supportB, w := minkowskiSupportMargin(a, b, v.Mul(-1), marginA, marginB)

		vw := v.Dot(w)
		if vw > 0 && vw*vw > sDist*sqMargin {
			// The supporting plane is farther than both margins: not intersecting
			return finish(StatusNonIntersect)
		}

		if sDist-vw <= tol.MarginProgressEpsilon*sDist {
			// Converged inside the margin shells
			return finish(StatusMargin)
		}

		simplex.Push(supportA, supportB)
		v, closestA, closestB = simplex.Closest(tol)
		sDist = v.Dot(v)
	}

	return finish(StatusDepenetration)
}

// SeparatingAxis is a coarse boolean overlap test.
//
// It stops as soon as a support point proves that a plane separates the
// shapes, and reports the unit axis of that plane, pointing from A toward B:
// every point of A projects on it below every point of B.
//
// separated is false when the simplex reaches within SeparatingAxisEpsilon of
// the origin, and also when the budget runs out without a proof.
func SeparatingAxis(a, b Convex, tol Tolerances) (axis mgl64.Vec3, separated bool) {
	var simplex Simplex

	direction := initialDirection(a, b)
	supportA, supportB, _ := MinkowskiSupport(a, b, direction.Mul(-1))
	simplex.Push(supportA, supportB)

	v := simplex.Q[0]
	sDist := v.Dot(v)
	epsilonSq := tol.SeparatingAxisEpsilon * tol.SeparatingAxisEpsilon

	for i := 0; i < tol.MaxIterations && sDist > epsilonSq; i++ {
		supportA, supportB, w := MinkowskiSupport(a, b, v.Mul(-1))
		if v.Dot(w) > 0 {
			return unitOr(v.Mul(-1), direction.Mul(-1)), true
		}

		simplex.Push(supportA, supportB)
		v, _, _ = simplex.Closest(tol)
		sDist = v.Dot(v)
	}

	return mgl64.Vec3{}, false
}

// Penetration runs the margin-aware phase of a penetration query.
//
// The shapes are iterated as margin-shrunk cores. Both shapes keep their own
// margin when either one is rounded (margin equal to radius); otherwise both
// use the smaller margin. contactDistance widens the shells: pairs closer
// than the margins plus contactDistance are reported as contacts.
//
// Returns:
//   - StatusNonIntersect: separated beyond contactDistance. Normal separates
//     the margin-rounded shapes, not necessarily the full ones. Depth is minus
//     the distance of the closest pair reached before the exit, which may
//     overestimate the separation when the exit comes early.
//   - StatusMargin: the contact lies inside the margin shells; the result
//     holds the final contact. This includes the case where the distance
//     stopped decreasing, which reverts to the best pair seen.
//   - StatusDepenetration: the cores overlap. The result holds the best
//     shallow estimate, to be used if the deep path fails.
//
// The simplex is reset and left holding the final feature.
func Penetration(a, b Convex, contactDistance float64, simplex *Simplex, tol Tolerances) PenetrationResult {
	ownMarginA := a.Margin()
	ownMarginB := b.Margin()
	minMargin := math.Min(ownMarginA, ownMarginB)

	marginA, marginB := minMargin, minMargin
	if a.IsMarginEqualToRadius() || b.IsMarginEqualToRadius() {
		marginA, marginB = ownMarginA, ownMarginB
	}

	sumMargin0 := marginA + marginB
	sumMargin := sumMargin0 + contactDistance
	sqMargin := sumMargin * sumMargin
	eps2 := tol.shallowTerminationSquared(minMargin)

	direction := initialDirection(a, b)
	v := direction

	simplex.Reset()

	var closestA, closestB, tempA, tempB mgl64.Vec3
	sDist := math.MaxFloat64
	minDist := sDist
	progress := true
	iterations := 0

	contact := func(closestA, closestB mgl64.Vec3, sDist float64, status Status) PenetrationResult {
		// v points from B toward A, the normal from A toward B
		normal := unitOr(closestB.Sub(closestA), direction.Mul(-1))
		return PenetrationResult{
			Status:     status,
			ContactA:   closestA.Add(normal.Mul(marginA)),
			ContactB:   closestB.Sub(normal.Mul(marginB)),
			Normal:     normal,
			Depth:      sumMargin0 - math.Sqrt(sDist),
			MarginA:    marginA,
			MarginB:    marginB,
			Iterations: iterations,
		}
	}

	for {
		minDist = sDist
		tempA, tempB = closestA, closestB
		iterations++

		supportA, supportB, w := minkowskiSupportMargin(a, b, v.Mul(-1), marginA, marginB)

		// No exit test until the simplex holds a point
		if simplex.Count > 0 {
			vw := v.Dot(w)
			if vw > 0 && vw*vw > sDist*sqMargin {
				return contact(closestA, closestB, sDist, StatusNonIntersect)
			}
			if sDist-vw <= tol.MarginProgressEpsilon*sDist {
				return contact(closestA, closestB, sDist, StatusMargin)
			}
		}

		simplex.Push(supportA, supportB)
		v, closestA, closestB = simplex.Closest(tol)
		sDist = v.Dot(v)

		progress = minDist > sDist
		if sDist <= eps2 || !progress || iterations >= maxPenetrationIterations {
			break
		}
	}

	if !progress || (iterations >= maxPenetrationIterations && sDist > eps2) {
		// Reset back to the older closest points
		return contact(tempA, tempB, minDist, StatusMargin)
	}

	// The cores overlap. Keep the last shallow estimate as a fallback; on the
	// very first iteration there is no older pair to revert to.
	if minDist == math.MaxFloat64 {
		tempA, tempB, minDist = closestA, closestB, sDist
	}
	return contact(tempA, tempB, minDist, StatusDepenetration)
}

// RecalculateSimplex restarts GJK on the full shapes, without margins, to
// build a simplex enclosing the origin for EPA.
//
// It iterates until the squared distance falls under the deep termination
// threshold (derived from the smaller margin) while strictly decreasing.
// A stall means the full shapes do not overlap after all: StatusNonIntersect.
// Otherwise it returns StatusDepenetration and the simplex is ready for EPA.
func RecalculateSimplex(a, b Convex, simplex *Simplex, tol Tolerances) DistanceResult {
	minMargin := math.Min(a.Margin(), b.Margin())
	eps2 := tol.deepTerminationSquared(minMargin)

	direction := initialDirection(a, b)

	simplex.Reset()
	supportA, supportB, _ := MinkowskiSupport(a, b, direction.Mul(-1))
	simplex.Push(supportA, supportB)

	v := simplex.Q[0]
	closestA, closestB := supportA, supportB
	sDist := v.Dot(v)

	result := DistanceResult{Converged: true}
	progress := true
	for sDist > eps2 && progress {
		if result.Iterations >= maxPenetrationIterations {
			progress = false
			result.Converged = false
			break
		}
		result.Iterations++

		minDist := sDist
		supportA, supportB, _ := MinkowskiSupport(a, b, v.Mul(-1))
		simplex.Push(supportA, supportB)
		v, closestA, closestB = simplex.Closest(tol)
		sDist = v.Dot(v)

		progress = minDist > sDist
	}

	result.ClosestA, result.ClosestB = closestA, closestB
	result.SquaredDistance = sDist
	if !progress {
		result.Status = StatusNonIntersect
		return result
	}

	result.Status = StatusDepenetration
	return result
}
