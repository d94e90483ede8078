package proximity

import (
	"github.com/akmonengine/proximity/epa"
	"github.com/akmonengine/proximity/gjk"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

// degenerateDepth: a penetration vector shorter than this has no usable direction.
const degenerateDepth = 1e-12

// Result is the outcome of a penetration query.
type Result struct {
	// Status is StatusNonIntersect or StatusContact.
	Status gjk.Status
	// ContactA and ContactB are the contact points on the surfaces of A and B,
	// in world space.
	ContactA mgl64.Vec3
	ContactB mgl64.Vec3
	// Normal is a unit vector pointing from A toward B.
	Normal mgl64.Vec3
	// Depth is positive for overlapping shapes and negative for separated
	// ones: ContactA = ContactB + Depth*Normal.
	Depth float64
	// Deep is true when the contact comes from the polytope expansion rather
	// than from the margin shells.
	Deep bool
	// FeatureA and FeatureB are the support points of A along Normal and of
	// B against it, in each body's local frame. They stay valid while the
	// bodies move, which makes them suitable keys for contact caching.
	FeatureA mgl64.Vec3
	FeatureB mgl64.Vec3
}

// Penetration computes the contact between two convex shapes.
//
// Algorithm overview:
//  1. Run the margin-aware GJK phase on the margin-shrunk cores
//  2. Separated beyond contactDistance: return StatusNonIntersect with the
//     negative depth of the separation
//  3. Contact inside the margin shells: return StatusContact
//  4. Cores overlapping: rebuild a simplex enclosing the origin on the full
//     shapes and expand it with EPA
//  5. If the deep path fails, keep the estimate of step 1
//
// It never fails; the logger records why a deep path fell back.
func (d *Detector) Penetration(a, b gjk.Convex, contactDistance float64) Result {
	simplex := gjk.SimplexPool.Get().(*gjk.Simplex)
	defer gjk.SimplexPool.Put(simplex)

	shallow := gjk.Penetration(a, b, contactDistance, simplex, d.config.Tolerances)
	if shallow.Status != gjk.StatusDepenetration {
		return fromShallow(a, b, shallow)
	}

	return d.deep(-1, a, b, shallow, simplex)
}

// deep runs the deep path for pair id (-1 outside batch queries), falling
// back to the shallow estimate.
func (d *Detector) deep(id int, a, b gjk.Convex, shallow gjk.PenetrationResult, simplex *gjk.Simplex) Result {
	recalculated := gjk.RecalculateSimplex(a, b, simplex, d.config.Tolerances)
	if recalculated.Status != gjk.StatusDepenetration {
		d.logger.Debug("deep path found no overlap, keeping margin estimate",
			zap.Int("pair", id),
			zap.Stringer("status", recalculated.Status),
			zap.Int("iterations", recalculated.Iterations),
		)
		return fromShallow(a, b, shallow)
	}

	contact, err := epa.PenetrationDepth(a, b, simplex, d.config.EPATolerance)
	if err != nil {
		d.logger.Debug("penetration depth failed, keeping margin estimate",
			zap.Int("pair", id),
			zap.Int("simplex", simplex.Count),
			zap.Error(err),
		)
		return fromShallow(a, b, shallow)
	}
	if contact.Exhausted {
		d.logger.Warn("polytope budget exhausted, contact is approximate",
			zap.Int("pair", id),
			zap.Int("facets", contact.Facets),
			zap.Int("iterations", contact.Iterations),
		)
	}

	penetration := contact.PenetrationVector()
	depth := penetration.Len()
	if depth <= degenerateDepth {
		d.logger.Debug("penetration vector is degenerate, keeping margin estimate", zap.Int("pair", id))
		return fromShallow(a, b, shallow)
	}

	normal := penetration.Mul(1 / depth)
	result := Result{
		Status:   gjk.StatusContact,
		ContactA: contact.ClosestA,
		ContactB: contact.ClosestB,
		Normal:   normal,
		Depth:    depth,
		Deep:     true,
	}
	result.FeatureA, result.FeatureB = features(a, b, normal)
	return result
}

// fromShallow converts the margin phase outcome: a contact inside the shells
// and a failed deep path both report StatusContact.
func fromShallow(a, b gjk.Convex, shallow gjk.PenetrationResult) Result {
	status := gjk.StatusContact
	if shallow.Status == gjk.StatusNonIntersect {
		status = gjk.StatusNonIntersect
	}

	result := Result{
		Status:   status,
		ContactA: shallow.ContactA,
		ContactB: shallow.ContactB,
		Normal:   shallow.Normal,
		Depth:    shallow.Depth,
	}
	result.FeatureA, result.FeatureB = features(a, b, shallow.Normal)
	return result
}

func features(a, b gjk.Convex, normal mgl64.Vec3) (featureA, featureB mgl64.Vec3) {
	_, featureA = a.SupportMarginLocal(normal, 0)
	_, featureB = b.SupportMarginLocal(normal.Mul(-1), 0)
	return featureA, featureB
}
