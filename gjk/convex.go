package gjk

import "github.com/go-gl/mathgl/mgl64"

// Convex is the capability GJK and EPA need from a shape placed in the world.
// Directions need not be normalized. Implementations must be safe for
// concurrent reads: queries never mutate them.
type Convex interface {
	// Support returns the point of the shape farthest along direction.
	Support(direction mgl64.Vec3) mgl64.Vec3
	// SupportMargin returns the support point of the shape shrunk by margin.
	SupportMargin(direction mgl64.Vec3, margin float64) mgl64.Vec3
	// SupportMarginLocal returns SupportMargin in world space together with
	// the same point in the shape's local frame.
	SupportMarginLocal(direction mgl64.Vec3, margin float64) (world, local mgl64.Vec3)
	Center() mgl64.Vec3
	Margin() float64
	// IsMarginEqualToRadius distinguishes rounded shapes, whose margin is
	// their physical radius, from hulls with an artificial margin.
	IsMarginEqualToRadius() bool
}

// MinkowskiSupport computes a support point in the Minkowski difference (A - B).
//
// The Minkowski difference A - B is the set of all vectors (a - b) where a ∈ A and b ∈ B.
// For collision detection, we only need the extreme points (support points) in any direction.
//
// Returns the support pair and their difference:
//
//	furthestPoint(A, direction), furthestPoint(B, -direction), and A - B
func MinkowskiSupport(a, b Convex, direction mgl64.Vec3) (supportA, supportB, q mgl64.Vec3) {
	supportA = a.Support(direction)
	supportB = b.Support(direction.Mul(-1))
	return supportA, supportB, supportA.Sub(supportB)
}

// minkowskiSupportMargin is MinkowskiSupport on the margin-shrunk shapes.
func minkowskiSupportMargin(a, b Convex, direction mgl64.Vec3, marginA, marginB float64) (supportA, supportB, q mgl64.Vec3) {
	supportA = a.SupportMargin(direction, marginA)
	supportB = b.SupportMargin(direction.Mul(-1), marginB)
	return supportA, supportB, supportA.Sub(supportB)
}
