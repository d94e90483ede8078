package actor

import (
	"github.com/go-gl/mathgl/mgl64"
)

// RigidBody places a collision shape in the world.
// It satisfies the convex capability consumed by the gjk and epa packages:
// all directions and points it exchanges are in world space.
type RigidBody struct {
	Transform Transform

	// Collision shape
	Shape ShapeInterface
}

// NewRigidBody creates a new rigid body with the given transform and shape.
// A zero rotation is treated as identity.
func NewRigidBody(transform Transform, shape ShapeInterface) *RigidBody {
	if transform.Rotation.Dot(transform.Rotation) == 0 {
		transform.Rotation = mgl64.QuatIdent()
	}
	return &RigidBody{
		Transform: NewTransformAt(transform.Position, transform.Rotation),
		Shape:     shape,
	}
}

// Support returns the world-space support point of the shape along direction.
func (rb *RigidBody) Support(direction mgl64.Vec3) mgl64.Vec3 {
	// Direction into the local frame
	localDirection := rb.Transform.ToLocalDirection(direction)

	// Local support point
	localSupport := rb.Shape.Support(localDirection)

	// Back to world space
	return rb.Transform.ToWorld(localSupport)
}

// SupportMargin returns the world-space support point of the shape shrunk by margin.
func (rb *RigidBody) SupportMargin(direction mgl64.Vec3, margin float64) mgl64.Vec3 {
	world, _ := rb.SupportMarginLocal(direction, margin)
	return world
}

// SupportMarginLocal is SupportMargin that also reports the point in the
// body's local frame.
func (rb *RigidBody) SupportMarginLocal(direction mgl64.Vec3, margin float64) (world, local mgl64.Vec3) {
	local = rb.Shape.SupportMargin(rb.Transform.ToLocalDirection(direction), margin)
	return rb.Transform.ToWorld(local), local
}

func (rb *RigidBody) Center() mgl64.Vec3 {
	return rb.Transform.Position
}

func (rb *RigidBody) Margin() float64 {
	return rb.Shape.Margin()
}

func (rb *RigidBody) IsMarginEqualToRadius() bool {
	return rb.Shape.IsMarginEqualToRadius()
}
