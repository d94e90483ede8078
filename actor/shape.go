package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ShapeType represents the type of collision shape
type ShapeType int

const (
	ShapeTypeSphere ShapeType = iota
	ShapeTypeBox
	ShapeTypeCapsule
	ShapeTypeConvexHull
)

func (t ShapeType) String() string {
	switch t {
	case ShapeTypeSphere:
		return "sphere"
	case ShapeTypeBox:
		return "box"
	case ShapeTypeCapsule:
		return "capsule"
	case ShapeTypeConvexHull:
		return "hull"
	}
	return "unknown"
}

// DefaultMarginRatio is the fraction of the smallest half extent used as margin
// by shapes whose margin is not their radius (boxes and hulls).
const DefaultMarginRatio = 0.05

// zeroDirectionThreshold below which a direction is considered null.
const zeroDirectionThreshold = 1e-24

// ShapeInterface is the interface that all collision shapes must implement.
// Every query is expressed in the shape's local space.
type ShapeInterface interface {
	Type() ShapeType
	// Support returns the farthest point of the shape along direction
	Support(direction mgl64.Vec3) mgl64.Vec3
	// SupportMargin returns the support point of the shape shrunk by margin
	SupportMargin(direction mgl64.Vec3, margin float64) mgl64.Vec3
	Margin() float64
	// IsMarginEqualToRadius reports whether the margin is the rounded radius
	// of the shape rather than an artificial inflation.
	IsMarginEqualToRadius() bool
}

// unitDirection normalizes direction, falling back to +X for a null vector
func unitDirection(direction mgl64.Vec3) mgl64.Vec3 {
	lenSqr := direction.LenSqr()
	if lenSqr < zeroDirectionThreshold {
		return mgl64.Vec3{1, 0, 0}
	}
	return direction.Mul(1.0 / math.Sqrt(lenSqr))
}

// Sphere represents a spherical collision shape.
// The whole sphere is margin: its core is the center point.
type Sphere struct {
	Radius float64
}

func (s *Sphere) Type() ShapeType {
	return ShapeTypeSphere
}

func (s *Sphere) Support(direction mgl64.Vec3) mgl64.Vec3 {
	return unitDirection(direction).Mul(s.Radius)
}

func (s *Sphere) SupportMargin(direction mgl64.Vec3, margin float64) mgl64.Vec3 {
	return unitDirection(direction).Mul(s.Radius - margin)
}

func (s *Sphere) Margin() float64 {
	return s.Radius
}

func (s *Sphere) IsMarginEqualToRadius() bool {
	return true
}

// Capsule is a segment along the local Y axis, from -HalfHeight to +HalfHeight,
// inflated by Radius.
type Capsule struct {
	HalfHeight float64
	Radius     float64
}

func (c *Capsule) Type() ShapeType {
	return ShapeTypeCapsule
}

func (c *Capsule) endpoint(direction mgl64.Vec3) mgl64.Vec3 {
	if direction.Y() < 0 {
		return mgl64.Vec3{0, -c.HalfHeight, 0}
	}
	return mgl64.Vec3{0, c.HalfHeight, 0}
}

func (c *Capsule) Support(direction mgl64.Vec3) mgl64.Vec3 {
	return c.endpoint(direction).Add(unitDirection(direction).Mul(c.Radius))
}

func (c *Capsule) SupportMargin(direction mgl64.Vec3, margin float64) mgl64.Vec3 {
	return c.endpoint(direction).Add(unitDirection(direction).Mul(c.Radius - margin))
}

func (c *Capsule) Margin() float64 {
	return c.Radius
}

func (c *Capsule) IsMarginEqualToRadius() bool {
	return true
}

// Box represents an oriented box collision shape
// The box is defined by its half-extents (half-width, half-height, half-depth)
type Box struct {
	HalfExtents mgl64.Vec3
	// MarginRatio overrides DefaultMarginRatio when positive
	MarginRatio float64
}

func (b *Box) Type() ShapeType {
	return ShapeTypeBox
}

func (b *Box) Support(direction mgl64.Vec3) mgl64.Vec3 {
	return b.corner(direction, b.HalfExtents)
}

// SupportMargin returns the corner of the box shrunk by margin on every axis.
func (b *Box) SupportMargin(direction mgl64.Vec3, margin float64) mgl64.Vec3 {
	shrunk := b.HalfExtents.Sub(mgl64.Vec3{margin, margin, margin})
	return b.corner(direction, shrunk)
}

func (b *Box) corner(direction, halfExtents mgl64.Vec3) mgl64.Vec3 {
	hx, hy, hz := halfExtents.X(), halfExtents.Y(), halfExtents.Z()

	if direction.X() < 0 {
		hx = -hx
	}
	if direction.Y() < 0 {
		hy = -hy
	}
	if direction.Z() < 0 {
		hz = -hz
	}

	return mgl64.Vec3{hx, hy, hz}
}

func (b *Box) Margin() float64 {
	ratio := b.MarginRatio
	if ratio <= 0 {
		ratio = DefaultMarginRatio
	}
	return ratio * minComponent(b.HalfExtents)
}

func (b *Box) IsMarginEqualToRadius() bool {
	return false
}

// ConvexHull is the convex hull of a point cloud. Vertices are expressed
// relative to the body origin; NewConvexHull caches the local extents.
type ConvexHull struct {
	Vertices    []mgl64.Vec3
	MarginRatio float64

	halfExtents mgl64.Vec3
}

// NewConvexHull builds a hull from at least one vertex.
func NewConvexHull(vertices ...mgl64.Vec3) *ConvexHull {
	hull := &ConvexHull{Vertices: vertices}
	if len(vertices) == 0 {
		return hull
	}

	minimum, maximum := vertices[0], vertices[0]
	for _, v := range vertices[1:] {
		for i := 0; i < 3; i++ {
			minimum[i] = math.Min(minimum[i], v[i])
			maximum[i] = math.Max(maximum[i], v[i])
		}
	}
	hull.halfExtents = maximum.Sub(minimum).Mul(0.5)

	return hull
}

// NewTetrahedron builds a four-vertex hull.
func NewTetrahedron(a, b, c, d mgl64.Vec3) *ConvexHull {
	return NewConvexHull(a, b, c, d)
}

func (h *ConvexHull) Type() ShapeType {
	return ShapeTypeConvexHull
}

func (h *ConvexHull) Support(direction mgl64.Vec3) mgl64.Vec3 {
	if len(h.Vertices) == 0 {
		return mgl64.Vec3{}
	}

	best := h.Vertices[0]
	bestDot := best.Dot(direction)
	for _, v := range h.Vertices[1:] {
		if d := v.Dot(direction); d > bestDot {
			best = v
			bestDot = d
		}
	}
	return best
}

// SupportMargin pulls the support vertex back by margin along the sign of
// each direction component. A zero component counts as negative.
func (h *ConvexHull) SupportMargin(direction mgl64.Vec3, margin float64) mgl64.Vec3 {
	p := h.Support(direction)
	for i := 0; i < 3; i++ {
		if direction[i] > 0 {
			p[i] -= margin
		} else {
			p[i] += margin
		}
	}
	return p
}

func (h *ConvexHull) Margin() float64 {
	ratio := h.MarginRatio
	if ratio <= 0 {
		ratio = DefaultMarginRatio
	}
	return ratio * minComponent(h.halfExtents)
}

func (h *ConvexHull) IsMarginEqualToRadius() bool {
	return false
}

func minComponent(v mgl64.Vec3) float64 {
	return math.Min(v.X(), math.Min(v.Y(), v.Z()))
}
