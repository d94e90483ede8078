package actor

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// Helper functions
func vec3Equal(a, b mgl64.Vec3, tolerance float64) bool {
	return math.Abs(a.X()-b.X()) < tolerance &&
		math.Abs(a.Y()-b.Y()) < tolerance &&
		math.Abs(a.Z()-b.Z()) < tolerance
}

func floatEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) < tolerance
}

func TestShapeType_String(t *testing.T) {
	tests := []struct {
		shape    ShapeInterface
		expected string
	}{
		{&Sphere{Radius: 1}, "sphere"},
		{&Box{HalfExtents: mgl64.Vec3{1, 1, 1}}, "box"},
		{&Capsule{HalfHeight: 1, Radius: 0.5}, "capsule"},
		{NewConvexHull(mgl64.Vec3{}), "hull"},
	}

	for _, tt := range tests {
		if got := tt.shape.Type().String(); got != tt.expected {
			t.Errorf("Type().String() = %q, want %q", got, tt.expected)
		}
	}
	if got := ShapeType(99).String(); got != "unknown" {
		t.Errorf("ShapeType(99).String() = %q, want \"unknown\"", got)
	}
}

// ========== SUPPORT ==========

func TestSphereSupport(t *testing.T) {
	sphere := &Sphere{Radius: 2.0}

	tests := []struct {
		name      string
		direction mgl64.Vec3
		expected  mgl64.Vec3
	}{
		{"positive X", mgl64.Vec3{1, 0, 0}, mgl64.Vec3{2, 0, 0}},
		{"negative Y", mgl64.Vec3{0, -5, 0}, mgl64.Vec3{0, -2, 0}},
		{"diagonal", mgl64.Vec3{1, 1, 0}, mgl64.Vec3{math.Sqrt2, math.Sqrt2, 0}},
		// A null direction falls back to +X
		{"zero direction", mgl64.Vec3{}, mgl64.Vec3{2, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			support := sphere.Support(tt.direction)
			if !vec3Equal(support, tt.expected, 1e-9) {
				t.Errorf("Support(%v) = %v, want %v", tt.direction, support, tt.expected)
			}
		})
	}
}

func TestSphereSupportMargin(t *testing.T) {
	sphere := &Sphere{Radius: 2.0}

	// The core of a sphere is its center
	if support := sphere.SupportMargin(mgl64.Vec3{0, 0, 3}, sphere.Margin()); !vec3Equal(support, mgl64.Vec3{}, 1e-12) {
		t.Errorf("SupportMargin with full margin = %v, want origin", support)
	}

	if support := sphere.SupportMargin(mgl64.Vec3{0, 0, 3}, 0.5); !vec3Equal(support, mgl64.Vec3{0, 0, 1.5}, 1e-12) {
		t.Errorf("SupportMargin(0.5) = %v, want (0, 0, 1.5)", support)
	}
}

func TestCapsuleSupport(t *testing.T) {
	capsule := &Capsule{HalfHeight: 1.0, Radius: 0.5}

	tests := []struct {
		name      string
		direction mgl64.Vec3
		margin    float64
		expected  mgl64.Vec3
	}{
		{"top", mgl64.Vec3{0, 1, 0}, 0, mgl64.Vec3{0, 1.5, 0}},
		{"bottom", mgl64.Vec3{0, -1, 0}, 0, mgl64.Vec3{0, -1.5, 0}},
		{"side picks the top cap", mgl64.Vec3{1, 0, 0}, 0, mgl64.Vec3{0.5, 1, 0}},
		{"lower side", mgl64.Vec3{0, -1, 1}, 0, mgl64.Vec3{0, -1 - 0.5/math.Sqrt2, 0.5 / math.Sqrt2}},
		{"core is the segment", mgl64.Vec3{1, -1, 0}, 0.5, mgl64.Vec3{0, -1, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var support mgl64.Vec3
			if tt.margin == 0 {
				support = capsule.Support(tt.direction)
			} else {
				support = capsule.SupportMargin(tt.direction, tt.margin)
			}
			if !vec3Equal(support, tt.expected, 1e-9) {
				t.Errorf("support(%v, %v) = %v, want %v", tt.direction, tt.margin, support, tt.expected)
			}
		})
	}
}

func TestBoxSupport(t *testing.T) {
	box := &Box{HalfExtents: mgl64.Vec3{2, 3, 1}}

	tests := []struct {
		name      string
		direction mgl64.Vec3
		expected  mgl64.Vec3
	}{
		{"positive diagonal", mgl64.Vec3{1, 1, 1}, mgl64.Vec3{2, 3, 1}},
		{"negative diagonal", mgl64.Vec3{-1, -1, -1}, mgl64.Vec3{-2, -3, -1}},
		// Zero components pick the positive side
		{"negative X", mgl64.Vec3{-1, 0, 0}, mgl64.Vec3{-2, 3, 1}},
		{"mixed", mgl64.Vec3{0.1, -4, 0.2}, mgl64.Vec3{2, -3, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			support := box.Support(tt.direction)
			if support != tt.expected {
				t.Errorf("Support(%v) = %v, want %v", tt.direction, support, tt.expected)
			}
		})
	}
}

func TestBoxSupportMargin(t *testing.T) {
	box := &Box{HalfExtents: mgl64.Vec3{2, 3, 1}}

	support := box.SupportMargin(mgl64.Vec3{1, -1, 1}, 0.25)
	expected := mgl64.Vec3{1.75, -2.75, 0.75}
	if !vec3Equal(support, expected, 1e-12) {
		t.Errorf("SupportMargin = %v, want %v", support, expected)
	}
}

func TestConvexHullSupport(t *testing.T) {
	hull := NewTetrahedron(
		mgl64.Vec3{0, 0, 0},
		mgl64.Vec3{2, 0, 0},
		mgl64.Vec3{0, 2, 0},
		mgl64.Vec3{0, 0, 2},
	)

	tests := []struct {
		name      string
		direction mgl64.Vec3
		expected  mgl64.Vec3
	}{
		{"X", mgl64.Vec3{1, 0, 0}, mgl64.Vec3{2, 0, 0}},
		{"Y", mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, 2, 0}},
		{"Z", mgl64.Vec3{0, 0, 1}, mgl64.Vec3{0, 0, 2}},
		{"away", mgl64.Vec3{-1, -1, -1}, mgl64.Vec3{0, 0, 0}},
		// Ties keep the first vertex
		{"tie", mgl64.Vec3{1, 1, 0}, mgl64.Vec3{2, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			support := hull.Support(tt.direction)
			if support != tt.expected {
				t.Errorf("Support(%v) = %v, want %v", tt.direction, support, tt.expected)
			}
		})
	}
}

func TestConvexHullSupportMargin(t *testing.T) {
	hull := NewTetrahedron(
		mgl64.Vec3{0, 0, 0},
		mgl64.Vec3{2, 0, 0},
		mgl64.Vec3{0, 2, 0},
		mgl64.Vec3{0, 0, 2},
	)

	// Zero components are pulled back toward the positive side
	support := hull.SupportMargin(mgl64.Vec3{1, 0, 0}, 0.1)
	expected := mgl64.Vec3{1.9, 0.1, 0.1}
	if !vec3Equal(support, expected, 1e-12) {
		t.Errorf("SupportMargin = %v, want %v", support, expected)
	}
}

func TestConvexHullEmpty(t *testing.T) {
	hull := NewConvexHull()
	if support := hull.Support(mgl64.Vec3{1, 2, 3}); support != (mgl64.Vec3{}) {
		t.Errorf("Support on empty hull = %v, want origin", support)
	}
	if margin := hull.Margin(); margin != 0 {
		t.Errorf("Margin on empty hull = %v, want 0", margin)
	}
}

// ========== MARGIN ==========

func TestShapeMargin(t *testing.T) {
	tests := []struct {
		name           string
		shape          ShapeInterface
		expected       float64
		equalsToRadius bool
	}{
		{"sphere", &Sphere{Radius: 1.5}, 1.5, true},
		{"capsule", &Capsule{HalfHeight: 2, Radius: 0.25}, 0.25, true},
		{"box default ratio", &Box{HalfExtents: mgl64.Vec3{2, 0.5, 4}}, 0.5 * DefaultMarginRatio, false},
		{"box custom ratio", &Box{HalfExtents: mgl64.Vec3{1, 1, 1}, MarginRatio: 0.0625}, 0.0625, false},
		{"hull default ratio", NewTetrahedron(
			mgl64.Vec3{0, 0, 0}, mgl64.Vec3{2, 0, 0}, mgl64.Vec3{0, 4, 0}, mgl64.Vec3{0, 0, 6},
		), DefaultMarginRatio, false},
		{"hull custom ratio", &ConvexHull{
			Vertices:    []mgl64.Vec3{{-1, -1, -1}, {1, 1, 1}},
			MarginRatio: 0.1,
		}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if margin := tt.shape.Margin(); !floatEqual(margin, tt.expected, 1e-12) {
				t.Errorf("Margin() = %v, want %v", margin, tt.expected)
			}
			if got := tt.shape.IsMarginEqualToRadius(); got != tt.equalsToRadius {
				t.Errorf("IsMarginEqualToRadius() = %v, want %v", got, tt.equalsToRadius)
			}
		})
	}
}

// A hull built without NewConvexHull has no cached extents and no margin.
func TestConvexHullLiteralHasNoExtents(t *testing.T) {
	hull := &ConvexHull{Vertices: []mgl64.Vec3{{-1, -1, -1}, {1, 1, 1}}}
	if margin := hull.Margin(); margin != 0 {
		t.Errorf("Margin() = %v, want 0", margin)
	}

	built := NewConvexHull(hull.Vertices...)
	if margin := built.Margin(); !floatEqual(margin, DefaultMarginRatio, 1e-12) {
		t.Errorf("Margin() = %v, want %v", margin, DefaultMarginRatio)
	}
}
