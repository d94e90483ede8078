package gjk

import (
	"math"
	"testing"

	"github.com/akmonengine/proximity/actor"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helper functions

func createBoxBody(position mgl64.Vec3, halfExtents mgl64.Vec3) *actor.RigidBody {
	return actor.NewRigidBody(
		actor.Transform{Position: position, Rotation: mgl64.QuatIdent()},
		&actor.Box{HalfExtents: halfExtents},
	)
}

func createSphereBody(position mgl64.Vec3, radius float64) *actor.RigidBody {
	return actor.NewRigidBody(
		actor.Transform{Position: position, Rotation: mgl64.QuatIdent()},
		&actor.Sphere{Radius: radius},
	)
}

func TestMinkowskiSupport(t *testing.T) {
	a := createSphereBody(mgl64.Vec3{0, 0, 0}, 1.0)
	b := createSphereBody(mgl64.Vec3{3, 0, 0}, 1.0)

	supportA, supportB, q := MinkowskiSupport(a, b, mgl64.Vec3{1, 0, 0})

	// max(A.x) - min(B.x) = 1 - 2
	assert.Equal(t, mgl64.Vec3{1, 0, 0}, supportA)
	assert.Equal(t, mgl64.Vec3{2, 0, 0}, supportB)
	assert.Equal(t, mgl64.Vec3{-1, 0, 0}, q)
}

func TestGJK(t *testing.T) {
	tol := DefaultTolerances()

	t.Run("separated spheres", func(t *testing.T) {
		a := createSphereBody(mgl64.Vec3{0, 0, 0}, 1.0)
		b := createSphereBody(mgl64.Vec3{3, 0, 0}, 1.0)

		result := GJK(a, b, &Simplex{}, tol)

		assert.Equal(t, StatusNonIntersect, result.Status)
		assert.True(t, result.Converged)
		assert.InDelta(t, 1.0, result.Distance(), 1e-9)
		assert.True(t, vec3Near(result.ClosestA, mgl64.Vec3{1, 0, 0}, 1e-9), "closestA %v", result.ClosestA)
		assert.True(t, vec3Near(result.ClosestB, mgl64.Vec3{2, 0, 0}, 1e-9), "closestB %v", result.ClosestB)
	})

	t.Run("overlapping spheres", func(t *testing.T) {
		a := createSphereBody(mgl64.Vec3{0, 0, 0}, 1.0)
		b := createSphereBody(mgl64.Vec3{1, 0, 0}, 1.0)

		result := GJK(a, b, &Simplex{}, tol)

		assert.Equal(t, StatusContact, result.Status)
		assert.LessOrEqual(t, result.SquaredDistance, tol.OverlapEpsilon)
	})

	t.Run("separated boxes", func(t *testing.T) {
		a := createBoxBody(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1})
		b := createBoxBody(mgl64.Vec3{3, 0, 0}, mgl64.Vec3{1, 1, 1})

		result := GJK(a, b, &Simplex{}, tol)

		assert.Equal(t, StatusNonIntersect, result.Status)
		assert.InDelta(t, 1.0, result.Distance(), 1e-9)
		assert.True(t, vec3Near(result.ClosestB.Sub(result.ClosestA), mgl64.Vec3{1, 0, 0}, 1e-9))
		assert.Zero(t, result.MarginA)
		assert.Zero(t, result.MarginB)
	})

	t.Run("overlapping boxes", func(t *testing.T) {
		a := createBoxBody(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1})
		b := createBoxBody(mgl64.Vec3{1.5, 0, 0}, mgl64.Vec3{1, 1, 1})

		result := GJK(a, b, &Simplex{}, tol)

		assert.Equal(t, StatusContact, result.Status)
	})

	t.Run("coincident centers", func(t *testing.T) {
		a := createSphereBody(mgl64.Vec3{2, 2, 2}, 1.0)
		b := createBoxBody(mgl64.Vec3{2, 2, 2}, mgl64.Vec3{1, 1, 1})

		result := GJK(a, b, &Simplex{}, tol)

		assert.Equal(t, StatusContact, result.Status)
	})

	t.Run("budget exhausted", func(t *testing.T) {
		a := createSphereBody(mgl64.Vec3{0, 0, 0}, 1.0)
		b := createSphereBody(mgl64.Vec3{3, 0, 0}, 1.0)

		noBudget := tol
		noBudget.MaxIterations = 0
		result := GJK(a, b, &Simplex{}, noBudget)

		// The seed point is still a valid estimate
		assert.Equal(t, StatusNonIntersect, result.Status)
		assert.False(t, result.Converged)
		assert.Zero(t, result.Iterations)
		assert.InDelta(t, 1.0, result.Distance(), 1e-9)
	})
}

func TestMargin(t *testing.T) {
	tol := DefaultTolerances()

	tests := []struct {
		name             string
		positionB        mgl64.Vec3
		expectedStatus   Status
		expectedDistance float64
		expectedA        mgl64.Vec3
		expectedB        mgl64.Vec3
	}{
		{
			name:             "shells apart",
			positionB:        mgl64.Vec3{2.5, 0, 0},
			expectedStatus:   StatusNonIntersect,
			expectedDistance: 0.5,
			expectedA:        mgl64.Vec3{1, 0, 0},
			expectedB:        mgl64.Vec3{1.5, 0, 0},
		},
		{
			name:             "shells overlap",
			positionB:        mgl64.Vec3{1.5, 0, 0},
			expectedStatus:   StatusMargin,
			expectedDistance: -0.5,
			expectedA:        mgl64.Vec3{1, 0, 0},
			expectedB:        mgl64.Vec3{0.5, 0, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := createSphereBody(mgl64.Vec3{0, 0, 0}, 1.0)
			b := createSphereBody(tt.positionB, 1.0)

			result := Margin(a, b, &Simplex{}, tol)

			assert.Equal(t, tt.expectedStatus, result.Status)
			assert.InDelta(t, tt.expectedDistance, result.Distance(), 1e-9)
			assert.Equal(t, 1.0, result.MarginA)
			assert.Equal(t, 1.0, result.MarginB)
			assert.True(t, vec3Near(result.ClosestA, tt.expectedA, 1e-9), "closestA %v", result.ClosestA)
			assert.True(t, vec3Near(result.ClosestB, tt.expectedB, 1e-9), "closestB %v", result.ClosestB)
		})
	}

	t.Run("cores overlap", func(t *testing.T) {
		a := createBoxBody(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1})
		b := createBoxBody(mgl64.Vec3{0.5, 0, 0}, mgl64.Vec3{1, 1, 1})

		result := Margin(a, b, &Simplex{}, tol)

		assert.Equal(t, StatusDepenetration, result.Status)
		assert.LessOrEqual(t, result.SquaredDistance, tol.MarginOverlapEpsilon)
	})
}

func TestSeparatingAxis(t *testing.T) {
	tol := DefaultTolerances()

	t.Run("separated boxes", func(t *testing.T) {
		a := createBoxBody(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1})
		b := createBoxBody(mgl64.Vec3{3, 0, 0}, mgl64.Vec3{1, 1, 1})

		axis, separated := SeparatingAxis(a, b, tol)

		require.True(t, separated)
		assert.True(t, vec3Near(axis, mgl64.Vec3{1, 0, 0}, 1e-12), "axis %v", axis)

		// A projects below B along the axis
		maxA := a.Support(axis).Dot(axis)
		minB := b.Support(axis.Mul(-1)).Dot(axis)
		assert.Less(t, maxA, minB)
	})

	t.Run("overlapping boxes", func(t *testing.T) {
		a := createBoxBody(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1})
		b := createBoxBody(mgl64.Vec3{0.5, 0, 0}, mgl64.Vec3{1, 1, 1})

		axis, separated := SeparatingAxis(a, b, tol)

		assert.False(t, separated)
		assert.Equal(t, mgl64.Vec3{}, axis)
	})

	t.Run("no budget means no proof", func(t *testing.T) {
		a := createBoxBody(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1})
		b := createBoxBody(mgl64.Vec3{3, 0, 0}, mgl64.Vec3{1, 1, 1})

		noBudget := tol
		noBudget.MaxIterations = 0
		_, separated := SeparatingAxis(a, b, noBudget)

		assert.False(t, separated)
	})
}

func TestPenetration(t *testing.T) {
	tol := DefaultTolerances()

	t.Run("separated beyond contact distance", func(t *testing.T) {
		a := createSphereBody(mgl64.Vec3{0, 0, 0}, 1.0)
		b := createSphereBody(mgl64.Vec3{4, 0, 0}, 1.0)

		result := Penetration(a, b, 0, &Simplex{}, tol)

		assert.Equal(t, StatusNonIntersect, result.Status)
		assert.InDelta(t, -2.0, result.Depth, 1e-9)
		assert.True(t, vec3Near(result.Normal, mgl64.Vec3{1, 0, 0}, 1e-12))
		assert.True(t, vec3Near(result.ContactA, mgl64.Vec3{1, 0, 0}, 1e-9))
		assert.True(t, vec3Near(result.ContactB, mgl64.Vec3{3, 0, 0}, 1e-9))
	})

	t.Run("separated within contact distance", func(t *testing.T) {
		a := createSphereBody(mgl64.Vec3{0, 0, 0}, 1.0)
		b := createSphereBody(mgl64.Vec3{4, 0, 0}, 1.0)

		result := Penetration(a, b, 2.5, &Simplex{}, tol)

		assert.Equal(t, StatusMargin, result.Status)
		assert.InDelta(t, -2.0, result.Depth, 1e-9)
	})

	t.Run("box above a flat hull has no margin", func(t *testing.T) {
		// A zero-thickness hull has a zero margin, and the box then shares it
		box := createBoxBody(mgl64.Vec3{0, 2, 0}, mgl64.Vec3{0.5, 0.5, 0.5})
		ground := actor.NewRigidBody(actor.NewTransform(), actor.NewConvexHull(
			mgl64.Vec3{-5, 0, -5},
			mgl64.Vec3{5, 0, -5},
			mgl64.Vec3{5, 0, 5},
			mgl64.Vec3{-5, 0, 5},
		))

		result := Penetration(box, ground, 0, &Simplex{}, tol)

		require.Equal(t, StatusNonIntersect, result.Status)
		assert.Zero(t, result.MarginA)
		assert.Zero(t, result.MarginB)
		assert.InDelta(t, -1.5, result.Depth, 1e-9)
		assert.True(t, vec3Near(result.Normal, mgl64.Vec3{0, -1, 0}, 1e-12), "normal %v", result.Normal)
		assert.True(t, vec3Near(result.ContactA, mgl64.Vec3{0, 1.5, 0}, 1e-9), "contactA %v", result.ContactA)
		assert.True(t, vec3Near(result.ContactB, mgl64.Vec3{0, 0, 0}, 1e-9), "contactB %v", result.ContactB)

		swapped := Penetration(ground, box, 0, &Simplex{}, tol)

		require.Equal(t, StatusNonIntersect, swapped.Status)
		assert.InDelta(t, -1.5, swapped.Depth, 1e-9)
		assert.True(t, vec3Near(swapped.Normal, mgl64.Vec3{0, 1, 0}, 1e-12), "normal %v", swapped.Normal)
		assert.True(t, vec3Near(swapped.ContactA, mgl64.Vec3{0, 0, 0}, 1e-9), "contactA %v", swapped.ContactA)
		assert.True(t, vec3Near(swapped.ContactB, mgl64.Vec3{0, 1.5, 0}, 1e-9), "contactB %v", swapped.ContactB)
	})

	t.Run("shallow overlap", func(t *testing.T) {
		a := createSphereBody(mgl64.Vec3{0, 0, 0}, 1.0)
		b := createSphereBody(mgl64.Vec3{1, 0, 0}, 1.0)

		result := Penetration(a, b, 0, &Simplex{}, tol)

		assert.Equal(t, StatusMargin, result.Status)
		assert.InDelta(t, 1.0, result.Depth, 1e-9)
		assert.Equal(t, 1.0, result.MarginA)
		assert.Equal(t, 1.0, result.MarginB)
		// ContactA = ContactB + Depth*Normal
		assert.True(t, vec3Near(result.ContactA, result.ContactB.Add(result.Normal.Mul(result.Depth)), 1e-9))
	})

	t.Run("cores overlap", func(t *testing.T) {
		a := createBoxBody(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1})
		b := createBoxBody(mgl64.Vec3{0.5, 0, 0}, mgl64.Vec3{1, 1, 1})

		simplex := &Simplex{}
		result := Penetration(a, b, 0, simplex, tol)

		assert.Equal(t, StatusDepenetration, result.Status)
		// Hulls share the smaller margin
		assert.InDelta(t, 0.05, result.MarginA, 1e-12)
		assert.InDelta(t, 0.05, result.MarginB, 1e-12)
		assert.Greater(t, simplex.Count, 0)
	})

	t.Run("rounded shape keeps its own margin", func(t *testing.T) {
		a := createSphereBody(mgl64.Vec3{0, 0, 0}, 0.5)
		b := createBoxBody(mgl64.Vec3{0, 2, 0}, mgl64.Vec3{2, 1, 2})

		result := Penetration(a, b, 0, &Simplex{}, tol)

		assert.InDelta(t, 0.5, result.MarginA, 1e-12)
		assert.InDelta(t, 0.05, result.MarginB, 1e-12)
	})
}

func TestRecalculateSimplex(t *testing.T) {
	tol := DefaultTolerances()

	t.Run("overlapping boxes enclose the origin", func(t *testing.T) {
		a := createBoxBody(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1})
		b := createBoxBody(mgl64.Vec3{0.5, 0, 0}, mgl64.Vec3{1, 1, 1})

		simplex := &Simplex{}
		result := RecalculateSimplex(a, b, simplex, tol)

		assert.Equal(t, StatusDepenetration, result.Status)
		assert.True(t, result.Converged)
		assert.Zero(t, result.SquaredDistance)
		assert.Equal(t, 2, simplex.Count)
	})

	t.Run("separated boxes stall", func(t *testing.T) {
		a := createBoxBody(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1})
		b := createBoxBody(mgl64.Vec3{3, 0, 0}, mgl64.Vec3{1, 1, 1})

		result := RecalculateSimplex(a, b, &Simplex{}, tol)

		assert.Equal(t, StatusNonIntersect, result.Status)
		assert.InDelta(t, 1.0, result.SquaredDistance, 1e-12)
	})
}

func TestStatus_String(t *testing.T) {
	tests := map[Status]string{
		StatusNonIntersect:  "NON_INTERSECT",
		StatusMargin:        "MARGIN",
		StatusDepenetration: "DEPENETRATION",
		StatusContact:       "CONTACT",
		Status(-1):          "UNDEFINED",
	}
	for status, expected := range tests {
		assert.Equal(t, expected, status.String())
	}
}

func TestTolerances(t *testing.T) {
	tol := DefaultTolerances()

	assert.InDelta(t, 5e-5, tol.shallowTerminationSquared(0.05), 1e-18)
	assert.InDelta(t, 2.5e-9, tol.deepTerminationSquared(0.05), 1e-18)
	// Zero margins fall back to the floor
	assert.Equal(t, minTerminationSquared, tol.shallowTerminationSquared(0))
	assert.Equal(t, minTerminationSquared, tol.deepTerminationSquared(0))
}

func TestUnitOr(t *testing.T) {
	assert.True(t, vec3Near(unitOr(mgl64.Vec3{0, 3, 4}, mgl64.Vec3{1, 0, 0}), mgl64.Vec3{0, 0.6, 0.8}, 1e-12))
	assert.True(t, vec3Near(unitOr(mgl64.Vec3{}, mgl64.Vec3{0, 0, -2}), mgl64.Vec3{0, 0, -1}, 1e-12))
	assert.Equal(t, mgl64.Vec3{1, 0, 0}, unitOr(mgl64.Vec3{}, mgl64.Vec3{}))
	assert.False(t, math.IsNaN(unitOr(mgl64.Vec3{1e-200, 0, 0}, mgl64.Vec3{}).X()))
}

// Benchmark tests

func BenchmarkGJK_Spheres_Separated(b *testing.B) {
	a := createSphereBody(mgl64.Vec3{0, 0, 0}, 1.0)
	body := createSphereBody(mgl64.Vec3{10, 0, 0}, 1.0)
	simplex := &Simplex{}
	tol := DefaultTolerances()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		GJK(a, body, simplex, tol)
	}
}

func BenchmarkPenetration_Boxes(b *testing.B) {
	a := createBoxBody(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1})
	box := createBoxBody(mgl64.Vec3{1.5, 0.2, 0}, mgl64.Vec3{1, 1, 1})
	simplex := &Simplex{}
	tol := DefaultTolerances()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Penetration(a, box, 0, simplex, tol)
	}
}
