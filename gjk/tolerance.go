package gjk

// Tolerances groups the numeric thresholds of the GJK iterators and of
// simplex reduction. The defaults are empirically tuned values; they are
// exposed so that callers working at unusual scales can adjust them.
type Tolerances struct {
	// MaxIterations bounds GJK, Margin and SeparatingAxis.
	MaxIterations int `json:"max_iterations"`
	// DistanceEpsilon is the relative progress threshold of GJK:
	// the iteration stops when sDist - v·w <= DistanceEpsilon*sDist.
	DistanceEpsilon float64 `json:"distance_epsilon"`
	// OverlapEpsilon is the squared distance under which GJK reports overlap.
	OverlapEpsilon float64 `json:"overlap_epsilon"`
	// MarginProgressEpsilon is the relative progress threshold of the
	// margin-aware iterators.
	MarginProgressEpsilon float64 `json:"margin_progress_epsilon"`
	// MarginOverlapEpsilon is the squared core distance under which Margin
	// reports overlapping cores.
	MarginOverlapEpsilon float64 `json:"margin_overlap_epsilon"`
	// SeparatingAxisEpsilon is the distance under which SeparatingAxis
	// concludes the shapes overlap.
	SeparatingAxisEpsilon float64 `json:"separating_axis_epsilon"`
	// MarginScale scales the smallest margin into the termination distance
	// of the penetration iterators.
	MarginScale float64 `json:"margin_scale"`
	// TriangleDegenerateEpsilon: triangles with sqAb*sqAc - abac² below its
	// square collapse to a segment.
	TriangleDegenerateEpsilon float64 `json:"triangle_degenerate_epsilon"`
	// TetrahedronDegenerateEpsilon: tetrahedra with a triple product below
	// it collapse to a triangle.
	TetrahedronDegenerateEpsilon float64 `json:"tetrahedron_degenerate_epsilon"`
}

// DefaultTolerances returns the tuned default thresholds.
func DefaultTolerances() Tolerances {
	return Tolerances{
		MaxIterations:                10,
		DistanceEpsilon:              1e-4,
		OverlapEpsilon:               2.5e-5,
		MarginProgressEpsilon:        1e-4,
		MarginOverlapEpsilon:         5e-4,
		SeparatingAxisEpsilon:        0.1,
		MarginScale:                  0.001,
		TriangleDegenerateEpsilon:    0.002,
		TetrahedronDegenerateEpsilon: 0.001,
	}
}

// minTerminationSquared keeps the penetration iterators from chasing an
// exactly zero distance when both shapes have no margin.
const minTerminationSquared = 1e-12

// shallowTerminationSquared is the squared core distance under which
// Penetration gives up on the margin shells and asks for the deep path.
// The threshold is deliberately coarse: minMargin*MarginScale compared
// against a squared distance.
func (t Tolerances) shallowTerminationSquared(minMargin float64) float64 {
	return max(minMargin*t.MarginScale, minTerminationSquared)
}

// deepTerminationSquared is the squared distance under which
// RecalculateSimplex considers the origin enclosed.
func (t Tolerances) deepTerminationSquared(minMargin float64) float64 {
	eps := minMargin * t.MarginScale
	return max(eps*eps, minTerminationSquared)
}
