// Package proximity answers distance, overlap and penetration queries between
// convex shapes.
//
// A Detector wires the gjk and epa packages together: the margin-aware GJK
// phase resolves separated and shallow pairs, and only pairs whose cores
// overlap go through the deep path (simplex recalculation, then EPA).
// Queries never fail: every result carries a gjk.Status, and a failing deep
// path falls back to the shallow estimate.
//
// A Detector is immutable after New and safe for concurrent use. Shapes must
// not be mutated while a query on them is running.
package proximity

import (
	"github.com/akmonengine/proximity/gjk"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Detector runs proximity queries with a fixed configuration.
type Detector struct {
	config Config
	logger *zap.Logger
}

// New creates a Detector from DefaultConfig and the given options.
func New(opts ...Option) (*Detector, error) {
	d := &Detector{
		config: DefaultConfig(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}

	if err := d.config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid detector config")
	}

	return d, nil
}

// Config returns the configuration of the detector.
func (d *Detector) Config() Config {
	return d.config
}

// Distance computes the closest points between the full shapes.
func (d *Detector) Distance(a, b gjk.Convex) gjk.DistanceResult {
	simplex := gjk.SimplexPool.Get().(*gjk.Simplex)
	defer gjk.SimplexPool.Put(simplex)

	return gjk.GJK(a, b, simplex, d.config.Tolerances)
}

// Margin computes the distance between the margin-shrunk cores.
func (d *Detector) Margin(a, b gjk.Convex) gjk.DistanceResult {
	simplex := gjk.SimplexPool.Get().(*gjk.Simplex)
	defer gjk.SimplexPool.Put(simplex)

	return gjk.Margin(a, b, simplex, d.config.Tolerances)
}

// SeparatingAxis returns a unit axis, pointing from A toward B, along which
// the shapes are proven apart.
func (d *Detector) SeparatingAxis(a, b gjk.Convex) (mgl64.Vec3, bool) {
	return gjk.SeparatingAxis(a, b, d.config.Tolerances)
}

// Overlaps is the coarse boolean test: true unless a separating axis is found.
func (d *Detector) Overlaps(a, b gjk.Convex) bool {
	_, separated := gjk.SeparatingAxis(a, b, d.config.Tolerances)
	return !separated
}
