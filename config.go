package proximity

import (
	"github.com/akmonengine/proximity/epa"
	"github.com/akmonengine/proximity/gjk"
	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const DEFAULT_WORKERS = 1

// Config holds the tunables of a Detector.
type Config struct {
	// Workers is the number of goroutines per stage of the batch queries.
	Workers int `json:"workers"`
	// ContactDistance widens the margin shells: pairs closer than that are
	// still reported as contacts, with a negative depth.
	ContactDistance float64 `json:"contact_distance"`
	// EPATolerance is the relative convergence tolerance of the deep path.
	EPATolerance float64        `json:"epa_tolerance"`
	Tolerances   gjk.Tolerances `json:"tolerances"`
}

// DefaultConfig returns a single-worker configuration with the default tolerances.
func DefaultConfig() Config {
	return Config{
		Workers:         DEFAULT_WORKERS,
		ContactDistance: 0,
		EPATolerance:    epa.DefaultConvergenceTolerance,
		Tolerances:      gjk.DefaultTolerances(),
	}
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var err error
	if c.Workers < 1 {
		err = multierr.Append(err, errors.Errorf("workers must be at least 1, got %d", c.Workers))
	}
	if c.ContactDistance < 0 {
		err = multierr.Append(err, errors.Errorf("contact_distance must not be negative, got %g", c.ContactDistance))
	}
	if c.EPATolerance <= 0 || c.EPATolerance >= 1 {
		err = multierr.Append(err, errors.Errorf("epa_tolerance must be in (0, 1), got %g", c.EPATolerance))
	}

	t := c.Tolerances
	if t.MaxIterations < 1 {
		err = multierr.Append(err, errors.Errorf("tolerances.max_iterations must be at least 1, got %d", t.MaxIterations))
	}
	for _, field := range []struct {
		name  string
		value float64
	}{
		{"distance_epsilon", t.DistanceEpsilon},
		{"overlap_epsilon", t.OverlapEpsilon},
		{"margin_progress_epsilon", t.MarginProgressEpsilon},
		{"margin_overlap_epsilon", t.MarginOverlapEpsilon},
		{"separating_axis_epsilon", t.SeparatingAxisEpsilon},
		{"margin_scale", t.MarginScale},
		{"triangle_degenerate_epsilon", t.TriangleDegenerateEpsilon},
		{"tetrahedron_degenerate_epsilon", t.TetrahedronDegenerateEpsilon},
	} {
		if field.value < 0 {
			err = multierr.Append(err, errors.Errorf("tolerances.%s must not be negative, got %g", field.name, field.value))
		}
	}

	return err
}

// ConfigFromMap decodes attributes over DefaultConfig, using the json field
// names. Unknown keys are rejected; numbers given as strings are accepted.
func ConfigFromMap(attributes map[string]interface{}) (Config, error) {
	conf := DefaultConfig()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           &conf,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return Config{}, errors.Wrap(err, "creating config decoder")
	}
	if err := decoder.Decode(attributes); err != nil {
		return Config{}, errors.Wrap(err, "decoding config")
	}
	if err := conf.Validate(); err != nil {
		return Config{}, errors.Wrap(err, "invalid config")
	}
	return conf, nil
}

// Option configures a Detector.
type Option func(*Detector)

// WithConfig replaces the whole configuration.
func WithConfig(config Config) Option {
	return func(d *Detector) {
		d.config = config
	}
}

func WithWorkers(workers int) Option {
	return func(d *Detector) {
		d.config.Workers = workers
	}
}

func WithContactDistance(distance float64) Option {
	return func(d *Detector) {
		d.config.ContactDistance = distance
	}
}

func WithEPATolerance(tolerance float64) Option {
	return func(d *Detector) {
		d.config.EPATolerance = tolerance
	}
}

func WithTolerances(tolerances gjk.Tolerances) Option {
	return func(d *Detector) {
		d.config.Tolerances = tolerances
	}
}

// WithLogger sets the logger of deep-path diagnostics. A nil logger is ignored.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Detector) {
		if logger != nil {
			d.logger = logger
		}
	}
}
