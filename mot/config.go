package mot

import "github.com/pkg/errors"

const (
	// DefaultMaxDistance is default association gate in pixels
	DefaultMaxDistance = 60.0
	// DefaultMaxMissed is default number of consecutive missed frames a track survives
	DefaultMaxMissed = 10
	// DefaultTrailLength is default number of observed centroids kept per track
	DefaultTrailLength = 150
)

// EstimatorConfig holds noise scales of the constant-velocity filter.
// Each scale multiplies an identity matrix.
type EstimatorConfig struct {
	// Initial covariance scale (P0). Default 100
	InitialUncertainty float64 `mapstructure:"initial_uncertainty"`
	// Process noise scale (Q). Default 0.01
	ProcessNoise float64 `mapstructure:"process_noise"`
	// Measurement noise scale (R). Default 5
	MeasurementNoise float64 `mapstructure:"measurement_noise"`
}

// DefaultEstimatorConfig returns default noise scales
func DefaultEstimatorConfig() EstimatorConfig {
	return EstimatorConfig{
		InitialUncertainty: 100.0,
		ProcessNoise:       0.01,
		MeasurementNoise:   5.0,
	}
}

// Validate checks that every scale is positive and finite
func (cfg EstimatorConfig) Validate() error {
	if !isPositive(cfg.InitialUncertainty) {
		return errors.Wrapf(ErrInvalidConfig, "initial uncertainty must be positive, got %v", cfg.InitialUncertainty)
	}
	if !isPositive(cfg.ProcessNoise) {
		return errors.Wrapf(ErrInvalidConfig, "process noise must be positive, got %v", cfg.ProcessNoise)
	}
	if !isPositive(cfg.MeasurementNoise) {
		return errors.Wrapf(ErrInvalidConfig, "measurement noise must be positive, got %v", cfg.MeasurementNoise)
	}
	return nil
}

// Config is full set of tracker parameters
type Config struct {
	// Association gate (most of time in pixels). Default 60.0
	MaxDistance float64 `mapstructure:"max_distance"`
	// Max number of consecutive frames when object could not be found again. Default 10
	MaxMissed int `mapstructure:"max_missed"`
	// Max number of observed centroids kept per track. Default 150
	TrailLength int `mapstructure:"trail_length"`
	// Filter noise scales
	Estimator EstimatorConfig `mapstructure:"estimator"`
}

// DefaultConfig returns default tracker parameters
func DefaultConfig() Config {
	return Config{
		MaxDistance: DefaultMaxDistance,
		MaxMissed:   DefaultMaxMissed,
		TrailLength: DefaultTrailLength,
		Estimator:   DefaultEstimatorConfig(),
	}
}

// Validate checks parameters; it never clamps values
func (cfg Config) Validate() error {
	if !isPositive(cfg.MaxDistance) {
		return errors.Wrapf(ErrInvalidConfig, "max distance must be positive, got %v", cfg.MaxDistance)
	}
	if cfg.MaxMissed <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "max missed frames must be positive, got %d", cfg.MaxMissed)
	}
	if cfg.TrailLength <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "trail length must be positive, got %d", cfg.TrailLength)
	}
	return cfg.Estimator.Validate()
}
