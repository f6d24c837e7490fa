package mot

import (
	"math"

	kalman_filter "github.com/LdDl/kalman-filter"
	"github.com/pkg/errors"
)

// Estimator is per-track motion state filter.
// Predict and Update must leave state untouched when they return an error.
type Estimator interface {
	// Predict advances state by one frame
	Predict() error
	// Update corrects state with measured centroid
	Update(measurement Point) error
	// Position returns current centroid estimate (predicted after Predict, corrected after Update)
	Position() Point
	// Velocity returns current velocity estimate in pixels per frame
	Velocity() Point
}

// EstimatorFactory creates estimator for a new track placed at given centroid
type EstimatorFactory func(center Point, cfg EstimatorConfig) (Estimator, error)

// NewConstantVelocityEstimator is the default EstimatorFactory
func NewConstantVelocityEstimator(center Point, cfg EstimatorConfig) (Estimator, error) {
	cv, err := NewConstantVelocity(center, cfg)
	if err != nil {
		return nil, err
	}
	return cv, nil
}

// Kalman2D wraps kalman_filter.Kalman2D.
// Noise parameters are taken from EstimatorConfig: acceleration std dev is sqrt(ProcessNoise),
// measurement std dev is sqrt(MeasurementNoise). Control input is zero.
// Wrapped filter can't be rolled back: on failure it is rebuilt at the last finite position
// (velocity and covariance start over) and Position/Velocity keep their previous values.
// It implements Estimator interface.
type Kalman2D struct {
	filter   *kalman_filter.Kalman2D
	stdDevA  float64
	stdDevM  float64
	position Point
	velocity Point
}

// NewKalman2DEstimator is an EstimatorFactory backed by github.com/LdDl/kalman-filter
func NewKalman2DEstimator(center Point, cfg EstimatorConfig) (Estimator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	k := &Kalman2D{
		stdDevA:  math.Sqrt(cfg.ProcessNoise),
		stdDevM:  math.Sqrt(cfg.MeasurementNoise),
		position: center,
	}
	k.reset()
	return k, nil
}

// reset replaces wrapped filter with a fresh one placed at cached position
func (k *Kalman2D) reset() {
	dt := 1.0
	ux := 0.0
	uy := 0.0
	k.filter = kalman_filter.NewKalman2D(dt, ux, uy, k.stdDevA, k.stdDevM, k.stdDevM, kalman_filter.WithState2D(k.position.X, k.position.Y))
}

// Predict executes Kalman filter's first step.
// Velocity is derived from displacement of the predicted state.
func (k *Kalman2D) Predict() error {
	k.filter.Predict()
	stateX, stateY := k.filter.GetState()
	next := Point{X: stateX, Y: stateY}
	if !isFinitePoint(next) {
		k.reset()
		return errors.Wrap(ErrNumericFailure, "Kalman2D predict produced non-finite state")
	}
	k.velocity = Point{X: next.X - k.position.X, Y: next.Y - k.position.Y}
	k.position = next
	return nil
}

// Update executes Kalman filter's second step
func (k *Kalman2D) Update(measurement Point) error {
	err := k.filter.Update(measurement.X, measurement.Y)
	if err != nil {
		k.reset()
		return errors.Wrapf(ErrNumericFailure, "can't update Kalman2D: %v", err)
	}
	stateX, stateY := k.filter.GetState()
	next := Point{X: stateX, Y: stateY}
	if !isFinitePoint(next) {
		k.reset()
		return errors.Wrap(ErrNumericFailure, "Kalman2D update produced non-finite state")
	}
	k.position = next
	return nil
}

// Position returns last finite centroid estimate
func (k *Kalman2D) Position() Point {
	return k.position
}

// Velocity returns displacement made by the last prediction
func (k *Kalman2D) Velocity() Point {
	return k.velocity
}
