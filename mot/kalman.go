package mot

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

const (
	stateDim       = 4
	measurementDim = 2
)

// ConstantVelocity is a Kalman filter over object's centroid.
// State vector: [cx, cy, vx, vy]; time step is one frame.
// Only position components are observed.
// It implements Estimator interface.
type ConstantVelocity struct {
	state      *mat.VecDense
	covariance *mat.Dense

	transition       *mat.Dense
	observation      *mat.Dense
	processNoise     *mat.Dense
	measurementNoise *mat.Dense
}

// NewConstantVelocity creates filter placed at given centroid with zero velocity.
// Initial covariance is InitialUncertainty*I.
func NewConstantVelocity(center Point, cfg EstimatorConfig) (*ConstantVelocity, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// F = [1 0 1 0]
	//     [0 1 0 1]
	//     [0 0 1 0]
	//     [0 0 0 1]
	transition := identity(stateDim, 1.0)
	transition.Set(0, 2, 1.0)
	transition.Set(1, 3, 1.0)

	// H = [1 0 0 0]
	//     [0 1 0 0]
	observation := mat.NewDense(measurementDim, stateDim, nil)
	observation.Set(0, 0, 1.0)
	observation.Set(1, 1, 1.0)

	return &ConstantVelocity{
		state:            mat.NewVecDense(stateDim, []float64{center.X, center.Y, 0, 0}),
		covariance:       identity(stateDim, cfg.InitialUncertainty),
		transition:       transition,
		observation:      observation,
		processNoise:     identity(stateDim, cfg.ProcessNoise),
		measurementNoise: identity(measurementDim, cfg.MeasurementNoise),
	}, nil
}

// Predict advances position by velocity and grows uncertainty by process noise:
// x = F*x, P = F*P*F^T + Q
func (cv *ConstantVelocity) Predict() error {
	var state mat.VecDense
	state.MulVec(cv.transition, cv.state)

	var fp, covariance mat.Dense
	fp.Mul(cv.transition, cv.covariance)
	covariance.Mul(&fp, cv.transition.T())
	covariance.Add(&covariance, cv.processNoise)

	if !isFiniteVec(&state) || !isFiniteDense(&covariance) {
		return errors.Wrap(ErrNumericFailure, "predict produced non-finite state")
	}
	cv.state = &state
	cv.covariance = &covariance
	return nil
}

// Update corrects state with measured centroid.
// On failure previous state is kept and error wraps ErrNumericFailure.
func (cv *ConstantVelocity) Update(measurement Point) error {
	z := mat.NewVecDense(measurementDim, []float64{measurement.X, measurement.Y})

	// Innovation y = z - H*x
	var projected, innovation mat.VecDense
	projected.MulVec(cv.observation, cv.state)
	innovation.SubVec(z, &projected)

	// Innovation covariance S = H*P*H^T + R
	var hp, hpht mat.Dense
	hp.Mul(cv.observation, cv.covariance)
	hpht.Mul(&hp, cv.observation.T())
	hpht.Add(&hpht, cv.measurementNoise)
	s := mat.NewSymDense(measurementDim, nil)
	for i := 0; i < measurementDim; i++ {
		for j := i; j < measurementDim; j++ {
			s.SetSym(i, j, (hpht.At(i, j)+hpht.At(j, i))/2.0)
		}
	}

	chol := mat.Cholesky{}
	if ok := chol.Factorize(s); !ok {
		return errors.Wrap(ErrNumericFailure, "innovation covariance is not positive definite")
	}

	// Kalman gain K = P*H^T*S^-1, computed transposed: K^T = S^-1*(H*P)
	var gainT mat.Dense
	if err := chol.SolveTo(&gainT, &hp); err != nil {
		return errors.Wrapf(ErrNumericFailure, "can't compute kalman gain: %v", err)
	}

	// x = x + K*y
	var correction, state mat.VecDense
	correction.MulVec(gainT.T(), &innovation)
	state.AddVec(cv.state, &correction)

	// P = (I - K*H)*P = P - K*(H*P)
	var khp, covariance mat.Dense
	khp.Mul(gainT.T(), &hp)
	covariance.Sub(cv.covariance, &khp)

	if !isFiniteVec(&state) || !isFiniteDense(&covariance) {
		return errors.Wrap(ErrNumericFailure, "update produced non-finite state")
	}
	cv.state = &state
	cv.covariance = &covariance
	return nil
}

// Position returns current centroid estimate
func (cv *ConstantVelocity) Position() Point {
	return Point{X: cv.state.AtVec(0), Y: cv.state.AtVec(1)}
}

// Velocity returns current velocity estimate (pixels per frame)
func (cv *ConstantVelocity) Velocity() Point {
	return Point{X: cv.state.AtVec(2), Y: cv.state.AtVec(3)}
}

// State returns copy of state vector [cx, cy, vx, vy]
func (cv *ConstantVelocity) State() []float64 {
	out := make([]float64, stateDim)
	for i := range out {
		out[i] = cv.state.AtVec(i)
	}
	return out
}

// Covariance returns copy of 4x4 uncertainty estimate
func (cv *ConstantVelocity) Covariance() *mat.Dense {
	return mat.DenseCopyOf(cv.covariance)
}

func identity(n int, scale float64) *mat.Dense {
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, scale)
	}
	return m
}

func isFiniteVec(v *mat.VecDense) bool {
	for i := 0; i < v.Len(); i++ {
		if !isFinite(v.AtVec(i)) {
			return false
		}
	}
	return true
}

func isFiniteDense(m *mat.Dense) bool {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if !isFinite(m.At(i, j)) {
				return false
			}
		}
	}
	return true
}
