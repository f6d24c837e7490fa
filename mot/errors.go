package mot

import "github.com/pkg/errors"

var (
	// ErrInvalidConfig is returned by constructors when a parameter is out of range.
	// Values are never clamped silently.
	ErrInvalidConfig = errors.New("invalid tracker configuration")
	// ErrInvalidDetection marks a detection which has been skipped for the current frame
	ErrInvalidDetection = errors.New("invalid detection")
	// ErrNumericFailure is returned by estimators when predict/update can't be computed.
	// Estimator state is left as it was before the call.
	ErrNumericFailure = errors.New("numeric failure in motion estimator")
)
