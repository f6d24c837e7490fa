package mot

import (
	"math"

	"github.com/pkg/errors"
)

// Detection is a single object found by detector on a frame.
// Centroid is derived from bounding box and is never supplied by detector.
type Detection struct {
	BBox       BBox
	Confidence float64
	Class      string
}

func NewDetection(bbox BBox, confidence float64, class string) Detection {
	return Detection{
		BBox:       bbox,
		Confidence: confidence,
		Class:      class,
	}
}

// Centroid returns integer midpoint of detection's bounding box
func (det Detection) Centroid() Point {
	return det.BBox.Centroid()
}

// Validate checks box ordering and confidence range.
// Returned error wraps ErrInvalidDetection.
func (det Detection) Validate() error {
	if !det.BBox.Valid() {
		return errors.Wrapf(ErrInvalidDetection, "unordered box coordinates (%d,%d,%d,%d)", det.BBox.X1, det.BBox.Y1, det.BBox.X2, det.BBox.Y2)
	}
	if math.IsNaN(det.Confidence) || det.Confidence < 0 || det.Confidence > 1 {
		return errors.Wrapf(ErrInvalidDetection, "confidence %v is out of [0, 1]", det.Confidence)
	}
	return nil
}
