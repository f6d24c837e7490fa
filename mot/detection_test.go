package mot

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestDetectionValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		det   Detection
		valid bool
	}{
		{"ordinary", NewDetection(NewBBox(0, 0, 10, 10), 0.9, "person"), true},
		{"zero confidence", NewDetection(NewBBox(0, 0, 10, 10), 0, "person"), true},
		{"full confidence", NewDetection(NewBBox(0, 0, 10, 10), 1, "person"), true},
		{"swapped x", NewDetection(NewBBox(10, 0, 0, 10), 0.5, "person"), false},
		{"flat y", NewDetection(NewBBox(0, 5, 10, 5), 0.5, "person"), false},
		{"negative confidence", NewDetection(NewBBox(0, 0, 10, 10), -0.1, "person"), false},
		{"confidence above one", NewDetection(NewBBox(0, 0, 10, 10), 1.01, "person"), false},
		{"NaN confidence", NewDetection(NewBBox(0, 0, 10, 10), math.NaN(), "person"), false},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			err := c.det.Validate()
			if c.valid {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidDetection), "expected ErrInvalidDetection, got %v", err)
		})
	}
}

func TestDetectionCentroid(t *testing.T) {
	det := NewDetection(NewBBox(2, 0, 12, 10), 0.8, "person")
	assert.Equal(t, Point{X: 7, Y: 5}, det.Centroid())
}
