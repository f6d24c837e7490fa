package mot

import (
	"image"
	"math"
	"testing"
)

const (
	eps = 0.00001
)

func TestEuclideanDistance(t *testing.T) {
	p1 := Point{X: 341, Y: 264}
	p2 := Point{X: 421, Y: 427}
	correnctAnswer := 181.57367
	answer := euclideanDistance(p1, p2)
	if math.Abs(answer-correnctAnswer) > eps {
		t.Errorf("Wrong answer: %v, correct answer: %v", answer, correnctAnswer)
	}
}

func TestBBoxCentroid(t *testing.T) {
	cases := []struct {
		bbox     BBox
		expected Point
	}{
		{NewBBox(0, 0, 10, 10), Point{X: 5, Y: 5}},
		{NewBBox(2, 0, 12, 10), Point{X: 7, Y: 5}},
		{NewBBox(0, 0, 5, 3), Point{X: 2, Y: 1}},
		// Truncation toward zero, not floor
		{NewBBox(-5, -3, 0, 0), Point{X: -2, Y: -1}},
	}
	for _, c := range cases {
		got := c.bbox.Centroid()
		if got != c.expected {
			t.Errorf("Centroid of %v: expected %v, got %v", c.bbox, c.expected, got)
		}
	}
}

func TestBBoxValid(t *testing.T) {
	if !NewBBox(0, 0, 1, 1).Valid() {
		t.Error("Unit box should be valid")
	}
	if NewBBox(10, 0, 10, 5).Valid() {
		t.Error("Zero-width box should be invalid")
	}
	if NewBBox(0, 10, 5, 2).Valid() {
		t.Error("Inverted box should be invalid")
	}
}

func TestBBoxRectRoundTrip(t *testing.T) {
	rect := image.Rect(3, 4, 30, 40)
	bbox := NewBBoxFrom(rect)
	if bbox.Width() != 27 || bbox.Height() != 36 {
		t.Errorf("Unexpected size %dx%d", bbox.Width(), bbox.Height())
	}
	if bbox.Rect() != rect {
		t.Errorf("Expected %v, got %v", rect, bbox.Rect())
	}
}
