package mot

import (
	"image"
	"math"
)

// BBox is an axis-aligned bounding box in integer pixel coordinates.
// (X1, Y1) is the top-left corner and (X2, Y2) the bottom-right one.
type BBox struct {
	X1 int
	Y1 int
	X2 int
	Y2 int
}

func NewBBox(x1, y1, x2, y2 int) BBox {
	return BBox{
		X1: x1,
		Y1: y1,
		X2: x2,
		Y2: y2,
	}
}

func NewBBoxFrom(rect image.Rectangle) BBox {
	return BBox{
		X1: rect.Min.X,
		Y1: rect.Min.Y,
		X2: rect.Max.X,
		Y2: rect.Max.Y,
	}
}

// Rect converts bounding box to image.Rectangle
func (bbox BBox) Rect() image.Rectangle {
	return image.Rect(bbox.X1, bbox.Y1, bbox.X2, bbox.Y2)
}

// Width returns horizontal size of bounding box
func (bbox BBox) Width() int {
	return bbox.X2 - bbox.X1
}

// Height returns vertical size of bounding box
func (bbox BBox) Height() int {
	return bbox.Y2 - bbox.Y1
}

// Valid reports whether corners are strictly ordered on both axes
func (bbox BBox) Valid() bool {
	return bbox.X1 < bbox.X2 && bbox.Y1 < bbox.Y2
}

// Centroid returns integer midpoint of bounding box (rounded toward zero)
func (bbox BBox) Centroid() Point {
	return Point{
		X: float64((bbox.X1 + bbox.X2) / 2),
		Y: float64((bbox.Y1 + bbox.Y2) / 2),
	}
}

type Point struct {
	X float64
	Y float64
}

func NewPoint(x, y float64) Point {
	return Point{
		X: x,
		Y: y,
	}
}

func NewPointFrom(point image.Point) Point {
	return Point{
		X: float64(point.X),
		Y: float64(point.Y),
	}
}

func euclideanDistance(p1, p2 Point) float64 {
	return math.Hypot(p1.X-p2.X, p1.Y-p2.Y)
}
