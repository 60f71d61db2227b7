package tracker

import (
	"errors"
	"fmt"
	"image"
)

// ErrInvalidBoundingBox is returned when a bounding box has no area, ie:
// X2 <= X1 or Y2 <= Y1
var ErrInvalidBoundingBox = errors.New("invalid bounding box")

// BoundingBox is an axis aligned box in pixel coordinates where (X1, Y1) is
// the top left corner and (X2, Y2) the bottom right corner
type BoundingBox struct {
	X1, Y1, X2, Y2 int
}

// NewBoundingBox returns a validated BoundingBox
func NewBoundingBox(x1, y1, x2, y2 int) (BoundingBox, error) {

	b := BoundingBox{X1: x1, Y1: y1, X2: x2, Y2: y2}

	if !b.Valid() {
		return BoundingBox{}, fmt.Errorf("%w: %s", ErrInvalidBoundingBox, b)
	}

	return b, nil
}

// FromRect converts an image.Rectangle into a BoundingBox
func FromRect(r image.Rectangle) (BoundingBox, error) {
	return NewBoundingBox(r.Min.X, r.Min.Y, r.Max.X, r.Max.Y)
}

// Valid reports whether the box has a positive width and height
func (b BoundingBox) Valid() bool {
	return b.X2 > b.X1 && b.Y2 > b.Y1
}

// Width of the box
func (b BoundingBox) Width() int {
	return b.X2 - b.X1
}

// Height of the box
func (b BoundingBox) Height() int {
	return b.Y2 - b.Y1
}

// Area of the box, degenerate boxes have a zero or negative area
func (b BoundingBox) Area() int {
	return b.Width() * b.Height()
}

// Rect returns the box as an image.Rectangle for drawing
func (b BoundingBox) Rect() image.Rectangle {
	return image.Rect(b.X1, b.Y1, b.X2, b.Y2)
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("(%d,%d,%d,%d)", b.X1, b.Y1, b.X2, b.Y2)
}

// Point is the x,y coordinate of a bounding box center
type Point struct {
	X, Y int
}

// IoU calculates the Intersection over Union of two boxes.  The result is
// in the range [0,1] and is 0 when the union has no area.
func IoU(a, b BoundingBox) float64 {

	iw := max(0, min(a.X2, b.X2)-max(a.X1, b.X1))
	ih := max(0, min(a.Y2, b.Y2)-max(a.Y1, b.Y1))
	inter := iw * ih

	union := a.Area() + b.Area() - inter

	if union <= 0 {
		return 0
	}

	// a box with no area on either axis has no overlap, so inter is 0 and
	// the ratio stays within [0,1]
	return float64(inter) / float64(union)
}

// Centroid returns the integer center point of the box using floor division
func Centroid(b BoundingBox) Point {
	return Point{
		X: floorHalf(b.X1 + b.X2),
		Y: floorHalf(b.Y1 + b.Y2),
	}
}

// floorHalf divides by two rounding towards negative infinity
func floorHalf(v int) int {
	if v < 0 && v%2 != 0 {
		return v/2 - 1
	}
	return v / 2
}
