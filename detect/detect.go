// Package detect produces per frame player bounding boxes from video frames
// and converts them into the boxes the tracker associates.
package detect

import (
	"image"

	"github.com/swdee/go-playertrack/tracker"
	"gocv.io/x/gocv"
)

// Detector finds objects in a single frame
type Detector interface {
	// Detect returns the objects found in img in detector order
	Detect(img gocv.Mat) ([]DetectResult, error)
	// Close releases any resources held by the Detector
	Close() error
}

// BoxRect are the dimensions of the bounding box of a detect object
type BoxRect struct {
	Left   int
	Right  int
	Top    int
	Bottom int
}

// Rect returns the box as an image.Rectangle
func (b BoxRect) Rect() image.Rectangle {
	return image.Rect(b.Left, b.Top, b.Right, b.Bottom)
}

// BoundingBox converts the box to the tracker representation, an error is
// returned if the box has no area
func (b BoxRect) BoundingBox() (tracker.BoundingBox, error) {
	return tracker.NewBoundingBox(b.Left, b.Top, b.Right, b.Bottom)
}

// DetectResult defines the attributes of a single object detected
type DetectResult struct {
	// Class is the line number in the labels file the Model was trained on
	// defining the Class of the detected object.  Contour detections have
	// Class 0.
	Class int
	// Box are the bounding box dimensions of the object location
	Box BoxRect
	// Probability is the confidence score of the object detected, contour
	// detections report 1
	Probability float32
	// ID is a unique ID assigned to the detection result
	ID int64
}

// ToBoxes converts detection results into tracker boxes keeping their order.
// Degenerate boxes are dropped and counted.
func ToBoxes(results []DetectResult) ([]tracker.BoundingBox, int) {

	boxes := make([]tracker.BoundingBox, 0, len(results))
	dropped := 0

	for _, r := range results {
		b, err := r.Box.BoundingBox()

		if err != nil {
			dropped++
			continue
		}

		boxes = append(boxes, b)
	}

	return boxes, dropped
}

// Filter keeps the results whose Class is listed in classes and whose
// Probability exceeds the minimum given for that class.  An empty map keeps
// every result.
func Filter(results []DetectResult, classes map[int]float32) []DetectResult {

	if len(classes) == 0 {
		return results
	}

	out := make([]DetectResult, 0, len(results))

	for _, r := range results {
		if minConf, ok := classes[r.Class]; ok && r.Probability > minConf {
			out = append(out, r)
		}
	}

	return out
}
