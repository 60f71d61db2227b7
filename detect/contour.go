package detect

import (
	"fmt"

	"gocv.io/x/gocv"
)

// ContourParams are the edge detection settings and minimum region size
// used by the ContourDetector
type ContourParams struct {
	// CannyLow and CannyHigh are the hysteresis thresholds of the Canny edge
	// detector
	CannyLow  float32
	CannyHigh float32
	// MinWidth and MinHeight are exclusive lower bounds on the bounding
	// rectangle of a contour for it to be reported as a player
	MinWidth  int
	MinHeight int
}

// DefaultContourParams returns the parameters tuned for broadcast footage
// of players standing upright
func DefaultContourParams() ContourParams {
	return ContourParams{
		CannyLow:  50,
		CannyHigh: 200,
		MinWidth:  40,
		MinHeight: 100,
	}
}

// ContourDetector finds players as the bounding rectangles of tall external
// edge contours.  It needs no model and is used when no YOLO weights are
// available.
type ContourDetector struct {
	Params ContourParams
	idGen  *IDGenerator
	gray   gocv.Mat
	edges  gocv.Mat
}

// NewContourDetector returns a ContourDetector using the given parameters
func NewContourDetector(p ContourParams) *ContourDetector {
	return &ContourDetector{
		Params: p,
		idGen:  NewIDGenerator(),
		gray:   gocv.NewMat(),
		edges:  gocv.NewMat(),
	}
}

// Detect implements Detector.  Results are returned in contour order.
func (c *ContourDetector) Detect(img gocv.Mat) ([]DetectResult, error) {

	if img.Empty() {
		return nil, fmt.Errorf("empty image")
	}

	gocv.CvtColor(img, &c.gray, gocv.ColorBGRToGray)
	gocv.Canny(c.gray, &c.edges, c.Params.CannyLow, c.Params.CannyHigh)

	contours := gocv.FindContours(c.edges, gocv.RetrievalExternal,
		gocv.ChainApproxSimple)
	defer contours.Close()

	results := make([]DetectResult, 0)

	for i := 0; i < contours.Size(); i++ {

		rect := gocv.BoundingRect(contours.At(i))

		if rect.Dx() <= c.Params.MinWidth || rect.Dy() <= c.Params.MinHeight {
			continue
		}

		results = append(results, DetectResult{
			Box: BoxRect{
				Left:   rect.Min.X,
				Top:    rect.Min.Y,
				Right:  rect.Max.X,
				Bottom: rect.Max.Y,
			},
			Probability: 1,
			ID:          c.idGen.GetNext(),
		})
	}

	return results, nil
}

// Close implements Detector
func (c *ContourDetector) Close() error {
	c.gray.Close()
	c.edges.Close()
	return nil
}
