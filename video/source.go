package video

import (
	"context"

	"github.com/swdee/go-playertrack"
	"github.com/swdee/go-playertrack/detect"
	"gocv.io/x/gocv"
)

// Source runs a Detector over every frame of a Reader and implements
// playertrack.FrameSource
type Source struct {
	Reader   *Reader
	Detector detect.Detector
	// OnDetect is called with the raw detector output of each frame before
	// it is converted to tracker boxes, it may be nil
	OnDetect func(index int, img gocv.Mat, results []detect.DetectResult)
	index    int
}

// NewSource returns a Source reading frames from r through d
func NewSource(r *Reader, d detect.Detector) *Source {
	return &Source{
		Reader:   r,
		Detector: d,
	}
}

// Next implements playertrack.FrameSource.  The returned Frame carries the
// decoded gocv.Mat as its Image which is closed by Frame.Release.
func (s *Source) Next(ctx context.Context) (playertrack.Frame, error) {

	if err := ctx.Err(); err != nil {
		return playertrack.Frame{}, err
	}

	img, err := s.Reader.Read()

	if err != nil {
		return playertrack.Frame{}, err
	}

	results, err := s.Detector.Detect(img)

	if err != nil {
		img.Close()
		return playertrack.Frame{}, err
	}

	if s.OnDetect != nil {
		s.OnDetect(s.index, img, results)
	}

	boxes, dropped := detect.ToBoxes(results)

	if dropped > 0 {
		playertrack.Logf("Frame %d: dropped %d degenerate detections",
			s.index, dropped)
	}

	frame := playertrack.Frame{
		Index: s.index,
		Boxes: boxes,
		Image: img,
		Release: func() {
			img.Close()
		},
	}
	s.index++

	return frame, nil
}
