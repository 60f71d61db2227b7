package render

import (
	"image"
	"image/color"

	"github.com/swdee/go-playertrack/render/palette"
	"github.com/swdee/go-playertrack/tracker"
	"gocv.io/x/gocv"
)

// TrailStyle defines the parameters used for rendering the trail style
type TrailStyle struct {
	// LineSame defines if the color of the trail line should be the
	// same color as that of the bounding box.  If set to false then use
	// the color specified at LineColor
	LineSame      bool
	LineColor     color.RGBA
	LineThickness int
	// CircleSame defines if the color of the centroid circle should be the
	// same color as that of the bounding box.  If set to false then use
	// the color specified at CircleColor
	CircleSame   bool
	CircleColor  color.RGBA
	CircleRadius int
	// MinPoints is the number of centroids a track needs before its trail
	// is drawn
	MinPoints int
}

// DefaultTrailStyle returns default trail style settings
func DefaultTrailStyle() TrailStyle {
	return TrailStyle{
		LineSame:      true,
		LineColor:     palette.Yellow,
		LineThickness: 2,
		CircleSame:    true,
		CircleColor:   palette.Pink,
		CircleRadius:  3,
		MinPoints:     2,
	}
}

// Trail draws the centroid history of each track as a polyline ending in a
// filled circle on the most recent centroid
func Trail(img *gocv.Mat, tracks []tracker.Track, boxStyle BoxStyle,
	style TrailStyle) {

	for _, trk := range tracks {

		points := trk.History()

		if len(points) < style.MinPoints || len(points) == 0 {
			continue
		}

		objClr := boxStyle.colorFor(trk.ID)
		lineClr := objClr
		circleClr := objClr

		if !style.LineSame {
			lineClr = style.LineColor
		}

		if !style.CircleSame {
			circleClr = style.CircleColor
		}

		for i := 1; i < len(points); i++ {
			gocv.Line(img,
				image.Pt(points[i-1].X, points[i-1].Y),
				image.Pt(points[i].X, points[i].Y),
				lineClr, style.LineThickness,
			)
		}

		last := points[len(points)-1]
		gocv.Circle(img, image.Pt(last.X, last.Y), style.CircleRadius,
			circleClr, -1)
	}
}
