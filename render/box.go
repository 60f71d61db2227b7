package render

import (
	"fmt"
	"image"
	"image/color"

	"github.com/swdee/go-playertrack/detect"
	"github.com/swdee/go-playertrack/render/palette"
	"github.com/swdee/go-playertrack/tracker"
	"gocv.io/x/gocv"
)

// BoxStyle defines how tracked boxes are drawn
type BoxStyle struct {
	// LineThickness is used for tracks matched in the current frame
	LineThickness int
	// LostThickness is used for tracks that missed the current frame, a
	// value of 0 skips drawing lost tracks
	LostThickness int
	// Classic colors boxes green with a per ID tint instead of using the
	// distinct track palette
	Classic bool
	// Label is the format of the text drawn above each box and is given
	// the track ID
	Label string
}

// DefaultBoxStyle returns default box style settings
func DefaultBoxStyle() BoxStyle {
	return BoxStyle{
		LineThickness: 2,
		LostThickness: 1,
		Label:         "ID: %d",
	}
}

// colorFor returns the box color of a track ID
func (s BoxStyle) colorFor(id int) color.RGBA {
	if s.Classic {
		return palette.Classic(id)
	}
	return palette.Track(id)
}

// TrackerBoxes renders the bounding box and ID label of every live track
func TrackerBoxes(img *gocv.Mat, tracks []tracker.Track, font Font,
	style BoxStyle) {

	labels := make([]boxLabel, 0, len(tracks))

	for _, trk := range tracks {

		thickness := style.LineThickness

		if trk.IsLost() {
			if style.LostThickness <= 0 {
				continue
			}
			thickness = style.LostThickness
		}

		clr := style.colorFor(trk.ID)
		rect := trk.Box.Rect()

		gocv.Rectangle(img, rect, clr, thickness)

		labels = append(labels, newBoxLabel(rect,
			fmt.Sprintf(style.Label, trk.ID), clr, font, thickness))
	}

	drawLabels(img, labels, font)
}

// DetectionBoxes renders the raw detector output with class name and
// probability labels.  When classNames is empty the label is "Player".
func DetectionBoxes(img *gocv.Mat, results []detect.DetectResult,
	classNames []string, font Font, lineThickness int) {

	labels := make([]boxLabel, 0, len(results))

	for _, r := range results {

		rect := r.Box.Rect()

		if rect.Empty() {
			continue
		}

		gocv.Rectangle(img, rect, palette.Green, lineThickness)

		labels = append(labels, newBoxLabel(rect,
			detectionLabel(r, classNames), palette.Green, font, lineThickness))
	}

	drawLabels(img, labels, font)
}

// detectionLabel returns the text label for a detection
func detectionLabel(r detect.DetectResult, classNames []string) string {

	name := "Player"

	if r.Class >= 0 && r.Class < len(classNames) && classNames[r.Class] != "" {
		name = classNames[r.Class]
	}

	return fmt.Sprintf("%s %.2f", name, r.Probability)
}

// FrameNumber draws the frame index in the top left corner
func FrameNumber(img *gocv.Mat, frame int, font Font) {
	text := fmt.Sprintf("Frame %d", frame)
	size := gocv.GetTextSize(text, font.Face, font.Scale, font.Thickness)
	pos := image.Pt(font.LeftPad, size.Y+font.TopPad)
	gocv.PutTextWithParams(img, text, pos, font.Face, font.Scale,
		palette.White, font.Thickness, font.LineType, false)
}
