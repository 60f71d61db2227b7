package render

import (
	"image"
	"image/color"

	"github.com/swdee/go-playertrack/render/palette"
	"gocv.io/x/gocv"
)

type Alignment int

const (
	Left   Alignment = 1
	Center Alignment = 2
	Right  Alignment = 3
)

// Font defines the parameters for rendering text on an image using GoCV
type Font struct {
	Face      gocv.HersheyFont
	Scale     float64
	Color     color.RGBA
	Thickness int
	LineType  gocv.LineType
	// Padding to place around text
	LeftPad   int
	RightPad  int
	TopPad    int
	BottomPad int
	// Alignment of the text label to the bounding box
	Alignment Alignment
}

// DefaultFont returns default font settings
func DefaultFont() Font {
	return Font{
		Face:      gocv.FontHersheySimplex,
		Scale:     0.6,
		Color:     palette.Black,
		Thickness: 1,
		LineType:  gocv.LineAA,
		LeftPad:   4,
		RightPad:  4,
		TopPad:    4,
		BottomPad: 6,
		Alignment: Left,
	}
}

// boxLabel is a text label placed on a filled background above a box
type boxLabel struct {
	rect    image.Rectangle
	clr     color.RGBA
	text    string
	textPos image.Point
}

// newBoxLabel positions text above the top edge of box according to the
// font alignment
func newBoxLabel(box image.Rectangle, text string, clr color.RGBA,
	font Font, lineThickness int) boxLabel {

	textSize := gocv.GetTextSize(text, font.Face, font.Scale, font.Thickness)

	var centerX int

	switch font.Alignment {
	case Center:
		centerX = (box.Min.X + box.Max.X) / 2

	case Right:
		centerX = box.Max.X - (textSize.X / 2) - font.RightPad + (lineThickness / 2)

	case Left:
		fallthrough
	default:
		centerX = box.Min.X + (textSize.X / 2) + font.LeftPad - (lineThickness / 2)
	}

	return boxLabel{
		rect: image.Rect(centerX-textSize.X/2-font.LeftPad,
			box.Min.Y-textSize.Y-font.TopPad-font.BottomPad,
			centerX+textSize.X/2+font.RightPad, box.Min.Y),
		clr:     clr,
		text:    text,
		textPos: image.Pt(centerX-textSize.X/2, box.Min.Y-font.BottomPad),
	}
}

// drawLabels paints labels after all boxes so they are the top most layer
func drawLabels(img *gocv.Mat, labels []boxLabel, font Font) {
	for _, l := range labels {
		gocv.Rectangle(img, l.rect, l.clr, -1)
		gocv.PutTextWithParams(img, l.text, l.textPos, font.Face, font.Scale,
			font.Color, font.Thickness, font.LineType, false)
	}
}
