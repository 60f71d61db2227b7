package detect

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// LetterboxColor is the padding colour used by YOLOv8 during training
var LetterboxColor = color.RGBA{R: 114, G: 114, B: 114, A: 255}

// letterbox holds the scale and padding that fit a source image inside the
// model input whilst keeping its aspect ratio
type letterbox struct {
	scale   float32
	xPad    int
	yPad    int
	resizeW int
	resizeH int
	dstW    int
	dstH    int
}

// newLetterbox calculates the scaling from source to destination size
func newLetterbox(srcW, srcH, dstW, dstH int) letterbox {

	l := letterbox{
		resizeW: dstW,
		resizeH: dstH,
		dstW:    dstW,
		dstH:    dstH,
	}

	scaleW := float32(dstW) / float32(srcW)
	scaleH := float32(dstH) / float32(srcH)
	l.scale = scaleH

	if scaleW < scaleH {
		l.scale = scaleW
		l.resizeH = int(float32(srcH) * l.scale)
	} else {
		l.resizeW = int(float32(srcW) * l.scale)
	}

	l.yPad = (dstH - l.resizeH) / 2
	l.xPad = (dstW - l.resizeW) / 2

	return l
}

// toSource maps a point in model input coordinates back onto the source
// image
func (l letterbox) toSource(x, y float32) (int, int) {
	return int((x - float32(l.xPad)) / l.scale),
		int((y - float32(l.yPad)) / l.scale)
}

// Resizer letterboxes frames of a fixed size to the model input size
type Resizer struct {
	letterbox
	srcW    int
	srcH    int
	tempMat gocv.Mat
}

// NewResizer returns a Resizer for source frames of the given size
func NewResizer(srcW, srcH, dstW, dstH int) *Resizer {
	return &Resizer{
		letterbox: newLetterbox(srcW, srcH, dstW, dstH),
		srcW:      srcW,
		srcH:      srcH,
		tempMat:   gocv.NewMat(),
	}
}

// Fits reports if the Resizer was created for frames of the given size
func (r *Resizer) Fits(w, h int) bool {
	return r.srcW == w && r.srcH == h
}

// Resize scales src into dest and pads the remainder with LetterboxColor
func (r *Resizer) Resize(src gocv.Mat, dest *gocv.Mat) {

	gocv.Resize(src, &r.tempMat, image.Pt(r.resizeW, r.resizeH),
		0, 0, gocv.InterpolationArea)

	gocv.CopyMakeBorder(r.tempMat, dest, r.yPad, r.dstH-r.resizeH-r.yPad,
		r.xPad, r.dstW-r.resizeW-r.xPad, gocv.BorderConstant, LetterboxColor)
}

// Close frees the resize buffer
func (r *Resizer) Close() error {
	return r.tempMat.Close()
}
