package report

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"

	"github.com/swdee/go-playertrack/render/palette"
	"github.com/swdee/go-playertrack/tracker"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

const (
	mapLineWidth = 2
	mapDotRadius = 3
)

// TrackMap draws the paths of records on a black image of the given size,
// labelling the last centroid of each path with its track ID.  It needs no
// OpenCV so it can be used on replayed or recorded data.
func TrackMap(records []TrackRecord, width, height int) *image.RGBA {

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(palette.Black), image.Point{}, draw.Src)

	c := newMapCanvas(img)

	for _, r := range records {

		if len(r.Path) == 0 {
			continue
		}

		clr := palette.Track(r.ID)

		for i := 1; i < len(r.Path); i++ {
			c.segment(r.Path[i-1], r.Path[i], mapLineWidth, clr)
		}

		last := r.Path[len(r.Path)-1]
		c.dot(last, mapDotRadius, clr)
		drawLabel(img, fmt.Sprintf("%d", r.ID), last.X+4, last.Y-4, clr)
	}

	return img
}

// TrackMap draws the collected tracks, see the TrackMap function
func (c *Collector) TrackMap(width, height int) *image.RGBA {
	return TrackMap(c.Records(), width, height)
}

// drawLabel writes text with its baseline starting at x, y
func drawLabel(img *image.RGBA, text string, x, y int, clr color.RGBA) {

	dr := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(clr),
		Face: basicfont.Face7x13,
		Dot: fixed.Point26_6{
			X: fixed.I(x),
			Y: fixed.I(y),
		},
	}
	dr.DrawString(text)
}

// mapCanvas fills vector shapes onto an image, each shape is rasterized on
// its own so overlapping shapes never cancel out
type mapCanvas struct {
	img *image.RGBA
	z   *vector.Rasterizer
}

func newMapCanvas(img *image.RGBA) *mapCanvas {

	size := img.Bounds().Size()

	c := &mapCanvas{
		img: img,
		z:   vector.NewRasterizer(size.X, size.Y),
	}

	return c
}

// fill draws the current path in clr and starts a new one
func (c *mapCanvas) fill(clr color.RGBA) {

	c.z.Draw(c.img, c.img.Bounds(), image.NewUniform(clr), image.Point{})

	size := c.img.Bounds().Size()
	c.z.Reset(size.X, size.Y)
}

// pixelCentre returns the vector coordinates of the centre of pixel p
func pixelCentre(p tracker.Point) (float32, float32) {
	return float32(p.X) + 0.5, float32(p.Y) + 0.5
}

// segment fills a band of the given width centred on the line from a to b.
// Zero length segments draw nothing.
func (c *mapCanvas) segment(a, b tracker.Point, width float32, clr color.RGBA) {

	ax, ay := pixelCentre(a)
	bx, by := pixelCentre(b)
	dx, dy := bx-ax, by-ay

	length := float32(math.Hypot(float64(dx), float64(dy)))

	if length == 0 {
		return
	}

	// normal to the segment scaled to half the width
	nx := -dy / length * width / 2
	ny := dx / length * width / 2

	c.z.MoveTo(ax+nx, ay+ny)
	c.z.LineTo(bx+nx, by+ny)
	c.z.LineTo(bx-nx, by-ny)
	c.z.LineTo(ax-nx, ay-ny)
	c.z.ClosePath()

	c.fill(clr)
}

// circleKappa places cubic bezier control points to approximate a quarter
// circle
const circleKappa = 0.5522848

// dot fills a circle of radius r centred on p
func (c *mapCanvas) dot(p tracker.Point, r float32, clr color.RGBA) {

	cx, cy := pixelCentre(p)
	k := circleKappa * r

	c.z.MoveTo(cx+r, cy)
	c.z.CubeTo(cx+r, cy+k, cx+k, cy+r, cx, cy+r)
	c.z.CubeTo(cx-k, cy+r, cx-r, cy+k, cx-r, cy)
	c.z.CubeTo(cx-r, cy-k, cx-k, cy-r, cx, cy-r)
	c.z.CubeTo(cx+k, cy-r, cx+r, cy-k, cx+r, cy)
	c.z.ClosePath()

	c.fill(clr)
}

// WritePNG encodes img to a PNG file at path
func WritePNG(path string, img image.Image) error {

	f, err := os.Create(path)

	if err != nil {
		return fmt.Errorf("error creating %s: %w", path, err)
	}

	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("error encoding png: %w", err)
	}

	return f.Close()
}
