// Package palette picks stable colors for track IDs so the same player
// keeps its color across video overlays, plots and track maps.
package palette

import (
	"image/color"
	"math"
)

var (
	Black  = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Yellow = color.RGBA{R: 255, G: 255, B: 50, A: 255}
	Pink   = color.RGBA{R: 255, G: 0, B: 255, A: 255}
	Green  = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	Grey   = color.RGBA{R: 128, G: 128, B: 128, A: 255}

	// distinct colors handed out to the first track IDs
	distinct = []color.RGBA{
		{R: 255, G: 56, B: 56, A: 255},   // #FF3838
		{R: 72, G: 249, B: 10, A: 255},   // #48F90A
		{R: 0, G: 194, B: 255, A: 255},   // #00C2FF
		{R: 255, G: 178, B: 29, A: 255},  // #FFB21D
		{R: 203, G: 56, B: 255, A: 255},  // #CB38FF
		{R: 0, G: 212, B: 187, A: 255},   // #00D4BB
		{R: 255, G: 112, B: 31, A: 255},  // #FF701F
		{R: 100, G: 115, B: 255, A: 255}, // #6473FF
		{R: 207, G: 210, B: 49, A: 255},  // #CFD231
		{R: 255, G: 55, B: 199, A: 255},  // #FF37C7
		{R: 26, G: 147, B: 52, A: 255},   // #1A9334
		{R: 255, G: 149, B: 200, A: 255}, // #FF95C8
	}
)

// golden angle in degrees, spreads successive hues evenly
const goldenAngle = 137.508

// Track returns the color for a track ID.  The first IDs get hand picked
// distinct colors, later IDs step around the hue wheel by the golden angle.
// Negative IDs are grey.
func Track(id int) color.RGBA {

	if id < 0 {
		return Grey
	}

	if id < len(distinct) {
		return distinct[id]
	}

	hue := math.Mod(float64(id)*goldenAngle, 360)

	return hsv(hue, 0.85, 0.95)
}

// Classic returns green with the red channel cycling by ID, the coloring
// used by the first overlay videos
func Classic(id int) color.RGBA {

	c := id * 17 % 255

	if c < 0 {
		c += 255
	}

	return color.RGBA{R: uint8(c), G: 255, B: 0, A: 255}
}

// hsv converts hue in degrees with saturation and value in [0,1] to RGBA
func hsv(h, s, v float64) color.RGBA {

	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c

	var r, g, b float64

	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	return color.RGBA{
		R: uint8(math.Round((r + m) * 255)),
		G: uint8(math.Round((g + m) * 255)),
		B: uint8(math.Round((b + m) * 255)),
		A: 255,
	}
}
