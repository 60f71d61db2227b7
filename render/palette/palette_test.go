package palette

import (
	"image/color"
	"testing"
)

func TestTrackStable(t *testing.T) {

	for id := 0; id < 200; id++ {
		if Track(id) != Track(id) {
			t.Fatalf("color for id %d is not stable", id)
		}

		if Track(id).A != 255 {
			t.Errorf("color for id %d is not opaque", id)
		}
	}
}

func TestTrackDistinct(t *testing.T) {

	seen := make(map[color.RGBA]int)

	for id := 0; id < len(distinct)+20; id++ {
		c := Track(id)

		if prev, ok := seen[c]; ok {
			t.Errorf("ids %d and %d share color %v", prev, id, c)
		}
		seen[c] = id
	}
}

func TestTrackNegative(t *testing.T) {
	if Track(-1) != Grey {
		t.Errorf("expected grey for negative id")
	}
}

func TestClassic(t *testing.T) {

	tests := []struct {
		id   int
		want uint8
	}{
		{0, 0},
		{1, 17},
		{15, 0},
		{16, 17},
		{-1, 238},
	}

	for _, tc := range tests {
		c := Classic(tc.id)

		if c.R != tc.want || c.G != 255 || c.B != 0 {
			t.Errorf("id %d: expected R=%d G=255 B=0, got %v", tc.id, tc.want, c)
		}
	}
}

func TestHSVPrimaries(t *testing.T) {

	tests := []struct {
		hue  float64
		want color.RGBA
	}{
		{0, color.RGBA{R: 255, A: 255}},
		{120, color.RGBA{G: 255, A: 255}},
		{240, color.RGBA{B: 255, A: 255}},
	}

	for _, tc := range tests {
		if got := hsv(tc.hue, 1, 1); got != tc.want {
			t.Errorf("hue %v: expected %v, got %v", tc.hue, tc.want, got)
		}
	}
}
