package render

import (
	"testing"

	"github.com/swdee/go-playertrack/detect"
	"github.com/swdee/go-playertrack/render/palette"
)

func TestDetectionLabel(t *testing.T) {

	names := []string{"person", "", "sports ball"}

	tests := []struct {
		class int
		prob  float32
		want  string
	}{
		{0, 0.874, "person 0.87"},
		{1, 0.5, "Player 0.50"},
		{2, 0.999, "sports ball 1.00"},
		{7, 0.41, "Player 0.41"},
		{-1, 0.41, "Player 0.41"},
	}

	for _, tc := range tests {
		got := detectionLabel(detect.DetectResult{Class: tc.class, Probability: tc.prob}, names)

		if got != tc.want {
			t.Errorf("class %d: expected %q, got %q", tc.class, tc.want, got)
		}
	}

	if got := detectionLabel(detect.DetectResult{Probability: 1}, nil); got != "Player 1.00" {
		t.Errorf("expected default label, got %q", got)
	}
}

func TestBoxStyleColor(t *testing.T) {

	style := DefaultBoxStyle()

	if style.colorFor(3) != palette.Track(3) {
		t.Errorf("expected palette color for track 3")
	}

	style.Classic = true

	if style.colorFor(3) != palette.Classic(3) {
		t.Errorf("expected classic color for track 3")
	}
}
