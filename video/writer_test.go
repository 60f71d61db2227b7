package video

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/swdee/go-playertrack"
	"github.com/swdee/go-playertrack/render"
	"github.com/swdee/go-playertrack/tracker"
	"gocv.io/x/gocv"
)

func TestListFrames(t *testing.T) {

	dir := t.TempDir()

	for _, name := range []string{"frame_0002.jpg", "frame_0000.jpg",
		"frame_0001.PNG", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}

	if err := os.Mkdir(filepath.Join(dir, "sub.jpg"), 0755); err != nil {
		t.Fatal(err)
	}

	files, err := ListFrames(dir)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"frame_0000.jpg", "frame_0001.PNG", "frame_0002.jpg"}

	if len(files) != len(want) {
		t.Fatalf("expected %d files, got %v", len(want), files)
	}

	for i, w := range want {
		if files[i] != filepath.Join(dir, w) {
			t.Errorf("file %d: expected %s, got %s", i, w, files[i])
		}
	}
}

func TestOpenFramesEmpty(t *testing.T) {

	if _, err := OpenFrames(t.TempDir()); err == nil {
		t.Errorf("expected error opening empty frames folder")
	}

	if _, err := OpenFrames(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Errorf("expected error opening missing frames folder")
	}
}

func TestFramePath(t *testing.T) {

	d, err := NewFrameDumper(filepath.Join(t.TempDir(), "frames"))

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := filepath.Base(d.FramePath(7)); got != "frame_0007.jpg" {
		t.Errorf("expected frame_0007.jpg, got %s", got)
	}

	if _, err := os.Stat(d.Dir); err != nil {
		t.Errorf("frames folder not created: %v", err)
	}
}

func TestFrameImageMissing(t *testing.T) {

	if _, err := frameImage(playertrack.Frame{Index: 3}); err == nil {
		t.Errorf("expected error for frame without image")
	}
}

func TestWriterCloseUnopened(t *testing.T) {

	w := NewWriter(filepath.Join(t.TempDir(), "out.mp4"))

	if err := w.Close(); err != nil {
		t.Errorf("unexpected error closing unopened writer: %v", err)
	}

	if w.FPS != DefaultFPS || w.FourCC != DefaultFourCC {
		t.Errorf("unexpected writer defaults %v %s", w.FPS, w.FourCC)
	}
}

func TestFrameDumperLeavesFrameUntouched(t *testing.T) {

	d, err := NewFrameDumper(t.TempDir())

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	d.Pattern = "frame_%04d.png"
	d.Overlay = render.DefaultOverlay()

	img := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 120, 160,
		gocv.MatTypeCV8UC3)
	defer img.Close()

	snap := tracker.NewDefault().Update([]tracker.BoundingBox{
		{X1: 20, Y1: 20, X2: 80, Y2: 100},
	})

	frame := playertrack.Frame{Index: 0, Image: img}

	if err := d.Consume(context.Background(), frame, snap); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// the shared frame stays black for the next sink
	if s := img.Sum(); s.Val1+s.Val2+s.Val3 != 0 {
		t.Errorf("expected source frame to be untouched, got sum %v", s)
	}

	written := gocv.IMRead(d.FramePath(0), gocv.IMReadColor)
	defer written.Close()

	if written.Empty() {
		t.Fatalf("frame image not written")
	}

	if s := written.Sum(); s.Val1+s.Val2+s.Val3 == 0 {
		t.Errorf("expected overlay to be drawn on the written frame")
	}
}
