package video

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/swdee/go-playertrack"
	"github.com/swdee/go-playertrack/render"
	"github.com/swdee/go-playertrack/tracker"
	"gocv.io/x/gocv"
)

const (
	// DefaultFPS is the frame rate of written videos regardless of the
	// source frame rate
	DefaultFPS = 25
	// DefaultFourCC is the codec of written videos
	DefaultFourCC = "mp4v"
	// DefaultFramePattern names dumped frames by index
	DefaultFramePattern = "frame_%04d.jpg"
)

// frameImage returns the gocv.Mat carried by a frame
func frameImage(frame playertrack.Frame) (gocv.Mat, error) {

	img, ok := frame.Image.(gocv.Mat)

	if !ok || img.Empty() {
		return gocv.Mat{}, fmt.Errorf("frame %d has no image", frame.Index)
	}

	return img, nil
}

// annotate returns a copy of img with the overlay drawn on it so sinks
// sharing a frame never see each other's annotations.  Without an overlay
// img is returned as is.  release frees the copy.
func annotate(img gocv.Mat, overlay *render.Overlay,
	snap tracker.Snapshot) (out gocv.Mat, release func()) {

	if overlay == nil {
		return img, func() {}
	}

	out = img.Clone()
	overlay.Draw(&out, snap)

	return out, func() { out.Close() }
}

// Writer is a playertrack.Sink that annotates a copy of each frame with the
// tracker state and encodes it to a video file.  The output is opened on the first frame
// using its dimensions.
type Writer struct {
	Path    string
	FPS     float64
	FourCC  string
	Overlay *render.Overlay
	vw      *gocv.VideoWriter
	frames  int
}

// NewWriter returns a Writer encoding to path at DefaultFPS with the
// default overlay
func NewWriter(path string) *Writer {
	return &Writer{
		Path:    path,
		FPS:     DefaultFPS,
		FourCC:  DefaultFourCC,
		Overlay: render.DefaultOverlay(),
	}
}

// Consume implements playertrack.Sink
func (w *Writer) Consume(ctx context.Context, frame playertrack.Frame,
	snap tracker.Snapshot) error {

	img, err := frameImage(frame)

	if err != nil {
		return err
	}

	if w.vw == nil {
		if err := w.open(img.Cols(), img.Rows()); err != nil {
			return err
		}
	}

	out, release := annotate(img, w.Overlay, snap)
	defer release()

	if err := w.vw.Write(out); err != nil {
		return fmt.Errorf("error writing frame %d: %w", frame.Index, err)
	}

	w.frames++

	return nil
}

// open creates the output video
func (w *Writer) open(width, height int) error {

	if dir := filepath.Dir(w.Path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("error creating output folder: %w", err)
		}
	}

	vw, err := gocv.VideoWriterFile(w.Path, w.FourCC, w.FPS, width, height, true)

	if err != nil {
		return fmt.Errorf("error opening video writer: %w", err)
	}

	if !vw.IsOpened() {
		vw.Close()
		return fmt.Errorf("error opening video writer for %s", w.Path)
	}

	w.vw = vw

	return nil
}

// Frames returns the number of frames written
func (w *Writer) Frames() int {
	return w.frames
}

// Close implements playertrack.Sink
func (w *Writer) Close() error {

	if w.vw == nil {
		return nil
	}

	err := w.vw.Close()
	w.vw = nil

	return err
}

// FrameDumper writes each frame as a numbered image file into a folder.  It
// can be used directly through WriteFrame or as a playertrack.Sink in which
// case the tracker overlay is drawn on a copy of the frame first.
type FrameDumper struct {
	Dir     string
	Pattern string
	Overlay *render.Overlay
}

// NewFrameDumper creates dir if needed and returns a FrameDumper writing
// DefaultFramePattern file names without an overlay
func NewFrameDumper(dir string) (*FrameDumper, error) {

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("error creating frames folder: %w", err)
	}

	return &FrameDumper{
		Dir:     dir,
		Pattern: DefaultFramePattern,
	}, nil
}

// FramePath returns the file the frame with the given index is written to
func (d *FrameDumper) FramePath(index int) string {
	return filepath.Join(d.Dir, fmt.Sprintf(d.Pattern, index))
}

// WriteFrame saves img as the frame with the given index
func (d *FrameDumper) WriteFrame(index int, img gocv.Mat) error {

	path := d.FramePath(index)

	if ok := gocv.IMWrite(path, img); !ok {
		return fmt.Errorf("error writing frame image %s", path)
	}

	return nil
}

// Consume implements playertrack.Sink
func (d *FrameDumper) Consume(ctx context.Context, frame playertrack.Frame,
	snap tracker.Snapshot) error {

	img, err := frameImage(frame)

	if err != nil {
		return err
	}

	out, release := annotate(img, d.Overlay, snap)
	defer release()

	return d.WriteFrame(frame.Index, out)
}

// Close implements playertrack.Sink
func (d *FrameDumper) Close() error {
	return nil
}
