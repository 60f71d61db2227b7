// Package video reads frames from a video file or a folder of images, feeds
// them through a detector and writes annotated output.
package video

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/swdee/go-playertrack"
	"gocv.io/x/gocv"
)

// imageExts are the file extensions read from a frames folder
var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
}

// Reader yields decoded frames from either a video capture or a sorted list
// of image files
type Reader struct {
	capture *gocv.VideoCapture
	files   []string
	pos     int
}

// OpenFile opens a video file for reading
func OpenFile(path string) (*Reader, error) {

	capture, err := gocv.VideoCaptureFile(path)

	if err != nil {
		return nil, fmt.Errorf("error opening video file %s: %w", path, err)
	}

	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("error opening video file %s", path)
	}

	return &Reader{capture: capture}, nil
}

// OpenFrames reads the image files in dir in file name order
func OpenFrames(dir string) (*Reader, error) {

	files, err := ListFrames(dir)

	if err != nil {
		return nil, err
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no frames found in %s", dir)
	}

	return &Reader{files: files}, nil
}

// ListFrames returns the image files of dir sorted by name
func ListFrames(dir string) ([]string, error) {

	entries, err := os.ReadDir(dir)

	if err != nil {
		return nil, fmt.Errorf("error reading frames folder: %w", err)
	}

	files := make([]string, 0, len(entries))

	for _, e := range entries {
		if e.IsDir() {
			continue
		}

		if !imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}

		files = append(files, filepath.Join(dir, e.Name()))
	}

	sort.Strings(files)

	return files, nil
}

// FPS returns the frame rate reported by the video container, 0 for a frames
// folder
func (r *Reader) FPS() float64 {
	if r.capture == nil {
		return 0
	}
	return r.capture.Get(gocv.VideoCaptureFPS)
}

// FrameCount returns the number of frames in the source if known
func (r *Reader) FrameCount() int {
	if r.capture == nil {
		return len(r.files)
	}
	return int(r.capture.Get(gocv.VideoCaptureFrameCount))
}

// Read returns the next frame.  The caller owns the returned Mat and must
// Close it.  io.EOF is returned once the source is exhausted.  Unreadable
// image files in a frames folder are skipped with a warning.
func (r *Reader) Read() (gocv.Mat, error) {

	if r.capture != nil {
		img := gocv.NewMat()

		if ok := r.capture.Read(&img); !ok || img.Empty() {
			img.Close()
			return gocv.Mat{}, io.EOF
		}

		return img, nil
	}

	for r.pos < len(r.files) {

		file := r.files[r.pos]
		r.pos++

		img := gocv.IMRead(file, gocv.IMReadColor)

		if img.Empty() {
			img.Close()
			playertrack.Logf("Warning: could not read frame %s, skipping",
				filepath.Base(file))
			continue
		}

		return img, nil
	}

	return gocv.Mat{}, io.EOF
}

// Close releases the underlying capture device
func (r *Reader) Close() error {
	if r.capture != nil {
		return r.capture.Close()
	}
	return nil
}
