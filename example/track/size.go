package main

import (
	"image"

	"github.com/swdee/go-playertrack/video"
)

// firstFrameSize returns the dimensions of the first readable frame of the
// source
func firstFrameSize(vidFile, framesDir string) (image.Point, bool) {

	var reader *video.Reader
	var err error

	if vidFile != "" {
		reader, err = video.OpenFile(vidFile)
	} else {
		reader, err = video.OpenFrames(framesDir)
	}

	if err != nil {
		return image.Point{}, false
	}

	defer reader.Close()

	img, err := reader.Read()

	if err != nil {
		return image.Point{}, false
	}

	defer img.Close()

	return image.Pt(img.Cols(), img.Rows()), true
}
