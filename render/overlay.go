package render

import (
	"github.com/swdee/go-playertrack/tracker"
	"gocv.io/x/gocv"
)

// Overlay bundles the settings used to annotate a frame with the tracker
// state
type Overlay struct {
	Font  Font
	Box   BoxStyle
	Trail TrailStyle
	// ShowTrails draws the centroid trail of each track
	ShowTrails bool
	// ShowFrame draws the frame index in the top left corner
	ShowFrame bool
}

// DefaultOverlay returns an Overlay drawing boxes, ID labels and trails
func DefaultOverlay() *Overlay {
	return &Overlay{
		Font:       DefaultFont(),
		Box:        DefaultBoxStyle(),
		Trail:      DefaultTrailStyle(),
		ShowTrails: true,
	}
}

// Draw annotates img with the tracks of the snapshot.  Trails are drawn
// first so boxes and labels stay on top.
func (o *Overlay) Draw(img *gocv.Mat, snap tracker.Snapshot) {

	if o.ShowTrails {
		Trail(img, snap.Tracks, o.Box, o.Trail)
	}

	TrackerBoxes(img, snap.Tracks, o.Font, o.Box)

	if o.ShowFrame {
		FrameNumber(img, snap.Frame, o.Font)
	}
}
