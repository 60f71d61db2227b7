package tracker

// Track represents a single tracked object identity
type Track struct {
	// ID is the unique track ID, assigned in increasing order and never
	// reused within a session
	ID int
	// Box is the last bounding box matched to the track.  It goes stale
	// while the track is lost.
	Box BoundingBox
	// Lost is the number of consecutive frames the track has gone unmatched
	Lost int
	// Hits is the number of frames the track has been matched in, including
	// the frame it was created in
	Hits int
	// FirstFrame is the frame index the track was created at
	FirstFrame int
	// LastFrame is the frame index the track was last matched at
	LastFrame int
	// Trail is the bounded history of the track's center points
	Trail *Trail
}

// newTrack creates a track from an unmatched detection
func newTrack(id int, box BoundingBox, frame, trailSize int) *Track {

	t := &Track{
		ID:         id,
		Box:        box,
		Hits:       1,
		FirstFrame: frame,
		LastFrame:  frame,
		Trail:      NewTrail(trailSize),
	}
	t.Trail.Add(Centroid(box))

	return t
}

// match updates the track with the detection assigned to it this frame
func (t *Track) match(box BoundingBox, frame int) {
	t.Box = box
	t.Lost = 0
	t.Hits++
	t.LastFrame = frame
	t.Trail.Add(Centroid(box))
}

// miss ages the track by one frame
func (t *Track) miss() {
	t.Lost++
}

// IsLost reports whether the track went unmatched in the latest frame
func (t *Track) IsLost() bool {
	return t.Lost > 0
}

// Age returns the number of frames between creation and the given frame
// index, inclusive of both
func (t *Track) Age(frame int) int {
	return frame - t.FirstFrame + 1
}

// Centroid returns the center point of the track's current box
func (t *Track) Centroid() Point {
	return Centroid(t.Box)
}

// History returns the trail points from oldest to newest
func (t *Track) History() []Point {
	if t.Trail == nil {
		return nil
	}
	return t.Trail.Points()
}

// copy returns a deep copy of the track safe to hand to consumers
func (t *Track) copy() Track {

	c := *t

	if t.Trail != nil {
		c.Trail = t.Trail.clone()
	}

	return c
}
