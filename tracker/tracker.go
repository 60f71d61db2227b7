package tracker

import (
	"slices"
)

// Tracker assigns persistent IDs to the bounding boxes detected in each
// frame of a video.  It owns the live tracks of a single session, create
// a new Tracker (or call Reset) for each video.
//
// Tracker is not safe for concurrent use, frames must be processed
// strictly in order.
type Tracker struct {
	cfg     Config
	matcher Matcher
	// tracks are the live tracks in ascending ID order
	tracks []*Track
	// nextID is the ID given to the next track created
	nextID int
	// frame is the index of the next frame to process
	frame int
}

// Snapshot is the state of the tracker after processing a frame
type Snapshot struct {
	// Frame is the index of the frame processed
	Frame int
	// Tracks are the live tracks, matched and lost, in ascending ID order
	Tracks []Track
	// Expired are the tracks removed in this frame
	Expired []Track
}

// New returns a Tracker with the given configuration
func New(cfg Config) (*Tracker, error) {

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	matcher, err := MatcherByName(cfg.Matcher, cfg.IoUThreshold)

	if err != nil {
		return nil, err
	}

	return &Tracker{
		cfg:     cfg,
		matcher: matcher,
	}, nil
}

// NewDefault returns a Tracker using the default configuration
func NewDefault() *Tracker {
	cfg := DefaultConfig()
	return &Tracker{
		cfg:     cfg,
		matcher: GreedyMatcher{Threshold: cfg.IoUThreshold},
	}
}

// WithMatcher replaces the association strategy
func (t *Tracker) WithMatcher(m Matcher) *Tracker {
	t.matcher = m
	return t
}

// Config returns the tracker configuration
func (t *Tracker) Config() Config {
	return t.cfg
}

// Reset clears all tracks and restarts ID and frame numbering from zero
// for a new session
func (t *Tracker) Reset() {
	t.tracks = nil
	t.nextID = 0
	t.frame = 0
}

// Frames returns the number of frames processed
func (t *Tracker) Frames() int {
	return t.frame
}

// Len returns the number of live tracks
func (t *Tracker) Len() int {
	return len(t.tracks)
}

// Live returns the current live tracks without advancing a frame.  The
// snapshot Frame is that of the last Update, or -1 before the first Update.
func (t *Tracker) Live() Snapshot {
	return Snapshot{
		Frame:  t.frame - 1,
		Tracks: copyTracks(t.tracks),
	}
}

// Update processes the detections of the next frame and returns the live
// tracks.  Detections are associated in the order given.  Matched tracks
// take the detection's box, unmatched detections start new tracks and
// unmatched tracks are aged, being removed once lost for more than
// MaxLost frames.  An empty detection list ages every track.
func (t *Tracker) Update(dets []BoundingBox) Snapshot {

	frame := t.frame
	t.frame++

	assign := t.matcher.Match(t.tracks, dets)

	byID := make(map[int]*Track, len(t.tracks))
	for _, trk := range t.tracks {
		byID[trk.ID] = trk
	}

	matched := make(map[int]struct{}, len(dets))
	live := make([]*Track, 0, len(t.tracks)+len(dets))

	for di, det := range dets {

		id, ok := assign.Matched(di)

		if trk, exists := byID[id]; ok && exists {
			if _, dup := matched[id]; !dup {
				trk.match(det, frame)
				matched[id] = struct{}{}
				live = append(live, trk)
				continue
			}
		}

		trk := newTrack(t.nextID, det, frame, t.cfg.TrailSize)
		t.nextID++
		live = append(live, trk)
	}

	var expired []Track

	for _, trk := range t.tracks {

		if _, ok := matched[trk.ID]; ok {
			continue
		}

		trk.miss()

		if trk.Lost > t.cfg.MaxLost {
			expired = append(expired, trk.copy())
			continue
		}

		live = append(live, trk)
	}

	slices.SortFunc(live, func(a, b *Track) int {
		return a.ID - b.ID
	})

	t.tracks = live

	return Snapshot{
		Frame:   frame,
		Tracks:  copyTracks(live),
		Expired: expired,
	}
}

// copyTracks deep copies tracks for handing out in a Snapshot
func copyTracks(tracks []*Track) []Track {

	out := make([]Track, len(tracks))

	for i, trk := range tracks {
		out[i] = trk.copy()
	}

	return out
}

// Get returns the live track with the given ID
func (s Snapshot) Get(id int) (Track, bool) {

	for _, trk := range s.Tracks {
		if trk.ID == id {
			return trk, true
		}
	}

	return Track{}, false
}

// ByID returns the live tracks keyed by track ID
func (s Snapshot) ByID() map[int]Track {

	out := make(map[int]Track, len(s.Tracks))

	for _, trk := range s.Tracks {
		out[trk.ID] = trk
	}

	return out
}

// IDs returns the live track IDs in ascending order
func (s Snapshot) IDs() []int {

	ids := make([]int, len(s.Tracks))

	for i, trk := range s.Tracks {
		ids[i] = trk.ID
	}

	return ids
}
