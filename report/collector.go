// Package report summarises a tracking run and draws the trajectories of
// every player seen.
package report

import (
	"context"
	"slices"
	"sync"

	"github.com/swdee/go-playertrack"
	"github.com/swdee/go-playertrack/tracker"
)

// TrackRecord is the full history of one track over a run
type TrackRecord struct {
	ID         int
	FirstFrame int
	LastFrame  int
	Hits       int
	// ExpiredAt is the frame the track was removed in, -1 while live
	ExpiredAt int
	// Path holds the centroid of every frame the track was matched in.
	// Unlike the tracker trail it is not bounded.
	Path []tracker.Point
}

// Lifetime returns the number of frames between the track's first and last
// match inclusive
func (r TrackRecord) Lifetime() int {
	return r.LastFrame - r.FirstFrame + 1
}

// HitRatio returns the fraction of frames of the lifetime the track was
// matched in
func (r TrackRecord) HitRatio() float64 {
	return float64(r.Hits) / float64(r.Lifetime())
}

// Collector is a playertrack.Sink accumulating a TrackRecord per track ID
type Collector struct {
	mu      sync.Mutex
	records map[int]*TrackRecord
	frames  int
	maxLive int
}

// NewCollector returns an empty Collector
func NewCollector() *Collector {
	return &Collector{
		records: make(map[int]*TrackRecord),
	}
}

// Consume implements playertrack.Sink
func (c *Collector) Consume(ctx context.Context, frame playertrack.Frame,
	snap tracker.Snapshot) error {

	c.mu.Lock()
	defer c.mu.Unlock()

	c.frames++

	if len(snap.Tracks) > c.maxLive {
		c.maxLive = len(snap.Tracks)
	}

	for _, trk := range snap.Tracks {

		rec, ok := c.records[trk.ID]

		if !ok {
			rec = &TrackRecord{
				ID:         trk.ID,
				FirstFrame: trk.FirstFrame,
				ExpiredAt:  -1,
			}
			c.records[trk.ID] = rec
		}

		rec.LastFrame = trk.LastFrame
		rec.Hits = trk.Hits

		if !trk.IsLost() {
			rec.Path = append(rec.Path, trk.Centroid())
		}
	}

	for _, trk := range snap.Expired {
		if rec, ok := c.records[trk.ID]; ok {
			rec.ExpiredAt = snap.Frame
		}
	}

	return nil
}

// Close implements playertrack.Sink
func (c *Collector) Close() error {
	return nil
}

// Records returns a copy of every track record ordered by ID
func (c *Collector) Records() []TrackRecord {

	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]TrackRecord, 0, len(c.records))

	for _, rec := range c.records {
		cp := *rec
		cp.Path = slices.Clone(rec.Path)
		out = append(out, cp)
	}

	slices.SortFunc(out, func(a, b TrackRecord) int {
		return a.ID - b.ID
	})

	return out
}

// Frames returns the number of frames consumed
func (c *Collector) Frames() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frames
}
