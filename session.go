package playertrack

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/swdee/go-playertrack/tracker"
)

// Frame is a single video frame and the boxes detected in it
type Frame struct {
	// Index is the position of the frame in the video starting at 0
	Index int
	// Boxes are the detections for the frame in detector order
	Boxes []tracker.BoundingBox
	// Image is the decoded frame, a gocv.Mat for video sources or nil when
	// replaying detections
	Image any
	// Release frees Image once every Sink has consumed the frame, it may
	// be nil
	Release func()
}

// FrameSource produces frames in order.  Next returns io.EOF once the
// source is exhausted.
type FrameSource interface {
	Next(ctx context.Context) (Frame, error)
}

// Sink consumes the tracker snapshot of each frame
type Sink interface {
	Consume(ctx context.Context, frame Frame, snap tracker.Snapshot) error
	Close() error
}

// Stats summarises a tracking run
type Stats struct {
	// Frames is the number of frames processed
	Frames int
	// Detections is the total number of boxes fed to the tracker
	Detections int
	// TracksCreated is the number of track IDs handed out
	TracksCreated int
	// TracksExpired is the number of tracks removed after being lost
	TracksExpired int
	// MaxLive is the highest number of live tracks in a single frame
	MaxLive int
}

// Session runs frames from a Source through a Tracker and hands each
// snapshot to the Sinks.  A frame is fully consumed by every Sink before
// the next frame is read.
type Session struct {
	Source  FrameSource
	Tracker *tracker.Tracker
	Sinks   []Sink
	// LogInterval logs progress every n frames, 0 disables progress logging
	LogInterval int
}

// NewSession returns a Session using a fresh Tracker
func NewSession(src FrameSource, trk *tracker.Tracker, sinks ...Sink) *Session {
	return &Session{
		Source:  src,
		Tracker: trk,
		Sinks:   sinks,
	}
}

// Run processes frames until the Source is exhausted, the context is
// cancelled or a Source or Sink fails.  Sinks are closed before returning.
func (s *Session) Run(ctx context.Context) (stats Stats, err error) {

	if s.Tracker == nil {
		s.Tracker = tracker.NewDefault()
	}

	defer func() {
		if cerr := s.closeSinks(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()

	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		frame, err := s.Source.Next(ctx)

		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return stats, fmt.Errorf("error reading frame %d: %w", stats.Frames, err)
		}

		snap := s.Tracker.Update(frame.Boxes)
		stats.add(frame, snap)

		err = s.consume(ctx, frame, snap)

		if frame.Release != nil {
			frame.Release()
		}

		if err != nil {
			return stats, err
		}

		if s.LogInterval > 0 && stats.Frames%s.LogInterval == 0 {
			Logf("Frame %d: %d detections, %d live tracks, %d tracks created",
				snap.Frame, len(frame.Boxes), len(snap.Tracks), stats.TracksCreated)
		}
	}

	return stats, nil
}

// consume hands the snapshot to every sink in order
func (s *Session) consume(ctx context.Context, frame Frame, snap tracker.Snapshot) error {

	for i, sink := range s.Sinks {
		if err := sink.Consume(ctx, frame, snap); err != nil {
			return fmt.Errorf("sink %d failed on frame %d: %w", i, snap.Frame, err)
		}
	}

	return nil
}

// closeSinks closes every sink, collecting their errors
func (s *Session) closeSinks() error {

	var errs []error

	for i, sink := range s.Sinks {
		if err := sink.Close(); err != nil {
			Logf("Error closing sink %d: %v", i, err)
			errs = append(errs, fmt.Errorf("sink %d close: %w", i, err))
		}
	}

	return errors.Join(errs...)
}

// add accumulates the counters for a processed frame
func (st *Stats) add(frame Frame, snap tracker.Snapshot) {

	st.Frames++
	st.Detections += len(frame.Boxes)
	st.TracksExpired += len(snap.Expired)

	for _, trk := range snap.Tracks {
		if trk.FirstFrame == snap.Frame {
			st.TracksCreated++
		}
	}

	if len(snap.Tracks) > st.MaxLive {
		st.MaxLive = len(snap.Tracks)
	}
}

// SliceSource replays detections held in memory, one slice of boxes per
// frame
type SliceSource struct {
	frames [][]tracker.BoundingBox
	pos    int
}

// NewSliceSource returns a FrameSource over the given per frame detections
func NewSliceSource(frames [][]tracker.BoundingBox) *SliceSource {
	return &SliceSource{frames: frames}
}

// Next implements FrameSource
func (s *SliceSource) Next(ctx context.Context) (Frame, error) {

	if s.pos >= len(s.frames) {
		return Frame{}, io.EOF
	}

	f := Frame{
		Index: s.pos,
		Boxes: s.frames[s.pos],
	}
	s.pos++

	return f, nil
}

// SinkFunc adapts a function into a Sink with a no-op Close
type SinkFunc func(ctx context.Context, frame Frame, snap tracker.Snapshot) error

// Consume implements Sink
func (f SinkFunc) Consume(ctx context.Context, frame Frame, snap tracker.Snapshot) error {
	return f(ctx, frame, snap)
}

// Close implements Sink
func (f SinkFunc) Close() error {
	return nil
}
