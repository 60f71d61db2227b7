package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/swdee/go-playertrack"
	"github.com/swdee/go-playertrack/tracker"
)

// Recorder is a playertrack.Sink writing every live track of every frame to
// the database under a new session
type Recorder struct {
	db        *DB
	sessionID string
	frames    int
}

// NewRecorder creates a session row describing the run and returns a
// Recorder writing to it.  source names the video or detections file being
// tracked.
func NewRecorder(ctx context.Context, db *DB, source string,
	cfg tracker.Config) (*Recorder, error) {

	id := uuid.NewString()

	matcher := cfg.Matcher
	if matcher == "" {
		matcher = tracker.MatcherGreedy
	}

	_, err := db.ExecContext(ctx, `INSERT INTO sessions
		(session_id, source, iou_threshold, max_lost, trail_size, matcher,
		created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, source, cfg.IoUThreshold, cfg.MaxLost, cfg.TrailSize, matcher,
		time.Now().UnixMilli())

	if err != nil {
		return nil, errors.Wrap(err, "unable to create session")
	}

	return &Recorder{
		db:        db,
		sessionID: id,
	}, nil
}

// SessionID returns the ID of the session being recorded
func (r *Recorder) SessionID() string {
	return r.sessionID
}

// Consume implements playertrack.Sink.  Each frame is written in a single
// transaction.
func (r *Recorder) Consume(ctx context.Context, frame playertrack.Frame,
	snap tracker.Snapshot) error {

	tx, err := r.db.BeginTx(ctx, nil)

	if err != nil {
		return errors.Wrap(err, "unable to begin transaction")
	}

	if err := r.writeFrame(ctx, tx, snap); err != nil {
		tx.Rollback()
		return errors.Wrapf(err, "unable to record frame %d", snap.Frame)
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrapf(err, "unable to commit frame %d", snap.Frame)
	}

	r.frames++

	return nil
}

// writeFrame records the tracks and expiries of a snapshot
func (r *Recorder) writeFrame(ctx context.Context, tx *sql.Tx,
	snap tracker.Snapshot) error {

	for _, trk := range snap.Tracks {

		_, err := tx.ExecContext(ctx, `INSERT INTO tracks
			(session_id, track_id, first_frame, last_frame, hits)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (session_id, track_id) DO UPDATE SET
				last_frame = excluded.last_frame,
				hits = excluded.hits`,
			r.sessionID, trk.ID, trk.FirstFrame, trk.LastFrame, trk.Hits)

		if err != nil {
			return errors.Wrapf(err, "track %d", trk.ID)
		}

		c := trk.Centroid()

		_, err = tx.ExecContext(ctx, `INSERT INTO track_points
			(session_id, track_id, frame, x1, y1, x2, y2, cx, cy, lost)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.sessionID, trk.ID, snap.Frame, trk.Box.X1, trk.Box.Y1,
			trk.Box.X2, trk.Box.Y2, c.X, c.Y, trk.Lost)

		if err != nil {
			return errors.Wrapf(err, "track %d point", trk.ID)
		}
	}

	for _, trk := range snap.Expired {

		_, err := tx.ExecContext(ctx, `UPDATE tracks SET expired_at = ?
			WHERE session_id = ? AND track_id = ?`,
			snap.Frame, r.sessionID, trk.ID)

		if err != nil {
			return errors.Wrapf(err, "track %d expiry", trk.ID)
		}
	}

	_, err := tx.ExecContext(ctx,
		`UPDATE sessions SET frames = ? WHERE session_id = ?`,
		snap.Frame+1, r.sessionID)

	return err
}

// Close implements playertrack.Sink.  The database itself is left open.
func (r *Recorder) Close() error {
	playertrack.Logf("Recorded %d frames to session %s", r.frames, r.sessionID)
	return nil
}
