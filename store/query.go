package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/swdee/go-playertrack/tracker"
)

// ErrSessionNotFound is returned when querying an unknown session
var ErrSessionNotFound = errors.New("session not found")

// Session describes a recorded tracking run
type Session struct {
	ID           string
	Source       string
	IoUThreshold float64
	MaxLost      int
	TrailSize    int
	Matcher      string
	CreatedAt    time.Time
	Frames       int
}

// TrackSummary is the lifetime of a single recorded track
type TrackSummary struct {
	TrackID    int
	FirstFrame int
	LastFrame  int
	Hits       int
	// ExpiredAt is the frame the track was removed in, -1 if it was still
	// live when the recording ended
	ExpiredAt int
}

// TrackPoint is the recorded state of a track in a single frame
type TrackPoint struct {
	Frame    int
	Box      tracker.BoundingBox
	Centroid tracker.Point
	Lost     int
}

// sessionColumns are selected by the session queries in scanSession order
const sessionColumns = `session_id, source, iou_threshold, max_lost,
	trail_size, matcher, created_at, frames`

// rowScanner is implemented by sql.Row and sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (Session, error) {

	var s Session
	var created int64

	err := row.Scan(&s.ID, &s.Source, &s.IoUThreshold, &s.MaxLost,
		&s.TrailSize, &s.Matcher, &created, &s.Frames)

	s.CreatedAt = time.UnixMilli(created)

	return s, err
}

// Sessions returns every recorded session, newest first
func (db *DB) Sessions(ctx context.Context) ([]Session, error) {

	rows, err := db.QueryContext(ctx, `SELECT `+sessionColumns+`
		FROM sessions ORDER BY created_at DESC, rowid DESC`)

	if err != nil {
		return nil, errors.Wrap(err, "unable to query sessions")
	}
	defer rows.Close()

	out := make([]Session, 0)

	for rows.Next() {
		s, err := scanSession(rows)

		if err != nil {
			return nil, errors.Wrap(err, "unable to scan session")
		}

		out = append(out, s)
	}

	return out, rows.Err()
}

// Session returns a single session by ID
func (db *DB) Session(ctx context.Context, id string) (Session, error) {

	row := db.QueryRowContext(ctx, `SELECT `+sessionColumns+`
		FROM sessions WHERE session_id = ?`, id)

	s, err := scanSession(row)

	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, errors.Wrap(ErrSessionNotFound, id)
	}

	if err != nil {
		return Session{}, errors.Wrap(err, "unable to query session")
	}

	return s, nil
}

// TrackIDs returns the IDs of every track recorded in a session in
// ascending order
func (db *DB) TrackIDs(ctx context.Context, sessionID string) ([]int, error) {

	rows, err := db.QueryContext(ctx, `SELECT track_id FROM tracks
		WHERE session_id = ? ORDER BY track_id`, sessionID)

	if err != nil {
		return nil, errors.Wrap(err, "unable to query track ids")
	}
	defer rows.Close()

	ids := make([]int, 0)

	for rows.Next() {
		var id int

		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, "unable to scan track id")
		}

		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// Tracks returns the lifetime summary of every track in a session ordered
// by track ID
func (db *DB) Tracks(ctx context.Context, sessionID string) ([]TrackSummary, error) {

	rows, err := db.QueryContext(ctx, `SELECT track_id, first_frame,
		last_frame, hits, COALESCE(expired_at, -1)
		FROM tracks WHERE session_id = ? ORDER BY track_id`, sessionID)

	if err != nil {
		return nil, errors.Wrap(err, "unable to query tracks")
	}
	defer rows.Close()

	out := make([]TrackSummary, 0)

	for rows.Next() {
		var t TrackSummary

		if err := rows.Scan(&t.TrackID, &t.FirstFrame, &t.LastFrame, &t.Hits,
			&t.ExpiredAt); err != nil {
			return nil, errors.Wrap(err, "unable to scan track")
		}

		out = append(out, t)
	}

	return out, rows.Err()
}

// Trajectory returns every recorded point of a track in frame order
func (db *DB) Trajectory(ctx context.Context, sessionID string,
	trackID int) ([]TrackPoint, error) {

	rows, err := db.QueryContext(ctx, `SELECT frame, x1, y1, x2, y2, cx, cy,
		lost FROM track_points WHERE session_id = ? AND track_id = ?
		ORDER BY frame`, sessionID, trackID)

	if err != nil {
		return nil, errors.Wrapf(err, "unable to query trajectory of track %d",
			trackID)
	}
	defer rows.Close()

	out := make([]TrackPoint, 0)

	for rows.Next() {
		var p TrackPoint

		if err := rows.Scan(&p.Frame, &p.Box.X1, &p.Box.Y1, &p.Box.X2,
			&p.Box.Y2, &p.Centroid.X, &p.Centroid.Y, &p.Lost); err != nil {
			return nil, errors.Wrap(err, "unable to scan track point")
		}

		out = append(out, p)
	}

	return out, rows.Err()
}
