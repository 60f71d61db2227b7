package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swdee/go-playertrack"
	"github.com/swdee/go-playertrack/tracker"
)

// setupTestDB opens a migrated database in a temporary folder
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "tracks.db"))
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func b(x1, y1, x2, y2 int) tracker.BoundingBox {
	return tracker.BoundingBox{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

func TestOpenMigrates(t *testing.T) {

	db := setupTestDB(t)

	version, dirty, err := db.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
	assert.False(t, dirty)

	// running again is a no-op
	require.NoError(t, db.MigrateUp())
}

func TestReopenKeepsData(t *testing.T) {

	path := filepath.Join(t.TempDir(), "tracks.db")
	ctx := context.Background()

	db, err := Open(path)
	require.NoError(t, err)

	rec, err := NewRecorder(ctx, db, "match.mp4", tracker.DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()

	s, err := db.Session(ctx, rec.SessionID())
	require.NoError(t, err)
	assert.Equal(t, "match.mp4", s.Source)
}

func TestRecorderSession(t *testing.T) {

	db := setupTestDB(t)
	ctx := context.Background()

	cfg := tracker.DefaultConfig()
	cfg.Matcher = tracker.MatcherHungarian

	rec, err := NewRecorder(ctx, db, "frames/", cfg)
	require.NoError(t, err)

	_, err = uuid.Parse(rec.SessionID())
	require.NoError(t, err, "session id should be a uuid")

	s, err := db.Session(ctx, rec.SessionID())
	require.NoError(t, err)

	assert.Equal(t, "frames/", s.Source)
	assert.Equal(t, 0.5, s.IoUThreshold)
	assert.Equal(t, 5, s.MaxLost)
	assert.Equal(t, 30, s.TrailSize)
	assert.Equal(t, tracker.MatcherHungarian, s.Matcher)
	assert.Equal(t, 0, s.Frames)
	assert.False(t, s.CreatedAt.IsZero())

	sessions, err := db.Sessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, rec.SessionID(), sessions[0].ID)
}

func TestSessionNotFound(t *testing.T) {

	db := setupTestDB(t)

	_, err := db.Session(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRecorderTrajectory(t *testing.T) {

	db := setupTestDB(t)
	ctx := context.Background()

	trk := tracker.NewDefault()
	rec, err := NewRecorder(ctx, db, "test", trk.Config())
	require.NoError(t, err)

	// player 0 walks right and then disappears, player 1 appears in frame 1
	frames := make([][]tracker.BoundingBox, 9)
	frames[0] = []tracker.BoundingBox{b(10, 10, 50, 90)}
	frames[1] = []tracker.BoundingBox{b(14, 10, 54, 90), b(300, 100, 340, 200)}
	frames[2] = []tracker.BoundingBox{b(300, 100, 340, 200)}

	src := playertrack.NewSliceSource(frames)
	stats, err := playertrack.NewSession(src, trk, rec).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 9, stats.Frames)

	ids, err := db.TrackIDs(ctx, rec.SessionID())
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, ids)

	points, err := db.Trajectory(ctx, rec.SessionID(), 0)
	require.NoError(t, err)

	// live in frames 1 to 7, lost from frame 2 and expired in frame 8
	require.Len(t, points, 7)
	assert.Equal(t, 0, points[0].Frame)
	assert.Equal(t, b(10, 10, 50, 90), points[0].Box)
	assert.Equal(t, tracker.Point{X: 30, Y: 50}, points[0].Centroid)
	assert.Equal(t, tracker.Point{X: 34, Y: 50}, points[1].Centroid)
	assert.Equal(t, 0, points[1].Lost)
	assert.Equal(t, 5, points[6].Lost)

	tracks, err := db.Tracks(ctx, rec.SessionID())
	require.NoError(t, err)
	require.Len(t, tracks, 2)

	assert.Equal(t, TrackSummary{TrackID: 0, FirstFrame: 0, LastFrame: 1,
		Hits: 2, ExpiredAt: 7}, tracks[0])
	assert.Equal(t, TrackSummary{TrackID: 1, FirstFrame: 1, LastFrame: 2,
		Hits: 2, ExpiredAt: 8}, tracks[1])

	s, err := db.Session(ctx, rec.SessionID())
	require.NoError(t, err)
	assert.Equal(t, 9, s.Frames)
}

func TestTrajectoryUnknownTrack(t *testing.T) {

	db := setupTestDB(t)

	points, err := db.Trajectory(context.Background(), "none", 3)
	require.NoError(t, err)
	assert.Empty(t, points)

	ids, err := db.TrackIDs(context.Background(), "none")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestRecorderCancelled(t *testing.T) {

	db := setupTestDB(t)

	rec, err := NewRecorder(context.Background(), db, "test", tracker.DefaultConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	snap := tracker.NewDefault().Update([]tracker.BoundingBox{b(0, 0, 10, 10)})
	err = rec.Consume(ctx, playertrack.Frame{}, snap)
	assert.Error(t, err)
}

func TestMigrateLoggerUsesLogf(t *testing.T) {

	orig := playertrack.Logf
	defer playertrack.SetLogger(orig)

	var lines []string
	playertrack.SetLogger(func(format string, v ...any) {
		lines = append(lines, fmt.Sprintf(format, v...))
	})

	migrateLogger{}.Printf("applied %d", 2)

	assert.Equal(t, []string{"[migrate] applied 2"}, lines)
	assert.False(t, migrateLogger{}.Verbose())
}
