package playertrack

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swdee/go-playertrack/tracker"
)

// recordSink keeps the live track IDs of every frame it consumes
type recordSink struct {
	ids     [][]int
	lost    []map[int]int
	closed  bool
	failAt  int
	failErr error
}

func (r *recordSink) Consume(ctx context.Context, frame Frame, snap tracker.Snapshot) error {

	if r.failErr != nil && frame.Index == r.failAt {
		return r.failErr
	}

	r.ids = append(r.ids, snap.IDs())

	lost := make(map[int]int)
	for _, trk := range snap.Tracks {
		lost[trk.ID] = trk.Lost
	}
	r.lost = append(r.lost, lost)

	return nil
}

func (r *recordSink) Close() error {
	r.closed = true
	return nil
}

func b(x1, y1, x2, y2 int) tracker.BoundingBox {
	return tracker.BoundingBox{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

func TestSessionRun(t *testing.T) {

	frames := [][]tracker.BoundingBox{
		{b(10, 10, 50, 50)},
		{b(12, 10, 52, 50), b(300, 100, 360, 260)},
		{},
		{b(14, 10, 54, 50)},
	}

	sink := &recordSink{}
	s := NewSession(NewSliceSource(frames), tracker.NewDefault(), sink)

	stats, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Stats{
		Frames:        4,
		Detections:    4,
		TracksCreated: 2,
		TracksExpired: 0,
		MaxLive:       2,
	}, stats)

	want := [][]int{{0}, {0, 1}, {0, 1}, {0, 1}}
	if diff := cmp.Diff(want, sink.ids); diff != "" {
		t.Errorf("live ids mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, map[int]int{0: 0, 1: 2}, sink.lost[3])
	assert.True(t, sink.closed, "sink should be closed after run")
}

func TestSessionExpiryCounted(t *testing.T) {

	frames := make([][]tracker.BoundingBox, 8)
	frames[0] = []tracker.BoundingBox{b(10, 10, 50, 50)}

	s := NewSession(NewSliceSource(frames), tracker.NewDefault())

	stats, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 8, stats.Frames)
	assert.Equal(t, 1, stats.TracksCreated)
	assert.Equal(t, 1, stats.TracksExpired)
}

func TestSessionSinkError(t *testing.T) {

	boom := errors.New("disk full")
	sink := &recordSink{failAt: 1, failErr: boom}

	frames := [][]tracker.BoundingBox{{b(0, 0, 10, 10)}, {b(0, 0, 10, 10)}, {b(0, 0, 10, 10)}}
	s := NewSession(NewSliceSource(frames), nil, sink)

	stats, err := s.Run(context.Background())

	require.ErrorIs(t, err, boom)
	assert.Equal(t, 2, stats.Frames)
	assert.Len(t, sink.ids, 1)
	assert.True(t, sink.closed)
}

// errSource fails after the given number of frames
type errSource struct {
	n   int
	err error
}

func (e *errSource) Next(ctx context.Context) (Frame, error) {
	if e.n == 0 {
		return Frame{}, e.err
	}
	e.n--
	return Frame{}, nil
}

func TestSessionSourceError(t *testing.T) {

	boom := errors.New("corrupt frame")
	s := NewSession(&errSource{n: 2, err: boom}, tracker.NewDefault())

	stats, err := s.Run(context.Background())

	require.ErrorIs(t, err, boom)
	assert.Equal(t, 2, stats.Frames)
}

func TestSessionCancelled(t *testing.T) {

	ctx, cancel := context.WithCancel(context.Background())

	released := 0
	sink := SinkFunc(func(ctx context.Context, frame Frame, snap tracker.Snapshot) error {
		if frame.Index == 1 {
			cancel()
		}
		return nil
	})

	frames := make([][]tracker.BoundingBox, 10)
	src := &releaseSource{SliceSource: NewSliceSource(frames), released: &released}

	stats, err := NewSession(src, tracker.NewDefault(), sink).Run(ctx)

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, stats.Frames)
	assert.Equal(t, 2, released, "each consumed frame should be released")
}

// releaseSource counts frame releases
type releaseSource struct {
	*SliceSource
	released *int
}

func (r *releaseSource) Next(ctx context.Context) (Frame, error) {
	f, err := r.SliceSource.Next(ctx)
	f.Release = func() { *r.released++ }
	return f, err
}

func TestSessionProgressLogging(t *testing.T) {

	orig := Logf
	defer SetLogger(orig)

	var lines []string
	SetLogger(func(format string, v ...any) {
		lines = append(lines, fmt.Sprintf(format, v...))
	})

	s := NewSession(NewSliceSource(make([][]tracker.BoundingBox, 6)), tracker.NewDefault())
	s.LogInterval = 3

	_, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Len(t, lines, 2)
}

func TestLoadLabels(t *testing.T) {

	file := filepath.Join(t.TempDir(), "labels.txt")
	require.NoError(t, os.WriteFile(file, []byte("person\nbicycle\n sports ball \n"), 0644))

	labels, err := LoadLabels(file)
	require.NoError(t, err)
	assert.Equal(t, []string{"person", "bicycle", "sports ball"}, labels)

	found, missing := ClassIndexes(labels, "person, sports ball,referee,")
	assert.Equal(t, []int{0, 2}, found)
	assert.Equal(t, []string{"referee"}, missing)

	_, err = LoadLabels(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestDetectionsFile(t *testing.T) {

	path := filepath.Join(t.TempDir(), "detections.json")

	frames := [][]tracker.BoundingBox{
		{b(10, 10, 50, 90), b(200, 40, 240, 140)},
		{},
		{b(12, 10, 52, 90)},
	}

	require.NoError(t, SaveDetections(path, frames))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `[[[10,10,50,90],[200,40,240,140]],[],[[12,10,52,90]]]`, string(data))

	got, err := LoadDetections(path)
	require.NoError(t, err)

	if diff := cmp.Diff(frames, got); diff != "" {
		t.Errorf("detections mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadDetectionsErrors(t *testing.T) {

	_, err := LoadDetections(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`[[[1,2,3]]`), 0644))

	_, err = LoadDetections(path)
	assert.ErrorContains(t, err, "parsing")
}
