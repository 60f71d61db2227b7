package tracker

import (
	"testing"
)

func TestTrailEvictsOldest(t *testing.T) {

	trail := NewTrail(30)

	for i := 0; i < 45; i++ {
		trail.Add(Point{X: i, Y: i * 2})
	}

	if trail.Len() != 30 {
		t.Fatalf("expected trail length 30, got %d", trail.Len())
	}

	points := trail.Points()

	// points 0..14 should have been evicted in FIFO order
	for i, p := range points {
		want := Point{X: i + 15, Y: (i + 15) * 2}
		if p != want {
			t.Errorf("point %d: expected %v, got %v", i, want, p)
		}
	}

	last, ok := trail.Last()

	if !ok || last != (Point{X: 44, Y: 88}) {
		t.Errorf("expected last point {44 88}, got %v (ok=%v)", last, ok)
	}
}

func TestTrailPartial(t *testing.T) {

	trail := NewTrail(5)

	if _, ok := trail.Last(); ok {
		t.Errorf("expected empty trail to have no last point")
	}

	trail.Add(Point{1, 1})
	trail.Add(Point{2, 2})

	points := trail.Points()

	if len(points) != 2 || points[0] != (Point{1, 1}) || points[1] != (Point{2, 2}) {
		t.Errorf("unexpected points %v", points)
	}

	if trail.Cap() != 5 {
		t.Errorf("expected capacity 5, got %d", trail.Cap())
	}

	trail.Reset()

	if trail.Len() != 0 || len(trail.Points()) != 0 {
		t.Errorf("expected reset trail to be empty, got %v", trail.Points())
	}
}

func TestTrailCloneIsIndependent(t *testing.T) {

	trail := NewTrail(3)
	trail.Add(Point{1, 1})

	c := trail.clone()
	trail.Add(Point{2, 2})
	trail.Add(Point{3, 3})
	trail.Add(Point{4, 4})

	if c.Len() != 1 {
		t.Errorf("expected clone to keep 1 point, got %d", c.Len())
	}

	if p, _ := c.Last(); p != (Point{1, 1}) {
		t.Errorf("expected clone last point {1 1}, got %v", p)
	}
}

func TestTrailMinimumSize(t *testing.T) {

	trail := NewTrail(0)
	trail.Add(Point{1, 1})
	trail.Add(Point{2, 2})

	if trail.Len() != 1 || trail.Points()[0] != (Point{2, 2}) {
		t.Errorf("expected single newest point, got %v", trail.Points())
	}
}
