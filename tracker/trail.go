package tracker

// Trail keeps a fixed size history of a track's center points used for
// drawing its trajectory.  Once full, adding a point evicts the oldest one.
type Trail struct {
	// size is the maximum number of most recent points to keep in history
	size int
	// points is the ring buffer storage
	points []Point
	// head is the index of the oldest point
	head int
	// count is the number of points held
	count int
}

// NewTrail returns a new trail history instance.  Size is the maximum length
// of the trail to maintain and must be at least 1.
func NewTrail(size int) *Trail {

	if size < 1 {
		size = 1
	}

	return &Trail{
		size:   size,
		points: make([]Point, size),
	}
}

// Add a point to the history, dropping the oldest point if the trail is full
func (t *Trail) Add(p Point) {

	if t.count < t.size {
		t.points[(t.head+t.count)%t.size] = p
		t.count++
		return
	}

	// overwrite oldest point and advance head
	t.points[t.head] = p
	t.head = (t.head + 1) % t.size
}

// Len returns the number of points held
func (t *Trail) Len() int {
	return t.count
}

// Cap returns the maximum number of points the trail will hold
func (t *Trail) Cap() int {
	return t.size
}

// Points returns a copy of the history ordered from oldest to newest
func (t *Trail) Points() []Point {

	out := make([]Point, t.count)

	for i := 0; i < t.count; i++ {
		out[i] = t.points[(t.head+i)%t.size]
	}

	return out
}

// Last returns the most recently added point.  The boolean is false if the
// trail is empty.
func (t *Trail) Last() (Point, bool) {

	if t.count == 0 {
		return Point{}, false
	}

	return t.points[(t.head+t.count-1)%t.size], true
}

// Reset clears all history
func (t *Trail) Reset() {
	t.head = 0
	t.count = 0
}

// clone returns a deep copy of the trail so snapshots do not share storage
// with the live track
func (t *Trail) clone() *Trail {

	c := &Trail{
		size:   t.size,
		points: make([]Point, t.size),
		head:   t.head,
		count:  t.count,
	}
	copy(c.points, t.points)

	return c
}
