package detect

import (
	"errors"
	"image"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/swdee/go-playertrack"
	"github.com/swdee/go-playertrack/config"
	"github.com/swdee/go-playertrack/tracker"
	"gocv.io/x/gocv"
)

func result(class int, prob float32, l, t, r, b int) DetectResult {
	return DetectResult{
		Class:       class,
		Box:         BoxRect{Left: l, Top: t, Right: r, Bottom: b},
		Probability: prob,
	}
}

func TestToBoxes(t *testing.T) {

	results := []DetectResult{
		result(0, 0.9, 10, 20, 50, 140),
		result(0, 0.8, 30, 30, 30, 90), // zero width
		result(0, 0.7, 200, 50, 260, 190),
		result(0, 0.6, 80, 80, 40, 40), // inverted
	}

	boxes, dropped := ToBoxes(results)

	if dropped != 2 {
		t.Errorf("expected 2 dropped boxes, got %d", dropped)
	}

	want := []tracker.BoundingBox{
		{X1: 10, Y1: 20, X2: 50, Y2: 140},
		{X1: 200, Y1: 50, X2: 260, Y2: 190},
	}

	if len(boxes) != len(want) {
		t.Fatalf("expected %d boxes, got %d", len(want), len(boxes))
	}

	for i := range want {
		if boxes[i] != want[i] {
			t.Errorf("box %d: expected %v, got %v", i, want[i], boxes[i])
		}
	}
}

func TestToBoxesEmpty(t *testing.T) {

	boxes, dropped := ToBoxes(nil)

	if boxes == nil || len(boxes) != 0 || dropped != 0 {
		t.Errorf("expected empty non nil result, got %v dropped %d", boxes, dropped)
	}
}

func TestBoxRect(t *testing.T) {

	b := BoxRect{Left: 5, Top: 6, Right: 25, Bottom: 46}

	if got := b.Rect(); got != image.Rect(5, 6, 25, 46) {
		t.Errorf("unexpected rect %v", got)
	}
}

func TestFilter(t *testing.T) {

	results := []DetectResult{
		result(0, 0.90, 0, 0, 10, 10),
		result(0, 0.40, 0, 0, 10, 10),
		result(32, 0.50, 0, 0, 10, 10),
		result(2, 0.99, 0, 0, 10, 10),
	}

	tests := []struct {
		name    string
		classes map[int]float32
		want    []int
	}{
		{"empty keeps all", nil, []int{0, 1, 2, 3}},
		{"person above 0.4", map[int]float32{0: 0.4}, []int{0}},
		{"person and ball", map[int]float32{0: 0.3, 32: 0.45}, []int{0, 1, 2}},
		{"threshold exclusive", map[int]float32{32: 0.5}, []int{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {

			got := Filter(results, tc.classes)

			if len(got) != len(tc.want) {
				t.Fatalf("expected %d results, got %d", len(tc.want), len(got))
			}

			for i, idx := range tc.want {
				if got[i] != results[idx] {
					t.Errorf("result %d: expected %+v, got %+v", i, results[idx], got[i])
				}
			}
		})
	}
}

func TestIDGenerator(t *testing.T) {

	gen := NewIDGenerator()

	if id := gen.GetNext(); id != 1 {
		t.Fatalf("expected first id 1, got %d", id)
	}

	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				gen.GetNext()
			}
		}()
	}

	wg.Wait()

	if id := gen.GetNext(); id != 1002 {
		t.Errorf("expected id 1002 after concurrent use, got %d", id)
	}

	gen.Reset()

	if id := gen.GetNext(); id != 1 {
		t.Errorf("expected id 1 after reset, got %d", id)
	}
}

func TestDecodeYOLOv8(t *testing.T) {

	// 3 anchors, 4 box channels plus 2 classes, channel major
	anchors := 3
	data := []float32{
		// cx
		100, 300, 500,
		// cy
		300, 200, 300,
		// w
		40, 60, 80,
		// h
		80, 100, 120,
		// class 0 score
		0.9, 0.2, 0.41,
		// class 1 score
		0.1, 0.3, 0.7,
	}

	// 1280x720 frame letterboxed into 640x640, scale 0.5 with 140px top pad
	c := decodeYOLOv8(data, 6, anchors, 0.4, newLetterbox(1280, 720, 640, 640))

	if len(c.boxes) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(c.boxes))
	}

	if want := image.Rect(160, 240, 240, 400); c.boxes[0] != want {
		t.Errorf("expected first box %v, got %v", want, c.boxes[0])
	}

	if c.classes[0] != 0 || c.scores[0] != 0.9 {
		t.Errorf("expected class 0 score 0.9, got class %d score %v",
			c.classes[0], c.scores[0])
	}

	if c.classes[1] != 1 || c.scores[1] != 0.7 {
		t.Errorf("expected class 1 score 0.7, got class %d score %v",
			c.classes[1], c.scores[1])
	}

	if empty := decodeYOLOv8(data[:10], 6, anchors, 0.4, newLetterbox(640, 640, 640, 640)); len(empty.boxes) != 0 {
		t.Errorf("expected no candidates from short output")
	}
}

func TestLetterbox(t *testing.T) {

	tests := []struct {
		srcWidth  int
		srcHeight int
		xPad      int
		yPad      int
		scale     float32
	}{
		{1280, 720, 0, 140, 0.50},
		{800, 1000, 64, 0, 0.64},
		{800, 800, 0, 0, 0.8},
	}

	for _, tc := range tests {

		lb := newLetterbox(tc.srcWidth, tc.srcHeight, 640, 640)

		if lb.xPad != tc.xPad || lb.yPad != tc.yPad || lb.scale != tc.scale {
			t.Errorf("src (%d, %d): expected pad (%d, %d) scale %v, got (%d, %d) scale %v",
				tc.srcWidth, tc.srcHeight, tc.xPad, tc.yPad, tc.scale,
				lb.xPad, lb.yPad, lb.scale)
		}

		// the centre of the model input maps to the centre of the frame
		x, y := lb.toSource(320, 320)

		if x != tc.srcWidth/2 || y != tc.srcHeight/2 {
			t.Errorf("src (%d, %d): expected centre (%d, %d), got (%d, %d)",
				tc.srcWidth, tc.srcHeight, tc.srcWidth/2, tc.srcHeight/2, x, y)
		}
	}
}

func TestClassLimits(t *testing.T) {

	orig := playertrack.Logf
	defer playertrack.SetLogger(orig)
	playertrack.SetLogger(nil)

	dir := t.TempDir()
	labels := filepath.Join(dir, "labels.txt")

	if err := os.WriteFile(labels, []byte("person\nbicycle\nsports ball\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default().Detector
	cfg.LabelsPath = labels
	cfg.Classes = "person,sports ball,goalpost"
	cfg.Confidence = 0.3

	limits, err := classLimits(cfg)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(limits) != 2 || limits[0] != 0.3 || limits[2] != 0.3 {
		t.Errorf("unexpected limits %v", limits)
	}

	cfg.Classes = "goalpost"

	if _, err := classLimits(cfg); err == nil {
		t.Errorf("expected error when no class resolves")
	}

	cfg.Classes = ""

	if limits, err := classLimits(cfg); err != nil || limits != nil {
		t.Errorf("expected no limits for empty classes, got %v %v", limits, err)
	}

	cfg.LabelsPath = ""
	cfg.Classes = "person"

	if limits, _ := classLimits(cfg); limits[PersonClass] != 0.3 {
		t.Errorf("expected person limit without labels file, got %v", limits)
	}
}

// fakeDetector returns a single result tagged with its instance number
type fakeDetector struct {
	n      int
	closed *int
	mu     *sync.Mutex
}

func (f *fakeDetector) Detect(img gocv.Mat) ([]DetectResult, error) {
	return []DetectResult{{Class: f.n}}, nil
}

func (f *fakeDetector) Close() error {
	f.mu.Lock()
	*f.closed++
	f.mu.Unlock()
	return nil
}

func TestPool(t *testing.T) {

	closed := 0
	var mu sync.Mutex
	created := 0

	p, err := NewPool(3, func() (Detector, error) {
		created++
		return &fakeDetector{n: created, closed: &closed, mu: &mu}, nil
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.Size() != 3 || created != 3 {
		t.Fatalf("expected 3 detectors, got size %d created %d", p.Size(), created)
	}

	var wg sync.WaitGroup
	var img gocv.Mat

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := p.Detect(img)
			if err != nil || len(res) != 1 {
				t.Errorf("unexpected detect result %v %v", res, err)
			}
		}()
	}

	wg.Wait()

	// hold one detector while closing
	held, ok := p.Get()

	if !ok {
		t.Fatal("expected a detector from open pool")
	}

	if err := p.Close(); err != nil {
		t.Fatalf("unexpected close error: %v", err)
	}

	if closed != 2 {
		t.Errorf("expected 2 idle detectors closed, got %d", closed)
	}

	p.Return(held)

	if closed != 3 {
		t.Errorf("expected returned detector to be closed, got %d", closed)
	}

	if _, err := p.Detect(img); !errors.Is(err, ErrPoolClosed) {
		t.Errorf("expected ErrPoolClosed, got %v", err)
	}

	if err := p.Close(); err != nil {
		t.Errorf("expected second close to be a no-op, got %v", err)
	}
}

func TestPoolCreateError(t *testing.T) {

	closed := 0
	var mu sync.Mutex
	created := 0
	boom := errors.New("no model")

	_, err := NewPool(3, func() (Detector, error) {
		created++
		if created == 3 {
			return nil, boom
		}
		return &fakeDetector{closed: &closed, mu: &mu}, nil
	})

	if !errors.Is(err, boom) {
		t.Fatalf("expected create error, got %v", err)
	}

	if closed != 2 {
		t.Errorf("expected detectors created before the error to be closed, got %d", closed)
	}
}
