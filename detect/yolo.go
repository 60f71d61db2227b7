package detect

import (
	"fmt"
	"image"
	"os"
	"sync"

	"gocv.io/x/gocv"
)

// PersonClass is the COCO class index of a person
const PersonClass = 0

// YOLOParams defines the YOLOv8 model and post processing parameters
type YOLOParams struct {
	// ModelPath is the ONNX export of the YOLOv8 model
	ModelPath string
	// BoxThreshold is the minimum class score, exclusive, for a candidate box
	// to be kept
	BoxThreshold float32
	// NMSThreshold is the maximum IoU allowed between two kept boxes
	NMSThreshold float32
	// InputWidth and InputHeight are the model input dimensions
	InputWidth  int
	InputHeight int
	// Classes limits results to the given class indexes and their minimum
	// probability, an empty map keeps every class
	Classes map[int]float32
}

// DefaultYOLOParams returns parameters for a COCO trained YOLOv8 model
// keeping only people detected with a probability above 0.4
func DefaultYOLOParams() YOLOParams {
	return YOLOParams{
		ModelPath:    "model/yolov8n.onnx",
		BoxThreshold: 0.4,
		NMSThreshold: 0.45,
		InputWidth:   640,
		InputHeight:  640,
		Classes:      map[int]float32{PersonClass: 0.4},
	}
}

// YOLODetector runs a YOLOv8 ONNX model through the OpenCV DNN module
type YOLODetector struct {
	Params YOLOParams
	net     gocv.Net
	idGen   *IDGenerator
	resizer *Resizer
	input   gocv.Mat
	mu      sync.Mutex
}

// NewYOLODetector loads the model given in the parameters
func NewYOLODetector(p YOLOParams) (*YOLODetector, error) {

	if _, err := os.Stat(p.ModelPath); err != nil {
		return nil, fmt.Errorf("model file not found: %w", err)
	}

	net := gocv.ReadNetFromONNX(p.ModelPath)

	if net.Empty() {
		return nil, fmt.Errorf("failed to load YOLO model from %s", p.ModelPath)
	}

	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	return &YOLODetector{
		Params: p,
		net:    net,
		idGen:  NewIDGenerator(),
		input:  gocv.NewMat(),
	}, nil
}

// Detect implements Detector
func (y *YOLODetector) Detect(img gocv.Mat) ([]DetectResult, error) {

	y.mu.Lock()
	defer y.mu.Unlock()

	if img.Empty() {
		return nil, fmt.Errorf("empty image")
	}

	// frame size rarely changes within a video so keep the resizer around
	if y.resizer == nil || !y.resizer.Fits(img.Cols(), img.Rows()) {
		if y.resizer != nil {
			y.resizer.Close()
		}
		y.resizer = NewResizer(img.Cols(), img.Rows(), y.Params.InputWidth,
			y.Params.InputHeight)
	}

	y.resizer.Resize(img, &y.input)

	inputSize := image.Pt(y.Params.InputWidth, y.Params.InputHeight)

	blob := gocv.BlobFromImage(y.input, 1.0/255.0, inputSize,
		gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	y.net.SetInput(blob, "")

	output := y.net.Forward("")
	defer output.Close()

	// output shape is [1, 4+classes, anchors]
	dims := output.Size()

	if len(dims) != 3 {
		return nil, fmt.Errorf("unexpected YOLOv8 output shape %v", dims)
	}

	data, err := output.DataPtrFloat32()

	if err != nil {
		return nil, fmt.Errorf("error reading YOLOv8 output: %w", err)
	}

	cands := decodeYOLOv8(data, dims[1], dims[2], y.Params.BoxThreshold,
		y.resizer.letterbox)

	if len(cands.boxes) == 0 {
		return []DetectResult{}, nil
	}

	keep := gocv.NMSBoxes(cands.boxes, cands.scores, y.Params.BoxThreshold,
		y.Params.NMSThreshold)

	bounds := image.Rect(0, 0, img.Cols(), img.Rows())
	results := make([]DetectResult, 0, len(keep))

	for _, idx := range keep {

		r := cands.boxes[idx].Intersect(bounds)

		results = append(results, DetectResult{
			Class: cands.classes[idx],
			Box: BoxRect{
				Left:   r.Min.X,
				Top:    r.Min.Y,
				Right:  r.Max.X,
				Bottom: r.Max.Y,
			},
			Probability: cands.scores[idx],
			ID:          y.idGen.GetNext(),
		})
	}

	return Filter(results, y.Params.Classes), nil
}

// Close implements Detector
func (y *YOLODetector) Close() error {
	y.mu.Lock()
	defer y.mu.Unlock()

	if y.resizer != nil {
		y.resizer.Close()
	}

	y.input.Close()

	return y.net.Close()
}

// candidates are the boxes passing the score threshold before NMS
type candidates struct {
	boxes   []image.Rectangle
	scores  []float32
	classes []int
}

// decodeYOLOv8 reads the channel major YOLOv8 output where each of the
// anchors columns holds cx, cy, w, h followed by one score per class.  Box
// coordinates are mapped from the letterboxed model input back to the
// source image.
func decodeYOLOv8(data []float32, channels, anchors int, threshold float32,
	lb letterbox) candidates {

	var c candidates

	if channels <= 4 || len(data) < channels*anchors {
		return c
	}

	for i := 0; i < anchors; i++ {

		maxScore := float32(0)
		maxClass := 0

		for ch := 4; ch < channels; ch++ {
			if score := data[ch*anchors+i]; score > maxScore {
				maxScore = score
				maxClass = ch - 4
			}
		}

		if maxScore <= threshold {
			continue
		}

		cx := data[0*anchors+i]
		cy := data[1*anchors+i]
		w := data[2*anchors+i]
		h := data[3*anchors+i]

		x1, y1 := lb.toSource(cx-w/2, cy-h/2)
		x2, y2 := lb.toSource(cx+w/2, cy+h/2)

		c.boxes = append(c.boxes, image.Rect(x1, y1, x2, y2))
		c.scores = append(c.scores, maxScore)
		c.classes = append(c.classes, maxClass)
	}

	return c
}
