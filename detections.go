package playertrack

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/swdee/go-playertrack/tracker"
)

// LoadDetections reads a detections file holding one JSON array per frame
// of [x1, y1, x2, y2] boxes, eg: [[[10,10,50,90]],[],[[12,10,52,90]]].
// Boxes are not validated so degenerate entries reach the tracker as
// recorded.
func LoadDetections(path string) ([][]tracker.BoundingBox, error) {

	data, err := os.ReadFile(path)

	if err != nil {
		return nil, fmt.Errorf("error reading detections file: %w", err)
	}

	var raw [][][4]int

	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("error parsing detections file: %w", err)
	}

	frames := make([][]tracker.BoundingBox, len(raw))

	for i, boxes := range raw {
		frames[i] = make([]tracker.BoundingBox, len(boxes))

		for j, b := range boxes {
			frames[i][j] = tracker.BoundingBox{X1: b[0], Y1: b[1], X2: b[2], Y2: b[3]}
		}
	}

	return frames, nil
}

// SaveDetections writes per frame boxes in the format read by
// LoadDetections
func SaveDetections(path string, frames [][]tracker.BoundingBox) error {

	raw := make([][][4]int, len(frames))

	for i, boxes := range frames {
		raw[i] = make([][4]int, len(boxes))

		for j, b := range boxes {
			raw[i][j] = [4]int{b.X1, b.Y1, b.X2, b.Y2}
		}
	}

	data, err := json.Marshal(raw)

	if err != nil {
		return fmt.Errorf("error encoding detections: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing detections file: %w", err)
	}

	return nil
}
