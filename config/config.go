// Package config loads the settings of a tracking run from a JSON file and
// PLAYERTRACK_* environment variables.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/swdee/go-playertrack/tracker"
)

var (
	// ErrInvalidPath is returned when the config file is not an acceptable
	// JSON file
	ErrInvalidPath = errors.New("invalid config path")
	// ErrInvalidConfig is returned by Validate
	ErrInvalidConfig = errors.New("invalid config")
)

// maxFileSize is the largest config file accepted
const maxFileSize = 1 * 1024 * 1024

const (
	DetectorContour = "contour"
	DetectorYOLO    = "yolo"
)

// Config holds every setting of a tracking run
type Config struct {
	Tracker  tracker.Config `json:"tracker"`
	Detector DetectorConfig `json:"detector"`
	Output   OutputConfig   `json:"output"`
}

// DetectorConfig selects and tunes the player detector
type DetectorConfig struct {
	// Kind is "contour" or "yolo"
	Kind string `json:"kind"`
	// ModelPath is the YOLOv8 ONNX file
	ModelPath string `json:"model_path"`
	// LabelsPath is the class labels file of the model, one per line
	LabelsPath string `json:"labels_path"`
	// Classes is a comma delimited list of label names to keep
	Classes    string  `json:"classes"`
	Confidence float32 `json:"confidence"`
	NMS        float32 `json:"nms"`
	InputSize  int     `json:"input_size"`
	// contour detector settings
	CannyLow  float32 `json:"canny_low"`
	CannyHigh float32 `json:"canny_high"`
	MinWidth  int     `json:"min_width"`
	MinHeight int     `json:"min_height"`
}

// OutputConfig lists where results are written, empty paths disable that
// output
type OutputConfig struct {
	Video       string  `json:"video"`
	FPS         float64 `json:"fps"`
	FourCC      string  `json:"fourcc"`
	FramesDir   string  `json:"frames_dir"`
	Database    string  `json:"database"`
	Plot        string  `json:"plot"`
	TrackMap    string  `json:"track_map"`
	StreamAddr  string  `json:"stream_addr"`
	LogInterval int     `json:"log_interval"`
}

// Default returns the settings of the Python prototype scripts
func Default() Config {
	return Config{
		Tracker: tracker.DefaultConfig(),
		Detector: DetectorConfig{
			Kind:       DetectorContour,
			ModelPath:  "model/yolov8n.onnx",
			LabelsPath: "model/coco_80_labels_list.txt",
			Classes:    "person",
			Confidence: 0.4,
			NMS:        0.45,
			InputSize:  640,
			CannyLow:   50,
			CannyHigh:  200,
			MinWidth:   40,
			MinHeight:  100,
		},
		Output: OutputConfig{
			Video:       "output/tracked_output.mp4",
			FPS:         25,
			FourCC:      "mp4v",
			LogInterval: 50,
		},
	}
}

// Load reads the JSON file at path over the defaults, so the file only
// needs the settings that differ.  The result is validated.
func Load(path string) (Config, error) {

	cfg := Default()

	cleanPath := filepath.Clean(path)

	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return cfg, fmt.Errorf("%w: config file must have .json extension, got %q",
			ErrInvalidPath, ext)
	}

	info, err := os.Stat(cleanPath)

	if err != nil {
		return cfg, fmt.Errorf("failed to stat config file: %w", err)
	}

	if info.Size() > maxFileSize {
		return cfg, fmt.Errorf("%w: config file too large: %d bytes (max %d)",
			ErrInvalidPath, info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)

	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return cfg, cfg.Validate()
}

// Validate checks every section of the configuration
func (c Config) Validate() error {

	if err := c.Tracker.Validate(); err != nil {
		return err
	}

	d := c.Detector

	switch d.Kind {
	case DetectorContour:
		if d.MinWidth < 0 || d.MinHeight < 0 {
			return fmt.Errorf("%w: contour min size must not be negative", ErrInvalidConfig)
		}

	case DetectorYOLO:
		if d.ModelPath == "" {
			return fmt.Errorf("%w: yolo detector needs a model_path", ErrInvalidConfig)
		}

		if d.Confidence < 0 || d.Confidence >= 1 {
			return fmt.Errorf("%w: confidence %v must be in the range [0,1)",
				ErrInvalidConfig, d.Confidence)
		}

		if d.NMS <= 0 || d.NMS > 1 {
			return fmt.Errorf("%w: nms %v must be in the range (0,1]",
				ErrInvalidConfig, d.NMS)
		}

		if d.InputSize <= 0 || d.InputSize%32 != 0 {
			return fmt.Errorf("%w: input_size %d must be a positive multiple of 32",
				ErrInvalidConfig, d.InputSize)
		}

	default:
		return fmt.Errorf("%w: unknown detector kind %q", ErrInvalidConfig, d.Kind)
	}

	o := c.Output

	if o.FPS <= 0 {
		return fmt.Errorf("%w: fps %v must be positive", ErrInvalidConfig, o.FPS)
	}

	if len(o.FourCC) != 4 {
		return fmt.Errorf("%w: fourcc %q must be 4 characters", ErrInvalidConfig, o.FourCC)
	}

	if o.LogInterval < 0 {
		return fmt.Errorf("%w: log_interval %d must not be negative",
			ErrInvalidConfig, o.LogInterval)
	}

	return nil
}
