package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// EnvPrefix is prepended to every environment variable name
const EnvPrefix = "PLAYERTRACK_"

// FromEnv overlays PLAYERTRACK_* environment variables onto cfg.  If
// envFile is given and exists it is loaded first, variables already set in
// the environment take precedence over the file.  The result is validated.
func FromEnv(cfg *Config, envFile string) error {

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load env file: %w", err)
		}
	}

	e := envReader{}

	e.setFloat64("IOU_THRESHOLD", &cfg.Tracker.IoUThreshold)
	e.setInt("MAX_LOST", &cfg.Tracker.MaxLost)
	e.setInt("TRAIL_SIZE", &cfg.Tracker.TrailSize)
	e.setString("MATCHER", &cfg.Tracker.Matcher)

	e.setString("DETECTOR", &cfg.Detector.Kind)
	e.setString("MODEL", &cfg.Detector.ModelPath)
	e.setString("LABELS", &cfg.Detector.LabelsPath)
	e.setString("CLASSES", &cfg.Detector.Classes)
	e.setFloat32("CONFIDENCE", &cfg.Detector.Confidence)
	e.setFloat32("NMS", &cfg.Detector.NMS)
	e.setInt("MIN_WIDTH", &cfg.Detector.MinWidth)
	e.setInt("MIN_HEIGHT", &cfg.Detector.MinHeight)

	e.setString("OUTPUT_VIDEO", &cfg.Output.Video)
	e.setFloat64("FPS", &cfg.Output.FPS)
	e.setString("FRAMES_DIR", &cfg.Output.FramesDir)
	e.setString("DATABASE", &cfg.Output.Database)
	e.setString("PLOT", &cfg.Output.Plot)
	e.setString("TRACK_MAP", &cfg.Output.TrackMap)
	e.setString("STREAM_ADDR", &cfg.Output.StreamAddr)
	e.setInt("LOG_INTERVAL", &cfg.Output.LogInterval)

	if len(e.errs) > 0 {
		return errors.Join(e.errs...)
	}

	return cfg.Validate()
}

// envReader parses prefixed variables recording every parse failure
type envReader struct {
	errs []error
}

func (e *envReader) lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(EnvPrefix + key)
	return v, ok && v != ""
}

func (e *envReader) setString(key string, dst *string) {
	if v, ok := e.lookup(key); ok {
		*dst = v
	}
}

func (e *envReader) setInt(key string, dst *int) {
	v, ok := e.lookup(key)

	if !ok {
		return
	}

	n, err := strconv.Atoi(v)

	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
		return
	}

	*dst = n
}

func (e *envReader) setFloat64(key string, dst *float64) {
	v, ok := e.lookup(key)

	if !ok {
		return
	}

	f, err := strconv.ParseFloat(v, 64)

	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
		return
	}

	*dst = f
}

func (e *envReader) setFloat32(key string, dst *float32) {
	f := float64(*dst)
	e.setFloat64(key, &f)
	*dst = float32(f)
}
