package tracker

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned when tracker configuration values are out
// of range
var ErrInvalidConfig = errors.New("invalid tracker config")

const (
	// DefaultIoUThreshold is the overlap a detection must exceed to match a
	// track
	DefaultIoUThreshold = 0.5
	// DefaultMaxLost is the number of consecutive unmatched frames a track
	// survives before being removed
	DefaultMaxLost = 5
	// DefaultTrailSize is the number of center points kept per track
	DefaultTrailSize = 30
)

// Config holds the tracker parameters
type Config struct {
	// IoUThreshold a detection must exceed to be matched to a track
	IoUThreshold float64 `json:"iou_threshold"`
	// MaxLost is the number of consecutive frames a track may go unmatched
	// and still be reported.  It is removed once Lost exceeds this.
	MaxLost int `json:"max_lost"`
	// TrailSize is the capacity of each track's center point history
	TrailSize int `json:"trail_size"`
	// Matcher is the association strategy, one of "greedy", "hungarian"
	// or "jv"
	Matcher string `json:"matcher"`
}

// DefaultConfig returns the default tracker parameters
func DefaultConfig() Config {
	return Config{
		IoUThreshold: DefaultIoUThreshold,
		MaxLost:      DefaultMaxLost,
		TrailSize:    DefaultTrailSize,
		Matcher:      MatcherGreedy,
	}
}

// Validate checks the configuration values
func (c Config) Validate() error {

	if c.IoUThreshold < 0 || c.IoUThreshold >= 1 {
		return fmt.Errorf("%w: iou_threshold %v must be in the range [0,1)",
			ErrInvalidConfig, c.IoUThreshold)
	}

	if c.MaxLost < 0 {
		return fmt.Errorf("%w: max_lost %d must not be negative",
			ErrInvalidConfig, c.MaxLost)
	}

	if c.TrailSize < 1 {
		return fmt.Errorf("%w: trail_size %d must be at least 1",
			ErrInvalidConfig, c.TrailSize)
	}

	if _, err := MatcherByName(c.Matcher, c.IoUThreshold); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return nil
}
