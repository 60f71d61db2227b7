package report

import (
	"fmt"
	"io"

	"gonum.org/v1/gonum/stat"
)

// Summary holds aggregate statistics of a tracking run
type Summary struct {
	Frames  int
	Tracks  int
	Expired int
	MaxLive int
	// MeanLifetime and StdLifetime describe how many frames tracks lived
	MeanLifetime float64
	StdLifetime  float64
	// MeanHitRatio and StdHitRatio describe the fraction of their lifetime
	// tracks were matched
	MeanHitRatio float64
	StdHitRatio  float64
	// LongestTrack is the ID of the track with the longest lifetime, -1
	// when no tracks were seen
	LongestTrack int
}

// Summary computes the statistics of the tracks collected so far
func (c *Collector) Summary() Summary {

	records := c.Records()

	c.mu.Lock()
	s := Summary{
		Frames:       c.frames,
		Tracks:       len(records),
		MaxLive:      c.maxLive,
		LongestTrack: -1,
	}
	c.mu.Unlock()

	if len(records) == 0 {
		return s
	}

	lifetimes := make([]float64, len(records))
	ratios := make([]float64, len(records))
	longest := 0

	for i, r := range records {
		lifetimes[i] = float64(r.Lifetime())
		ratios[i] = r.HitRatio()

		if r.ExpiredAt >= 0 {
			s.Expired++
		}

		if r.Lifetime() > longest {
			longest = r.Lifetime()
			s.LongestTrack = r.ID
		}
	}

	s.MeanLifetime, s.StdLifetime = meanStdDev(lifetimes)
	s.MeanHitRatio, s.StdHitRatio = meanStdDev(ratios)

	return s
}

// meanStdDev returns the mean and sample standard deviation, the deviation
// of a single value is 0
func meanStdDev(x []float64) (float64, float64) {

	if len(x) == 1 {
		return x[0], 0
	}

	return stat.MeanStdDev(x, nil)
}

// Write prints the summary in a human readable form
func (s Summary) Write(w io.Writer) error {

	_, err := fmt.Fprintf(w, "Frames processed: %d\n"+
		"Tracks created: %d (%d expired, max %d live)\n"+
		"Track lifetime: %.1f ± %.1f frames\n"+
		"Hit ratio: %.2f ± %.2f\n"+
		"Longest track: %d\n",
		s.Frames, s.Tracks, s.Expired, s.MaxLive,
		s.MeanLifetime, s.StdLifetime,
		s.MeanHitRatio, s.StdHitRatio,
		s.LongestTrack)

	return err
}
