package report

import (
	"fmt"

	"github.com/swdee/go-playertrack/render/palette"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// PlotOptions controls the trajectory plot
type PlotOptions struct {
	Title  string
	Width  vg.Length
	Height vg.Length
	// MinHits skips tracks matched in fewer frames
	MinHits int
	// Legend adds a legend entry per track
	Legend bool
}

// DefaultPlotOptions returns a 10x6 inch plot of every track
func DefaultPlotOptions() PlotOptions {
	return PlotOptions{
		Title:  "Player trajectories",
		Width:  10 * vg.Inch,
		Height: 6 * vg.Inch,
		Legend: true,
	}
}

// TrajectoryPlot builds a plot of the centroid path of each track in image
// coordinates with the Y axis pointing down like the video
func TrajectoryPlot(records []TrackRecord, opts PlotOptions) (*plot.Plot, error) {

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = "X (px)"
	p.Y.Label.Text = "Y (px)"
	p.Y.Scale = plot.InvertedScale{Normalizer: plot.LinearScale{}}
	p.Add(plotter.NewGrid())

	for _, r := range records {

		if len(r.Path) == 0 || r.Hits < opts.MinHits {
			continue
		}

		pts := make(plotter.XYs, len(r.Path))

		for i, c := range r.Path {
			pts[i] = plotter.XY{X: float64(c.X), Y: float64(c.Y)}
		}

		clr := palette.Track(r.ID)

		line, points, err := plotter.NewLinePoints(pts)

		if err != nil {
			return nil, fmt.Errorf("track %d: %w", r.ID, err)
		}

		line.Color = clr
		line.Width = vg.Points(1.5)
		points.Color = clr
		points.Radius = vg.Points(1)

		p.Add(line, points)

		if opts.Legend {
			p.Legend.Add(fmt.Sprintf("ID %d", r.ID), line)
		}
	}

	return p, nil
}

// PlotTrajectories saves the trajectory plot of the collected tracks to
// path, the image format follows the file extension
func (c *Collector) PlotTrajectories(path string, opts PlotOptions) error {

	p, err := TrajectoryPlot(c.Records(), opts)

	if err != nil {
		return err
	}

	if err := p.Save(opts.Width, opts.Height, path); err != nil {
		return fmt.Errorf("save trajectory plot: %w", err)
	}

	return nil
}
