// Replays a JSON detections file through the tracker and prints the live
// tracks of every frame.  No OpenCV is required so tracker settings can be
// tuned quickly against recorded detections.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/swdee/go-playertrack"
	"github.com/swdee/go-playertrack/config"
	"github.com/swdee/go-playertrack/report"
	"github.com/swdee/go-playertrack/store"
	"github.com/swdee/go-playertrack/tracker"
)

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	// read in cli flags
	cfgFile := flag.String("c", "", "JSON config file, settings not given use defaults")
	envFile := flag.String("e", ".env", "Optional env file with PLAYERTRACK_* settings")
	jsonFile := flag.String("j", "../output/detections.json", "Detections file written by the detect example")
	matcher := flag.String("matcher", "", "Association strategy greedy, hungarian or jv, overrides config")
	dbFile := flag.String("db", "", "Optional SQLite database to record trajectories to")
	plotFile := flag.String("p", "", "Optional PNG file to plot trajectories to")
	mapFile := flag.String("map", "", "Optional PNG file to draw the track map to")
	mapSize := flag.String("size", "1280x720", "Track map size as WIDTHxHEIGHT")
	quiet := flag.Bool("q", false, "Only print the run summary")

	flag.Parse()

	cfg := config.Default()

	if *cfgFile != "" {
		var err error
		cfg, err = config.Load(*cfgFile)

		if err != nil {
			log.Fatalf("Error loading config: %v", err)
		}
	}

	if err := config.FromEnv(&cfg, *envFile); err != nil {
		log.Fatalf("Error reading environment: %v", err)
	}

	if *matcher != "" {
		cfg.Tracker.Matcher = *matcher
	}

	trk, err := tracker.New(cfg.Tracker)

	if err != nil {
		log.Fatalf("Error creating tracker: %v", err)
	}

	frames, err := playertrack.LoadDetections(*jsonFile)

	if err != nil {
		log.Fatalf("Error loading detections: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	collector := report.NewCollector()
	sinks := []playertrack.Sink{collector}

	if !*quiet {
		sinks = append(sinks, playertrack.SinkFunc(printSnapshot))
	}

	if *dbFile != "" {
		db, err := store.Open(*dbFile)

		if err != nil {
			log.Fatalf("Error opening database: %v", err)
		}

		defer db.Close()

		rec, err := store.NewRecorder(ctx, db, *jsonFile, cfg.Tracker)

		if err != nil {
			log.Fatalf("Error creating recorder: %v", err)
		}

		sinks = append(sinks, rec)
	}

	session := playertrack.NewSession(playertrack.NewSliceSource(frames), trk, sinks...)
	session.LogInterval = cfg.Output.LogInterval

	if _, err := session.Run(ctx); err != nil {
		log.Fatalf("Error running tracker: %v", err)
	}

	collector.Summary().Write(os.Stdout)

	if *plotFile != "" {
		if err := collector.PlotTrajectories(*plotFile, report.DefaultPlotOptions()); err != nil {
			log.Fatalf("Error plotting trajectories: %v", err)
		}
	}

	if *mapFile != "" {
		var w, h int

		if _, err := fmt.Sscanf(*mapSize, "%dx%d", &w, &h); err != nil {
			log.Fatalf("Invalid map size %q: %v", *mapSize, err)
		}

		if err := report.WritePNG(*mapFile, collector.TrackMap(w, h)); err != nil {
			log.Fatalf("Error writing track map: %v", err)
		}
	}
}

// printSnapshot prints the live tracks of a frame on a single line
func printSnapshot(ctx context.Context, frame playertrack.Frame,
	snap tracker.Snapshot) error {

	parts := make([]string, 0, len(snap.Tracks))

	for _, trk := range snap.Tracks {
		if trk.IsLost() {
			parts = append(parts, fmt.Sprintf("%d%v lost=%d", trk.ID, trk.Box, trk.Lost))
		} else {
			parts = append(parts, fmt.Sprintf("%d%v", trk.ID, trk.Box))
		}
	}

	fmt.Printf("frame %04d: %s\n", snap.Frame, strings.Join(parts, "  "))

	return nil
}
