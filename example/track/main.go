// Tracks players across the frames of a video or a folder of frames and
// writes a video with each player's ID and trail drawn over them.
// Trajectories can also be recorded to SQLite, plotted, and streamed live
// to websocket clients.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/swdee/go-playertrack"
	"github.com/swdee/go-playertrack/config"
	"github.com/swdee/go-playertrack/detect"
	"github.com/swdee/go-playertrack/report"
	"github.com/swdee/go-playertrack/store"
	"github.com/swdee/go-playertrack/stream"
	"github.com/swdee/go-playertrack/tracker"
	"github.com/swdee/go-playertrack/video"
)

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	// read in cli flags
	cfgFile := flag.String("c", "", "JSON config file, settings not given use defaults")
	envFile := flag.String("e", ".env", "Optional env file with PLAYERTRACK_* settings")
	vidFile := flag.String("v", "", "Video file to track players in")
	framesDir := flag.String("f", "../output/frames", "Folder of frame images to track players in when no video is given")
	kind := flag.String("d", "", "Detector to use, either contour or yolo, overrides config")
	modelFile := flag.String("m", "", "YOLOv8 ONNX model file, overrides config")
	outFile := flag.String("o", "", "Output video file, overrides config")
	matcher := flag.String("matcher", "", "Association strategy greedy, hungarian or jv, overrides config")
	dbFile := flag.String("db", "", "SQLite database to record trajectories to, overrides config")
	plotFile := flag.String("p", "", "PNG file to plot trajectories to, overrides config")
	httpAddr := flag.String("a", "", "HTTP address to stream live tracks on, format address:port")
	classic := flag.Bool("classic", false, "Draw boxes in the classic green palette without trails")

	flag.Parse()

	cfg := loadConfig(*cfgFile, *envFile)

	if *kind != "" {
		cfg.Detector.Kind = *kind
	}
	if *modelFile != "" {
		cfg.Detector.ModelPath = *modelFile
	}
	if *outFile != "" {
		cfg.Output.Video = *outFile
	}
	if *matcher != "" {
		cfg.Tracker.Matcher = *matcher
	}
	if *dbFile != "" {
		cfg.Output.Database = *dbFile
	}
	if *plotFile != "" {
		cfg.Output.Plot = *plotFile
	}
	if *httpAddr != "" {
		cfg.Output.StreamAddr = *httpAddr
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, *vidFile, *framesDir, *classic); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

// loadConfig reads the config file if given then applies the environment
func loadConfig(cfgFile, envFile string) config.Config {

	cfg := config.Default()

	if cfgFile != "" {
		var err error
		cfg, err = config.Load(cfgFile)

		if err != nil {
			log.Fatalf("Error loading config: %v", err)
		}
	}

	if err := config.FromEnv(&cfg, envFile); err != nil {
		log.Fatalf("Error reading environment: %v", err)
	}

	return cfg
}

// run wires the frame source through the tracker to the configured sinks
func run(ctx context.Context, cfg config.Config, vidFile, framesDir string,
	classic bool) error {

	trk, err := tracker.New(cfg.Tracker)

	if err != nil {
		return err
	}

	det, err := detect.New(cfg.Detector)

	if err != nil {
		return fmt.Errorf("error creating detector: %w", err)
	}

	defer det.Close()

	var reader *video.Reader
	source := framesDir

	if vidFile != "" {
		reader, err = video.OpenFile(vidFile)
		source = vidFile
	} else {
		reader, err = video.OpenFrames(framesDir)
	}

	if err != nil {
		return err
	}

	defer reader.Close()

	log.Printf("Tracking players in %s using %s detector and %s matcher",
		source, cfg.Detector.Kind, cfg.Tracker.Matcher)

	writer := video.NewWriter(cfg.Output.Video)
	writer.FPS = cfg.Output.FPS
	writer.FourCC = cfg.Output.FourCC

	if classic {
		writer.Overlay.Box.Classic = true
		writer.Overlay.ShowTrails = false
	}

	collector := report.NewCollector()
	sinks := []playertrack.Sink{writer, collector}

	if cfg.Output.Database != "" {
		db, err := store.Open(cfg.Output.Database)

		if err != nil {
			return err
		}

		defer db.Close()

		rec, err := store.NewRecorder(ctx, db, source, cfg.Tracker)

		if err != nil {
			return err
		}

		log.Printf("Recording trajectories to session %s", rec.SessionID())
		sinks = append(sinks, rec)
	}

	if cfg.Output.StreamAddr != "" {
		hub := stream.NewHub()
		go hub.Run(ctx)

		mux := http.NewServeMux()
		mux.Handle("/tracks", hub)

		srv := &http.Server{Addr: cfg.Output.StreamAddr, Handler: mux}

		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("Stream server error: %v", err)
			}
		}()

		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		log.Printf("Connect websocket client to ws://%s/tracks", cfg.Output.StreamAddr)
		sinks = append(sinks, hub)
	}

	session := playertrack.NewSession(video.NewSource(reader, det), trk, sinks...)
	session.LogInterval = cfg.Output.LogInterval

	start := time.Now()
	stats, err := session.Run(ctx)

	if err != nil {
		return err
	}

	log.Printf("Tracking complete in %s, %d frames, %d detections, %d tracks. Video saved to: %s",
		time.Since(start).Round(time.Millisecond), stats.Frames, stats.Detections,
		stats.TracksCreated, cfg.Output.Video)

	collector.Summary().Write(os.Stdout)

	if cfg.Output.Plot != "" {
		if err := collector.PlotTrajectories(cfg.Output.Plot, report.DefaultPlotOptions()); err != nil {
			return err
		}
		log.Printf("Trajectory plot saved to: %s", cfg.Output.Plot)
	}

	if cfg.Output.TrackMap != "" {
		w, h := 1280, 720

		if img, ok := firstFrameSize(vidFile, framesDir); ok {
			w, h = img.X, img.Y
		}

		if err := report.WritePNG(cfg.Output.TrackMap, collector.TrackMap(w, h)); err != nil {
			return err
		}
		log.Printf("Track map saved to: %s", cfg.Output.TrackMap)
	}

	return nil
}
