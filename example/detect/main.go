// Runs player detection on every frame of a video and saves the annotated
// frames as numbered images, optionally recording the detected boxes to a
// JSON file that can be replayed through the tracker without OpenCV.
package main

import (
	"errors"
	"flag"
	"io"
	"log"
	"sync"

	"github.com/swdee/go-playertrack"
	"github.com/swdee/go-playertrack/config"
	"github.com/swdee/go-playertrack/detect"
	"github.com/swdee/go-playertrack/render"
	"github.com/swdee/go-playertrack/tracker"
	"github.com/swdee/go-playertrack/video"
	"gocv.io/x/gocv"
)

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	// read in cli flags
	cfgFile := flag.String("c", "", "JSON config file, settings not given use defaults")
	vidFile := flag.String("v", "../data/15sec_input_720p.mp4", "Video file to run player detection on")
	kind := flag.String("d", "yolo", "Detector to use, either yolo or contour")
	modelFile := flag.String("m", "", "YOLOv8 ONNX model file, overrides config")
	labelFile := flag.String("l", "", "Text file containing model labels, overrides config")
	limitLabels := flag.String("x", "", "Comma delimited list of labels to restrict detection to, overrides config")
	outDir := flag.String("o", "../output/frames", "Folder to save annotated frames to")
	jsonFile := flag.String("j", "", "Optional JSON file to save per frame detections to")
	poolSize := flag.Int("s", 1, "Number of detectors to run frames through concurrently")

	flag.Parse()

	cfg := config.Default()

	if *cfgFile != "" {
		var err error
		cfg, err = config.Load(*cfgFile)

		if err != nil {
			log.Fatalf("Error loading config: %v", err)
		}
	}

	cfg.Detector.Kind = *kind

	if *modelFile != "" {
		cfg.Detector.ModelPath = *modelFile
	}

	if *labelFile != "" {
		cfg.Detector.LabelsPath = *labelFile
	}

	if *limitLabels != "" {
		cfg.Detector.Classes = *limitLabels
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	pool, err := detect.NewPool(*poolSize, func() (detect.Detector, error) {
		return detect.New(cfg.Detector)
	})

	if err != nil {
		log.Fatalf("Error creating detector pool: %v", err)
	}

	defer pool.Close()

	var labels []string

	if cfg.Detector.Kind == config.DetectorYOLO && cfg.Detector.LabelsPath != "" {
		labels, err = playertrack.LoadLabels(cfg.Detector.LabelsPath)

		if err != nil {
			log.Fatalf("Error loading model labels: %v", err)
		}
	}

	reader, err := video.OpenFile(*vidFile)

	if err != nil {
		log.Fatalf("Error opening video: %v", err)
	}

	defer reader.Close()

	dumper, err := video.NewFrameDumper(*outDir)

	if err != nil {
		log.Fatalf("Error creating frame dumper: %v", err)
	}

	log.Printf("Running detection on each frame...")

	font := render.DefaultFont()
	var frames [][]tracker.BoundingBox
	idx := 0
	done := false

	for !done {
		// read a batch of frames, one per detector in the pool
		var batch []gocv.Mat

		for len(batch) < pool.Size() {
			img, err := reader.Read()

			if errors.Is(err, io.EOF) {
				done = true
				break
			}

			if err != nil {
				log.Fatalf("Error reading frame %d: %v", idx+len(batch), err)
			}

			batch = append(batch, img)
		}

		results := make([][]detect.DetectResult, len(batch))
		errs := make([]error, len(batch))

		var wg sync.WaitGroup

		for i := range batch {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i], errs[i] = pool.Detect(batch[i])
			}(i)
		}

		wg.Wait()

		// write out in frame order
		for i, img := range batch {
			if errs[i] != nil {
				log.Fatalf("Error detecting frame %d: %v", idx, errs[i])
			}

			render.DetectionBoxes(&img, results[i], labels, font, 2)

			if err := dumper.WriteFrame(idx, img); err != nil {
				log.Printf("Error saving frame %d: %v", idx, err)
			}

			img.Close()

			boxes, _ := detect.ToBoxes(results[i])
			frames = append(frames, boxes)
			idx++
		}
	}

	if *jsonFile != "" {
		if err := playertrack.SaveDetections(*jsonFile, frames); err != nil {
			log.Fatalf("Error saving detections: %v", err)
		}

		log.Printf("Saved detections to: %s", *jsonFile)
	}

	log.Printf("Processed %d frames and saved to: %s", idx, *outDir)
}
