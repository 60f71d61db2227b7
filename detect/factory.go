package detect

import (
	"fmt"
	"strings"

	"github.com/swdee/go-playertrack"
	"github.com/swdee/go-playertrack/config"
)

// New creates the Detector selected by cfg.Kind.  For the YOLO detector the
// class names in cfg.Classes are resolved against the labels file, unknown
// names are logged and ignored.
func New(cfg config.DetectorConfig) (Detector, error) {

	switch cfg.Kind {
	case config.DetectorContour, "":
		return NewContourDetector(ContourParams{
			CannyLow:  cfg.CannyLow,
			CannyHigh: cfg.CannyHigh,
			MinWidth:  cfg.MinWidth,
			MinHeight: cfg.MinHeight,
		}), nil

	case config.DetectorYOLO:
		p := DefaultYOLOParams()
		p.ModelPath = cfg.ModelPath
		p.BoxThreshold = cfg.Confidence
		p.NMSThreshold = cfg.NMS
		p.InputWidth = cfg.InputSize
		p.InputHeight = cfg.InputSize

		classes, err := classLimits(cfg)

		if err != nil {
			return nil, err
		}

		p.Classes = classes

		return NewYOLODetector(p)
	}

	return nil, fmt.Errorf("unknown detector kind %q", cfg.Kind)
}

// classLimits maps the configured class names to their minimum confidence
func classLimits(cfg config.DetectorConfig) (map[int]float32, error) {

	if strings.TrimSpace(cfg.Classes) == "" {
		return nil, nil
	}

	if cfg.LabelsPath == "" {
		// without labels only the person class can be resolved
		if strings.TrimSpace(cfg.Classes) == "person" {
			return map[int]float32{PersonClass: cfg.Confidence}, nil
		}
		return nil, fmt.Errorf("a labels file is needed to resolve classes %q", cfg.Classes)
	}

	labels, err := playertrack.LoadLabels(cfg.LabelsPath)

	if err != nil {
		return nil, err
	}

	found, missing := playertrack.ClassIndexes(labels, cfg.Classes)

	if len(missing) > 0 {
		playertrack.Logf("Ignoring unknown classes: %s", strings.Join(missing, ", "))
	}

	if len(found) == 0 {
		return nil, fmt.Errorf("none of the classes %q are in %s", cfg.Classes,
			cfg.LabelsPath)
	}

	limits := make(map[int]float32, len(found))

	for _, idx := range found {
		limits[idx] = cfg.Confidence
	}

	return limits, nil
}
