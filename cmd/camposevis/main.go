package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"camposevis/pkg/config"
	"camposevis/pkg/dataset"
	"camposevis/pkg/visualization"
)

func main() {
	// Parse command line arguments. Flags that are set explicitly override
	// the corresponding YAML config values.
	configPath := flag.String("config", "", "Path to YAML config file (optional)")
	dataDir := flag.String("data", "", "Dataset directory containing the transforms file and images")
	transformsFile := flag.String("transforms", "transforms.json", "Transforms filename within the dataset directory")
	downsample := flag.Int("image-downsample-factor", 5, "Stride for image pixel sampling when projecting images")
	skipProb := flag.Float64("skip-probability", 0.0, "Per-camera probability of being skipped at random")
	imagePlane := flag.Float64("image-plane", 1.0, "Distance from camera center to the projected image plane")
	selectedFrames := flag.String("selected-frames", "", "Comma-separated frame indices to visualize (default: all)")
	showImage := flag.Bool("show-image", false, "Project and draw per-camera imagery")
	strictSelection := flag.Bool("strict-selection", false, "Apply frame selection even when images are not shown")
	seed := flag.Int64("seed", 0, "Seed for the random skip sampling (0 = time-seeded)")
	listen := flag.String("listen", "127.0.0.1:8412", "HTTP address to serve the figure on")
	htmlFile := flag.String("html", "", "Write the rendered figure to this HTML file")
	noServe := flag.Bool("no-serve", false, "Render to file only, do not start the HTTP server")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "data":
			cfg.Dataset.Dir = *dataDir
		case "transforms":
			cfg.Dataset.TransformsFile = *transformsFile
		case "image-downsample-factor":
			cfg.Visualization.ImageDownsampleFactor = *downsample
		case "skip-probability":
			cfg.Visualization.SkipProbability = *skipProb
		case "image-plane":
			cfg.Visualization.ImagePlane = *imagePlane
		case "selected-frames":
			frames, err := parseFrameList(*selectedFrames)
			if err != nil {
				log.Fatalf("Invalid -selected-frames: %v", err)
			}
			cfg.Visualization.SelectedFrames = frames
		case "show-image":
			cfg.Visualization.ShowImage = *showImage
		case "strict-selection":
			cfg.Visualization.StrictSelection = *strictSelection
		case "seed":
			cfg.Visualization.Seed = *seed
		case "listen":
			cfg.Output.Listen = *listen
		case "html":
			cfg.Output.HTMLFile = *htmlFile
		}
	})

	if cfg.Dataset.Dir == "" {
		flag.Usage()
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Load the camera set once; it is held read-only for the whole pass.
	transformsPath := filepath.Join(cfg.Dataset.Dir, cfg.Dataset.TransformsFile)
	set, err := dataset.Load(transformsPath)
	if err != nil {
		log.Fatalf("Failed to load dataset: %v", err)
	}
	log.Printf("loaded %d cameras from %s", set.Len(), transformsPath)

	rngSeed := cfg.Visualization.Seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(rngSeed))

	vis, err := visualization.New(set, visualization.Options{
		ImageDownsampleFactor: cfg.Visualization.ImageDownsampleFactor,
		SkipProbability:       cfg.Visualization.SkipProbability,
		ImagePlane:            cfg.Visualization.ImagePlane,
		SelectedFrames:        cfg.Visualization.SelectedFrames,
		ShowImage:             cfg.Visualization.ShowImage,
		StrictSelection:       cfg.Visualization.StrictSelection,
		Title:                 cfg.Output.Title,
	}, rng)
	if err != nil {
		log.Fatalf("Failed to create visualizer: %v", err)
	}

	if *noServe && cfg.Output.HTMLFile == "" {
		cfg.Output.HTMLFile = "camera_poses.html"
	}

	if cfg.Output.HTMLFile != "" {
		file, err := os.Create(cfg.Output.HTMLFile)
		if err != nil {
			log.Fatalf("Failed to create output file: %v", err)
		}
		if err := vis.Render(file); err != nil {
			file.Close()
			log.Fatalf("Failed to render figure: %v", err)
		}
		if err := file.Close(); err != nil {
			log.Fatalf("Failed to write output file: %v", err)
		}
		log.Printf("wrote figure to %s", cfg.Output.HTMLFile)
	}

	if *noServe {
		return
	}

	server := visualization.NewServer(vis, cfg.Output.Listen)
	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("Figure server failed: %v", err)
	}
}

// parseFrameList parses a comma-separated list of frame indices.
func parseFrameList(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	frames := make([]int, 0, len(parts))
	for _, part := range parts {
		frame, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("bad frame index %q: %w", part, err)
		}
		frames = append(frames, frame)
	}
	return frames, nil
}
