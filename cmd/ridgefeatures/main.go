package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"gonum.org/v1/gonum/mat"

	"ridgefeatures/internal/models"
	"ridgefeatures/internal/synthetic"
	"ridgefeatures/pkg/config"
	"ridgefeatures/pkg/extraction"
	"ridgefeatures/pkg/imgproc"
	"ridgefeatures/pkg/logging"
)

func main() {
	// Parse command line arguments
	inputPath := flag.String("input", "", "Fingerprint image (any format the imaging package decodes)")
	configPath := flag.String("config", "config.yaml", "YAML configuration file (defaults are used if it does not exist)")
	minutiaePath := flag.String("minutiae", "", "YAML file of minutiae with their ridge-count reference points")
	numCores := flag.Int("cores", 0, "Number of CPU cores to use (default: value from config)")
	blockSize := flag.Int("block", 0, "Block size in pixels (default: value from config)")
	verbose := flag.Bool("verbose", false, "Log pipeline progress to stderr")
	demo := flag.Bool("synthetic", false, "Run on a generated 256x256 ridge pattern instead of -input")
	initConfig := flag.Bool("init-config", false, "Write the default configuration to -config, which must not exist yet, and exit")
	flag.Parse()

	if *initConfig {
		if err := config.CreateDefaultConfigFile(*configPath); err != nil {
			log.Fatalf("Failed to write config: %v", err)
		}
		fmt.Printf("Default configuration written to %s\n", *configPath)
		return
	}

	// Validate inputs
	if *inputPath == "" && !*demo {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *numCores > 0 {
		cfg.Processing.NumCores = *numCores
	}
	if *blockSize > 0 {
		cfg.Processing.BlockSize = *blockSize
	}
	if *verbose {
		cfg.Output.Verbose = true
	}
	if cfg.Output.Verbose {
		logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	var img *mat.Dense
	if *demo {
		img = synthetic.Stripes(256, 256, 0.6, 9, 0)
	} else {
		img, err = imgproc.Load(*inputPath)
		if err != nil {
			log.Fatalf("Failed to load image: %v", err)
		}
	}

	var minutiae []models.Minutia
	var counts []models.RidgeCount
	if *minutiaePath != "" {
		minutiae, counts, err = extraction.LoadMinutiae(*minutiaePath)
		if err != nil {
			log.Fatalf("Failed to load minutiae: %v", err)
		}
	}

	extractor, err := extraction.NewExtractor(cfg)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	h, w := img.Dims()
	fmt.Println("================================")
	fmt.Println("FINGERPRINT RIDGE ORIENTATION, FREQUENCY AND MINUTIA FEATURES")
	fmt.Println("================================")
	fmt.Printf("Image: %dx%d, block size %d, boundary %s, %d minutiae\n",
		w, h, cfg.Processing.BlockSize, cfg.Processing.Boundary, len(minutiae))

	startTime := time.Now()
	res, err := extractor.Process(img, minutiae, counts)
	if err != nil {
		log.Fatalf("Extraction failed: %v", err)
	}
	processingTime := time.Since(startTime)

	m := res.Metrics
	fmt.Printf("\nExtraction completed in %.3f seconds\n\n", processingTime.Seconds())
	fmt.Printf("Field Metrics:\n")
	fmt.Printf("==============\n")
	fmt.Printf("Blocks: %d\n", m.Blocks)
	fmt.Printf("Valid frequency blocks: %d (%.1f%%)\n", m.ValidFrequencyBlocks, 100*m.ValidRatio)
	fmt.Printf("Mean ridge frequency: %.4f cycles/pixel (std %.4f)\n", m.MeanFrequency, m.StdFrequency)
	fmt.Printf("Mean ridge period: %.2f pixels\n", m.MeanPeriod)
	fmt.Printf("Foreground: %.1f%%\n", 100*m.ForegroundRatio)

	fmt.Println("\nStage timings:")
	for _, st := range m.Timings {
		fmt.Printf("- %-12s %v\n", st.Stage, st.Duration)
	}

	if len(res.Features) > 0 {
		fmt.Println("\nFeature vectors (dki dkj fiki fikj phiki phikj nki nkj type typei typej):")
		for i, fv := range res.Features {
			fmt.Printf("%4d:", i)
			for _, v := range fv.Values() {
				fmt.Printf(" %8.4f", v)
			}
			fmt.Println()
		}
	}
}
