package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"genesis-tmf/internal/batch"
	"genesis-tmf/internal/config"
	"genesis-tmf/internal/exchange"
	"genesis-tmf/internal/raster"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config file (.json, .yaml)")
	size := flag.Int("size", 0, "Preview edge in pixels (default: 256)")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	outputDir := flag.String("output", "", "Output directory (default: .)")
	resolve := flag.String("resolve", "", "Material resolution: positional or name")
	testN := flag.Int("test", 0, "Render only first N files for testing")

	flag.Parse()

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		OutputDir:  *outputDir,
		Size:       *size,
		Workers:    *workers,
		Resolution: *resolve,
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	resolution, err := exchange.ParseResolution(cfg.MaterialResolution)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	inputs := flag.Args()
	if *testN > 0 && *testN < len(inputs) {
		inputs = inputs[:*testN]
	}
	if len(inputs) == 0 {
		fmt.Println("No files to render.")
		os.Exit(0)
	}

	mode := ""
	if *testN > 0 {
		mode = fmt.Sprintf(" (TEST: first %d)", *testN)
	}
	fmt.Printf("TMF Preview Renderer -> WebP%s\n", mode)
	fmt.Printf("Files: %d, Workers: %d, Size: %d\n", len(inputs), cfg.Workers, cfg.PreviewSize)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()

	results := batch.Run(batch.Config{
		Mode:          batch.Preview,
		OutputDir:     cfg.OutputDir,
		Strict:        cfg.StrictVersion,
		Resolution:    resolution,
		TextureDirs:   cfg.TextureDirs,
		RenderSize:    cfg.PreviewSize,
		Supersample:   cfg.Supersample,
		ThumbnailSize: cfg.ThumbnailSize,
		FillRatio:     cfg.FillRatio,
		SpeckRatio:    cfg.SpeckRatio,
		Camera:        raster.NewCamera(cfg.Yaw, cfg.Pitch),
		Workers:       cfg.Workers,
		Progress:      os.Stdout,
	}, inputs)

	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", time.Since(start).Seconds())

	// Count results
	var failures []batch.Result
	partial := 0
	for _, r := range results {
		if !r.Success {
			failures = append(failures, r)
			continue
		}
		if r.Failures > 0 {
			partial++
		}
	}
	fmt.Printf("Rendered: %d/%d\n", len(results)-len(failures), len(results))
	if partial > 0 {
		fmt.Printf("With skipped objects: %d\n", partial)
	}

	if len(failures) > 0 {
		fmt.Printf("\nFailed (%d):\n", len(failures))
		for _, e := range failures[:min(len(failures), 20)] {
			fmt.Printf("  %s: %s\n", e.Input, e.Error)
		}
	}

	// Write manifest
	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	if err := batch.WriteManifest(manifestPath, results); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}

	if len(failures) > 0 {
		os.Exit(1)
	}
}
