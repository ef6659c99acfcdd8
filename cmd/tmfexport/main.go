package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"genesis-tmf/internal/batch"
	"genesis-tmf/internal/config"
	"genesis-tmf/internal/exchange"
	"genesis-tmf/internal/mesh"

	"github.com/flywave/go3d/vec3"
)

func main() {
	configFile := flag.String("config", "", "Path to config file (.json, .yaml)")
	in := flag.String("in", "", "Source model (.obj, .gltf, .glb)")
	out := flag.String("out", "", "Output .tmf path (default: next to the source)")
	helpers := flag.String("helpers", "", "Extra helpers as name=x,y,z;name=x,y,z")
	version := flag.Int("version", 0, "Format version to write (default: 91)")
	noSidecar := flag.Bool("no-sidecar", false, "Do not write the .tml sidecar")
	verbose := flag.Bool("v", false, "Log materials and objects")
	outputDir := flag.String("output", "", "Output directory when converting several files (default: .)")
	workers := flag.Int("workers", 0, "Number of worker goroutines for several files (default: NumCPU)")
	flag.Parse()

	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	if *version > 0 {
		cfg.FormatVersion = *version
	}
	cfg.Resolve(config.Flags{OutputDir: *outputDir, Workers: *workers})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	formatVersion := uint16(cfg.FormatVersion)

	if *in == "" {
		if flag.NArg() == 0 {
			fmt.Fprintln(os.Stderr, "Usage: tmfexport -in model.obj [-out model.tmf] | tmfexport [-output dir] files...")
			os.Exit(1)
		}
		os.Exit(convertAll(flag.Args(), cfg.OutputDir, cfg.Workers, formatVersion))
	}

	scene, err := batch.LoadSource(*in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	extra, err := parseHelpers(*helpers)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: -helpers: %v\n", err)
		os.Exit(1)
	}
	scene.Empties = append(scene.Empties, extra...)

	dst := *out
	if dst == "" {
		dst = strings.TrimSuffix(*in, extOf(*in)) + ".tmf"
	}

	opts := exchange.ExportOptions{Version: formatVersion, SkipSidecar: *noSidecar}
	if *verbose {
		opts.Log = os.Stdout
	}
	res, err := exchange.Export(scene, dst, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%s: %d objects, %d helpers, %d materials, %d bytes\n",
		res.Path, res.Objects, res.Helpers, len(res.Materials), res.Size)
	if res.SidecarPath != "" {
		fmt.Printf("Sidecar: %s\n", res.SidecarPath)
	}
}

func convertAll(inputs []string, outputDir string, workers int, version uint16) int {
	fmt.Printf("Converting %d files, Workers: %d\n", len(inputs), workers)
	fmt.Printf("Output: %s\n", outputDir)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()
	results := batch.Run(batch.Config{
		Mode:      batch.Convert,
		OutputDir: outputDir,
		Version:   version,
		Workers:   workers,
		Progress:  os.Stdout,
	}, inputs)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", time.Since(start).Seconds())

	failed := 0
	for _, r := range results {
		if r.Success {
			fmt.Printf("  %s -> %s (%d objects)\n", r.Input, r.Output, r.Objects)
			continue
		}
		failed++
		fmt.Printf("  %s: %s\n", r.Input, r.Error)
	}
	fmt.Printf("Converted: %d/%d\n", len(results)-failed, len(results))
	if failed > 0 {
		return 1
	}
	return 0
}

// parseHelpers reads "name=x,y,z;name=x,y,z".
func parseHelpers(s string) ([]mesh.Empty, error) {
	var out []mesh.Empty
	for _, item := range strings.Split(s, ";") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		name, coords, ok := strings.Cut(item, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("%q: want name=x,y,z", item)
		}
		parts := strings.Split(coords, ",")
		if len(parts) != 3 {
			return nil, fmt.Errorf("%q: want three coordinates", item)
		}
		var pos vec3.T
		for i, p := range parts {
			f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
			if err != nil {
				return nil, fmt.Errorf("%q: %w", item, err)
			}
			pos[i] = float32(f)
		}
		out = append(out, mesh.Empty{Name: name, Position: pos})
	}
	return out, nil
}

func extOf(path string) string {
	if i := strings.LastIndexByte(path, '.'); i > strings.LastIndexAny(path, `/\`) {
		return path[i:]
	}
	return ""
}
