package batch

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"genesis-tmf/internal/exchange"
	"genesis-tmf/internal/gltfio"
	"genesis-tmf/internal/mesh"
	"genesis-tmf/internal/objfile"
	"genesis-tmf/internal/postprocess"
	"genesis-tmf/internal/raster"
	"genesis-tmf/internal/texture"
	"genesis-tmf/internal/tml"

	"github.com/HugoSmits86/nativewebp"
)

// Mode selects what Run does with each input.
type Mode int

const (
	// Convert turns OBJ/glTF inputs into TMF files with sidecars.
	Convert Mode = iota
	// Preview renders TMF inputs to WebP images.
	Preview
)

func (m Mode) String() string {
	if m == Preview {
		return "preview"
	}
	return "convert"
}

// Config holds all shared settings for a batch run.
type Config struct {
	Mode      Mode
	OutputDir string

	// Convert
	Version uint16 // 0 writes tmf.Version

	// Preview
	Strict        bool
	Resolution    exchange.Resolution
	TextureDirs   []string // searched after the sidecar's own directory
	RenderSize    int      // 0 renders 256 pixels
	Supersample   int
	ThumbnailSize int // 0 skips thumbnails
	FillRatio     float64
	SpeckRatio    float64 // 0 keeps every pixel group
	Camera        *raster.Camera

	Workers  int
	Progress io.Writer // nil is silent
}

// Result holds the outcome of processing one input.
type Result struct {
	Input     string
	Output    string
	Sidecar   string
	Thumbnail string
	Objects   int
	Failures  int // objects skipped on import
	Warnings  int // sidecar warnings
	Success   bool
	Error     string
}

type worker struct {
	cfg      Config
	textures *texture.Cache
	index    *texture.Index
}

// Run processes all inputs using a worker pool. Results are in input order.
func Run(cfg Config, inputs []string) []Result {
	total := len(inputs)
	results := make([]Result, total)
	if total == 0 {
		return results
	}
	workers := max(cfg.Workers, 1)

	w := &worker{cfg: cfg}
	if cfg.Mode == Preview {
		// sidecar texture refs arrive already resolved, so the cache takes them as paths
		w.textures = texture.NewCache(nil)
		w.index = texture.BuildIndex(cfg.TextureDirs...)
	}
	stems := outputStems(inputs)

	var processed atomic.Int64
	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 && cfg.Progress != nil {
					rate := float64(p) / time.Since(start).Seconds()
					fmt.Fprintf(cfg.Progress, "  [%d/%d] %.1f files/sec\n", p, total, rate)
				}
			}
		}
	}()

	jobs := make(chan int, workers*2)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = w.process(inputs[idx], stems[idx])
				processed.Add(1)
			}
		}()
	}

	for i := range inputs {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	close(done)
	return results
}

// outputStems names each input's outputs after its base name, suffixing
// repeats so two inputs never write the same file. Stems compare without
// case, and a suffixed stem is never one already emitted.
func outputStems(inputs []string) []string {
	stems := make([]string, len(inputs))
	used := make(map[string]bool)
	next := make(map[string]int) // next suffix to try per base stem
	for i, in := range inputs {
		base := filepath.Base(in)
		stem := strings.TrimSuffix(base, filepath.Ext(base))
		key := strings.ToLower(stem)
		name := stem
		if used[key] {
			n := max(next[key], 2)
			for used[strings.ToLower(fmt.Sprintf("%s_%d", stem, n))] {
				n++
			}
			next[key] = n + 1
			name = fmt.Sprintf("%s_%d", stem, n)
		}
		used[strings.ToLower(name)] = true
		stems[i] = name
	}
	return stems
}

func (w *worker) process(input, stem string) Result {
	res := Result{Input: input}
	if err := os.MkdirAll(w.cfg.OutputDir, 0755); err != nil {
		res.Error = err.Error()
		return res
	}

	var err error
	switch w.cfg.Mode {
	case Preview:
		err = w.preview(input, stem, &res)
	default:
		err = w.convert(input, stem, &res)
	}
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Success = true
	return res
}

// LoadSource reads an OBJ or glTF model into a host scene, picking the
// reader by extension.
func LoadSource(path string) (*mesh.Scene, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		return objfile.Load(path)
	case ".gltf", ".glb":
		return gltfio.Load(path)
	}
	return nil, fmt.Errorf("batch: %s: unsupported source format", path)
}

func (w *worker) convert(input, stem string, res *Result) error {
	scene, err := LoadSource(input)
	if err != nil {
		return err
	}
	if len(scene.Meshes) == 0 {
		return fmt.Errorf("no meshes in %s", input)
	}

	out := filepath.Join(w.cfg.OutputDir, stem+".tmf")
	er, err := exchange.Export(scene, out, exchange.ExportOptions{Version: w.cfg.Version})
	if err != nil {
		return err
	}
	res.Output = er.Path
	res.Sidecar = er.SidecarPath
	res.Objects = er.Objects
	return nil
}

func (w *worker) preview(input, stem string, res *Result) error {
	ir, err := exchange.Import(input, exchange.ImportOptions{
		Strict:     w.cfg.Strict,
		Resolution: w.cfg.Resolution,
		Textures:   texture.Chain{tml.DirResolver(filepath.Dir(input)), w.index},
	})
	if err != nil {
		return err
	}
	res.Objects = len(ir.Objects)
	res.Failures = len(ir.Failures)
	res.Warnings = len(ir.Warnings)
	if ir.Sidecar != nil {
		res.Sidecar = tml.SidecarPath(input)
	}
	if len(ir.Objects) == 0 {
		return fmt.Errorf("no objects to render in %s", input)
	}

	size := w.cfg.RenderSize
	if size <= 0 {
		size = 256
	}
	img := raster.RenderScene(ir.Scene, w.textures, raster.Options{
		Size:        size,
		Supersample: w.cfg.Supersample,
		Camera:      w.cfg.Camera,
	})
	if w.cfg.Supersample > 1 {
		img = postprocess.Downsample(img, size)
	}
	img = postprocess.DropSpecks(img, w.cfg.SpeckRatio)
	if w.cfg.FillRatio > 0 {
		img = postprocess.CropAndCenter(img, size, w.cfg.FillRatio)
	}

	out := filepath.Join(w.cfg.OutputDir, stem+".webp")
	if err := writeWebP(out, img); err != nil {
		return err
	}
	res.Output = out

	if w.cfg.ThumbnailSize > 0 {
		thumb := filepath.Join(w.cfg.OutputDir, stem+"_thumb.webp")
		if err := writeWebP(thumb, postprocess.Thumbnail(img, w.cfg.ThumbnailSize)); err != nil {
			return err
		}
		res.Thumbnail = thumb
	}
	return nil
}

func writeWebP(path string, img *image.NRGBA) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if err := nativewebp.Encode(f, img, nil); err != nil {
		return fmt.Errorf("WebP encode %s: %w", path, err)
	}
	return nil
}
