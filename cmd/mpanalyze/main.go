// Command mpanalyze runs the microplastic analysis pipeline over a batch
// of microscope images and writes particle, statistics and comparison
// reports.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"

	"microplastics/internal/analysis"
	"microplastics/internal/calibrate"
	"microplastics/internal/classify"
	"microplastics/internal/config"
	"microplastics/internal/core"
	"microplastics/internal/detect"
	"microplastics/internal/imgio"
	"microplastics/internal/morphology"
	"microplastics/internal/report"
	"microplastics/internal/stats"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	configPath := flag.String("config", "", "Path to analysis config JSON (defaults used when empty)")
	imagesGlob := flag.String("images", "", "Glob of microscope images to analyze")
	modelPath := flag.String("model", "", "Trained detection model (ONNX); overrides config")
	outDir := flag.String("out", "results", "Output directory")
	overlays := flag.Bool("overlays", false, "Write annotated overlay images")
	workers := flag.Int("workers", runtime.NumCPU(), "Concurrent image workers")
	flag.Parse()

	if *imagesGlob == "" {
		fmt.Println("Usage: mpanalyze -images '<glob>' [-config cfg.json] [-model model.onnx] [-out dir]")
		os.Exit(1)
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("Config: %v", err)
		}
		cfg = loaded
	}
	if *modelPath != "" {
		cfg.ModelPath = *modelPath
	}

	paths, err := filepath.Glob(*imagesGlob)
	if err != nil || len(paths) == 0 {
		log.Fatalf("No images match %q", *imagesGlob)
	}
	log.Printf("Analyzing %d image(s), calibration %.4f μm/px", len(paths), cfg.PixelsToUM)

	conv, err := calibrate.New(cfg.PixelsToUM)
	if err != nil {
		log.Fatalf("Calibration: %v", err)
	}
	classifier, err := classify.New(cfg.SizeCategories, cfg.ShapeCategories)
	if err != nil {
		log.Fatalf("Classifier: %v", err)
	}

	newDetector, detectorName := selectDetector(cfg)
	log.Printf("Detector backend: %s", detectorName)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	measurer := morphology.NewMeasurer(conv)
	runner := analysis.NewRunner(newDetector, measurer, classifier, *workers)
	result, err := runner.Run(ctx, paths)
	if err != nil {
		log.Fatalf("Batch aborted: %v", err)
	}

	for _, be := range result.Errors {
		log.Printf("Skipped %s: %v", be.Path, be.Err)
	}
	log.Printf("Measured %d sample(s), %d degenerate region(s) rejected",
		len(result.Samples), result.Rejected)

	var comparisons map[core.Metric]*stats.ComparisonResult
	var compErrs map[core.Metric]error
	if len(result.Samples) >= 2 {
		engine := stats.NewEngine(cfg.StatsConfig())
		comparisons, compErrs = engine.CompareAll(core.Metrics(), result.Samples)
		for metric, cerr := range compErrs {
			log.Printf("Comparison for %s not run: %v", metric, cerr)
		}
		for metric, cr := range comparisons {
			log.Printf("%s: %s statistic=%.4f p=%.4g significant=%v",
				metric, cr.Test, cr.Statistic, cr.PValue, cr.Significant)
		}
	}

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		log.Fatalf("Output dir: %v", err)
	}
	if err := report.SaveParticlesCSV(filepath.Join(*outDir, "particles.csv"), result.Samples); err != nil {
		log.Fatalf("CSV: %v", err)
	}
	rep := report.New(detectorName, cfg.PixelsToUM, result, comparisons, compErrs)
	if cfg.SampleVolumeML > 0 {
		if err := rep.AddConcentrations(cfg.SampleVolumeML, cfg.DilutionFactor, result.Samples); err != nil {
			log.Printf("Concentrations: %v", err)
		}
	}
	if err := rep.Save(filepath.Join(*outDir, "report.json")); err != nil {
		log.Fatalf("Report: %v", err)
	}

	for _, s := range result.Samples {
		fmt.Print(report.TextSummary(s.Statistics()))
	}

	if *overlays {
		writeOverlays(paths, result, *outDir)
	}

	log.Printf("Done. Results in %s", *outDir)
}

// selectDetector returns a per-worker detector factory. When a model is
// configured but cannot be loaded, the condition is surfaced and the
// pipeline falls back to the classical backend rather than silently
// reporting zero detections.
func selectDetector(cfg *config.File) (func() (detect.Detector, error), string) {
	classical := func() (detect.Detector, error) {
		return detect.NewClassicalDetector(cfg.ClassicalParams()), nil
	}
	if cfg.ModelPath == "" {
		return classical, "classical"
	}

	// Probe the artifact once up front so the fallback decision is made
	// before workers start.
	probe, err := detect.NewNeuralDetector(cfg.NeuralParams())
	if err != nil {
		if errors.Is(err, core.ErrModelUnavailable) {
			log.Printf("Neural model unavailable, falling back to classical detection: %v", err)
			return classical, "classical (neural fallback)"
		}
		log.Fatalf("Detector: %v", err)
	}
	probe.Close()

	return func() (detect.Detector, error) {
		return detect.NewNeuralDetector(cfg.NeuralParams())
	}, "neural"
}

func writeOverlays(paths []string, result *analysis.Result, outDir string) {
	bySample := make(map[string]string, len(paths))
	for _, path := range paths {
		bySample[imgio.SampleID(path)] = path
	}

	for _, s := range result.Samples {
		path, ok := bySample[s.ID()]
		if !ok {
			continue
		}
		img, err := imgio.Load(path)
		if err != nil {
			log.Printf("Overlay %s: %v", s.ID(), err)
			continue
		}
		out := filepath.Join(outDir, fmt.Sprintf("overlay_%s.png", s.ID()))
		if err := report.SaveOverlay(out, img, s.Particles()); err != nil {
			log.Printf("Overlay %s: %v", s.ID(), err)
		}
	}
}
