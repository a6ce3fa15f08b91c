// Package batch decodes barcodes in many image files at once.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/MeKo-Tech/debarkoder/internal/pipeline"
)

// ErrNoImages is returned when discovery finds nothing to decode.
var ErrNoImages = errors.New("no image files found")

// ProcessBatch discovers the image files under paths and decodes them in
// parallel.
func ProcessBatch(ctx context.Context, paths []string, config *Config) (*Result, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	files, err := discoverImageFiles(paths, config.Recursive, config.IncludePatterns, config.ExcludePatterns)
	if err != nil {
		return nil, fmt.Errorf("failed to discover image files: %w", err)
	}
	if len(files) == 0 {
		return nil, ErrNoImages
	}
	slog.Debug("Discovered images", "count", len(files), "recursive", config.Recursive)

	var progressCallback pipeline.ProgressCallback
	if config.ShowProgress && !config.Quiet {
		progressCallback = pipeline.NewConsoleProgressCallback(
			os.Stderr,
			"Decoding: ",
		).WithUpdateInterval(config.ProgressInterval)
	}

	pl, err := buildPipeline(config, progressCallback)
	if err != nil {
		return nil, fmt.Errorf("failed to build pipeline: %w", err)
	}
	defer func() {
		if err := pl.Close(); err != nil {
			slog.Warn("Error closing pipeline", "error", err)
		}
	}()

	startTime := time.Now()
	results, errs, err := processFiles(ctx, pl, files, config)
	duration := time.Since(startTime)
	if err != nil {
		return nil, fmt.Errorf("batch processing failed: %w", err)
	}

	res := &Result{
		Results:     results,
		Errors:      errs,
		ImagePaths:  files,
		Duration:    duration,
		WorkerCount: pl.Config().Parallel.MaxWorkers,
	}
	if !config.ContinueOnError {
		if err := res.FirstError(); err != nil {
			return nil, err
		}
	}
	return res, nil
}
