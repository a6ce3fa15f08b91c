package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"runtime"
	"sync"
	"time"
)

// ParallelConfig holds configuration for multi-image processing.
type ParallelConfig struct {
	MaxWorkers       int              // Number of parallel workers (0 = runtime.NumCPU())
	ProgressCallback ProgressCallback // Optional progress reporting
	ErrorHandler     func(int, error) // Optional per-item error handler
}

// DefaultParallelConfig returns sensible defaults for parallel processing.
func DefaultParallelConfig() ParallelConfig {
	return ParallelConfig{MaxWorkers: runtime.NumCPU()}
}

// job is a single unit of work, identified by its input index.
type job struct {
	index int
}

// jobResult is the outcome of one job.
type jobResult struct {
	index  int
	result *ImageResult
	err    error
}

// ProcessImagesParallel processes multiple images in parallel using a worker pool.
// Returns results in the same order as input images.
func (p *Pipeline) ProcessImagesParallel(images []image.Image, config ParallelConfig) ([]*ImageResult, error) {
	return p.ProcessImagesParallelContext(context.Background(), images, config)
}

// ProcessImagesParallelContext processes images in parallel with context cancellation support.
// A failed image leaves a nil entry; the first failure in input order is returned as error.
func (p *Pipeline) ProcessImagesParallelContext(
	ctx context.Context, images []image.Image, config ParallelConfig,
) ([]*ImageResult, error) {
	if len(images) == 0 {
		return nil, errors.New("no images provided")
	}
	if p == nil || p.Recognizer == nil {
		return nil, errNotInitialized
	}
	results, errs, err := p.runOrdered(ctx, len(images), config, func(ctx context.Context, i int) (*ImageResult, error) {
		return p.ProcessImageContext(ctx, images[i])
	})
	if err != nil {
		return nil, err
	}
	return results, firstError("image", errs)
}

// ProcessFilesParallel decodes files in parallel. Results and errors are
// indexed like paths; an entry has either a result or an error.
func (p *Pipeline) ProcessFilesParallel(
	ctx context.Context, paths []string, config ParallelConfig,
) ([]*ImageResult, []error, error) {
	if len(paths) == 0 {
		return nil, nil, errors.New("no files provided")
	}
	if p == nil || p.Recognizer == nil {
		return nil, nil, errNotInitialized
	}
	return p.runOrdered(ctx, len(paths), config, func(ctx context.Context, i int) (*ImageResult, error) {
		return p.ProcessFileContext(ctx, paths[i])
	})
}

// runOrdered runs fn for indices 0..n-1 on a worker pool and collects
// results by index. The returned error is only set on cancellation.
func (p *Pipeline) runOrdered(
	ctx context.Context,
	n int,
	config ParallelConfig,
	fn func(context.Context, int) (*ImageResult, error),
) ([]*ImageResult, []error, error) {
	if config.MaxWorkers <= 0 {
		config.MaxWorkers = runtime.NumCPU()
	}
	workers := min(config.MaxWorkers, n)

	if config.ProgressCallback != nil {
		config.ProgressCallback.OnStart(n)
		defer config.ProgressCallback.OnComplete()
	}

	jobs := make(chan job, n)
	results := make(chan jobResult, n)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go worker(ctx, jobs, results, &wg, fn)
	}

	go func() {
		defer close(jobs)
		for i := range n {
			select {
			case jobs <- job{index: i}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	ordered := make([]*ImageResult, n)
	errs := make([]error, n)
	processed := 0
	for r := range results {
		ordered[r.index] = r.result
		errs[r.index] = r.err
		processed++
		if r.err != nil {
			if config.ProgressCallback != nil {
				config.ProgressCallback.OnError(r.index, r.err)
			}
			if config.ErrorHandler != nil {
				config.ErrorHandler(r.index, r.err)
			}
		}
		if config.ProgressCallback != nil {
			config.ProgressCallback.OnProgress(processed, n)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	return ordered, errs, nil
}

// worker processes jobs until the channel closes or ctx is done.
func worker(
	ctx context.Context,
	jobs <-chan job,
	results chan<- jobResult,
	wg *sync.WaitGroup,
	fn func(context.Context, int) (*ImageResult, error),
) {
	defer wg.Done()

	for {
		select {
		case j, ok := <-jobs:
			if !ok {
				return
			}
			result, err := fn(ctx, j.index)
			select {
			case results <- jobResult{index: j.index, result: result, err: err}:
			case <-ctx.Done():
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func firstError(kind string, errs []error) error {
	for i, err := range errs {
		if err != nil {
			return fmt.Errorf("%s %d: %w", kind, i, err)
		}
	}
	return nil
}

// ParallelStats holds statistics about a multi-image run.
type ParallelStats struct {
	TotalImages      int           `json:"total_images"         yaml:"total_images"`
	ProcessedImages  int           `json:"processed_images"     yaml:"processed_images"`
	FailedImages     int           `json:"failed_images"        yaml:"failed_images"`
	DecodedImages    int           `json:"decoded_images"       yaml:"decoded_images"`
	CompleteImages   int           `json:"complete_images"      yaml:"complete_images"`
	WorkerCount      int           `json:"worker_count"         yaml:"worker_count"`
	TotalDuration    time.Duration `json:"total_duration_ns"    yaml:"total_duration_ns"`
	AveragePerImage  time.Duration `json:"average_per_image_ns" yaml:"average_per_image_ns"`
	ThroughputPerSec float64       `json:"throughput_per_sec"   yaml:"throughput_per_sec"`
}

// CalculateParallelStats calculates performance statistics for a run.
func CalculateParallelStats(results []*ImageResult, duration time.Duration, workerCount int) ParallelStats {
	stats := ParallelStats{
		TotalImages:   len(results),
		WorkerCount:   workerCount,
		TotalDuration: duration,
	}
	for _, r := range results {
		if r == nil {
			stats.FailedImages++
			continue
		}
		stats.ProcessedImages++
		if r.Found {
			stats.DecodedImages++
		}
		if r.Complete {
			stats.CompleteImages++
		}
	}
	if stats.ProcessedImages > 0 && duration > 0 {
		stats.AveragePerImage = duration / time.Duration(stats.ProcessedImages)
		stats.ThroughputPerSec = float64(stats.ProcessedImages) / duration.Seconds()
	}
	return stats
}
