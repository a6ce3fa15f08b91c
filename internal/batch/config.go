package batch

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/MeKo-Tech/debarkoder/internal/pipeline"
	"github.com/MeKo-Tech/debarkoder/internal/recognize"
	"github.com/MeKo-Tech/debarkoder/internal/utils"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Config holds all configuration for batch processing.
type Config struct {
	// Decoder settings
	RowWorkers  int
	Placeholder string
	Threshold   uint8
	Autocrop    bool
	CrossCheck  bool

	// Output settings
	Format       string
	OutputFile   string
	OverlayDir   string
	OverlayColor string

	// Parallel processing settings
	Workers int

	// File discovery settings
	Recursive       bool
	IncludePatterns []string
	ExcludePatterns []string

	// ContinueOnError keeps failed files in the result instead of failing the run.
	ContinueOnError bool

	// Progress settings
	ShowProgress     bool
	Quiet            bool
	ShowStats        bool
	ProgressInterval time.Duration
}

// DefaultConfig returns the batch defaults.
func DefaultConfig() *Config {
	return &Config{
		RowWorkers:       1,
		Placeholder:      recognize.DefaultPlaceholder,
		Threshold:        utils.DefaultThreshold,
		Autocrop:         true,
		Format:           string(pipeline.FormatText),
		OverlayColor:     utils.DefaultOverlayColor,
		ContinueOnError:  true,
		ProgressInterval: 100 * time.Millisecond,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	if c.Format != "" {
		if _, err := pipeline.ParseFormat(c.Format); err != nil {
			return err
		}
	}
	if c.OverlayDir != "" && c.OverlayColor != "" {
		if _, err := utils.ParseColor(c.OverlayColor); err != nil {
			return err
		}
	}
	return nil
}

// Result holds the result of batch processing. Results, Errors and
// ImagePaths share their indices.
type Result struct {
	Results     []*pipeline.ImageResult
	Errors      []error
	ImagePaths  []string
	Duration    time.Duration
	WorkerCount int
}

// Failed returns the number of files that could not be decoded.
func (r *Result) Failed() int {
	n := 0
	for _, err := range r.Errors {
		if err != nil {
			n++
		}
	}
	return n
}

// FirstError returns the first failure in input order.
func (r *Result) FirstError() error {
	for _, err := range r.Errors {
		if err != nil {
			return err
		}
	}
	return nil
}

// FormatResults formats the batch processing results in the specified format.
func (r *Result) FormatResults(format string) (string, error) {
	return formatBatchResults(r, format)
}

// SaveResults writes the formatted results to outputFile, or to stdout when
// outputFile is empty.
func (r *Result) SaveResults(stdout io.Writer, format, outputFile string, quiet bool) error {
	output, err := r.FormatResults(format)
	if err != nil {
		return fmt.Errorf("failed to format results: %w", err)
	}

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(output+"\n"), 0o600); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		if !quiet {
			slog.Info("Results written", "file", outputFile, "images", len(r.ImagePaths))
		}
		return nil
	}
	_, err = fmt.Fprintln(stdout, output)
	return err
}

// PrintStats writes processing statistics to w.
func (r *Result) PrintStats(w io.Writer) {
	stats := pipeline.CalculateParallelStats(r.Results, r.Duration, r.WorkerCount)
	p := message.NewPrinter(language.English)
	_, _ = p.Fprintf(w, "\nProcessing Statistics:\n")
	_, _ = p.Fprintf(w, "  Total images: %d\n", len(r.ImagePaths))
	_, _ = p.Fprintf(w, "  Processed: %d\n", stats.ProcessedImages)
	_, _ = p.Fprintf(w, "  Failed: %d\n", stats.FailedImages)
	_, _ = p.Fprintf(w, "  Decoded: %d (%d complete)\n", stats.DecodedImages, stats.CompleteImages)
	_, _ = p.Fprintf(w, "  Workers: %d\n", stats.WorkerCount)
	_, _ = p.Fprintf(w, "  Duration: %v\n", stats.TotalDuration.Round(time.Millisecond))
	_, _ = p.Fprintf(w, "  Avg per image: %v\n", stats.AveragePerImage.Round(time.Microsecond))
	_, _ = p.Fprintf(w, "  Throughput: %.1f images/sec\n", stats.ThroughputPerSec)
}
