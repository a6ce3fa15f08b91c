package pipeline

import (
	"errors"
	"fmt"

	"github.com/MeKo-Tech/debarkoder/internal/barcode"
	"github.com/MeKo-Tech/debarkoder/internal/i2of5"
	"github.com/MeKo-Tech/debarkoder/internal/pdf"
	"github.com/MeKo-Tech/debarkoder/internal/recognize"
	"github.com/MeKo-Tech/debarkoder/internal/utils"
)

// DecoderConfig controls row recognition inside one image.
type DecoderConfig struct {
	// RowWorkers is the number of goroutines scanning rows of one image
	// (1 = sequential, negative = runtime.NumCPU()).
	RowWorkers int
	// Placeholder replaces unresolved digits in text output.
	Placeholder string
	Symbology   *i2of5.Symbology
}

// CrossCheckConfig controls the optional second decoder.
type CrossCheckConfig struct {
	Enabled bool
	Options barcode.Options
}

// Config holds configuration for the decoding pipeline and its components.
type Config struct {
	Decoder     DecoderConfig
	Prepare     utils.PrepareOptions
	Constraints utils.ImageConstraints
	CrossCheck  CrossCheckConfig
	// Credentials unlock encrypted PDF input.
	Credentials *pdf.Credentials

	// Parallel processing configuration
	Parallel ParallelConfig
}

// DefaultConfig returns a default pipeline config with component defaults.
func DefaultConfig() Config {
	return Config{
		Decoder: DecoderConfig{
			RowWorkers:  1,
			Placeholder: recognize.DefaultPlaceholder,
			Symbology:   i2of5.I2of5,
		},
		Prepare:     utils.DefaultPrepareOptions(),
		Constraints: utils.DefaultImageConstraints(),
		CrossCheck:  CrossCheckConfig{Options: barcode.DefaultOptions()},
		Parallel:    DefaultParallelConfig(),
	}
}

// Builder constructs a Pipeline with fluent configuration.
type Builder struct {
	cfg Config
}

// NewBuilder creates a new pipeline builder with defaults.
func NewBuilder() *Builder { return &Builder{cfg: DefaultConfig()} }

// NewBuilderFrom starts from an existing configuration.
func NewBuilderFrom(cfg Config) *Builder { return &Builder{cfg: cfg} }

// WithRowWorkers sets how many goroutines scan the rows of one image.
func (b *Builder) WithRowWorkers(n int) *Builder {
	if n != 0 {
		b.cfg.Decoder.RowWorkers = n
	}
	return b
}

// WithPlaceholder sets the character printed for unresolved digits.
func (b *Builder) WithPlaceholder(p string) *Builder {
	if p != "" {
		b.cfg.Decoder.Placeholder = p
	}
	return b
}

// WithThreshold sets the binarization level.
func (b *Builder) WithThreshold(level uint8) *Builder {
	b.cfg.Prepare.Threshold = level
	return b
}

// WithAutocrop enables or disables cropping to the ink bounding box.
func (b *Builder) WithAutocrop(enabled bool) *Builder {
	b.cfg.Prepare.Autocrop = enabled
	return b
}

// WithConstraints replaces the input size limits.
func (b *Builder) WithConstraints(c utils.ImageConstraints) *Builder {
	b.cfg.Constraints = c
	return b
}

// WithCrossCheck enables verification with the independent ITF reader.
func (b *Builder) WithCrossCheck(enabled bool) *Builder {
	b.cfg.CrossCheck.Enabled = enabled
	return b
}

// WithCredentials sets PDF passwords.
func (b *Builder) WithCredentials(creds *pdf.Credentials) *Builder {
	if !creds.Empty() {
		b.cfg.Credentials = creds
	}
	return b
}

// WithParallelWorkers sets the number of parallel workers for multi-image processing.
func (b *Builder) WithParallelWorkers(workers int) *Builder {
	if workers > 0 {
		b.cfg.Parallel.MaxWorkers = workers
	}
	return b
}

// WithProgressCallback sets the progress callback for multi-image processing.
func (b *Builder) WithProgressCallback(callback ProgressCallback) *Builder {
	b.cfg.Parallel.ProgressCallback = callback
	return b
}

// Config returns a copy of the current config.
func (b *Builder) Config() Config { return b.cfg }

// Validate checks that the configuration looks sane.
func (b *Builder) Validate() error {
	if b.cfg.Decoder.Placeholder == "" {
		return errors.New("placeholder must not be empty")
	}
	if b.cfg.Decoder.Symbology == nil {
		return errors.New("symbology must be set")
	}
	if b.cfg.Constraints.MinWidth < 1 || b.cfg.Constraints.MinHeight < 1 {
		return fmt.Errorf("invalid minimum size %dx%d", b.cfg.Constraints.MinWidth, b.cfg.Constraints.MinHeight)
	}
	if b.cfg.Parallel.MaxWorkers < 0 {
		return fmt.Errorf("parallel workers must be >= 0, got %d", b.cfg.Parallel.MaxWorkers)
	}
	return nil
}

// Pipeline wires image preparation, row recognition and output.
type Pipeline struct {
	cfg        Config
	Recognizer *recognize.Recognizer
	CrossCheck barcode.Backend
	Profiler   *Profiler
}

// Build validates the configuration and initializes the components.
func (b *Builder) Build() (*Pipeline, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	rec := recognize.New(recognize.Options{
		Workers:   b.cfg.Decoder.RowWorkers,
		Symbology: b.cfg.Decoder.Symbology,
	})
	p := &Pipeline{cfg: b.cfg, Recognizer: rec, Profiler: &Profiler{}}
	if b.cfg.CrossCheck.Enabled {
		p.CrossCheck = barcode.NewBackend()
	}
	return p, nil
}

// Close releases all resources.
func (p *Pipeline) Close() error {
	if p == nil {
		return nil
	}
	p.Recognizer = nil
	p.CrossCheck = nil
	return nil
}

// Config returns the pipeline configuration.
func (p *Pipeline) Config() Config { return p.cfg }

// Info returns a map with key pipeline properties.
func (p *Pipeline) Info() map[string]interface{} {
	info := map[string]interface{}{
		"symbology":   p.cfg.Decoder.Symbology.Name(),
		"row_workers": p.Recognizer.Options().Workers,
		"placeholder": p.cfg.Decoder.Placeholder,
		"threshold":   p.cfg.Prepare.Threshold,
		"autocrop":    p.cfg.Prepare.Autocrop,
		"cross_check": p.CrossCheck != nil,
	}
	info["parallel"] = map[string]interface{}{
		"max_workers":           p.cfg.Parallel.MaxWorkers,
		"has_progress_callback": p.cfg.Parallel.ProgressCallback != nil,
	}
	info["memory"] = GetMemStats()
	if p.Profiler != nil {
		info["profile"] = p.Profiler.Snapshot()
	}
	return info
}
