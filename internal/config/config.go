// Package config loads debarkoder settings from files, the environment
// and command-line flags.
package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/MeKo-Tech/debarkoder/internal/batch"
	"github.com/MeKo-Tech/debarkoder/internal/pdf"
	"github.com/MeKo-Tech/debarkoder/internal/pipeline"
	"github.com/MeKo-Tech/debarkoder/internal/recognize"
	"github.com/MeKo-Tech/debarkoder/internal/server"
	"github.com/MeKo-Tech/debarkoder/internal/utils"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	constraints := utils.DefaultImageConstraints()
	return Config{
		LogLevel: "info",
		Decoder: DecoderConfig{
			Workers:     1,
			Placeholder: recognize.DefaultPlaceholder,
			Threshold:   int(utils.DefaultThreshold),
			Autocrop:    true,
			MinWidth:    constraints.MinWidth,
			MinHeight:   constraints.MinHeight,
			MaxPixels:   constraints.MaxPixels,
		},
		Output: OutputConfig{
			Format:       string(pipeline.FormatText),
			OverlayColor: utils.DefaultOverlayColor,
		},
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8080,
			CORSOrigin:      "*",
			MaxUploadMB:     50,
			TimeoutSec:      30,
			ShutdownTimeout: 10,
			MaxBatchItems:   10,
			OverlayEnabled:  true,
			RateLimit: server.RateLimitConfig{
				RequestsPerMinute: 60,
				RequestsPerHour:   1000,
			},
		},
		Batch: BatchConfig{
			Workers:         4,
			ContinueOnError: true,
		},
	}
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	if c.Output.Format != "" {
		if _, err := pipeline.ParseFormat(c.Output.Format); err != nil {
			return fmt.Errorf("invalid output format: %w", err)
		}
	}
	if c.Output.OverlayColor != "" {
		if _, err := utils.ParseColor(c.Output.OverlayColor); err != nil {
			return fmt.Errorf("invalid overlay color: %w", err)
		}
	}

	if c.Decoder.Placeholder == "" {
		return fmt.Errorf("decoder.placeholder must not be empty")
	}
	if err := validateRange(c.Decoder.Threshold, 1, 255, "decoder.threshold"); err != nil {
		return err
	}
	if c.Decoder.Workers == 0 {
		return fmt.Errorf("invalid decoder workers: 0 (use a positive count or -1 for one per CPU)")
	}
	if c.Decoder.MinWidth < 1 || c.Decoder.MinHeight < 1 {
		return fmt.Errorf("invalid minimum image size: %dx%d", c.Decoder.MinWidth, c.Decoder.MinHeight)
	}

	if err := validateRange(c.Server.Port, 1, 65535, "server.port"); err != nil {
		return err
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("invalid max upload size: %d (must be positive)", c.Server.MaxUploadMB)
	}
	if c.Server.TimeoutSec <= 0 {
		return fmt.Errorf("invalid timeout: %d (must be positive)", c.Server.TimeoutSec)
	}
	if c.Server.MaxBatchItems <= 0 {
		return fmt.Errorf("invalid max batch items: %d (must be positive)", c.Server.MaxBatchItems)
	}
	rl := c.Server.RateLimit
	if rl.RequestsPerMinute < 0 || rl.RequestsPerHour < 0 || rl.MaxRequestsPerDay < 0 || rl.MaxDataPerDay < 0 {
		return fmt.Errorf("invalid rate limit: limits must not be negative")
	}

	if c.Batch.Workers <= 0 {
		return fmt.Errorf("invalid batch workers: %d (must be positive)", c.Batch.Workers)
	}

	return nil
}

// validateRange checks that value lies within [lo, hi].
func validateRange(value, lo, hi int, name string) error {
	if value < lo || value > hi {
		return fmt.Errorf("invalid %s: %d (must be between %d and %d)", name, value, lo, hi)
	}
	return nil
}

// ToPipelineConfig converts the config to the internal pipeline configuration format.
func (c *Config) ToPipelineConfig() pipeline.Config {
	cfg := pipeline.DefaultConfig()
	cfg.Decoder.RowWorkers = c.Decoder.Workers
	cfg.Decoder.Placeholder = c.Decoder.Placeholder
	cfg.Prepare = utils.PrepareOptions{
		Threshold: uint8(c.Decoder.Threshold), //nolint:gosec // G115: validated to 1..255
		Autocrop:  c.Decoder.Autocrop,
	}
	cfg.Constraints = utils.ImageConstraints{
		MinWidth:  c.Decoder.MinWidth,
		MinHeight: c.Decoder.MinHeight,
		MaxPixels: c.Decoder.MaxPixels,
	}
	cfg.CrossCheck.Enabled = c.Decoder.CrossCheck
	if creds := c.credentials(); !creds.Empty() {
		cfg.Credentials = creds
	}
	if c.Batch.Workers > 0 {
		cfg.Parallel.MaxWorkers = c.Batch.Workers
	}
	return cfg
}

func (c *Config) credentials() *pdf.Credentials {
	return &pdf.Credentials{UserPassword: c.PDF.UserPassword, OwnerPassword: c.PDF.OwnerPassword}
}

// ToServerConfig converts the config to the HTTP server configuration.
func (c *Config) ToServerConfig(version string) server.Config {
	return server.Config{
		Host:           c.Server.Host,
		Port:           c.Server.Port,
		CORSOrigin:     c.Server.CORSOrigin,
		MaxUploadMB:    int64(c.Server.MaxUploadMB),
		TimeoutSec:     c.Server.TimeoutSec,
		MaxBatchItems:  c.Server.MaxBatchItems,
		PipelineConfig: c.ToPipelineConfig(),
		OverlayEnabled: c.Server.OverlayEnabled,
		OverlayColor:   c.Output.OverlayColor,
		RateLimit:      c.Server.RateLimit,
		Version:        version,
	}
}

// ToBatchConfig converts the config to batch processing settings.
func (c *Config) ToBatchConfig() *batch.Config {
	cfg := batch.DefaultConfig()
	cfg.RowWorkers = c.Decoder.Workers
	cfg.Placeholder = c.Decoder.Placeholder
	cfg.Threshold = uint8(c.Decoder.Threshold) //nolint:gosec // G115: validated to 1..255
	cfg.Autocrop = c.Decoder.Autocrop
	cfg.CrossCheck = c.Decoder.CrossCheck
	cfg.Format = c.Output.Format
	cfg.OutputFile = c.Output.File
	cfg.OverlayDir = c.Output.OverlayDir
	if c.Output.OverlayColor != "" {
		cfg.OverlayColor = c.Output.OverlayColor
	}
	cfg.Workers = c.Batch.Workers
	cfg.Recursive = c.Batch.Recursive
	cfg.IncludePatterns = c.Batch.Include
	cfg.ExcludePatterns = c.Batch.Exclude
	cfg.ContinueOnError = c.Batch.ContinueOnError
	return cfg
}
