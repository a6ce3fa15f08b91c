//nolint:lll
package config

import "github.com/MeKo-Tech/debarkoder/internal/server"

// Config represents the complete configuration for the debarkoder tool.
// It includes settings for all commands (decode, pdf, batch, serve) and
// supports loading from configuration files, environment variables, and command-line flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// Decoder configuration
	Decoder DecoderConfig `mapstructure:"decoder" yaml:"decoder" json:"decoder"`

	// PDF input configuration
	PDF PDFConfig `mapstructure:"pdf" yaml:"pdf" json:"pdf"`

	// Output configuration
	Output OutputConfig `mapstructure:"output" yaml:"output" json:"output"`

	// Server configuration (for serve command)
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`

	// Batch processing configuration
	Batch BatchConfig `mapstructure:"batch" yaml:"batch" json:"batch"`
}

// DecoderConfig contains image preparation and row recognition settings.
type DecoderConfig struct {
	// Workers scan the rows of one image; negative means one per CPU.
	Workers     int    `mapstructure:"workers" yaml:"workers" json:"workers"`
	Placeholder string `mapstructure:"placeholder" yaml:"placeholder" json:"placeholder"`
	Threshold   int    `mapstructure:"threshold" yaml:"threshold" json:"threshold"`
	Autocrop    bool   `mapstructure:"autocrop" yaml:"autocrop" json:"autocrop"`
	CrossCheck  bool   `mapstructure:"cross_check" yaml:"cross_check" json:"cross_check"`
	MinWidth    int    `mapstructure:"min_width" yaml:"min_width" json:"min_width"`
	MinHeight   int    `mapstructure:"min_height" yaml:"min_height" json:"min_height"`
	MaxPixels   int    `mapstructure:"max_pixels" yaml:"max_pixels" json:"max_pixels"`
}

// PDFConfig contains passwords for encrypted documents.
type PDFConfig struct {
	UserPassword  string `mapstructure:"user_password" yaml:"user_password" json:"user_password"`
	OwnerPassword string `mapstructure:"owner_password" yaml:"owner_password" json:"owner_password"`
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	Format       string `mapstructure:"format" yaml:"format" json:"format"`
	File         string `mapstructure:"file" yaml:"file" json:"file"`
	OverlayDir   string `mapstructure:"overlay_dir" yaml:"overlay_dir" json:"overlay_dir"`
	OverlayColor string `mapstructure:"overlay_color" yaml:"overlay_color" json:"overlay_color"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string                 `mapstructure:"host" yaml:"host" json:"host"`
	Port            int                    `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigin      string                 `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	MaxUploadMB     int                    `mapstructure:"max_upload_mb" yaml:"max_upload_mb" json:"max_upload_mb"`
	TimeoutSec      int                    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	ShutdownTimeout int                    `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
	MaxBatchItems   int                    `mapstructure:"max_batch_items" yaml:"max_batch_items" json:"max_batch_items"`
	OverlayEnabled  bool                   `mapstructure:"overlay_enabled" yaml:"overlay_enabled" json:"overlay_enabled"`
	RateLimit       server.RateLimitConfig `mapstructure:"rate_limit" yaml:"rate_limit" json:"rate_limit"`
}

// BatchConfig contains batch processing settings.
type BatchConfig struct {
	Workers         int      `mapstructure:"workers" yaml:"workers" json:"workers"`
	Recursive       bool     `mapstructure:"recursive" yaml:"recursive" json:"recursive"`
	Include         []string `mapstructure:"include" yaml:"include" json:"include"`
	Exclude         []string `mapstructure:"exclude" yaml:"exclude" json:"exclude"`
	ContinueOnError bool     `mapstructure:"continue_on_error" yaml:"continue_on_error" json:"continue_on_error"`
}
