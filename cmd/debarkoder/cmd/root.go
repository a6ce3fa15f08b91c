// Package cmd implements the debarkoder command line.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/MeKo-Tech/debarkoder/internal/config"
	"github.com/MeKo-Tech/debarkoder/internal/pipeline"
	"github.com/MeKo-Tech/debarkoder/internal/version"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// flagKeys maps command line flags to configuration keys. A flag only takes
// part in resolution when the executing command defines it.
var flagKeys = map[string]string{
	"verbose":   "verbose",
	"log-level": "log_level",

	"row-workers": "decoder.workers",
	"placeholder": "decoder.placeholder",
	"threshold":   "decoder.threshold",
	"cross-check": "decoder.cross_check",

	"password":       "pdf.user_password",
	"owner-password": "pdf.owner_password",

	"format":        "output.format",
	"output":        "output.file",
	"overlay-dir":   "output.overlay_dir",
	"overlay-color": "output.overlay_color",

	"workers":           "batch.workers",
	"recursive":         "batch.recursive",
	"include":           "batch.include",
	"exclude":           "batch.exclude",
	"continue-on-error": "batch.continue_on_error",

	"host":                 "server.host",
	"port":                 "server.port",
	"cors-origin":          "server.cors_origin",
	"max-upload-size":      "server.max_upload_mb",
	"timeout":              "server.timeout_sec",
	"shutdown-timeout":     "server.shutdown_timeout",
	"max-batch-items":      "server.max_batch_items",
	"overlay-enable":       "server.overlay_enabled",
	"rate-limit-enabled":   "server.rate_limit.enabled",
	"requests-per-minute":  "server.rate_limit.requests_per_minute",
	"requests-per-hour":    "server.rate_limit.requests_per_hour",
	"max-requests-per-day": "server.rate_limit.max_requests_per_day",
	"max-data-per-day":     "server.rate_limit.max_data_per_day",
}

// cli holds the state of one command line invocation.
type cli struct {
	cfgFile string
	v       *viper.Viper
	loader  *config.Loader
	cfg     *config.Config
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command
// context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCommand().ExecuteContext(ctx)
}

// NewRootCommand builds the command tree with a fresh configuration state.
func NewRootCommand() *cobra.Command {
	c := &cli{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "debarkoder [file...]",
		Short: "Interleaved 2 of 5 barcode decoder",
		Long: `debarkoder reads Interleaved 2 of 5 barcodes from scanned images and PDFs.

Every pixel row of the binarized image is run-length encoded, split into
narrow and wide bars and matched against the symbology table. The row with
the fewest unresolved digits wins.

Without arguments the embedded self-test runs. With file arguments each
file is decoded and its text printed on its own line.

Examples:
  debarkoder scan.png
  debarkoder decode --format json scans/*.png
  debarkoder batch --recursive --stats ./inbox
  debarkoder pdf boleto.pdf --pages 1-2
  debarkoder serve --port 8080`,
		Version:           version.String(),
		Args:              cobra.ArbitraryArgs,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
		RunE:              c.runRoot,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&c.cfgFile, "config", "",
		"config file (default is search in ., $HOME, $HOME/.config/debarkoder, /etc/debarkoder)")
	pf.BoolP("verbose", "v", false, "verbose output (equivalent to --log-level=debug)")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	addDecoderFlags(rootCmd)

	rootCmd.AddCommand(
		newDecodeCmd(c),
		newBatchCmd(c),
		newPDFCmd(c),
		newServeCmd(c),
		newSelftestCmd(),
		newGenerateCmd(),
		newConfigCmd(c),
	)
	return rootCmd
}

// setup binds the flags of the executing command, loads the configuration
// and installs the default logger.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok || bindErr != nil {
			return
		}
		if err := c.v.BindPFlag(key, f); err != nil {
			bindErr = fmt.Errorf("bind flag %s: %w", f.Name, err)
		}
	})
	if bindErr != nil {
		return bindErr
	}

	c.loader = config.NewLoaderWithViper(c.v)
	cfg, err := c.loader.LoadWithFile(c.cfgFile)
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}
	if f := cmd.Flags().Lookup("no-autocrop"); f != nil && f.Changed {
		cfg.Decoder.Autocrop = f.Value.String() != "true"
	}
	c.cfg = cfg

	logger := slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel(cfg),
	}))
	slog.SetDefault(logger)
	return nil
}

func logLevel(cfg *config.Config) slog.Level {
	if cfg.Verbose {
		return slog.LevelDebug
	}
	switch cfg.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// runRoot decodes each argument and prints one text per line, or runs the
// self-test when there are none.
func (c *cli) runRoot(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return runSelftest(cmd)
	}

	pl, err := c.pipeline()
	if err != nil {
		return err
	}
	defer func() { _ = pl.Close() }()

	out := cmd.OutOrStdout()
	failed := 0
	for _, path := range args {
		res, err := pl.ProcessFileContext(cmd.Context(), path)
		if err != nil {
			slog.Error("Failed to decode image", "file", path, "error", err)
			failed++
			continue
		}
		_, _ = fmt.Fprintln(out, res.Text)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files could not be decoded", failed, len(args))
	}
	return nil
}

// pipeline builds a decoding pipeline from the resolved configuration.
func (c *cli) pipeline() (*pipeline.Pipeline, error) {
	pl, err := pipeline.NewBuilderFrom(c.cfg.ToPipelineConfig()).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build pipeline: %w", err)
	}
	return pl, nil
}

// addDecoderFlags registers the flags that tune row recognition.
func addDecoderFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Int("row-workers", 1, "goroutines scanning the rows of one image (negative = number of CPUs)")
	f.String("placeholder", "?", "character printed for unresolved digits")
	f.Int("threshold", 128, "binarization threshold (1-255)")
	f.Bool("no-autocrop", false, "do not crop to the ink bounding box before scanning")
	f.Bool("cross-check", false, "verify results with the independent ITF reader")
}
