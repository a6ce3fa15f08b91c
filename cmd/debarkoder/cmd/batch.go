package cmd

import (
	"errors"
	"fmt"

	"github.com/MeKo-Tech/debarkoder/internal/batch"
	"github.com/MeKo-Tech/debarkoder/internal/utils"
	"github.com/spf13/cobra"
)

func newBatchCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <path>...",
		Short: "Decode all images in files and directories",
		Long: `Discover image files in the given paths and decode them in parallel.

Directories contribute files with a supported image extension; with
--recursive their subdirectories are searched too. --include and --exclude
filter by glob on the file name.

Examples:
  debarkoder batch ./scans
  debarkoder batch --recursive --include '*.png' --exclude 'tmp_*' ./inbox
  debarkoder batch --workers 8 --progress --stats --format json ./scans`,
		Args: cobra.MinimumNArgs(1),
		RunE: c.runBatch,
	}

	f := cmd.Flags()
	f.StringP("format", "f", "text", "output format (text, json, csv, yaml)")
	f.StringP("output", "o", "", "output file (default: stdout)")
	f.String("overlay-dir", "", "write images with the decoded row highlighted to this directory")
	f.String("overlay-color", utils.DefaultOverlayColor, "overlay highlight color (hex)")
	f.IntP("workers", "w", 4, "number of files decoded in parallel")
	f.BoolP("recursive", "r", false, "search directories recursively")
	f.StringSlice("include", nil, "glob patterns of file names to include")
	f.StringSlice("exclude", nil, "glob patterns of file names to exclude")
	f.Bool("continue-on-error", true, "report failed files instead of aborting")
	f.Bool("progress", false, "show a progress bar on stderr")
	f.Bool("stats", false, "print processing statistics to stderr")
	f.BoolP("quiet", "q", false, "suppress progress and status output")
	addDecoderFlags(cmd)
	return cmd
}

func (c *cli) runBatch(cmd *cobra.Command, args []string) error {
	cfg := c.cfg.ToBatchConfig()
	cfg.ShowProgress, _ = cmd.Flags().GetBool("progress")
	cfg.ShowStats, _ = cmd.Flags().GetBool("stats")
	cfg.Quiet, _ = cmd.Flags().GetBool("quiet")

	res, err := batch.ProcessBatch(cmd.Context(), args, cfg)
	if err != nil {
		if errors.Is(err, batch.ErrNoImages) {
			return fmt.Errorf("%w in %v", err, args)
		}
		return err
	}

	if err := res.SaveResults(cmd.OutOrStdout(), cfg.Format, cfg.OutputFile, cfg.Quiet); err != nil {
		return err
	}
	if cfg.ShowStats && !cfg.Quiet {
		res.PrintStats(cmd.ErrOrStderr())
	}
	return nil
}
