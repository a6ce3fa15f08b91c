package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/MeKo-Tech/debarkoder/internal/pipeline"
	"github.com/MeKo-Tech/debarkoder/internal/utils"
	"github.com/spf13/cobra"
)

func newDecodeCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode <file>...",
		Short: "Decode barcodes in image files",
		Long: `Decode the Interleaved 2 of 5 barcode in each image file.

Files are decoded in parallel and reported in argument order. Supported
inputs are PNG, JPEG, GIF, BMP, TIFF and WebP.

Examples:
  debarkoder decode scan.png
  debarkoder decode --format csv --output results.csv a.png b.png
  debarkoder decode --overlay-dir overlays scan.jpg`,
		Args: cobra.MinimumNArgs(1),
		RunE: c.runDecode,
	}

	f := cmd.Flags()
	f.StringP("format", "f", "text", "output format (text, json, csv, yaml)")
	f.StringP("output", "o", "", "output file (default: stdout)")
	f.String("overlay-dir", "", "write images with the decoded row highlighted to this directory")
	f.String("overlay-color", utils.DefaultOverlayColor, "overlay highlight color (hex)")
	f.IntP("workers", "w", 4, "number of files decoded in parallel")
	addDecoderFlags(cmd)
	return cmd
}

func (c *cli) runDecode(cmd *cobra.Command, args []string) error {
	format, err := pipeline.ParseFormat(c.cfg.Output.Format)
	if err != nil {
		return err
	}

	pl, err := c.pipeline()
	if err != nil {
		return err
	}
	defer func() { _ = pl.Close() }()

	pc := pl.Config().Parallel
	pc.ErrorHandler = func(i int, err error) {
		slog.Warn("Failed to decode image", "file", args[i], "error", err)
	}
	results, errs, err := pl.ProcessFilesParallel(cmd.Context(), args, pc)
	if err != nil {
		return fmt.Errorf("decoding failed: %w", err)
	}

	if dir := c.cfg.Output.OverlayDir; dir != "" {
		if err := writeOverlays(dir, c.cfg.Output.OverlayColor, args, results); err != nil {
			return err
		}
	}

	rendered, err := pipeline.Render(results, format)
	if err != nil {
		return err
	}
	if err := writeOutput(cmd, c.cfg.Output.File, rendered); err != nil {
		return err
	}

	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files could not be decoded", failed, len(args))
	}
	return nil
}

// writeOutput prints s to stdout or writes it to file.
func writeOutput(cmd *cobra.Command, file, s string) error {
	if file == "" {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), s)
		return err
	}
	if err := os.WriteFile(file, []byte(s+"\n"), 0o600); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	slog.Info("Results written", "file", file)
	return nil
}

// writeOverlays saves <name>_overlay.png into dir for every decoded image.
func writeOverlays(dir, colorHex string, paths []string, results []*pipeline.ImageResult) error {
	col, err := utils.ParseColor(colorHex)
	if err != nil {
		return fmt.Errorf("invalid overlay color: %w", err)
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create overlay directory: %w", err)
	}
	for i, res := range results {
		if res == nil || !res.Found {
			continue
		}
		img, _, err := utils.LoadImage(paths[i])
		if err != nil {
			slog.Warn("Failed to reload image for overlay", "file", paths[i], "error", err)
			continue
		}
		base := filepath.Base(paths[i])
		out := filepath.Join(dir, strings.TrimSuffix(base, filepath.Ext(base))+"_overlay.png")
		if err := utils.SaveImage(out, pipeline.RenderOverlay(img, res, col)); err != nil {
			return fmt.Errorf("failed to write overlay: %w", err)
		}
		slog.Debug("Overlay written", "file", out)
	}
	return nil
}
