package cmd

import (
	"fmt"

	"github.com/MeKo-Tech/debarkoder/internal/render"
	"github.com/MeKo-Tech/debarkoder/internal/utils"
	"github.com/spf13/cobra"
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate <digits>",
		Short: "Render a synthetic Interleaved 2 of 5 barcode image",
		Long: `Render digits as an Interleaved 2 of 5 barcode and save it as an image.

The digit count must be even. The image format follows the extension of
--output (png, jpg, gif, bmp or tiff).

Examples:
  debarkoder generate 0123456789
  debarkoder generate 4711 --output slip.bmp --wide-ratio 2 --module-width 3`,
		Args: cobra.ExactArgs(1),
		RunE: runGenerate,
	}

	defaults := render.DefaultOptions()
	f := cmd.Flags()
	f.StringP("output", "o", "", "output image (default: <digits>.png)")
	f.Int("module-width", defaults.ModuleWidth, "narrow bar width in pixels")
	f.Int("wide-ratio", defaults.WideRatio, "wide to narrow bar ratio (2 or 3)")
	f.Int("height", defaults.Height, "image height in pixels")
	f.Int("quiet-zone", defaults.QuietZone, "white margin on each side in modules")
	return cmd
}

func runGenerate(cmd *cobra.Command, args []string) error {
	content := args[0]
	f := cmd.Flags()
	var opts render.Options
	opts.ModuleWidth, _ = f.GetInt("module-width")
	opts.WideRatio, _ = f.GetInt("wide-ratio")
	opts.Height, _ = f.GetInt("height")
	opts.QuietZone, _ = f.GetInt("quiet-zone")

	img, err := render.Image(content, opts)
	if err != nil {
		return fmt.Errorf("failed to render %q: %w", content, err)
	}

	out, _ := f.GetString("output")
	if out == "" {
		out = content + ".png"
	}
	if err := utils.SaveImage(out, img); err != nil {
		return err
	}
	b := img.Bounds()
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%dx%d)\n", out, b.Dx(), b.Dy())
	return nil
}
