package batch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/MeKo-Tech/debarkoder/internal/pipeline"
	"github.com/MeKo-Tech/debarkoder/internal/utils"
)

// processFiles decodes paths on the pipeline's worker pool and writes
// overlays for decoded images when an overlay directory is configured.
func processFiles(
	ctx context.Context, pl *pipeline.Pipeline, paths []string, config *Config,
) ([]*pipeline.ImageResult, []error, error) {
	pc := pl.Config().Parallel
	pc.ErrorHandler = func(i int, err error) {
		slog.Warn("Failed to decode image", "file", paths[i], "error", err)
	}

	results, errs, err := pl.ProcessFilesParallel(ctx, paths, pc)
	if err != nil {
		return nil, nil, err
	}

	if config.OverlayDir != "" {
		for i, res := range results {
			if res == nil || !res.Found {
				continue
			}
			if err := saveOverlay(paths[i], res, config); err != nil {
				slog.Warn("Failed to write overlay", "file", paths[i], "error", err)
			}
		}
	}
	return results, errs, nil
}

// overlayPath names the overlay written for src.
func overlayPath(dir, src string) string {
	base := filepath.Base(src)
	return filepath.Join(dir, strings.TrimSuffix(base, filepath.Ext(base))+"_overlay.png")
}

// saveOverlay reloads src and writes it with the winning row highlighted.
func saveOverlay(src string, res *pipeline.ImageResult, config *Config) error {
	colorHex := config.OverlayColor
	if colorHex == "" {
		colorHex = utils.DefaultOverlayColor
	}
	col, err := utils.ParseColor(colorHex)
	if err != nil {
		return err
	}
	img, _, err := utils.LoadImage(src)
	if err != nil {
		return fmt.Errorf("reload %s: %w", src, err)
	}
	ov := pipeline.RenderOverlay(img, res, col)
	if ov == nil {
		return nil
	}
	return utils.SaveImage(overlayPath(config.OverlayDir, src), ov)
}
