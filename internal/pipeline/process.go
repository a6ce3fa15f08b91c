package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"time"

	"github.com/MeKo-Tech/debarkoder/internal/barcode"
	"github.com/MeKo-Tech/debarkoder/internal/utils"
)

var errNotInitialized = errors.New("pipeline not initialized")

// ProcessImage prepares img and recognizes the barcode in it.
func (p *Pipeline) ProcessImage(img image.Image) (*ImageResult, error) {
	return p.ProcessImageContext(context.Background(), img)
}

// ProcessImageContext is like ProcessImage but allows cancellation via context.
func (p *Pipeline) ProcessImageContext(ctx context.Context, img image.Image) (*ImageResult, error) {
	if p == nil || p.Recognizer == nil {
		return nil, errNotInitialized
	}
	if img == nil {
		return nil, errors.New("input image is nil")
	}
	if err := utils.ValidateImageConstraints(img, p.cfg.Constraints); err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	slog.Debug("Starting image processing", "width", bounds.Dx(), "height", bounds.Dy())
	totalStart := time.Now()

	mono, err := utils.Prepare(img, p.cfg.Prepare)
	if err != nil {
		return nil, err
	}
	prepareNs := time.Since(totalStart).Nanoseconds()

	recStart := time.Now()
	rec, err := p.Recognizer.Recognize(ctx, mono)
	if err != nil {
		return nil, fmt.Errorf("recognize: %w", err)
	}
	recNs := time.Since(recStart).Nanoseconds()

	res := &ImageResult{
		Text:        rec.Text(p.cfg.Decoder.Placeholder),
		Found:       rec.Found(),
		Complete:    rec.Complete(),
		Errors:      rec.Errors,
		Row:         rec.Row,
		SourceRow:   -1,
		Cutoff:      rec.Cutoff,
		RowsScanned: rec.Scanned,
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
		Area:        mono.SourceBounds(),
	}
	if rec.Found() {
		res.SourceRow = mono.SourceRow(rec.Row)
	}

	if p.CrossCheck != nil && rec.Found() {
		check := barcode.Verify(ctx, p.CrossCheck, img, res.Text, p.cfg.CrossCheck.Options)
		res.CrossCheck = &check
		if !check.Agrees {
			slog.Debug("Cross-check disagrees", "text", res.Text, "backend", check.Backend,
				"value", check.Value, "error", check.Error)
		}
	}

	res.Processing.PrepareNs = prepareNs
	res.Processing.RecognizeNs = recNs
	res.Processing.TotalNs = time.Since(totalStart).Nanoseconds()
	if p.Profiler != nil {
		p.Profiler.Record(res)
	}

	slog.Debug("Image processed", "text", res.Text, "row", res.SourceRow,
		"errors", res.Errors, "rows_scanned", res.RowsScanned, "total_ns", res.Processing.TotalNs)
	return res, nil
}

// ProcessReader decodes an encoded image from r.
func (p *Pipeline) ProcessReader(ctx context.Context, r io.Reader) (*ImageResult, error) {
	img, _, err := utils.DecodeImage(r)
	if err != nil {
		return nil, err
	}
	return p.ProcessImageContext(ctx, img)
}

// ProcessFile loads path and decodes it. The result's Source is path.
func (p *Pipeline) ProcessFile(path string) (*ImageResult, error) {
	return p.ProcessFileContext(context.Background(), path)
}

// ProcessFileContext is like ProcessFile with cancellation. Errors are
// prefixed with path.
func (p *Pipeline) ProcessFileContext(ctx context.Context, path string) (*ImageResult, error) {
	img, _, err := utils.LoadImage(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	res, err := p.ProcessImageContext(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	res.Source = path
	return res, nil
}
