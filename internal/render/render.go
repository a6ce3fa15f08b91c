// Package render draws synthetic Interleaved 2 of 5 barcodes. It is used by
// the generate command, the self-test and test fixtures.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/MeKo-Tech/debarkoder/internal/i2of5"
	"github.com/MeKo-Tech/debarkoder/internal/rle"
	"github.com/boombuler/barcode"
	bcutils "github.com/boombuler/barcode/utils"
)

// CodeKind is reported in the barcode metadata.
const CodeKind = "Interleaved 2 of 5"

// ErrBadOptions is returned for option values that cannot produce an image.
var ErrBadOptions = errors.New("render: invalid options")

// Options controls the rendered geometry.
type Options struct {
	// ModuleWidth is the width of a narrow bar in pixels.
	ModuleWidth int
	// WideRatio is the wide/narrow width ratio, 2 or 3.
	WideRatio int
	// Height is the image height in pixels.
	Height int
	// QuietZone is the white margin on each side, in modules.
	QuietZone int
}

// DefaultOptions returns a 3:1 barcode with 2 pixel modules.
func DefaultOptions() Options {
	return Options{ModuleWidth: 2, WideRatio: 3, Height: 60, QuietZone: 10}
}

// Validate checks the option ranges.
func (o Options) Validate() error {
	switch {
	case o.ModuleWidth < 1:
		return fmt.Errorf("%w: module width %d", ErrBadOptions, o.ModuleWidth)
	case o.WideRatio < 2 || o.WideRatio > 3:
		return fmt.Errorf("%w: wide ratio %d not in [2,3]", ErrBadOptions, o.WideRatio)
	case o.Height < 2:
		return fmt.Errorf("%w: height %d", ErrBadOptions, o.Height)
	case o.QuietZone < 0:
		return fmt.Errorf("%w: quiet zone %d", ErrBadOptions, o.QuietZone)
	}
	return nil
}

// Runs returns the module-level bar runs of content at the given wide ratio.
func Runs(content string, wideRatio int) ([]rle.Run, error) {
	runs, err := i2of5.I2of5.Encode(content)
	if err != nil {
		return nil, err
	}
	multiplier := i2of5.I2of5.Definition().WideMultiplier
	if wideRatio != multiplier {
		for i := range runs {
			if runs[i].Length == multiplier {
				runs[i].Length = wideRatio
			}
		}
	}
	return runs, nil
}

// Encode returns content as a one module high barcode.Barcode with a quiet
// zone on both sides.
func Encode(content string, wideRatio, quietZone int) (barcode.Barcode, error) {
	runs, err := Runs(content, wideRatio)
	if err != nil {
		return nil, err
	}
	return FromRuns(content, runs, quietZone), nil
}

// FromRuns wraps arbitrary runs, for example deliberately damaged ones, as
// a barcode.Barcode.
func FromRuns(content string, runs []rle.Run, quietZone int) barcode.Barcode {
	total := 2 * quietZone
	for _, r := range runs {
		total += r.Length
	}
	bits := bcutils.NewBitList(total)
	addRun := func(n int, black bool) {
		for range n {
			bits.AddBit(black)
		}
	}
	addRun(quietZone, false)
	for _, r := range runs {
		addRun(r.Length, r.Color == rle.Black)
	}
	addRun(quietZone, false)
	return bcutils.New1DCode(CodeKind, content, bits)
}

// Image renders content with opts.
func Image(content string, opts Options) (image.Image, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	code, err := Encode(content, opts.WideRatio, opts.QuietZone)
	if err != nil {
		return nil, err
	}
	return Scale(code, opts)
}

// Scale stretches a module-level barcode to opts.ModuleWidth pixels per
// module and opts.Height rows.
func Scale(code barcode.Barcode, opts Options) (barcode.Barcode, error) {
	width := code.Bounds().Dx() * opts.ModuleWidth
	scaled, err := barcode.Scale(code, width, opts.Height)
	if err != nil {
		return nil, fmt.Errorf("render: scale %s: %w", code.Content(), err)
	}
	return scaled, nil
}

// Gray copies img into a grey image with the same bounds.
func Gray(img image.Image) *image.Gray {
	b := img.Bounds()
	dst := image.NewGray(b)
	draw.Draw(dst, b, img, b.Min, draw.Src)
	return dst
}

// Stack renders one row per entry of rows, each at height rowHeight, onto a
// white canvas as wide as the widest row. Every row is drawn at x=0.
func Stack(rows []barcode.Barcode, moduleWidth, rowHeight int) (*image.Gray, error) {
	if moduleWidth < 1 || rowHeight < 1 {
		return nil, fmt.Errorf("%w: module width %d, row height %d", ErrBadOptions, moduleWidth, rowHeight)
	}
	width := 0
	for _, r := range rows {
		width = max(width, r.Bounds().Dx()*moduleWidth)
	}
	dst := image.NewGray(image.Rect(0, 0, width, rowHeight*len(rows)))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	for i, r := range rows {
		scaled, err := Scale(r, Options{ModuleWidth: moduleWidth, Height: rowHeight})
		if err != nil {
			return nil, err
		}
		rect := image.Rect(0, i*rowHeight, scaled.Bounds().Dx(), (i+1)*rowHeight)
		draw.Draw(dst, rect, scaled, scaled.Bounds().Min, draw.Src)
	}
	return dst, nil
}
