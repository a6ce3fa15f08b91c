package testutil

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"testing"

	"github.com/MeKo-Tech/debarkoder/internal/render"
	"github.com/MeKo-Tech/debarkoder/internal/utils"
	"github.com/boombuler/barcode"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// BarcodeImageConfig describes a synthetic barcode scan.
type BarcodeImageConfig struct {
	Content     string `json:"content"`
	ModuleWidth int    `json:"module_width"`
	WideRatio   int    `json:"wide_ratio"`
	// Height is the number of clean barcode rows.
	Height int `json:"height"`
	// DamagedRows are drawn above the clean rows with a broken header.
	DamagedRows int `json:"damaged_rows,omitempty"`
	// Margin is the white border around the bars in pixels.
	Margin int `json:"margin"`
	// Caption prints the content under the bars.
	Caption    bool        `json:"caption,omitempty"`
	Background color.Color `json:"-"`
	Foreground color.Color `json:"-"`
}

// DefaultBarcodeImageConfig returns a clean 3:1 scan of "0123456789".
func DefaultBarcodeImageConfig() BarcodeImageConfig {
	return BarcodeImageConfig{
		Content:     "0123456789",
		ModuleWidth: 2,
		WideRatio:   3,
		Height:      40,
		Margin:      20,
		Background:  color.White,
		Foreground:  color.Black,
	}
}

// GenerateBarcodeImage renders a synthetic scan.
func GenerateBarcodeImage(cfg BarcodeImageConfig) (*image.RGBA, error) {
	if cfg.Background == nil {
		cfg.Background = color.White
	}
	if cfg.Foreground == nil {
		cfg.Foreground = color.Black
	}

	opts := render.Options{ModuleWidth: cfg.ModuleWidth, WideRatio: cfg.WideRatio, Height: cfg.Height}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	runs, err := render.Runs(cfg.Content, cfg.WideRatio)
	if err != nil {
		return nil, err
	}

	clean, err := render.Scale(render.FromRuns(cfg.Content, runs, 0), opts)
	if err != nil {
		return nil, err
	}

	var damaged barcode.Barcode
	if cfg.DamagedRows > 0 {
		broken := append(runs[:0:0], runs...)
		broken[1].Length = cfg.WideRatio
		opts.Height = cfg.DamagedRows
		damaged, err = render.Scale(render.FromRuns(cfg.Content, broken, 0), opts)
		if err != nil {
			return nil, err
		}
	}

	captionHeight := 0
	face := basicfont.Face7x13
	if cfg.Caption {
		captionHeight = face.Metrics().Height.Ceil() + 4
	}

	width := clean.Bounds().Dx()
	if damaged != nil {
		width = max(width, damaged.Bounds().Dx())
	}
	width += 2 * cfg.Margin
	height := 2*cfg.Margin + cfg.DamagedRows + cfg.Height + captionHeight

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: cfg.Background}, image.Point{}, draw.Src)

	top := cfg.Margin
	if damaged != nil {
		paintBars(img, damaged, image.Pt(cfg.Margin, top), cfg.Foreground)
		top += cfg.DamagedRows
	}
	paintBars(img, clean, image.Pt(cfg.Margin, top), cfg.Foreground)
	top += cfg.Height

	if cfg.Caption {
		drawer := &font.Drawer{Dst: img, Src: &image.Uniform{C: cfg.Foreground}, Face: face}
		textWidth := font.MeasureString(face, cfg.Content).Ceil()
		drawer.Dot = fixed.P(cfg.Margin+(clean.Bounds().Dx()-textWidth)/2, top+captionHeight-2)
		drawer.DrawString(cfg.Content)
	}

	return img, nil
}

// paintBars copies the black pixels of code onto img at offset.
func paintBars(img *image.RGBA, code image.Image, offset image.Point, fg color.Color) {
	b := code.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if gray, ok := color.GrayModel.Convert(code.At(x, y)).(color.Gray); ok && gray.Y < 128 {
				img.Set(offset.X+x-b.Min.X, offset.Y+y-b.Min.Y, fg)
			}
		}
	}
}

// WriteBarcodeImage renders cfg to path; the format follows the extension.
func WriteBarcodeImage(path string, cfg BarcodeImageConfig) error {
	img, err := GenerateBarcodeImage(cfg)
	if err != nil {
		return fmt.Errorf("generate %s: %w", cfg.Content, err)
	}
	return utils.SaveImage(path, img)
}

// SaveImage saves an image to the specified path.
func SaveImage(t *testing.T, img image.Image, path string) {
	t.Helper()
	require.NoError(t, utils.SaveImage(path, img), "Failed to save image %s", path)
}

// LoadImage loads an image from the specified path.
func LoadImage(t *testing.T, path string) image.Image {
	t.Helper()

	file, err := os.Open(path) //nolint:gosec // G304: Test file reading with controlled path
	require.NoError(t, err, "Failed to open image file %s", path)
	defer func() { _ = file.Close() }()

	img, _, err := image.Decode(file)
	require.NoError(t, err, "Failed to decode image")

	return img
}

// CreateTestImage creates a simple test image with the specified dimensions and color.
func CreateTestImage(width, height int, backgroundColor color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: backgroundColor}, image.Point{}, draw.Src)
	return img
}

// CreateBarcodeImage renders cfg and fails the test on error.
func CreateBarcodeImage(t *testing.T, cfg BarcodeImageConfig) *image.RGBA {
	t.Helper()
	img, err := GenerateBarcodeImage(cfg)
	require.NoError(t, err)
	return img
}
