package utils

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// SupportedImageExtensions lists supported file extensions for loading.
var SupportedImageExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".gif", ".tif", ".tiff"}

// IsSupportedImage reports whether the path has a supported image extension.
func IsSupportedImage(path string) bool {
	return slices.Contains(SupportedImageExtensions, strings.ToLower(filepath.Ext(path)))
}

// ImageMetadata captures lightweight file and pixel information.
type ImageMetadata struct {
	Path      string `json:"path,omitempty"`
	Format    string `json:"format"`
	SizeBytes int64  `json:"size_bytes,omitempty"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

// LoadImage opens and decodes an image file, returning the image and metadata.
func LoadImage(path string) (image.Image, ImageMetadata, error) {
	if path == "" {
		err := &ImageProcessingError{Operation: "load", Err: errors.New("empty path")}
		return nil, ImageMetadata{}, err
	}
	if !IsSupportedImage(path) {
		err := &ImageProcessingError{Operation: "load", Err: fmt.Errorf("unsupported format: %s", filepath.Ext(path))}
		return nil, ImageMetadata{}, err
	}

	f, err := os.Open(path) //nolint:gosec // G304: Reading user-provided image file path is expected
	if err != nil {
		return nil, ImageMetadata{}, &ImageProcessingError{Operation: "load", Err: err}
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("Error closing image file", "path", path, "error", err)
		}
	}()

	fi, err := f.Stat()
	if err != nil {
		return nil, ImageMetadata{}, &ImageProcessingError{Operation: "load", Err: err}
	}

	img, meta, err := DecodeImage(f)
	if err != nil {
		return nil, ImageMetadata{}, err
	}
	meta.Path = path
	meta.SizeBytes = fi.Size()
	return img, meta, nil
}

// DecodeImage decodes an image from r using the registered decoders.
func DecodeImage(r io.Reader) (image.Image, ImageMetadata, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, ImageMetadata{}, &ImageProcessingError{Operation: "decode", Err: err}
	}
	b := img.Bounds()
	return img, ImageMetadata{Format: format, Width: b.Dx(), Height: b.Dy()}, nil
}

// SaveImage writes img to path; the format follows the file extension.
func SaveImage(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return &ImageProcessingError{Operation: "save", Err: err}
	}
	if err := imaging.Save(img, path); err != nil {
		return &ImageProcessingError{Operation: "save", Err: err}
	}
	return nil
}

// BatchImageResult is the outcome of loading one path in BatchLoadImages.
type BatchImageResult struct {
	Path string
	Img  image.Image
	Meta ImageMetadata
	Err  error
}

// BatchLoadImages loads multiple images and returns results in-order.
// Any failed load returns a non-nil error in the corresponding entry.
func BatchLoadImages(paths []string) []BatchImageResult {
	results := make([]BatchImageResult, 0, len(paths))
	for _, p := range paths {
		img, meta, err := LoadImage(p)
		results = append(results, BatchImageResult{Path: p, Img: img, Meta: meta, Err: err})
	}
	return results
}

// ValidateImageConstraints checks dimensions against the provided constraints.
func ValidateImageConstraints(img image.Image, constraints ImageConstraints) error {
	if img == nil {
		return &ImageProcessingError{Operation: "validate", Err: errors.New("input image is nil")}
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < constraints.MinWidth || h < constraints.MinHeight {
		return &ImageProcessingError{
			Operation: "validate",
			Err: fmt.Errorf(
				"image too small: %dx%d < %dx%d",
				w, h, constraints.MinWidth, constraints.MinHeight,
			),
		}
	}
	if constraints.MaxPixels > 0 && w*h > constraints.MaxPixels {
		return &ImageProcessingError{
			Operation: "validate",
			Err:       fmt.Errorf("image too large: %dx%d exceeds %d pixels", w, h, constraints.MaxPixels),
		}
	}
	return nil
}
