package utils

import (
	"errors"
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/segment"
)

// DefaultThreshold is the grey level below which a pixel counts as black.
const DefaultThreshold uint8 = 128

// ImageProcessingError represents errors that can occur during image processing.
type ImageProcessingError struct {
	Operation string
	Err       error
}

func (e *ImageProcessingError) Error() string {
	return fmt.Sprintf("image processing error in %s: %v", e.Operation, e.Err)
}

func (e *ImageProcessingError) Unwrap() error { return e.Err }

// ImageConstraints bounds the images accepted for decoding.
type ImageConstraints struct {
	MinWidth  int
	MinHeight int
	// MaxPixels caps width*height; 0 disables the check.
	MaxPixels int
}

// DefaultImageConstraints accepts any non-empty image. Images too small to
// hold a barcode decode to the placeholder; only MaxPixels is a hard limit.
func DefaultImageConstraints() ImageConstraints {
	return ImageConstraints{
		MinWidth:  1,
		MinHeight: 1,
		MaxPixels: 64 << 20,
	}
}

// PrepareOptions controls the conversion of a decoded image into a
// monochrome row source.
type PrepareOptions struct {
	Threshold uint8
	Autocrop  bool
}

// DefaultPrepareOptions converts at mid-grey and crops white borders.
func DefaultPrepareOptions() PrepareOptions {
	return PrepareOptions{Threshold: DefaultThreshold, Autocrop: true}
}

// Binarize converts img to a 1-bit image without dithering: pixels darker
// than level become 0, all others 255.
func Binarize(img image.Image, level uint8) (*image.Gray, error) {
	if img == nil {
		return nil, &ImageProcessingError{Operation: "binarize", Err: errors.New("input image is nil")}
	}
	if img.Bounds().Empty() {
		return nil, &ImageProcessingError{Operation: "binarize", Err: errors.New("input image is empty")}
	}
	return segment.Threshold(img, level), nil
}

// Autocrop crops white borders from a binarized image and returns the
// cropped image with its bounding box. An all-white image is returned
// unchanged.
func Autocrop(img *image.Gray) (*image.Gray, image.Rectangle) {
	b := img.Bounds()
	minX, maxX, minY, maxY := b.Max.X, b.Min.X, b.Max.Y, b.Min.Y
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := img.PixOffset(b.Min.X, y)
		row := img.Pix[off : off+b.Dx()]
		first := inkStart(row)
		if first < 0 {
			continue
		}
		last := inkEnd(row)
		minX = min(minX, b.Min.X+first)
		maxX = max(maxX, b.Min.X+last+1)
		minY = min(minY, y)
		maxY = y + 1
	}
	box := image.Rect(minX, minY, maxX, maxY)
	if minY >= maxY || box == b {
		return img, b
	}
	sub, ok := img.SubImage(box).(*image.Gray)
	if !ok {
		return img, b
	}
	return sub, box
}

// inkStart returns the index of the first non-white pixel in row, or -1.
func inkStart(row []uint8) int {
	for i, p := range row {
		if p != 255 {
			return i
		}
	}
	return -1
}

func inkEnd(row []uint8) int {
	for i := len(row) - 1; i >= 0; i-- {
		if row[i] != 255 {
			return i
		}
	}
	return -1
}

// Prepare binarizes img and optionally autocrops it.
func Prepare(img image.Image, opts PrepareOptions) (*Monochrome, error) {
	gray, err := Binarize(img, opts.Threshold)
	if err != nil {
		return nil, err
	}
	origin := img.Bounds().Min
	if opts.Autocrop {
		base := gray.Rect.Min
		var box image.Rectangle
		gray, box = Autocrop(gray)
		origin = origin.Add(box.Min.Sub(base))
	}
	return NewMonochrome(gray, origin), nil
}
