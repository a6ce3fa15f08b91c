package utils

import "image"

// Monochrome is a binarized image read one pixel row at a time. Every
// pixel is 0 or 255.
type Monochrome struct {
	img    *image.Gray
	origin image.Point
}

// NewMonochrome wraps a binarized image whose top-left pixel sits at origin
// in the source image.
func NewMonochrome(img *image.Gray, origin image.Point) *Monochrome {
	return &Monochrome{img: img, origin: origin}
}

func (m *Monochrome) Width() int  { return m.img.Bounds().Dx() }
func (m *Monochrome) Height() int { return m.img.Bounds().Dy() }

// Row returns row y (0-based) without copying. Callers must not modify it.
func (m *Monochrome) Row(y int) []uint8 {
	b := m.img.Bounds()
	off := m.img.PixOffset(b.Min.X, b.Min.Y+y)
	return m.img.Pix[off : off+b.Dx()]
}

// Image returns the underlying grey image.
func (m *Monochrome) Image() *image.Gray { return m.img }

// SourceBounds returns the area of the source image the rows cover.
func (m *Monochrome) SourceBounds() image.Rectangle {
	return image.Rectangle{Min: m.origin, Max: m.origin.Add(m.img.Bounds().Size())}
}

// SourceRow maps row y to its y coordinate in the source image.
func (m *Monochrome) SourceRow(y int) int { return m.origin.Y + y }
