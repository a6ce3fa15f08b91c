package utils

import (
	"fmt"
	"image"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// DefaultOverlayColor highlights the winning scan row.
const DefaultOverlayColor = "#e6194b"

// ParseColor parses a "#rrggbb" colour.
func ParseColor(hex string) (colorful.Color, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return colorful.Color{}, &ImageProcessingError{Operation: "overlay", Err: fmt.Errorf("invalid colour %q: %w", hex, err)}
	}
	return c, nil
}

// HighlightRow returns a copy of img with the barcode area outlined and the
// scan row at source coordinate y tinted with col. Blending happens in Lab
// space so the bars stay visible under the tint.
func HighlightRow(img image.Image, area image.Rectangle, y int, col colorful.Color) *image.RGBA {
	dst := ToRGBA(img)
	area = area.Intersect(dst.Bounds())
	if area.Empty() {
		return dst
	}
	DrawRect(dst, area.Inset(-1), col, 1)

	band := max(1, area.Dy()/50)
	for yy := y - band; yy <= y+band; yy++ {
		if yy < area.Min.Y || yy >= area.Max.Y {
			continue
		}
		for x := area.Min.X; x < area.Max.X; x++ {
			base, ok := colorful.MakeColor(dst.At(x, yy))
			if !ok {
				dst.Set(x, yy, col)
				continue
			}
			dst.Set(x, yy, base.BlendLab(col, 0.55).Clamped())
		}
	}
	return dst
}
