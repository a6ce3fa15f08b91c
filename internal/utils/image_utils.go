package utils

import (
	"image"
	"image/color"
	"image/draw"
)

// ToRGBA returns a mutable RGBA copy of img.
func ToRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(b)
	draw.Draw(dst, b, img, b.Min, draw.Src)
	return dst
}

// DrawRect outlines rect in dst with edges thickness pixels wide, drawn
// inward. The part of rect outside dst is ignored.
func DrawRect(dst *image.RGBA, rect image.Rectangle, col color.Color, thickness int) {
	rect = rect.Intersect(dst.Bounds())
	if rect.Empty() {
		return
	}
	t := min(max(thickness, 1), rect.Dx(), rect.Dy())
	src := image.NewUniform(col)
	for _, edge := range []image.Rectangle{
		image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y+t),
		image.Rect(rect.Min.X, rect.Max.Y-t, rect.Max.X, rect.Max.Y),
		image.Rect(rect.Min.X, rect.Min.Y, rect.Min.X+t, rect.Max.Y),
		image.Rect(rect.Max.X-t, rect.Min.Y, rect.Max.X, rect.Max.Y),
	} {
		draw.Draw(dst, edge, src, image.Point{}, draw.Src)
	}
}
