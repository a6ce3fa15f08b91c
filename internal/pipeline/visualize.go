package pipeline

import (
	"image"

	"github.com/MeKo-Tech/debarkoder/internal/utils"
	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// RenderOverlay returns an RGBA copy of img with the scanned area outlined,
// the winning row tinted and the decoded text written next to the area.
func RenderOverlay(img image.Image, res *ImageResult, col colorful.Color) *image.RGBA {
	if img == nil {
		return nil
	}
	if res == nil {
		return utils.ToRGBA(img)
	}
	area := res.Area
	if area.Empty() {
		area = img.Bounds()
	}
	dst := utils.HighlightRow(img, area, res.SourceRow, col)
	drawLabel(dst, area, res.Text, col)
	return dst
}

// drawLabel writes text above area, or inside its top edge when there is
// no room above.
func drawLabel(dst *image.RGBA, area image.Rectangle, text string, col colorful.Color) {
	if text == "" {
		return
	}
	face := basicfont.Face7x13
	ascent := face.Metrics().Ascent.Ceil()
	baseline := area.Min.Y - 3
	if baseline-ascent < dst.Bounds().Min.Y {
		baseline = area.Min.Y + ascent + 1
	}
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(col.Clamped()), Face: face}
	d.Dot = fixed.P(area.Min.X, baseline)
	d.DrawString(text)
}
