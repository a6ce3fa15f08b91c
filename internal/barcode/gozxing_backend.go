package barcode

import (
	"context"
	"fmt"
	"image"
	"image/draw"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
)

type gozxingBackend struct{}

func (b *gozxingBackend) Name() string { return "gozxing-itf" }

func (b *gozxingBackend) Decode(ctx context.Context, img image.Image, opts Options) (Result, error) {
	if img == nil {
		return Result{}, fmt.Errorf("%w: nil image", ErrNotFound)
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if !opts.ROI.Empty() {
		if roiImg, ok := subImage(img, opts.ROI); ok {
			img = roiImg
		}
	}

	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_ALLOWED_LENGTHS: opts.lengths(),
	}
	if opts.TryHarder {
		hints[gozxing.DecodeHintType_TRY_HARDER] = true
	}

	bitmap, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return Result{}, fmt.Errorf("barcode: binarize: %w", err)
	}
	r, err := oned.NewITFReader().Decode(bitmap, hints)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	pts := r.GetResultPoints()
	points := make([]Point, 0, len(pts))
	for _, p := range pts {
		points = append(points, Point{X: int(p.GetX()), Y: int(p.GetY())})
	}
	return Result{Value: r.GetText(), Points: points, BBox: rectFromPoints(points)}, nil
}

func rectFromPoints(pts []Point) image.Rectangle {
	if len(pts) == 0 {
		return image.Rectangle{}
	}
	r := image.Rect(pts[0].X, pts[0].Y, pts[0].X+1, pts[0].Y+1)
	for _, p := range pts[1:] {
		r = r.Union(image.Rect(p.X, p.Y, p.X+1, p.Y+1))
	}
	return r
}

// subImage returns the part of img inside r.
func subImage(img image.Image, r image.Rectangle) (image.Image, bool) {
	rb := r.Intersect(img.Bounds())
	if rb.Empty() {
		return nil, false
	}
	type subImager interface {
		SubImage(r image.Rectangle) image.Image
	}
	if s, ok := img.(subImager); ok {
		return s.SubImage(rb), true
	}
	dst := image.NewRGBA(image.Rect(0, 0, rb.Dx(), rb.Dy()))
	draw.Draw(dst, dst.Bounds(), img, rb.Min, draw.Src)
	return dst, true
}
