package pipeline

import (
	"image"
	"testing"

	"github.com/MeKo-Tech/debarkoder/internal/i2of5"
	"github.com/MeKo-Tech/debarkoder/internal/render"
	"github.com/MeKo-Tech/debarkoder/internal/testutil"
	"github.com/stretchr/testify/require"
)

func newTestPipeline(t *testing.T, configure ...func(*Builder)) *Pipeline {
	t.Helper()
	b := NewBuilder()
	for _, fn := range configure {
		fn(b)
	}
	p, err := b.Build()
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func barcodeImage(t *testing.T, content string) *image.RGBA {
	t.Helper()
	cfg := testutil.DefaultBarcodeImageConfig()
	cfg.Content = content
	return testutil.CreateBarcodeImage(t, cfg)
}

// corruptedImage renders content with the first wide bar of the first
// digit pair narrowed, so the first digit cannot resolve on any row.
func corruptedImage(t *testing.T, content string) image.Image {
	t.Helper()
	runs, err := i2of5.I2of5.Encode(content)
	require.NoError(t, err)
	for i := 4; i < len(runs)-3; i += 2 {
		if runs[i].Length == 3 {
			runs[i].Length = 1
			break
		}
	}
	opts := render.DefaultOptions()
	code, err := render.Scale(render.FromRuns(content, runs, opts.QuietZone), opts)
	require.NoError(t, err)
	return code
}

func blankImage(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	return img
}
