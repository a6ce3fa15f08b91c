package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/MeKo-Tech/debarkoder/internal/testutil"
	"github.com/MeKo-Tech/debarkoder/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessImage_CleanBarcode(t *testing.T) {
	p := newTestPipeline(t)
	img := barcodeImage(t, "0123456789")

	res, err := p.ProcessImage(img)
	require.NoError(t, err)
	assert.Equal(t, "0123456789", res.Text)
	assert.True(t, res.Found)
	assert.True(t, res.Complete)
	assert.Zero(t, res.Errors)
	assert.Equal(t, 0, res.Row)
	assert.Equal(t, 20, res.SourceRow)
	assert.Equal(t, 1, res.RowsScanned)
	assert.Equal(t, img.Bounds().Dx(), res.Width)
	assert.Equal(t, img.Bounds().Dy(), res.Height)
	assert.Equal(t, 20, res.Area.Min.X)
	assert.Equal(t, 20, res.Area.Min.Y)
	assert.Positive(t, res.Cutoff)
	assert.Nil(t, res.CrossCheck)
	assert.Positive(t, res.Processing.TotalNs)
	require.NoError(t, ValidateImageResult(res))
}

func TestProcessImage_SkipsDamagedRows(t *testing.T) {
	p := newTestPipeline(t)
	cfg := testutil.DefaultBarcodeImageConfig()
	cfg.Content = "4711"
	cfg.DamagedRows = 5

	res, err := p.ProcessImage(testutil.CreateBarcodeImage(t, cfg))
	require.NoError(t, err)
	assert.Equal(t, "4711", res.Text)
	assert.Equal(t, 5, res.Row)
	assert.Equal(t, 25, res.SourceRow)
	assert.Equal(t, 6, res.RowsScanned)
}

func TestProcessImage_NoBarcode(t *testing.T) {
	p := newTestPipeline(t)
	res, err := p.ProcessImage(blankImage(100, 40))
	require.NoError(t, err)
	assert.Equal(t, "?", res.Text)
	assert.False(t, res.Found)
	assert.False(t, res.Complete)
	assert.Equal(t, -1, res.Row)
	assert.Equal(t, -1, res.SourceRow)
	require.NoError(t, ValidateImageResult(res))
}

func TestProcessImage_TinyImagesDegrade(t *testing.T) {
	p := newTestPipeline(t)
	for _, size := range []image.Point{{200, 1}, {10, 10}, {1, 1}, {16, 2}} {
		t.Run(fmt.Sprintf("%dx%d", size.X, size.Y), func(t *testing.T) {
			res, err := p.ProcessImage(blankImage(size.X, size.Y))
			require.NoError(t, err)
			assert.Equal(t, "?", res.Text)
			assert.False(t, res.Found)
			assert.Equal(t, -1, res.SourceRow)
		})
	}
}

func TestProcessImage_UnresolvedDigitPlaceholder(t *testing.T) {
	img := corruptedImage(t, "1234")

	res, err := newTestPipeline(t).ProcessImage(img)
	require.NoError(t, err)
	assert.Equal(t, "?234", res.Text)
	assert.True(t, res.Found)
	assert.False(t, res.Complete)
	assert.Equal(t, 1, res.Errors)

	res, err = newTestPipeline(t, func(b *Builder) { b.WithPlaceholder("#") }).ProcessImage(img)
	require.NoError(t, err)
	assert.Equal(t, "#234", res.Text)
}

func TestProcessImage_WithoutAutocrop(t *testing.T) {
	p := newTestPipeline(t, func(b *Builder) { b.WithAutocrop(false) })
	res, err := p.ProcessImage(barcodeImage(t, "0123"))
	require.NoError(t, err)
	assert.Equal(t, "0123", res.Text)
	// The top margin rows are all white and never decode.
	assert.Equal(t, 20, res.Row)
	assert.Equal(t, 20, res.SourceRow)
	assert.Equal(t, image.Rect(0, 0, res.Width, res.Height), res.Area)
}

func TestProcessImage_ParallelRows(t *testing.T) {
	cfg := testutil.DefaultBarcodeImageConfig()
	cfg.DamagedRows = 9
	img := testutil.CreateBarcodeImage(t, cfg)

	seq, err := newTestPipeline(t).ProcessImage(img)
	require.NoError(t, err)
	par, err := newTestPipeline(t, func(b *Builder) { b.WithRowWorkers(4) }).ProcessImage(img)
	require.NoError(t, err)

	assert.Equal(t, seq.Text, par.Text)
	assert.Equal(t, seq.Row, par.Row)
	assert.Equal(t, 9, par.Row)
}

func TestProcessImage_CrossCheck(t *testing.T) {
	p := newTestPipeline(t, func(b *Builder) { b.WithCrossCheck(true) })
	res, err := p.ProcessImage(barcodeImage(t, "0123456789"))
	require.NoError(t, err)
	require.NotNil(t, res.CrossCheck)
	assert.Equal(t, "gozxing-itf", res.CrossCheck.Backend)
	assert.True(t, res.CrossCheck.Agrees, "cross-check error: %s", res.CrossCheck.Error)

	res, err = p.ProcessImage(blankImage(100, 40))
	require.NoError(t, err)
	assert.Nil(t, res.CrossCheck)
}

func TestProcessImage_Errors(t *testing.T) {
	p := newTestPipeline(t)

	_, err := p.ProcessImage(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nil")

	capped := newTestPipeline(t, func(b *Builder) {
		b.WithConstraints(utils.ImageConstraints{MinWidth: 1, MinHeight: 1, MaxPixels: 1000})
	})
	_, err = capped.ProcessImage(blankImage(100, 40))
	require.Error(t, err)
	var ipe *utils.ImageProcessingError
	assert.ErrorAs(t, err, &ipe)
	assert.Contains(t, err.Error(), "image too large")

	var nilPipeline *Pipeline
	_, err = nilPipeline.ProcessImage(blankImage(100, 40))
	require.ErrorIs(t, err, errNotInitialized)
}

func TestProcessImage_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestPipeline(t).ProcessImageContext(ctx, barcodeImage(t, "01"))
	require.ErrorIs(t, err, context.Canceled)
}

func TestProcessImage_RecordsProfile(t *testing.T) {
	p := newTestPipeline(t)
	_, err := p.ProcessImage(barcodeImage(t, "01"))
	require.NoError(t, err)
	_, err = p.ProcessImage(blankImage(100, 40))
	require.NoError(t, err)

	snap := p.Profiler.Snapshot()
	assert.Equal(t, int64(2), snap["images"])
	assert.Equal(t, int64(1), snap["decoded"])
	assert.Equal(t, int64(1), snap["complete"])
	assert.Contains(t, snap, "recognize_ms_per_image")
}

func TestProcessFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scan.png")
	cfg := testutil.DefaultBarcodeImageConfig()
	cfg.Content = "2468"
	require.NoError(t, testutil.WriteBarcodeImage(path, cfg))

	res, err := newTestPipeline(t).ProcessFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, res.Source)
	assert.Equal(t, "2468", res.Text)

	_, err = newTestPipeline(t).ProcessFile(filepath.Join(dir, "missing.png"))
	require.Error(t, err)
}

func TestProcessReader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, barcodeImage(t, "1357")))

	res, err := newTestPipeline(t).ProcessReader(context.Background(), &buf)
	require.NoError(t, err)
	assert.Equal(t, "1357", res.Text)

	_, err = newTestPipeline(t).ProcessReader(context.Background(), bytes.NewReader([]byte("nope")))
	require.Error(t, err)
}

func TestProcessImages_Sequential(t *testing.T) {
	p := newTestPipeline(t)
	results, err := p.ProcessImages([]image.Image{barcodeImage(t, "01"), blankImage(50, 20)})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "01", results[0].Text)
	assert.Equal(t, "?", results[1].Text)

	_, err = p.ProcessImages(nil)
	require.Error(t, err)

	partial, err := p.ProcessImages([]image.Image{barcodeImage(t, "01"), nil})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "image 1")
	assert.Len(t, partial, 1)
}
