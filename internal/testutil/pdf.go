package testutil

import (
	"errors"
	"fmt"
	"image/color"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MeKo-Tech/debarkoder/internal/utils"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/stretchr/testify/require"
)

// WritePDF builds a document with one page per content in a temp dir; an
// empty content becomes a tiny blank image.
func WritePDF(t *testing.T, contents ...string) string {
	t.Helper()
	dir := t.TempDir()
	files := make([]string, len(contents))
	for i, c := range contents {
		files[i] = filepath.Join(dir, fmt.Sprintf("page_%d.png", i))
		if c == "" {
			require.NoError(t, utils.SaveImage(files[i], CreateTestImage(10, 10, color.White)))
			continue
		}
		cfg := DefaultBarcodeImageConfig()
		cfg.Content = c
		require.NoError(t, WriteBarcodeImage(files[i], cfg))
	}
	out := filepath.Join(dir, "doc.pdf")
	require.NoError(t, api.ImportImagesFile(files, out, nil, nil))
	return out
}

// WriteFixturePDF imports the PNG and JPEG images of fixtures, already
// written to dir, into out with one page per image.
func WriteFixturePDF(out, dir string, fixtures []BarcodeFixture) error {
	var files []string
	for _, f := range fixtures {
		switch strings.ToLower(filepath.Ext(f.InputFile)) {
		case ".png", ".jpg", ".jpeg":
			files = append(files, FixturePath(dir, f))
		}
	}
	if len(files) == 0 {
		return errors.New("no fixture images can be embedded")
	}
	return api.ImportImagesFile(files, out, nil, nil)
}
