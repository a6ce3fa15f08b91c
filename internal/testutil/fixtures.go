package testutil

import (
	"encoding/json"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// ManifestName is the file WriteFixtures stores the fixture list in.
const ManifestName = "manifest.json"

// BarcodeFixture is a generated image with its expected decode.
type BarcodeFixture struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	InputFile   string             `json:"input_file"`
	Expected    string             `json:"expected"`
	Config      BarcodeImageConfig `json:"config"`
}

// StandardFixtures returns the fixture set shared by the unit and
// acceptance tests.
func StandardFixtures() []BarcodeFixture {
	base := DefaultBarcodeImageConfig()

	twoDigits := base
	twoDigits.Content = "01"

	long := base
	long.Content = "01234567891011121314151617181920212223242526"
	long.ModuleWidth = 1

	ratio := base
	ratio.Content = "4711"
	ratio.WideRatio = 2
	ratio.ModuleWidth = 3

	damaged := base
	damaged.Content = "80604020"
	damaged.DamagedRows = 7

	grey := base
	grey.Content = "13579246"
	grey.Background = color.RGBA{R: 230, G: 225, B: 210, A: 255}
	grey.Foreground = color.RGBA{R: 50, G: 50, B: 70, A: 255}
	grey.Caption = true

	jpeg := base
	jpeg.Content = "24681357"
	jpeg.ModuleWidth = 3

	return []BarcodeFixture{
		{Name: "two_digits", Description: "Shortest payload", InputFile: "01.png", Expected: "01", Config: twoDigits},
		{Name: "all_digits", Description: "Every digit once", InputFile: "0123456789.png", Expected: "0123456789", Config: base},
		{Name: "long", Description: "44 digits at one pixel per module", InputFile: "long.png", Expected: long.Content, Config: long},
		{Name: "ratio_2to1", Description: "Wide bars twice the narrow width", InputFile: "ratio.bmp", Expected: "4711", Config: ratio},
		{Name: "damaged_top", Description: "Broken header on the first rows", InputFile: "damaged.png", Expected: "80604020", Config: damaged},
		{Name: "grey_scan", Description: "Low contrast colours with a caption", InputFile: "grey.png", Expected: "13579246", Config: grey},
		{Name: "jpeg", Description: "Lossy encoded scan", InputFile: "scan.jpg", Expected: "24681357", Config: jpeg},
	}
}

// WriteFixtures renders every fixture into dir and writes the manifest.
func WriteFixtures(dir string, fixtures []BarcodeFixture) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create fixture dir: %w", err)
	}
	for _, f := range fixtures {
		if err := WriteBarcodeImage(filepath.Join(dir, f.InputFile), f.Config); err != nil {
			return fmt.Errorf("fixture %s: %w", f.Name, err)
		}
	}
	data, err := json.MarshalIndent(fixtures, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, ManifestName), data, 0o600)
}

// LoadManifest reads a fixture list written by WriteFixtures.
func LoadManifest(dir string) ([]BarcodeFixture, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestName)) //nolint:gosec // G304: fixture dir is controlled
	if err != nil {
		return nil, err
	}
	var fixtures []BarcodeFixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return fixtures, nil
}

// WriteStandardFixtures renders StandardFixtures into a temporary directory.
func WriteStandardFixtures(t *testing.T) (string, []BarcodeFixture) {
	t.Helper()
	dir := t.TempDir()
	fixtures := StandardFixtures()
	require.NoError(t, WriteFixtures(dir, fixtures))
	return dir, fixtures
}

// FixturePath returns the image path of fixture f inside dir.
func FixturePath(dir string, f BarcodeFixture) string {
	return filepath.Join(dir, f.InputFile)
}
