package support

import (
	"fmt"
	"image/color"
	"path/filepath"
	"strings"

	"github.com/MeKo-Tech/debarkoder/internal/pipeline"
	"github.com/MeKo-Tech/debarkoder/internal/testutil"
	"github.com/MeKo-Tech/debarkoder/internal/utils"
	"github.com/cucumber/godog"
)

// RegisterImageSteps registers image fixture steps.
func (testCtx *TestContext) RegisterImageSteps(sc *godog.ScenarioContext) {
	sc.Step(`^the standard barcode fixtures$`, testCtx.theStandardBarcodeFixtures)
	sc.Step(`^an image "([^"]*)" encoding "([^"]*)"$`, func(name, content string) error {
		return testCtx.anImageEncoding(name, content, 3)
	})
	sc.Step(`^an image "([^"]*)" encoding "([^"]*)" with wide ratio (\d+)$`, testCtx.anImageEncoding)
	sc.Step(`^a blank image "([^"]*)"$`, testCtx.aBlankImage)
	sc.Step(`^every fixture should decode to its expected text$`, testCtx.everyFixtureShouldDecode)
	sc.Step(`^the output should contain every expected fixture text$`, testCtx.theOutputShouldContainEveryFixtureText)
}

func (testCtx *TestContext) theStandardBarcodeFixtures() error {
	testCtx.FixturesDir = filepath.Join(testCtx.TempDir, "fixtures")
	testCtx.Fixtures = testutil.StandardFixtures()
	return testutil.WriteFixtures(testCtx.FixturesDir, testCtx.Fixtures)
}

func (testCtx *TestContext) anImageEncoding(name, content string, ratio int) error {
	cfg := testutil.DefaultBarcodeImageConfig()
	cfg.Content = content
	cfg.WideRatio = ratio
	return testutil.WriteBarcodeImage(testCtx.path(name), cfg)
}

func (testCtx *TestContext) aBlankImage(name string) error {
	return utils.SaveImage(testCtx.path(name), testutil.CreateTestImage(120, 60, color.White))
}

// everyFixtureShouldDecode runs the default pipeline over every fixture.
func (testCtx *TestContext) everyFixtureShouldDecode() error {
	if len(testCtx.Fixtures) == 0 {
		return fmt.Errorf("no fixtures were generated")
	}
	pl, err := pipeline.NewBuilder().Build()
	if err != nil {
		return err
	}
	defer func() { _ = pl.Close() }()

	var failures []string
	for _, f := range testCtx.Fixtures {
		res, err := pl.ProcessFile(testutil.FixturePath(testCtx.FixturesDir, f))
		switch {
		case err != nil:
			failures = append(failures, fmt.Sprintf("%s: %v", f.Name, err))
		case res.Text != f.Expected:
			failures = append(failures, fmt.Sprintf("%s: got %q, want %q", f.Name, res.Text, f.Expected))
		}
	}
	if len(failures) > 0 {
		return fmt.Errorf("fixtures failed to decode:\n%s", strings.Join(failures, "\n"))
	}
	return nil
}

func (testCtx *TestContext) theOutputShouldContainEveryFixtureText() error {
	for _, f := range testCtx.Fixtures {
		if err := testCtx.theOutputShouldContain(f.Expected); err != nil {
			return fmt.Errorf("fixture %s: %w", f.Name, err)
		}
	}
	return nil
}
