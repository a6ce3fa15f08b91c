package support

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/MeKo-Tech/debarkoder/internal/testutil"
	"github.com/cucumber/godog"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// RegisterPDFSteps registers PDF fixture steps.
func (testCtx *TestContext) RegisterPDFSteps(sc *godog.ScenarioContext) {
	sc.Step(`^a PDF "([^"]*)" with pages:$`, testCtx.aPDFWithPages)
	sc.Step(`^a file "([^"]*)" containing "([^"]*)"$`, testCtx.aFileContaining)
}

// aPDFWithPages builds a document with one barcode image per table row;
// the first column holds the content.
func (testCtx *TestContext) aPDFWithPages(name string, table *godog.Table) error {
	dir, err := os.MkdirTemp(testCtx.TempDir, "pages-*")
	if err != nil {
		return err
	}

	var files []string
	for i, row := range table.Rows {
		if len(row.Cells) == 0 {
			continue
		}
		content := row.Cells[0].Value
		if i == 0 && content == "content" {
			continue
		}
		cfg := testutil.DefaultBarcodeImageConfig()
		cfg.Content = content
		file := filepath.Join(dir, fmt.Sprintf("page_%d.png", len(files)+1))
		if err := testutil.WriteBarcodeImage(file, cfg); err != nil {
			return fmt.Errorf("page %d: %w", len(files)+1, err)
		}
		files = append(files, file)
	}
	if len(files) == 0 {
		return fmt.Errorf("no pages given for %s", name)
	}
	return api.ImportImagesFile(files, testCtx.path(name), nil, nil)
}

func (testCtx *TestContext) aFileContaining(name, content string) error {
	path := testCtx.path(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o600)
}
