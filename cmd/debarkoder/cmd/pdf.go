package cmd

import (
	"fmt"
	"log/slog"

	"github.com/MeKo-Tech/debarkoder/internal/pdf"
	"github.com/MeKo-Tech/debarkoder/internal/pipeline"
	"github.com/spf13/cobra"
)

func newPDFCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pdf <file.pdf>...",
		Short: "Decode barcodes in images embedded in PDF files",
		Long: `Extract the raster images of each PDF page and decode the barcode in each.

Scanned payment slips usually embed the barcode as a page image; vector
drawn barcodes are not rasterized and yield no result.

Examples:
  debarkoder pdf boleto.pdf
  debarkoder pdf --pages 1-3,5 --format json statement.pdf
  debarkoder pdf --password secret locked.pdf`,
		Args: cobra.MinimumNArgs(1),
		RunE: c.runPDF,
	}

	f := cmd.Flags()
	f.StringP("format", "f", "text", "output format (text, json, csv, yaml)")
	f.StringP("output", "o", "", "output file (default: stdout)")
	f.String("pages", "", "page range, e.g. 1-3,5 (default: all pages)")
	f.String("password", "", "user password for encrypted PDFs")
	f.String("owner-password", "", "owner password for encrypted PDFs")
	addDecoderFlags(cmd)
	return cmd
}

func (c *cli) runPDF(cmd *cobra.Command, args []string) error {
	format, err := pipeline.ParseFormat(c.cfg.Output.Format)
	if err != nil {
		return err
	}
	pages, _ := cmd.Flags().GetString("pages")

	pl, err := c.pipeline()
	if err != nil {
		return err
	}
	defer func() { _ = pl.Close() }()

	results := make([]*pipeline.PDFResult, 0, len(args))
	for _, file := range args {
		res, err := pl.ProcessPDFContext(cmd.Context(), file, pages)
		if err != nil {
			if pdf.IsPasswordError(err) {
				return fmt.Errorf("%s: %w", pdf.PasswordPrompt(file), err)
			}
			return fmt.Errorf("failed to process %s: %w", file, err)
		}
		slog.Debug("PDF decoded", "file", file, "pages", len(res.Pages), "texts", len(res.Texts()))
		results = append(results, res)
	}

	rendered, err := renderPDFResults(results, format)
	if err != nil {
		return err
	}
	return writeOutput(cmd, c.cfg.Output.File, rendered)
}

// renderPDFResults formats one document as is and several as a list.
func renderPDFResults(results []*pipeline.PDFResult, format pipeline.Format) (string, error) {
	if len(results) == 1 {
		return pipeline.RenderPDF(results[0], format)
	}
	switch format {
	case pipeline.FormatJSON:
		return pipeline.ToJSON(results)
	case pipeline.FormatYAML:
		return pipeline.ToYAML(results)
	default:
		var images []*pipeline.ImageResult
		for _, r := range results {
			images = append(images, r.ImageResults()...)
		}
		return pipeline.Render(images, format)
	}
}
