package pipeline

import (
	"image"

	"github.com/MeKo-Tech/debarkoder/internal/barcode"
)

// ImageResult is the decode of one image.
type ImageResult struct {
	// Source names the input (file path, upload name or "page 2 image 1").
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
	// Text is the decoded payload with placeholders for unresolved digits.
	Text string `json:"text" yaml:"text"`
	// Found is false when no row passed framing; Text is then a single
	// placeholder.
	Found    bool `json:"found"    yaml:"found"`
	Complete bool `json:"complete" yaml:"complete"`
	// Errors counts unresolved digits in Text.
	Errors int `json:"errors" yaml:"errors"`
	// Row is the winning row in the prepared image, SourceRow the same row
	// in the input image; both are -1 when nothing was found.
	Row       int `json:"row"        yaml:"row"`
	SourceRow int `json:"source_row" yaml:"source_row"`
	// Cutoff is the narrow/wide threshold in pixels on the winning row.
	Cutoff float64 `json:"cutoff" yaml:"cutoff"`
	// RowsScanned is the number of rows evaluated before the result was final.
	RowsScanned int `json:"rows_scanned" yaml:"rows_scanned"`
	Width       int `json:"width"        yaml:"width"`
	Height      int `json:"height"       yaml:"height"`
	// Area is the part of the input the rows were read from.
	Area       image.Rectangle `json:"-"                     yaml:"-"`
	CrossCheck *barcode.Check  `json:"cross_check,omitempty" yaml:"cross_check,omitempty"`
	Processing struct {
		PrepareNs   int64 `json:"prepare_ns"   yaml:"prepare_ns"`
		RecognizeNs int64 `json:"recognize_ns" yaml:"recognize_ns"`
		TotalNs     int64 `json:"total_ns"     yaml:"total_ns"`
	} `json:"processing" yaml:"processing"`
}

// PDFResult represents the decode result for a PDF document.
type PDFResult struct {
	Filename   string          `json:"filename"    yaml:"filename"`
	TotalPages int             `json:"total_pages" yaml:"total_pages"`
	Pages      []PDFPageResult `json:"pages"       yaml:"pages"`
	Processing struct {
		ExtractionNs int64 `json:"extraction_ns" yaml:"extraction_ns"`
		TotalNs      int64 `json:"total_ns"      yaml:"total_ns"`
	} `json:"processing" yaml:"processing"`
}

// PDFPageResult represents the decodes of the images on one page.
type PDFPageResult struct {
	PageNumber int `json:"page_number" yaml:"page_number"`
	// Skipped counts embedded images that could not be decoded as rasters.
	Skipped    int              `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Images     []PDFImageResult `json:"images"            yaml:"images"`
	Processing struct {
		TotalNs int64 `json:"total_ns" yaml:"total_ns"`
	} `json:"processing" yaml:"processing"`
}

// PDFImageResult is the decode of one image embedded in a page.
type PDFImageResult struct {
	ImageIndex int          `json:"image_index"     yaml:"image_index"`
	Result     *ImageResult `json:"result"          yaml:"result"`
	Error      string       `json:"error,omitempty" yaml:"error,omitempty"`
}

// Texts returns the decoded text of every image that yielded a candidate,
// in page order.
func (r *PDFResult) Texts() []string {
	var out []string
	for _, page := range r.Pages {
		for _, img := range page.Images {
			if img.Result != nil && img.Result.Found {
				out = append(out, img.Result.Text)
			}
		}
	}
	return out
}
