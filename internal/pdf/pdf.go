package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/MeKo-Tech/debarkoder/internal/utils"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ErrNoImages is returned when the selected pages carry no decodable image.
var ErrNoImages = errors.New("pdf: no embedded images found")

// PageImages holds the images embedded in one page, in extraction order.
type PageImages struct {
	Page   int
	Images []image.Image
	// Skipped counts embedded images that could not be decoded.
	Skipped int
}

// Extractor pulls embedded raster images out of PDF documents.
type Extractor struct {
	// Credentials unlock encrypted documents; nil for plain ones.
	Credentials *Credentials
	Logger      *slog.Logger
}

// NewExtractor returns an extractor using creds (may be nil).
func NewExtractor(creds *Credentials) *Extractor {
	return &Extractor{Credentials: creds, Logger: slog.Default()}
}

// ExtractImages extracts all images from a PDF file.
func ExtractImages(filename string, pageRange string) ([]PageImages, error) {
	return NewExtractor(nil).ExtractFile(filename, pageRange)
}

// ExtractFile opens filename and extracts the images of the pages in
// pageRange ("" selects every page).
func (e *Extractor) ExtractFile(filename string, pageRange string) ([]PageImages, error) {
	if _, err := parsePageRange(pageRange); err != nil {
		return nil, fmt.Errorf("invalid page range %q: %w", pageRange, err)
	}
	f, err := os.Open(filename) //nolint:gosec // G304: Reading user-provided PDF file path is expected
	if err != nil {
		return nil, fmt.Errorf("failed to extract images from PDF: %w", err)
	}
	defer func() { _ = f.Close() }()

	pages, err := e.Extract(f, pageRange)
	if err != nil {
		return nil, err
	}
	return pages, nil
}

// Extract reads a PDF from rs. Pages are returned in ascending order and
// only pages holding at least one image appear.
func (e *Extractor) Extract(rs io.ReadSeeker, pageRange string) ([]PageImages, error) {
	pageNumbers, err := parsePageRange(pageRange)
	if err != nil {
		return nil, fmt.Errorf("invalid page range %q: %w", pageRange, err)
	}

	var selected []string
	if len(pageNumbers) > 0 {
		selected = make([]string, len(pageNumbers))
		for i, p := range pageNumbers {
			selected[i] = strconv.Itoa(p)
		}
	}

	logger := e.Logger
	if logger == nil {
		logger = slog.Default()
	}

	byPage := make(map[int]*PageImages)
	digest := func(img model.Image, _ bool, _ int) error {
		if img.Thumb {
			return nil
		}
		pi := byPage[img.PageNr]
		if pi == nil {
			pi = &PageImages{Page: img.PageNr}
			byPage[img.PageNr] = pi
		}
		decoded, err := decodeEmbedded(img)
		if err != nil {
			pi.Skipped++
			logger.Debug("embedded image skipped", "page", img.PageNr, "object", img.ObjNr,
				"type", img.FileType, "error", err)
			return nil
		}
		pi.Images = append(pi.Images, decoded)
		return nil
	}

	if err := api.ExtractImages(rs, selected, digest, e.Credentials.configuration()); err != nil {
		return nil, fmt.Errorf("failed to extract images from PDF: %w", err)
	}

	return collectPages(byPage), nil
}

// decodeEmbedded decodes one extracted image stream.
func decodeEmbedded(img model.Image) (image.Image, error) {
	if img.Reader == nil {
		return nil, errors.New("empty image stream")
	}
	data, err := io.ReadAll(img)
	if err != nil {
		return nil, err
	}
	decoded, _, err := utils.DecodeImage(bytes.NewReader(data))
	return decoded, err
}

// collectPages flattens the page map into ascending page order, dropping
// pages without any decoded image.
func collectPages(byPage map[int]*PageImages) []PageImages {
	numbers := make([]int, 0, len(byPage))
	for n, pi := range byPage {
		if len(pi.Images) > 0 {
			numbers = append(numbers, n)
		}
	}
	slices.Sort(numbers)
	out := make([]PageImages, 0, len(numbers))
	for _, n := range numbers {
		out = append(out, *byPage[n])
	}
	return out
}

// CountImages returns the total number of images over pages.
func CountImages(pages []PageImages) int {
	n := 0
	for _, p := range pages {
		n += len(p.Images)
	}
	return n
}

// parsePageRange parses a page range string like "1-5" or "1,3,5".
func parsePageRange(pageRange string) ([]int, error) {
	if pageRange == "" {
		return nil, nil // Empty means all pages
	}

	var pages []int
	for _, part := range strings.Split(pageRange, ",") {
		tokenPages, err := parseRangeToken(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		pages = append(pages, tokenPages...)
	}
	return pages, nil
}

// parseRangeToken parses either a single page token (e.g., "3") or a range token (e.g., "1-5").
func parseRangeToken(part string) ([]int, error) {
	if strings.Contains(part, "-") {
		rangeParts := strings.Split(part, "-")
		if len(rangeParts) != 2 {
			return nil, fmt.Errorf("invalid range format: %s", part)
		}
		start, err := parsePageNumber(rangeParts[0])
		if err != nil {
			return nil, fmt.Errorf("invalid start page: %s", rangeParts[0])
		}
		end, err := parsePageNumber(rangeParts[1])
		if err != nil {
			return nil, fmt.Errorf("invalid end page: %s", rangeParts[1])
		}
		if start > end {
			return nil, fmt.Errorf("start page %d greater than end page %d", start, end)
		}
		out := make([]int, 0, end-start+1)
		for i := start; i <= end; i++ {
			out = append(out, i)
		}
		return out, nil
	}
	page, err := parsePageNumber(part)
	if err != nil {
		return nil, fmt.Errorf("invalid page number: %s", part)
	}
	return []int{page}, nil
}

func parsePageNumber(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, errors.New("pages start at 1")
	}
	return n, nil
}
