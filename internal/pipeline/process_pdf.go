package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/MeKo-Tech/debarkoder/internal/pdf"
)

// ProcessPDF decodes every image embedded in the selected pages of filename.
func (p *Pipeline) ProcessPDF(filename string, pageRange string) (*PDFResult, error) {
	return p.ProcessPDFContext(context.Background(), filename, pageRange)
}

// ProcessPDFContext processes a PDF file with context cancellation support.
func (p *Pipeline) ProcessPDFContext(ctx context.Context, filename string, pageRange string) (*PDFResult, error) {
	if filename == "" {
		return nil, errors.New("filename cannot be empty")
	}
	if p == nil || p.Recognizer == nil {
		return nil, errNotInitialized
	}

	totalStart := time.Now()
	pages, err := pdf.NewExtractor(p.cfg.Credentials).ExtractFile(filename, pageRange)
	if err != nil {
		return nil, fmt.Errorf("failed to extract images from PDF: %w", err)
	}
	return p.processPages(ctx, filename, pages, totalStart)
}

// ProcessPDFReader processes a PDF read from rs; name labels the result.
func (p *Pipeline) ProcessPDFReader(ctx context.Context, name string, rs io.ReadSeeker, pageRange string) (*PDFResult, error) {
	if p == nil || p.Recognizer == nil {
		return nil, errNotInitialized
	}
	totalStart := time.Now()
	pages, err := pdf.NewExtractor(p.cfg.Credentials).Extract(rs, pageRange)
	if err != nil {
		return nil, fmt.Errorf("failed to extract images from PDF: %w", err)
	}
	return p.processPages(ctx, name, pages, totalStart)
}

func (p *Pipeline) processPages(ctx context.Context, name string, pages []pdf.PageImages, start time.Time) (*PDFResult, error) {
	extractNs := time.Since(start).Nanoseconds()

	out := make([]PDFPageResult, 0, len(pages))
	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pageResult, err := p.processPDFPage(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("failed to process page %d: %w", page.Page, err)
		}
		out = append(out, *pageResult)
	}

	result := &PDFResult{
		Filename:   name,
		TotalPages: len(out),
		Pages:      out,
	}
	result.Processing.ExtractionNs = extractNs
	result.Processing.TotalNs = time.Since(start).Nanoseconds()
	return result, nil
}

// processPDFPage decodes all images from a single PDF page. An image that
// cannot be decoded (a logo below the size limits, say) is recorded with
// its error instead of failing the document.
func (p *Pipeline) processPDFPage(ctx context.Context, page pdf.PageImages) (*PDFPageResult, error) {
	pageStart := time.Now()

	images := make([]PDFImageResult, 0, len(page.Images))
	for i, img := range page.Images {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := p.ProcessImageContext(ctx, img)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			slog.Debug("PDF image not decoded", "page", page.Page, "image", i, "error", err)
			images = append(images, PDFImageResult{ImageIndex: i, Error: err.Error()})
			continue
		}
		res.Source = fmt.Sprintf("page %d image %d", page.Page, i+1)
		images = append(images, PDFImageResult{ImageIndex: i, Result: res})
	}

	pr := &PDFPageResult{
		PageNumber: page.Page,
		Skipped:    page.Skipped,
		Images:     images,
	}
	pr.Processing.TotalNs = time.Since(pageStart).Nanoseconds()
	return pr, nil
}
