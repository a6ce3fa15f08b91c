package server

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MeKo-Tech/debarkoder/internal/pipeline"
	"github.com/MeKo-Tech/debarkoder/internal/testutil"
	"github.com/stretchr/testify/require"
)

// mockPipeline returns canned results and records what it was asked.
type mockPipeline struct {
	imageResult *pipeline.ImageResult
	pdfResult   *pipeline.PDFResult
	err         error

	images    int
	pdfNames  []string
	pdfRanges []string
	closed    bool
}

func (m *mockPipeline) ProcessImageContext(_ context.Context, img image.Image) (*pipeline.ImageResult, error) {
	m.images++
	if m.err != nil {
		return nil, m.err
	}
	res := *m.imageResult
	res.Width, res.Height = img.Bounds().Dx(), img.Bounds().Dy()
	return &res, nil
}

func (m *mockPipeline) ProcessPDFReader(_ context.Context, name string, _ io.ReadSeeker, pageRange string) (*pipeline.PDFResult, error) {
	m.pdfNames = append(m.pdfNames, name)
	m.pdfRanges = append(m.pdfRanges, pageRange)
	if m.err != nil {
		return nil, m.err
	}
	res := *m.pdfResult
	res.Filename = name
	return &res, nil
}

func (m *mockPipeline) Close() error {
	m.closed = true
	return nil
}

func newMockPipeline() *mockPipeline {
	return &mockPipeline{
		imageResult: &pipeline.ImageResult{
			Text: "0123", Found: true, Complete: true, Row: 3, SourceRow: 23, Cutoff: 4,
		},
		pdfResult: &pipeline.PDFResult{
			TotalPages: 1,
			Pages: []pipeline.PDFPageResult{{
				PageNumber: 1,
				Images: []pipeline.PDFImageResult{
					{ImageIndex: 1, Result: &pipeline.ImageResult{Text: "4711", Found: true, Complete: true}},
				},
			}},
		},
	}
}

func newTestServer(pl pipelineInterface, configure ...func(*Config)) *Server {
	cfg := Config{TimeoutSec: 5, OverlayEnabled: true, Version: "test"}
	for _, fn := range configure {
		fn(&cfg)
	}
	return newServer(cfg, pl)
}

// newRealServer serves requests with a real decoding pipeline.
func newRealServer(t *testing.T) *Server {
	t.Helper()
	s, err := NewServer(Config{PipelineConfig: pipeline.DefaultConfig(), OverlayEnabled: true, TimeoutSec: 10})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func barcodePNG(t *testing.T, content string) []byte {
	t.Helper()
	cfg := testutil.DefaultBarcodeImageConfig()
	cfg.Content = content
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testutil.CreateBarcodeImage(t, cfg)))
	return buf.Bytes()
}

// multipartRequest builds a POST with one file field and extra form fields.
func multipartRequest(t *testing.T, target, field, filename string, data []byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if field != "" {
		fw, err := w.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}
