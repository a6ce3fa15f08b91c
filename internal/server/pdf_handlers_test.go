package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/MeKo-Tech/debarkoder/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePDFHandler_Real(t *testing.T) {
	s := newRealServer(t)
	data, err := os.ReadFile(testutil.WritePDF(t, "0123456789", "4711"))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	s.decodePDFHandler(rec, multipartRequest(t, "/decode/pdf", "pdf", "doc.pdf", data, nil))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp PDFDecodeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	assert.Equal(t, []string{"0123456789", "4711"}, resp.Texts)
	require.NotNil(t, resp.Result)
	assert.Equal(t, "doc.pdf", resp.Result.Filename)
	assert.Len(t, resp.Result.Pages, 2)
}

func TestDecodePDFHandler_PagesAndText(t *testing.T) {
	pl := newMockPipeline()
	s := newTestServer(pl)

	rec := httptest.NewRecorder()
	req := multipartRequest(t, "/decode/pdf", "pdf", "scan.pdf", []byte("%PDF-"),
		map[string]string{"pages": "1-2", "format": "text"})
	s.decodePDFHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "4711", rec.Body.String())
	assert.Equal(t, []string{"scan.pdf"}, pl.pdfNames)
	assert.Equal(t, []string{"1-2"}, pl.pdfRanges)
}

func TestDecodePDFHandler_YAML(t *testing.T) {
	s := newTestServer(newMockPipeline())

	rec := httptest.NewRecorder()
	req := multipartRequest(t, "/decode/pdf?format=yaml", "pdf", "scan.pdf", []byte("%PDF-"), nil)
	s.decodePDFHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/yaml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "filename: scan.pdf")
}

func TestDecodePDFHandler_Errors(t *testing.T) {
	t.Run("method", func(t *testing.T) {
		rec := httptest.NewRecorder()
		newTestServer(newMockPipeline()).decodePDFHandler(rec, httptest.NewRequest(http.MethodGet, "/decode/pdf", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})

	t.Run("missing file", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := multipartRequest(t, "/decode/pdf", "image", "x.png", []byte("x"), nil)
		newTestServer(newMockPipeline()).decodePDFHandler(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "No PDF file provided")
	})

	t.Run("pipeline failure", func(t *testing.T) {
		pl := newMockPipeline()
		pl.err = errors.New("no xref")
		rec := httptest.NewRecorder()
		req := multipartRequest(t, "/decode/pdf", "pdf", "x.pdf", []byte("x"), nil)
		newTestServer(pl).decodePDFHandler(rec, req)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), "PDF decoding failed: no xref")
	})

	t.Run("bad format", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := multipartRequest(t, "/decode/pdf?format=html", "pdf", "x.pdf", []byte("x"), nil)
		newTestServer(newMockPipeline()).decodePDFHandler(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("no pipeline", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := multipartRequest(t, "/decode/pdf", "pdf", "x.pdf", []byte("x"), nil)
		newTestServer(nil).decodePDFHandler(rec, req)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}
