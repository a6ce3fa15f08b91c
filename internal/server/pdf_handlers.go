package server

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/MeKo-Tech/debarkoder/internal/pipeline"
)

// decodePDFHandler decodes the barcodes in the images of an uploaded PDF.
func (s *Server) decodePDFHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	data, name, pageRange, err := s.parsePDFRequest(w, r)
	if err != nil {
		decodeRequestsTotal.WithLabelValues("pdf", "error").Inc()
		return // error already written
	}

	if s.pipeline == nil {
		s.writeErrorResponse(w, "Decoder not initialized", http.StatusServiceUnavailable)
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	start := time.Now()
	res, err := s.pipeline.ProcessPDFReader(ctx, name, bytes.NewReader(data), pageRange)
	duration := time.Since(start)
	if err != nil {
		decodeRequestsTotal.WithLabelValues("pdf", "error").Inc()
		s.writeErrorResponse(w, fmt.Sprintf("PDF decoding failed: %v", err), http.StatusUnprocessableEntity)
		return
	}

	observePDFResult("pdf", res, duration)
	s.writePDFResponse(w, r, res)
}

func (s *Server) parsePDFRequest(w http.ResponseWriter, r *http.Request) ([]byte, string, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes())

	if err := r.ParseMultipartForm(s.maxUploadBytes()); err != nil {
		s.handleFormParseError(w, err)
		return nil, "", "", err
	}

	file, header, err := r.FormFile("pdf")
	if err != nil {
		s.writeErrorResponse(w, "No PDF file provided", http.StatusBadRequest)
		return nil, "", "", err
	}
	defer func() { _ = file.Close() }()

	uploadSizeBytes.Observe(float64(header.Size))

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeErrorResponse(w, "Failed to read PDF data", http.StatusInternalServerError)
		return nil, "", "", err
	}
	return data, header.Filename, r.FormValue("pages"), nil
}

func (s *Server) writePDFResponse(w http.ResponseWriter, r *http.Request, res *pipeline.PDFResult) {
	format := strings.ToLower(requestFormat(r))
	if format == "" || format == string(pipeline.FormatJSON) {
		s.writeJSON(w, http.StatusOK, PDFDecodeResponse{Success: true, Result: res, Texts: res.Texts()})
		return
	}

	f, err := pipeline.ParseFormat(format)
	if err != nil {
		s.writeErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	body, err := pipeline.RenderPDF(res, f)
	if err != nil {
		s.writeErrorResponse(w, fmt.Sprintf("Formatting failed: %v", err), http.StatusInternalServerError)
		return
	}
	s.writeText(w, contentTypes[f], body)
}
