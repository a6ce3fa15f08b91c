package server

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/MeKo-Tech/debarkoder/internal/pipeline"
	"github.com/MeKo-Tech/debarkoder/internal/utils"
)

const formatOverlay = "overlay"

// decodeImageHandler decodes the barcode in an uploaded image.
func (s *Server) decodeImageHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	img, err := s.parseImageRequest(w, r)
	if err != nil {
		decodeRequestsTotal.WithLabelValues("image", "error").Inc()
		return // error already written
	}

	if s.pipeline == nil {
		s.writeErrorResponse(w, "Decoder not initialized", http.StatusServiceUnavailable)
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	start := time.Now()
	res, err := s.pipeline.ProcessImageContext(ctx, img)
	duration := time.Since(start)
	if err != nil {
		decodeRequestsTotal.WithLabelValues("image", "error").Inc()
		s.writeErrorResponse(w, fmt.Sprintf("Decoding failed: %v", err), processingStatus(err))
		return
	}

	observeImageResult("image", res, duration)
	s.writeImageResponse(w, r, img, res)
}

// processingStatus maps pipeline errors to HTTP status codes.
func processingStatus(err error) int {
	var ipe *utils.ImageProcessingError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &ipe):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) parseImageRequest(w http.ResponseWriter, r *http.Request) (image.Image, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes())

	if err := r.ParseMultipartForm(s.maxUploadBytes()); err != nil {
		s.handleFormParseError(w, err)
		return nil, err
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		s.writeErrorResponse(w, "No image file provided", http.StatusBadRequest)
		return nil, err
	}
	defer func() { _ = file.Close() }()

	uploadSizeBytes.Observe(float64(header.Size))

	img, _, err := utils.DecodeImage(file)
	if err != nil {
		s.writeErrorResponse(w, "Invalid image format", http.StatusBadRequest)
		return nil, err
	}
	return img, nil
}

func (s *Server) handleFormParseError(w http.ResponseWriter, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) || strings.Contains(strings.ToLower(err.Error()), "request body too large") {
		s.writeErrorResponse(w, "File too large", http.StatusRequestEntityTooLarge)
		return
	}
	s.writeErrorResponse(w, "Failed to parse form data", http.StatusBadRequest)
}

func (s *Server) writeImageResponse(w http.ResponseWriter, r *http.Request, img image.Image, res *pipeline.ImageResult) {
	format := strings.ToLower(requestFormat(r))
	if format == formatOverlay || r.FormValue("overlay") == "1" {
		s.handleOverlayOutput(w, r, img, res)
		return
	}
	if format == "" || format == string(pipeline.FormatJSON) {
		s.writeJSON(w, http.StatusOK, DecodeResponse{Success: true, Result: res})
		return
	}

	f, err := pipeline.ParseFormat(format)
	if err != nil {
		s.writeErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	body, err := pipeline.Render([]*pipeline.ImageResult{res}, f)
	if err != nil {
		s.writeErrorResponse(w, fmt.Sprintf("Formatting failed: %v", err), http.StatusInternalServerError)
		return
	}
	s.writeText(w, contentTypes[f], body)
}

var contentTypes = map[pipeline.Format]string{
	pipeline.FormatText: "text/plain; charset=utf-8",
	pipeline.FormatJSON: "application/json",
	pipeline.FormatCSV:  "text/csv",
	pipeline.FormatYAML: "application/yaml",
}

// handleOverlayOutput responds with the input image, the winning row highlighted.
func (s *Server) handleOverlayOutput(w http.ResponseWriter, r *http.Request, img image.Image, res *pipeline.ImageResult) {
	if !s.overlayEnabled {
		http.Error(w, "overlay output disabled", http.StatusForbidden)
		return
	}

	hex := r.FormValue("color")
	if hex == "" {
		hex = s.overlayColor
	}
	if hex == "" {
		hex = utils.DefaultOverlayColor
	}
	col, err := utils.ParseColor(hex)
	if err != nil {
		s.writeErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	ov := pipeline.RenderOverlay(img, res, col)
	if ov == nil {
		http.Error(w, "overlay failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	if err := png.Encode(w, ov); err != nil {
		slog.Error("Failed to encode overlay", "error", err)
	}
}
