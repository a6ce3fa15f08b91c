package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/MeKo-Tech/debarkoder/internal/utils"
)

// BatchDecodeRequest is the JSON body of POST /decode/batch. Data fields
// are base64 encoded by encoding/json.
type BatchDecodeRequest struct {
	Images []BatchImageRequest `json:"images,omitempty"`
	PDFs   []BatchPDFRequest   `json:"pdfs,omitempty"`
}

// BatchImageRequest represents a single image in a batch request.
type BatchImageRequest struct {
	Name string `json:"name"`
	Data []byte `json:"data"`
}

// BatchPDFRequest represents a single PDF in a batch request.
type BatchPDFRequest struct {
	Name  string `json:"name"`
	Data  []byte `json:"data"`
	Pages string `json:"pages,omitempty"`
}

// BatchDecodeResponse represents the response for batch processing.
type BatchDecodeResponse struct {
	Success bool                   `json:"success"`
	Results []BatchDecodeResult    `json:"results,omitempty"`
	Error   string                 `json:"error,omitempty"`
	Summary BatchProcessingSummary `json:"summary"`
}

// BatchDecodeResult represents a single result in batch processing.
type BatchDecodeResult struct {
	Type     string  `json:"type"` // "image" or "pdf"
	Name     string  `json:"name"`
	Success  bool    `json:"success"`
	Result   any     `json:"result,omitempty"`
	Error    string  `json:"error,omitempty"`
	Duration float64 `json:"duration_seconds"`
}

// BatchProcessingSummary provides summary statistics for batch processing.
type BatchProcessingSummary struct {
	TotalItems    int     `json:"total_items"`
	Successful    int     `json:"successful"`
	Failed        int     `json:"failed"`
	TotalDuration float64 `json:"total_duration_seconds"`
	AvgItemTime   float64 `json:"avg_item_time_seconds"`
}

// decodeBatchHandler decodes several uploaded images and PDFs in one request.
func (s *Server) decodeBatchHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes())
	var req BatchDecodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorResponse(w, fmt.Sprintf("Failed to parse JSON request: %v", err), http.StatusBadRequest)
		return
	}

	totalItems := len(req.Images) + len(req.PDFs)
	if totalItems == 0 {
		s.writeErrorResponse(w, "No images or PDFs provided in batch request", http.StatusBadRequest)
		return
	}
	if totalItems > s.maxBatchItems {
		s.writeErrorResponse(w, fmt.Sprintf("Batch size too large (maximum %d items)", s.maxBatchItems),
			http.StatusBadRequest)
		return
	}

	if s.pipeline == nil {
		s.writeErrorResponse(w, "Decoder not initialized", http.StatusServiceUnavailable)
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	start := time.Now()
	results, summary := s.processBatchRequest(ctx, req)
	totalDuration := time.Since(start)

	summary.TotalDuration = totalDuration.Seconds()
	summary.AvgItemTime = summary.TotalDuration / float64(summary.TotalItems)

	decodeRequestsTotal.WithLabelValues("batch", "success").Inc()
	decodeDuration.WithLabelValues("batch").Observe(totalDuration.Seconds())

	s.writeJSON(w, http.StatusOK, BatchDecodeResponse{
		Success: summary.Failed == 0,
		Results: results,
		Summary: summary,
	})
}

// processBatchRequest processes all items in a batch request, images first.
func (s *Server) processBatchRequest(ctx context.Context, req BatchDecodeRequest) ([]BatchDecodeResult, BatchProcessingSummary) {
	results := make([]BatchDecodeResult, 0, len(req.Images)+len(req.PDFs))
	summary := BatchProcessingSummary{TotalItems: len(req.Images) + len(req.PDFs)}

	for _, imgReq := range req.Images {
		results = append(results, s.processBatchImage(ctx, imgReq))
	}
	for _, pdfReq := range req.PDFs {
		results = append(results, s.processBatchPDF(ctx, pdfReq))
	}
	for _, res := range results {
		if res.Success {
			summary.Successful++
		} else {
			summary.Failed++
		}
	}
	return results, summary
}

// processBatchImage processes a single image in a batch request.
func (s *Server) processBatchImage(ctx context.Context, req BatchImageRequest) BatchDecodeResult {
	result := BatchDecodeResult{Type: "image", Name: req.Name}

	if len(req.Data) == 0 {
		result.Error = "No image data provided"
		return result
	}

	img, _, err := utils.DecodeImage(bytes.NewReader(req.Data))
	if err != nil {
		result.Error = fmt.Sprintf("Failed to decode image: %v", err)
		return result
	}

	start := time.Now()
	res, err := s.pipeline.ProcessImageContext(ctx, img)
	result.Duration = time.Since(start).Seconds()
	if err != nil {
		result.Error = fmt.Sprintf("Decoding failed: %v", err)
		return result
	}

	res.Source = req.Name
	recordOutcome("batch_image", res)
	result.Success = true
	result.Result = res
	return result
}

// processBatchPDF processes a single PDF in a batch request.
func (s *Server) processBatchPDF(ctx context.Context, req BatchPDFRequest) BatchDecodeResult {
	result := BatchDecodeResult{Type: "pdf", Name: req.Name}

	if len(req.Data) == 0 {
		result.Error = "No PDF data provided"
		return result
	}

	start := time.Now()
	res, err := s.pipeline.ProcessPDFReader(ctx, req.Name, bytes.NewReader(req.Data), req.Pages)
	result.Duration = time.Since(start).Seconds()
	if err != nil {
		result.Error = fmt.Sprintf("PDF decoding failed: %v", err)
		return result
	}

	for _, img := range res.ImageResults() {
		recordOutcome("batch_pdf", img)
	}
	result.Success = true
	result.Result = res
	return result
}
