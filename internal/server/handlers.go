package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/MeKo-Tech/debarkoder/internal/pipeline"
)

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Version: s.version,
		Time:    time.Now().UTC().Format(time.RFC3339),
		Memory:  pipeline.GetMemStats(),
	})
}

// symbologiesHandler lists the supported barcode symbologies.
func (s *Server) symbologiesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	list := make([]SymbologyInfo, len(symbologies))
	for i, sym := range symbologies {
		list[i] = describe(sym)
	}
	s.writeJSON(w, http.StatusOK, SymbologiesResponse{Symbologies: list, Count: len(list)})
}

// requestFormat reads the output format from the form or the query string.
func requestFormat(r *http.Request) string {
	if f := r.FormValue("format"); f != "" {
		return f
	}
	return r.URL.Query().Get("format")
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func (s *Server) writeText(w http.ResponseWriter, contentType, body string) {
	w.Header().Set("Content-Type", contentType)
	if _, err := w.Write([]byte(body)); err != nil {
		slog.Error("Failed to write response", "error", err)
	}
}

// writeErrorResponse writes a JSON error response.
func (s *Server) writeErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	s.writeJSON(w, statusCode, DecodeResponse{Success: false, Error: message})
}
