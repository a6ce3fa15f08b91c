// Package server exposes the barcode decoder over HTTP and WebSocket.
package server

import (
	"context"
	"image"
	"io"
	"net/http"
	"time"

	"github.com/MeKo-Tech/debarkoder/internal/i2of5"
	"github.com/MeKo-Tech/debarkoder/internal/pipeline"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// pipelineInterface defines the methods needed by the server from a pipeline.
type pipelineInterface interface {
	ProcessImageContext(ctx context.Context, img image.Image) (*pipeline.ImageResult, error)
	ProcessPDFReader(ctx context.Context, name string, rs io.ReadSeeker, pageRange string) (*pipeline.PDFResult, error)
	Close() error
}

// Server holds the HTTP server state and dependencies.
type Server struct {
	pipeline       pipelineInterface
	corsOrigin     string
	maxUploadMB    int64
	timeoutSec     int
	maxBatchItems  int
	overlayEnabled bool
	overlayColor   string
	version        string
	rateLimiter    *RateLimiter
	stopJanitor    context.CancelFunc
}

// RateLimitConfig holds per-client limits. Zero values disable a limit.
type RateLimitConfig struct {
	Enabled           bool  `mapstructure:"enabled"              yaml:"enabled"`
	RequestsPerMinute int   `mapstructure:"requests_per_minute"  yaml:"requests_per_minute"`
	RequestsPerHour   int   `mapstructure:"requests_per_hour"    yaml:"requests_per_hour"`
	MaxRequestsPerDay int   `mapstructure:"max_requests_per_day" yaml:"max_requests_per_day"`
	MaxDataPerDay     int64 `mapstructure:"max_data_per_day"     yaml:"max_data_per_day"`
}

// Config holds server configuration.
type Config struct {
	Host           string
	Port           int
	CORSOrigin     string
	MaxUploadMB    int64
	TimeoutSec     int
	MaxBatchItems  int
	PipelineConfig pipeline.Config
	OverlayEnabled bool
	OverlayColor   string
	RateLimit      RateLimitConfig
	Version        string
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version,omitempty"`
	Time    string            `json:"time"`
	Memory  pipeline.MemStats `json:"memory"`
}

// SymbologyInfo describes a supported barcode symbology.
type SymbologyInfo struct {
	Name           string `json:"name"`
	CodeLength     int    `json:"code_length"`
	WideCount      int    `json:"wide_count"`
	WideMultiplier int    `json:"wide_multiplier"`
	Header         string `json:"header"`
	Tail           string `json:"tail"`
	MinimumSize    int    `json:"minimum_size"`
}

// SymbologiesResponse is returned by GET /symbologies.
type SymbologiesResponse struct {
	Symbologies []SymbologyInfo `json:"symbologies"`
	Count       int             `json:"count"`
}

// DecodeResponse wraps an image decode.
type DecodeResponse struct {
	Success bool                  `json:"success"`
	Result  *pipeline.ImageResult `json:"result,omitempty"`
	Error   string                `json:"error,omitempty"`
}

// PDFDecodeResponse wraps a document decode.
type PDFDecodeResponse struct {
	Success bool                `json:"success"`
	Result  *pipeline.PDFResult `json:"result,omitempty"`
	Texts   []string            `json:"texts,omitempty"`
	Error   string              `json:"error,omitempty"`
}

// symbologies lists the decoders the server offers.
var symbologies = []*i2of5.Symbology{i2of5.I2of5}

func describe(s *i2of5.Symbology) SymbologyInfo {
	def := s.Definition()
	return SymbologyInfo{
		Name:           def.Name,
		CodeLength:     def.CodeLength,
		WideCount:      def.WideCount,
		WideMultiplier: def.WideMultiplier,
		Header:         def.Header,
		Tail:           def.Tail,
		MinimumSize:    def.MinimumSize,
	}
}

// NewServer creates a new decode server instance.
func NewServer(config Config) (*Server, error) {
	pl, err := pipeline.NewBuilderFrom(config.PipelineConfig).Build()
	if err != nil {
		return nil, err
	}
	return newServer(config, pl), nil
}

func newServer(config Config, pl pipelineInterface) *Server {
	s := &Server{
		pipeline:       pl,
		corsOrigin:     config.CORSOrigin,
		maxUploadMB:    config.MaxUploadMB,
		timeoutSec:     config.TimeoutSec,
		maxBatchItems:  config.MaxBatchItems,
		overlayEnabled: config.OverlayEnabled,
		overlayColor:   config.OverlayColor,
		version:        config.Version,
	}
	if s.corsOrigin == "" {
		s.corsOrigin = "*"
	}
	if s.maxUploadMB <= 0 {
		s.maxUploadMB = 50
	}
	if s.maxBatchItems <= 0 {
		s.maxBatchItems = 10
	}
	if config.RateLimit.Enabled {
		s.rateLimiter = NewRateLimiterFromConfig(config.RateLimit)
		ctx, cancel := context.WithCancel(context.Background())
		s.stopJanitor = cancel
		go s.rateLimiter.RunJanitor(ctx, 10*time.Minute)
	}
	return s
}

// Close releases server resources.
func (s *Server) Close() error {
	if s.stopJanitor != nil {
		s.stopJanitor()
	}
	if s.pipeline != nil {
		return s.pipeline.Close()
	}
	return nil
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.corsMiddleware(s.healthHandler))
	mux.HandleFunc("/symbologies", s.corsMiddleware(s.symbologiesHandler))
	mux.HandleFunc("/decode/image", s.corsMiddleware(s.rateLimitMiddleware(s.decodeImageHandler)))
	mux.HandleFunc("/decode/pdf", s.corsMiddleware(s.rateLimitMiddleware(s.decodePDFHandler)))
	mux.HandleFunc("/decode/batch", s.corsMiddleware(s.rateLimitMiddleware(s.decodeBatchHandler)))
	mux.HandleFunc("/ws/decode", s.rateLimitMiddleware(s.decodeWebSocketHandler))
	mux.Handle("/metrics", promhttp.Handler())
}

// requestContext bounds a request by the configured timeout.
func (s *Server) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	if s.timeoutSec <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), time.Duration(s.timeoutSec)*time.Second)
}

func (s *Server) maxUploadBytes() int64 { return s.maxUploadMB * 1024 * 1024 }
