package server

import (
	"time"

	"github.com/MeKo-Tech/debarkoder/internal/pipeline"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "debarkoder_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "debarkoder_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Decode metrics
	decodeRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "debarkoder_decode_requests_total",
			Help: "Total number of decode requests",
		},
		[]string{"type", "status"}, // type: image, pdf, batch, websocket_image, websocket_pdf
	)

	decodeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "debarkoder_decode_duration_seconds",
			Help:    "Decode duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"type"},
	)

	decodeOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "debarkoder_decode_outcomes_total",
			Help: "Decoded images by outcome",
		},
		[]string{"type", "outcome"}, // outcome: complete, partial, not_found
	)

	rowsScanned = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "debarkoder_rows_scanned",
			Help:    "Rows evaluated before a decode was final",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"type"},
	)

	unresolvedDigits = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "debarkoder_unresolved_digits",
			Help:    "Unresolved digits in the best candidate row",
			Buckets: []float64{0, 1, 2, 4, 8, 16},
		},
		[]string{"type"},
	)

	// Rate limiting metrics
	rateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "debarkoder_rate_limit_hits_total",
			Help: "Total number of rate limit hits",
		},
		[]string{"type"}, // type: minute, hour, requests, data
	)

	// File upload metrics
	uploadSizeBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "debarkoder_upload_size_bytes",
			Help:    "Size of uploaded files in bytes",
			Buckets: []float64{1024, 10 * 1024, 100 * 1024, 1024 * 1024, 10 * 1024 * 1024, 50 * 1024 * 1024},
		},
	)

	// WebSocket metrics
	websocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "debarkoder_websocket_active_connections",
			Help: "Number of active WebSocket connections",
		},
	)

	websocketMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "debarkoder_websocket_messages_total",
			Help: "Total number of WebSocket messages",
		},
		[]string{"direction"}, // direction: sent, received
	)
)

func outcome(res *pipeline.ImageResult) string {
	switch {
	case res.Complete:
		return "complete"
	case res.Found:
		return "partial"
	default:
		return "not_found"
	}
}

// observeImageResult records a successful image decode.
func observeImageResult(kind string, res *pipeline.ImageResult, d time.Duration) {
	decodeRequestsTotal.WithLabelValues(kind, "success").Inc()
	decodeDuration.WithLabelValues(kind).Observe(d.Seconds())
	recordOutcome(kind, res)
}

func recordOutcome(kind string, res *pipeline.ImageResult) {
	decodeOutcomes.WithLabelValues(kind, outcome(res)).Inc()
	rowsScanned.WithLabelValues(kind).Observe(float64(res.RowsScanned))
	unresolvedDigits.WithLabelValues(kind).Observe(float64(res.Errors))
}

// observePDFResult records a successful document decode.
func observePDFResult(kind string, res *pipeline.PDFResult, d time.Duration) {
	decodeRequestsTotal.WithLabelValues(kind, "success").Inc()
	decodeDuration.WithLabelValues(kind).Observe(d.Seconds())
	for _, img := range res.ImageResults() {
		recordOutcome(kind, img)
	}
}
