package server

import (
	"errors"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// corsMiddleware adds CORS headers to responses.
func (s *Server) corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.corsOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		// Cache preflight results for a day to reduce OPTIONS traffic
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		// Wrap response writer to capture status code
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		start := time.Now()
		next(rw, r)
		duration := time.Since(start)

		httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(rw.statusCode)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(duration.Seconds())
		slog.Debug("Request handled", "method", r.Method, "path", r.URL.Path,
			"status", rw.statusCode, "duration", duration)
	}
}

// rateLimitMiddleware admits a request only while its client is within
// the configured rates and daily quotas. Uploads count against the data
// quota by their declared Content-Length.
func (s *Server) rateLimitMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.rateLimiter == nil {
			next(w, r)
			return
		}

		client := getClientIP(r)
		err := s.rateLimiter.CheckRateLimit(client, max(r.ContentLength, 0))
		if err == nil {
			next(w, r)
			return
		}
		if kind, ok := limitKind(err); ok {
			rateLimitHits.WithLabelValues(kind).Inc()
		}
		slog.Info("Request rejected by rate limiter", "client", client, "path", r.URL.Path, "error", err)
		s.handleRateLimitError(w, err)
	}
}

// limitKind names the limit behind a limiter error.
func limitKind(err error) (string, bool) {
	var rle *RateLimitError
	var qe *QuotaExceededError
	switch {
	case errors.As(err, &rle):
		return rle.Type, true
	case errors.As(err, &qe):
		return qe.Type, true
	}
	return "", false
}

// retryAfter formats d as whole seconds for the Retry-After header,
// rounding up so clients never retry early.
func retryAfter(d time.Duration) string {
	return strconv.FormatInt(int64(math.Ceil(d.Seconds())), 10)
}

// handleRateLimitError writes a 429 response describing the violated limit.
func (s *Server) handleRateLimitError(w http.ResponseWriter, err error) {
	var rle *RateLimitError
	var qe *QuotaExceededError
	h := w.Header()

	switch {
	case errors.As(err, &rle):
		h.Set("X-RateLimit-Type", rle.Type)
		h.Set("X-RateLimit-Limit", strconv.Itoa(rle.Limit))
		h.Set("Retry-After", retryAfter(rle.RetryAfter))
		s.writeJSON(w, http.StatusTooManyRequests, map[string]any{
			"error":       "rate_limit_exceeded",
			"type":        rle.Type,
			"limit":       rle.Limit,
			"retry_after": rle.RetryAfter.Seconds(),
			"message":     rle.Error(),
		})
	case errors.As(err, &qe):
		h.Set("X-Quota-Type", qe.Type)
		h.Set("X-Quota-Limit", strconv.FormatInt(qe.Limit, 10))
		h.Set("X-Quota-Used", strconv.FormatInt(qe.Used, 10))
		h.Set("X-Quota-Resets", qe.Resets.UTC().Format(http.TimeFormat))
		if wait := time.Until(qe.Resets); wait > 0 {
			h.Set("Retry-After", retryAfter(wait))
		}
		s.writeJSON(w, http.StatusTooManyRequests, map[string]any{
			"error":   "quota_exceeded",
			"type":    qe.Type,
			"limit":   qe.Limit,
			"used":    qe.Used,
			"resets":  qe.Resets.Format(time.RFC3339),
			"message": qe.Error(),
		})
	default:
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "internal_error",
			"message": "Rate limiting check failed",
		})
	}
}

// getClientIP extracts the client IP address from the request.
func getClientIP(r *http.Request) string {
	// Check X-Forwarded-For header first (for proxies/load balancers)
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		// X-Forwarded-For can contain multiple IPs, take the first one
		if idx := strings.Index(xff, ","); idx > 0 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	// Check X-Real-IP header
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	// Fall back to RemoteAddr
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
