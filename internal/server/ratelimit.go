package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// window counts requests in a fixed period that opens with the first
// request after the previous period ended.
type window struct {
	start time.Time
	count int
}

func (w *window) roll(now time.Time, period time.Duration) {
	if w.start.IsZero() || now.Sub(w.start) >= period {
		w.start = now
		w.count = 0
	}
}

func (w *window) remaining(now time.Time, period time.Duration) time.Duration {
	return period - now.Sub(w.start)
}

// ClientUsage is a snapshot of one client's counters.
type ClientUsage struct {
	RequestsLastMinute int
	RequestsLastHour   int
	RequestsToday      int
	BytesToday         int64
	LastSeen           time.Time
}

type clientState struct {
	minute, hour window
	day          time.Time // midnight of the counted day
	requestsDay  int
	bytesDay     int64
	lastSeen     time.Time
}

// RateLimiter enforces per-client request rates and daily quotas. Zero
// limits are disabled.
type RateLimiter struct {
	mu sync.RWMutex

	perMinute   int
	perHour     int
	perDay      int
	bytesPerDay int64

	clients map[string]*clientState
	now     func() time.Time
}

// NewRateLimiter creates a rate limiter with the given limits.
func NewRateLimiter(requestsPerMinute, requestsPerHour, maxRequestsPerDay int, maxDataPerDay int64) *RateLimiter {
	return &RateLimiter{
		perMinute:   requestsPerMinute,
		perHour:     requestsPerHour,
		perDay:      maxRequestsPerDay,
		bytesPerDay: maxDataPerDay,
		clients:     make(map[string]*clientState),
		now:         time.Now,
	}
}

// NewRateLimiterFromConfig creates a rate limiter from server configuration.
func NewRateLimiterFromConfig(cfg RateLimitConfig) *RateLimiter {
	return NewRateLimiter(cfg.RequestsPerMinute, cfg.RequestsPerHour, cfg.MaxRequestsPerDay, cfg.MaxDataPerDay)
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// CheckRateLimit admits one request of dataSize bytes from client, or
// returns a *RateLimitError or *QuotaExceededError. Rejected requests are
// not counted.
func (rl *RateLimiter) CheckRateLimit(client string, dataSize int64) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	st, ok := rl.clients[client]
	if !ok {
		st = &clientState{}
		rl.clients[client] = st
	}
	st.lastSeen = now

	st.minute.roll(now, time.Minute)
	st.hour.roll(now, time.Hour)
	if today := midnight(now); !today.Equal(st.day) {
		st.day = today
		st.requestsDay = 0
		st.bytesDay = 0
	}

	if rl.perMinute > 0 && st.minute.count >= rl.perMinute {
		return &RateLimitError{Type: "minute", Limit: rl.perMinute, RetryAfter: st.minute.remaining(now, time.Minute)}
	}
	if rl.perHour > 0 && st.hour.count >= rl.perHour {
		return &RateLimitError{Type: "hour", Limit: rl.perHour, RetryAfter: st.hour.remaining(now, time.Hour)}
	}

	resets := st.day.AddDate(0, 0, 1)
	if rl.perDay > 0 && st.requestsDay >= rl.perDay {
		return &QuotaExceededError{Type: "requests", Limit: int64(rl.perDay), Used: int64(st.requestsDay), Resets: resets}
	}
	if rl.bytesPerDay > 0 && st.bytesDay+dataSize > rl.bytesPerDay {
		return &QuotaExceededError{Type: "data", Limit: rl.bytesPerDay, Used: st.bytesDay, Resets: resets}
	}

	st.minute.count++
	st.hour.count++
	st.requestsDay++
	st.bytesDay += dataSize
	return nil
}

// Prune forgets clients idle for longer than maxIdle and returns how many
// were removed.
func (rl *RateLimiter) Prune(maxIdle time.Duration) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	removed := 0
	for id, st := range rl.clients {
		if now.Sub(st.lastSeen) > maxIdle {
			delete(rl.clients, id)
			removed++
		}
	}
	return removed
}

// RunJanitor prunes clients idle for a day every interval until ctx ends.
func (rl *RateLimiter) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := rl.Prune(24 * time.Hour); n > 0 {
				slog.Debug("Pruned idle rate limit clients", "removed", n, "remaining", rl.Clients())
			}
		}
	}
}

// Clients returns the number of tracked clients.
func (rl *RateLimiter) Clients() int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()
	return len(rl.clients)
}

// Usage returns a snapshot of client's counters; unknown clients have
// zero usage.
func (rl *RateLimiter) Usage(client string) ClientUsage {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	st, ok := rl.clients[client]
	if !ok {
		return ClientUsage{}
	}
	return ClientUsage{
		RequestsLastMinute: st.minute.count,
		RequestsLastHour:   st.hour.count,
		RequestsToday:      st.requestsDay,
		BytesToday:         st.bytesDay,
		LastSeen:           st.lastSeen,
	}
}

// RateLimitError is returned when a client exceeds a per-minute or
// per-hour rate.
type RateLimitError struct {
	Type       string // "minute" or "hour"
	Limit      int
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s (limit: %d, retry after: %v)", e.Type, e.Limit, e.RetryAfter)
}

// QuotaExceededError is returned when a client used up a daily quota.
type QuotaExceededError struct {
	Type   string // "requests" or "data"
	Limit  int64
	Used   int64
	Resets time.Time
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("quota exceeded for %s (used: %d, limit: %d, resets: %s)",
		e.Type, e.Used, e.Limit, e.Resets.Format(time.RFC3339))
}
