package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// ProgressCallback receives progress events from multi-image processing.
// Calls come from the collecting goroutine, one at a time.
type ProgressCallback interface {
	// OnStart is called when processing begins with the total number of items.
	OnStart(total int)
	// OnProgress is called after each finished item.
	OnProgress(current, total int)
	// OnComplete is called when processing is finished.
	OnComplete()
	// OnError is called with the input index of a failed item.
	OnError(index int, err error)
}

// NoOpProgressCallback implements ProgressCallback but does nothing.
type NoOpProgressCallback struct{}

func (NoOpProgressCallback) OnStart(int)         {}
func (NoOpProgressCallback) OnProgress(int, int) {}
func (NoOpProgressCallback) OnComplete()         {}
func (NoOpProgressCallback) OnError(int, error)  {}

// ConsoleProgressCallback draws a single updating progress line.
type ConsoleProgressCallback struct {
	writer         io.Writer
	prefix         string
	width          int
	updateInterval time.Duration

	mu         sync.Mutex
	startTime  time.Time
	lastUpdate time.Time
	failed     int
}

// NewConsoleProgressCallback creates a console progress reporter writing to
// writer (stderr when nil).
func NewConsoleProgressCallback(writer io.Writer, prefix string) *ConsoleProgressCallback {
	if writer == nil {
		writer = os.Stderr
	}
	return &ConsoleProgressCallback{
		writer:         writer,
		prefix:         prefix,
		width:          40,
		updateInterval: 100 * time.Millisecond,
	}
}

// WithWidth sets the progress bar width.
func (c *ConsoleProgressCallback) WithWidth(width int) *ConsoleProgressCallback {
	if width > 0 {
		c.width = width
	}
	return c
}

// WithUpdateInterval sets how frequently the progress bar redraws.
func (c *ConsoleProgressCallback) WithUpdateInterval(interval time.Duration) *ConsoleProgressCallback {
	c.updateInterval = interval
	return c
}

func (c *ConsoleProgressCallback) OnStart(total int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.startTime = time.Now()
	c.lastUpdate = time.Time{}
	c.failed = 0
	_, _ = fmt.Fprintf(c.writer, "%s0/%d\n", c.prefix, total)
}

func (c *ConsoleProgressCallback) OnProgress(current, total int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	if now.Sub(c.lastUpdate) < c.updateInterval && current < total {
		return
	}
	c.lastUpdate = now
	_, _ = fmt.Fprint(c.writer, c.line(current, total, now))
}

func (c *ConsoleProgressCallback) OnComplete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	elapsed := time.Since(c.startTime).Round(time.Millisecond)
	if c.failed > 0 {
		_, _ = fmt.Fprintf(c.writer, "\n%sCompleted in %v (%d failed)\n", c.prefix, elapsed, c.failed)
		return
	}
	_, _ = fmt.Fprintf(c.writer, "\n%sCompleted in %v\n", c.prefix, elapsed)
}

func (c *ConsoleProgressCallback) OnError(int, error) {
	c.mu.Lock()
	c.failed++
	c.mu.Unlock()
}

// line renders "\r<prefix>[####....] 3/8 (37.5%) 12.0/s".
func (c *ConsoleProgressCallback) line(current, total int, now time.Time) string {
	if total <= 0 {
		return ""
	}
	filled := min(c.width*current/total, c.width)
	var sb strings.Builder
	sb.WriteString("\r")
	sb.WriteString(c.prefix)
	sb.WriteString("[")
	sb.WriteString(strings.Repeat("#", filled))
	sb.WriteString(strings.Repeat(".", c.width-filled))
	fmt.Fprintf(&sb, "] %d/%d (%.1f%%)", current, total, float64(current)*100/float64(total))
	if elapsed := now.Sub(c.startTime); elapsed > 0 && current > 0 {
		fmt.Fprintf(&sb, " %.1f/s", float64(current)/elapsed.Seconds())
	}
	return sb.String()
}

// LogProgressCallback logs progress updates using slog.
type LogProgressCallback struct {
	logger    *slog.Logger
	level     slog.Level
	interval  int // Log every N items
	lastLog   int
	startTime time.Time
}

// NewLogProgressCallback creates a log-based progress reporter.
func NewLogProgressCallback(logger *slog.Logger, level slog.Level) *LogProgressCallback {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogProgressCallback{logger: logger, level: level, interval: 10}
}

// WithInterval sets how frequently to log progress (every N items).
func (l *LogProgressCallback) WithInterval(interval int) *LogProgressCallback {
	if interval > 0 {
		l.interval = interval
	}
	return l
}

func (l *LogProgressCallback) OnStart(total int) {
	l.startTime = time.Now()
	l.lastLog = 0
	l.logger.Log(context.Background(), l.level, "Starting processing", "total", total)
}

func (l *LogProgressCallback) OnProgress(current, total int) {
	if current-l.lastLog < l.interval && current != total {
		return
	}
	l.lastLog = current
	l.logger.Log(context.Background(), l.level, "Progress update",
		"current", current,
		"total", total,
		"elapsed", time.Since(l.startTime).Round(time.Millisecond),
	)
}

func (l *LogProgressCallback) OnComplete() {
	l.logger.Log(context.Background(), l.level, "Processing completed",
		"elapsed", time.Since(l.startTime).Round(time.Millisecond))
}

func (l *LogProgressCallback) OnError(index int, err error) {
	l.logger.Error("Processing error", "index", index, "error", err)
}

// MultiProgressCallback fans events out to several callbacks.
type MultiProgressCallback struct {
	callbacks []ProgressCallback
}

// NewMultiProgressCallback creates a progress callback that reports to multiple callbacks.
func NewMultiProgressCallback(callbacks ...ProgressCallback) *MultiProgressCallback {
	return &MultiProgressCallback{callbacks: callbacks}
}

func (m *MultiProgressCallback) OnStart(total int) {
	for _, cb := range m.callbacks {
		cb.OnStart(total)
	}
}

func (m *MultiProgressCallback) OnProgress(current, total int) {
	for _, cb := range m.callbacks {
		cb.OnProgress(current, total)
	}
}

func (m *MultiProgressCallback) OnComplete() {
	for _, cb := range m.callbacks {
		cb.OnComplete()
	}
}

func (m *MultiProgressCallback) OnError(index int, err error) {
	for _, cb := range m.callbacks {
		cb.OnError(index, err)
	}
}
