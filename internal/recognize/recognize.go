// Package recognize scans the rows of a monochrome image and picks the best
// Interleaved 2 of 5 decode among them.
package recognize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"github.com/MeKo-Tech/debarkoder/internal/i2of5"
	"github.com/MeKo-Tech/debarkoder/internal/mempool"
	"github.com/MeKo-Tech/debarkoder/internal/rle"
)

// DefaultPlaceholder is printed for every unresolved digit.
const DefaultPlaceholder = "?"

// ErrRowWidth is returned when a row's length does not match the source width.
var ErrRowWidth = errors.New("recognize: row length does not match image width")

// RowSource is a monochrome image read one pixel row at a time. Pixels are 0
// (black) or 255 (white).
type RowSource interface {
	Width() int
	Height() int
	Row(y int) []uint8
}

// Options controls a Recognizer.
type Options struct {
	// Workers is the number of goroutines evaluating rows. Values below 2
	// scan sequentially; a negative value uses runtime.NumCPU().
	Workers int
	// Symbology defaults to i2of5.I2of5.
	Symbology *i2of5.Symbology
	Logger    *slog.Logger
}

// DefaultOptions returns sequential options for the I2of5 symbology.
func DefaultOptions() Options {
	return Options{
		Workers:   1,
		Symbology: i2of5.I2of5,
	}
}

// Result is the best decode found in an image.
type Result struct {
	Digits []i2of5.Digit
	// Row is the winning row, -1 when no row decoded.
	Row int
	// Errors is the number of unresolved digits in Digits.
	Errors int
	// Cutoff is the narrow/wide threshold used on the winning row.
	Cutoff float64
	// Scanned is the number of rows that were evaluated and reduced.
	Scanned int
}

// Found reports whether any row decoded.
func (r Result) Found() bool { return r.Row >= 0 }

// Complete reports whether every digit resolved.
func (r Result) Complete() bool { return r.Found() && r.Errors == 0 }

// Text formats the digits with placeholder for unresolved slots.
func (r Result) Text(placeholder string) string { return Format(r.Digits, placeholder) }

// Format renders digits as a string, writing placeholder for each
// unresolved slot.
func Format(digits []i2of5.Digit, placeholder string) string {
	var sb strings.Builder
	sb.Grow(len(digits))
	for _, d := range digits {
		if d.Valid {
			sb.WriteByte('0' + d.Value)
			continue
		}
		sb.WriteString(placeholder)
	}
	return sb.String()
}

// Recognizer runs the row scan. It holds no per-image state and is safe for
// concurrent use.
type Recognizer struct {
	opts   Options
	logger *slog.Logger
}

// New returns a Recognizer with defaults filled in.
func New(opts Options) *Recognizer {
	if opts.Symbology == nil {
		opts.Symbology = i2of5.I2of5
	}
	if opts.Workers < 0 {
		opts.Workers = runtime.NumCPU()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Recognizer{opts: opts, logger: logger}
}

// Options returns the effective options.
func (r *Recognizer) Options() Options { return r.opts }

// Recognize decodes src with the default options and formats the result
// with DefaultPlaceholder.
func Recognize(ctx context.Context, src RowSource) (string, error) {
	res, err := New(DefaultOptions()).Recognize(ctx, src)
	if err != nil {
		return "", err
	}
	return res.Text(DefaultPlaceholder), nil
}

// Recognize scans every row except the last. The first row that decodes
// without unresolved digits wins immediately; otherwise the earliest row
// with the fewest unresolved digits wins. When no row decodes the result
// holds a single unresolved digit.
func (r *Recognizer) Recognize(ctx context.Context, src RowSource) (Result, error) {
	rows := max(src.Height()-1, 0)
	if r.opts.Workers > 1 && rows > 1 {
		return r.recognizeParallel(ctx, src, rows)
	}
	return r.recognizeSequential(ctx, src, rows)
}

func (r *Recognizer) recognizeSequential(ctx context.Context, src RowSource, rows int) (Result, error) {
	f := newFold(r.logger)
	for y := range rows {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		out, err := r.evalRow(src, y)
		if err != nil {
			return Result{}, err
		}
		if f.offer(y, out) {
			break
		}
	}
	return f.result(), nil
}

// evalRow run-length encodes and decodes one row.
func (r *Recognizer) evalRow(src RowSource, y int) (i2of5.Outcome, error) {
	row := src.Row(y)
	if len(row) != src.Width() {
		return i2of5.Outcome{}, fmt.Errorf("%w: row %d has %d pixels, want %d", ErrRowWidth, y, len(row), src.Width())
	}
	buf := mempool.GetRuns(len(row))
	defer mempool.PutRuns(buf)

	runs := rle.EncodeInto(buf, row)
	if len(runs) == 0 {
		return i2of5.Outcome{Status: i2of5.StatusTooShort}, nil
	}
	return r.opts.Symbology.Process(runs), nil
}
