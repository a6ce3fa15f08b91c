package barcode

import (
	"context"
	"errors"
	"image"
)

// ErrNotFound is returned when the backend finds no symbol.
var ErrNotFound = errors.New("barcode: no symbol found")

// Options controls backend decoding behavior.
type Options struct {
	// AllowedLengths lists accepted digit counts. Empty means every even
	// length from 2 to MaxLength.
	AllowedLengths []int
	MaxLength      int

	// TryHarder enables more exhaustive search (slower but more robust).
	TryHarder bool

	// ROI optionally restricts decoding to a sub-rectangle of the image.
	// If zero-sized or out of bounds, backends ignore it.
	ROI image.Rectangle
}

// DefaultOptions accepts payloads up to 44 digits, the boleto length.
func DefaultOptions() Options {
	return Options{MaxLength: 44, TryHarder: true}
}

func (o Options) lengths() []int {
	if len(o.AllowedLengths) > 0 {
		return o.AllowedLengths
	}
	maxLen := o.MaxLength
	if maxLen < 2 {
		maxLen = 44
	}
	out := make([]int, 0, maxLen/2)
	for n := 2; n <= maxLen; n += 2 {
		out = append(out, n)
	}
	return out
}

// Point is an integer point in image coordinates.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Result represents a decoded symbol.
type Result struct {
	Value  string          `json:"value"`
	Points []Point         `json:"points,omitempty"`
	BBox   image.Rectangle `json:"-"`
}

// Backend is a pluggable ITF decoder implementation.
type Backend interface {
	Name() string
	Decode(ctx context.Context, img image.Image, opts Options) (Result, error)
}

// NewBackend returns the default backend implementation.
func NewBackend() Backend { return &gozxingBackend{} }

// Check is the outcome of comparing a row decode with the backend.
type Check struct {
	Backend string `json:"backend"`
	Value   string `json:"value,omitempty"`
	Agrees  bool   `json:"agrees"`
	Error   string `json:"error,omitempty"`
}

// Verify decodes img with b and compares the value against text.
func Verify(ctx context.Context, b Backend, img image.Image, text string, opts Options) Check {
	res, err := b.Decode(ctx, img, opts)
	if err != nil {
		return Check{Backend: b.Name(), Error: err.Error()}
	}
	return Check{Backend: b.Name(), Value: res.Value, Agrees: res.Value == text}
}
