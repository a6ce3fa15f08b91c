// Package selftest runs the embedded decoder examples used by
// `debarkoder selftest` and by the bare `debarkoder` invocation.
package selftest

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/MeKo-Tech/debarkoder/internal/i2of5"
	"github.com/MeKo-Tech/debarkoder/internal/pipeline"
	"github.com/MeKo-Tech/debarkoder/internal/recognize"
	"github.com/MeKo-Tech/debarkoder/internal/render"
	"github.com/MeKo-Tech/debarkoder/internal/rle"
)

// Check is one named example.
type Check struct {
	Name string
	Run  func(ctx context.Context) error
}

// Report summarizes a run.
type Report struct {
	Passed int
	Failed []string
}

// OK reports whether every check passed.
func (r Report) OK() bool { return len(r.Failed) == 0 }

// Checks returns the embedded examples in execution order.
func Checks() []Check {
	return []Check{
		{"rle strips white border", checkRLE([]uint8{0, 255, 255, 0, 0, 0},
			[]rle.Run{{Length: 1, Color: rle.Black}, {Length: 2, Color: rle.White}, {Length: 3, Color: rle.Black}})},
		{"rle drops leading and trailing white", checkRLE([]uint8{255, 0, 255},
			[]rle.Run{{Length: 1, Color: rle.Black}})},
		{"deinterleave framed payload", checkDeinterleave},
		{"decode ten digits", checkDecode("00110100010100111000001011010001100000111001001010", "0123456789")},
		{"decode partial word", checkDecode("001101", "0?")},
		{"decode image 01", checkImage("01")},
		{"decode image with 44 digits", checkImage("01234567891011121314151617181920212223242526")},
	}
}

// Run executes all checks and writes one line per check to w.
func Run(ctx context.Context, w io.Writer) Report {
	var rep Report
	for _, c := range Checks() {
		if err := c.Run(ctx); err != nil {
			rep.Failed = append(rep.Failed, c.Name)
			_, _ = fmt.Fprintf(w, "❌ %s: %v\n", c.Name, err)
			continue
		}
		rep.Passed++
		_, _ = fmt.Fprintf(w, "✅ %s\n", c.Name)
	}
	return rep
}

func checkRLE(row []uint8, want []rle.Run) func(context.Context) error {
	return func(context.Context) error {
		if got := rle.Encode(row); !slices.Equal(got, want) {
			return fmt.Errorf("Encode(%v) = %v, want %v", row, got, want)
		}
		return nil
	}
}

func checkDeinterleave(context.Context) error {
	widths := []bool{
		false, false, false, false, // header
		false, false, false, false, true, false, true, false, false, true,
		true, false, false, // tail
	}
	bars := make([]i2of5.Bar, len(widths))
	for i, wide := range widths {
		bars[i] = i2of5.Bar{Wide: wide, Color: rle.Black}
		if i%2 == 1 {
			bars[i].Color = rle.White
		}
	}
	got, ok := i2of5.I2of5.Deinterleave(bars)
	if !ok || got != "0011000001" {
		return fmt.Errorf("Deinterleave = %q (framing ok %v), want \"0011000001\"", got, ok)
	}
	return nil
}

func checkDecode(bits, want string) func(context.Context) error {
	return func(context.Context) error {
		if got := recognize.Format(i2of5.I2of5.Decode(bits), "?"); got != want {
			return fmt.Errorf("Decode(%q) = %q, want %q", bits, got, want)
		}
		return nil
	}
}

func checkImage(content string) func(context.Context) error {
	return func(ctx context.Context) error {
		img, err := render.Image(content, render.DefaultOptions())
		if err != nil {
			return err
		}
		pl, err := pipeline.NewBuilder().Build()
		if err != nil {
			return err
		}
		defer func() { _ = pl.Close() }()

		res, err := pl.ProcessImageContext(ctx, img)
		if err != nil {
			return err
		}
		if res.Text != content {
			return fmt.Errorf("decoded %q, want %q", res.Text, content)
		}
		return nil
	}
}
