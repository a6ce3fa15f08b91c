// Package rle converts monochrome pixel rows into run-length sequences.
package rle

import "fmt"

// Color is the colour of a run of pixels.
type Color uint8

const (
	// Black is a run of 0-valued pixels.
	Black Color = iota
	// White is a run of 255-valued pixels.
	White
)

// Pixel values of a monochrome row.
const (
	BlackPixel uint8 = 0
	WhitePixel uint8 = 255
)

func (c Color) String() string {
	switch c {
	case Black:
		return "b"
	case White:
		return "w"
	default:
		return fmt.Sprintf("Color(%d)", uint8(c))
	}
}

// Pixel returns the monochrome pixel value for the colour.
func (c Color) Pixel() uint8 {
	if c == Black {
		return BlackPixel
	}
	return WhitePixel
}

// Run is a stretch of equal pixels.
type Run struct {
	Length int
	Color  Color
}

func (r Run) String() string {
	return fmt.Sprintf("(%d,%s)", r.Length, r.Color)
}

// colorOf classifies a pixel. Rows are expected to hold only 0 and 255;
// anything darker than mid-grey counts as black.
func colorOf(p uint8) Color {
	if p < 128 {
		return Black
	}
	return White
}

// Encode returns the run-length encoding of row with a leading and a
// trailing white run removed. An all-white or empty row yields an empty
// sequence.
func Encode(row []uint8) []Run {
	return EncodeInto(make([]Run, 0, 32), row)
}

// EncodeInto is Encode reusing the storage of buf. The result aliases buf
// unless it had to grow.
func EncodeInto(buf []Run, row []uint8) []Run {
	if len(row) == 0 {
		return nil
	}

	runs := buf[:0]
	cur := Run{Length: 1, Color: colorOf(row[0])}
	for _, p := range row[1:] {
		c := colorOf(p)
		if c == cur.Color {
			cur.Length++
			continue
		}
		runs = append(runs, cur)
		cur = Run{Length: 1, Color: c}
	}
	runs = append(runs, cur)

	if runs[0].Color == White {
		runs = runs[1:]
	}
	if n := len(runs); n > 0 && runs[n-1].Color == White {
		runs = runs[:n-1]
	}
	if len(runs) == 0 {
		return nil
	}
	return runs
}

// Expand turns a run sequence back into monochrome pixels.
func Expand(runs []Run) []uint8 {
	total := 0
	for _, r := range runs {
		total += r.Length
	}
	out := make([]uint8, 0, total)
	for _, r := range runs {
		p := r.Color.Pixel()
		for range r.Length {
			out = append(out, p)
		}
	}
	return out
}
