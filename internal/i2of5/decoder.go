package i2of5

import (
	"strings"

	"github.com/MeKo-Tech/debarkoder/internal/rle"
)

// Bar is a run classified as narrow or wide.
type Bar struct {
	Wide  bool
	Color rle.Color
}

// Bit returns the width bit of the bar, '1' for wide.
func (b Bar) Bit() byte {
	if b.Wide {
		return '1'
	}
	return '0'
}

// Chunk splits s into consecutive pieces of size; the last piece may be
// shorter.
func Chunk[T any](s []T, size int) [][]T {
	if size <= 0 || len(s) == 0 {
		return nil
	}
	out := make([][]T, 0, (len(s)+size-1)/size)
	for i := 0; i < len(s); i += size {
		end := min(i+size, len(s))
		out = append(out, s[i:end])
	}
	return out
}

// Threshold returns the narrow/wide cutoff for a run sequence: twice the
// mean width of one narrow-bar unit over the digit bars between header and
// tail. The cutoff scales with the row, so decoding does not depend on
// resolution.
func (s *Symbology) Threshold(runs []rle.Run) float64 {
	head, tail := len(s.def.Header), len(s.def.Tail)
	if len(runs) < head+tail {
		return 0
	}
	n := (len(runs) - s.extraBars()) / s.def.CodeLength
	if n <= 0 {
		return 0
	}
	pxlen := 0
	for _, r := range runs[head : len(runs)-tail] {
		pxlen += r.Length
	}
	return 2 * float64(pxlen) / float64(s.unitsPerDigit()*n)
}

// Classify marks every run longer than cutoff as wide.
func Classify(runs []rle.Run, cutoff float64) []Bar {
	bars := make([]Bar, len(runs))
	for i, r := range runs {
		bars[i] = Bar{Wide: float64(r.Length) > cutoff, Color: r.Color}
	}
	return bars
}

// widthBits renders the width bits of bars as a '0'/'1' string.
func widthBits(bars []Bar) string {
	var sb strings.Builder
	sb.Grow(len(bars))
	for _, b := range bars {
		sb.WriteByte(b.Bit())
	}
	return sb.String()
}

// stride returns every second element of bars starting at offset.
func stride(bars []Bar, offset int) []Bar {
	out := make([]Bar, 0, len(bars)/2+1)
	for i := offset; i < len(bars); i += 2 {
		out = append(out, bars[i])
	}
	return out
}

// Deinterleave checks the header and tail and returns the width bits of the
// payload in digit order: five black bars, then the five white spaces that
// were interleaved with them, and so on. It reports false when the framing
// does not match.
func (s *Symbology) Deinterleave(bars []Bar) (string, bool) {
	head, tail := len(s.def.Header), len(s.def.Tail)
	if len(bars) < head+tail {
		return "", false
	}
	if widthBits(bars[:head]) != s.def.Header || widthBits(bars[len(bars)-tail:]) != s.def.Tail {
		return "", false
	}

	payload := bars[head : len(bars)-tail]
	black := Chunk(stride(payload, 0), s.def.CodeLength)
	white := Chunk(stride(payload, 1), s.def.CodeLength)

	var sb strings.Builder
	sb.Grow(len(payload))
	for i := 0; i < len(black) && i < len(white); i++ {
		sb.WriteString(widthBits(black[i]))
		sb.WriteString(widthBits(white[i]))
	}
	return sb.String(), true
}

// Decode maps every CodeLength-sized group of bits to a digit. Invalid or
// incomplete groups decode as unresolved.
func (s *Symbology) Decode(bits string) []Digit {
	if bits == "" {
		return nil
	}
	digits := make([]Digit, 0, (len(bits)+s.def.CodeLength-1)/s.def.CodeLength)
	for _, word := range Chunk([]byte(bits), s.def.CodeLength) {
		digits = append(digits, s.Lookup(string(word)))
	}
	return digits
}

// Process runs the full row decode: size check, threshold, classification,
// framing and table lookup.
func (s *Symbology) Process(runs []rle.Run) Outcome {
	if len(runs) < s.def.MinimumSize {
		return Outcome{Status: StatusTooShort}
	}
	cutoff := s.Threshold(runs)
	bits, ok := s.Deinterleave(Classify(runs, cutoff))
	if !ok {
		return Outcome{Status: StatusFramingRejected, Cutoff: cutoff}
	}
	digits := s.Decode(bits)
	if len(digits) == 0 {
		return Outcome{Status: StatusTooShort, Cutoff: cutoff}
	}
	return Outcome{Status: StatusDecoded, Digits: digits, Cutoff: cutoff}
}
