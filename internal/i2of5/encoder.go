package i2of5

import (
	"errors"
	"fmt"

	"github.com/MeKo-Tech/debarkoder/internal/rle"
)

var (
	// ErrOddLength is returned when content has an odd number of digits.
	ErrOddLength = errors.New("i2of5: content must have an even number of digits")
	// ErrNotNumeric is returned when content holds a non-digit character.
	ErrNotNumeric = errors.New("i2of5: content must be numeric")
)

// Encode returns the bar sequence for content with narrow bars one module
// wide and wide bars WideMultiplier modules wide. Digits are paired: the
// first of each pair goes into the black bars, the second into the spaces.
func (s *Symbology) Encode(content string) ([]rle.Run, error) {
	if content == "" || len(content)%2 != 0 {
		return nil, fmt.Errorf("%w: got %d", ErrOddLength, len(content))
	}
	for i := 0; i < len(content); i++ {
		if content[i] < '0' || content[i] > '9' {
			return nil, fmt.Errorf("%w: %q at position %d", ErrNotNumeric, content[i], i)
		}
	}

	runs := make([]rle.Run, 0, s.extraBars()+len(content)*s.def.CodeLength)
	color := rle.Black
	add := func(bit byte) {
		width := 1
		if bit == '1' {
			width = s.def.WideMultiplier
		}
		runs = append(runs, rle.Run{Length: width, Color: color})
		if color == rle.Black {
			color = rle.White
		} else {
			color = rle.Black
		}
	}

	for i := 0; i < len(s.def.Header); i++ {
		add(s.def.Header[i])
	}
	for i := 0; i < len(content); i += 2 {
		bars := s.def.Patterns[content[i]-'0']
		spaces := s.def.Patterns[content[i+1]-'0']
		for j := 0; j < s.def.CodeLength; j++ {
			add(bars[j])
			add(spaces[j])
		}
	}
	for i := 0; i < len(s.def.Tail); i++ {
		add(s.def.Tail[i])
	}
	return runs, nil
}

// ScaleRuns multiplies every run length by factor.
func ScaleRuns(runs []rle.Run, factor int) []rle.Run {
	out := make([]rle.Run, len(runs))
	for i, r := range runs {
		out[i] = rle.Run{Length: r.Length * factor, Color: r.Color}
	}
	return out
}
