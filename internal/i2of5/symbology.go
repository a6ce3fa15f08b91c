// Package i2of5 decodes Interleaved 2 of 5 barcodes from run-length
// encoded scan lines.
//
// A digit is five bars of which exactly two are wide. Digits come in pairs:
// the first digit of a pair is carried by the black bars and the second by
// the white spaces between them. A payload is framed by a four bar header
// (all narrow) and a three bar tail (wide, narrow, narrow).
//
// The decoder is table driven: a Symbology value holds the framing, the
// bar arithmetic and the code table, and I2of5 is the only one defined.
package i2of5

import (
	"errors"
	"fmt"
	"strings"
)

// Definition describes the parameters of a 2-of-5 style symbology.
type Definition struct {
	Name string
	// CodeLength is the number of bars per digit.
	CodeLength int
	// WideCount and NarrowCount are the wide and narrow bars per digit.
	WideCount   int
	NarrowCount int
	// WideMultiplier is the nominal wide/narrow pixel ratio.
	WideMultiplier int
	// Header and Tail are the framing width patterns ('0' narrow, '1' wide).
	Header string
	Tail   string
	// MinimumSize is the smallest bar count that can hold a payload.
	MinimumSize int
	// Patterns maps each digit (index) to its width pattern.
	Patterns [10]string
}

// Symbology is an immutable, validated Definition with its lookup table.
// It is safe for concurrent use.
type Symbology struct {
	def    Definition
	lookup map[string]uint8
}

// ErrInvalidDefinition is returned by New for inconsistent definitions.
var ErrInvalidDefinition = errors.New("i2of5: invalid symbology definition")

// I2of5 is the Interleaved 2 of 5 symbology.
// The bit weights are 1, 2, 4, 7, 0; the code for 0 carries weight 11.
var I2of5 = MustNew(Definition{
	Name:           "i2of5",
	CodeLength:     5,
	WideCount:      2,
	NarrowCount:    3,
	WideMultiplier: 3,
	Header:         "0000",
	Tail:           "100",
	MinimumSize:    17,
	Patterns: [10]string{
		"00110",
		"10001",
		"01001",
		"11000",
		"00101",
		"10100",
		"01100",
		"00011",
		"10010",
		"01010",
	},
})

// New validates def and builds its lookup table.
func New(def Definition) (*Symbology, error) {
	if def.CodeLength <= 0 || def.WideCount+def.NarrowCount != def.CodeLength {
		return nil, fmt.Errorf("%w: %d wide + %d narrow bars do not make a %d bar code",
			ErrInvalidDefinition, def.WideCount, def.NarrowCount, def.CodeLength)
	}
	if def.WideMultiplier <= 1 {
		return nil, fmt.Errorf("%w: wide multiplier %d must exceed 1", ErrInvalidDefinition, def.WideMultiplier)
	}
	if !isWidthPattern(def.Header) || !isWidthPattern(def.Tail) || def.Header == "" || def.Tail == "" {
		return nil, fmt.Errorf("%w: bad framing %q/%q", ErrInvalidDefinition, def.Header, def.Tail)
	}
	if def.MinimumSize < len(def.Header)+len(def.Tail)+2*def.CodeLength {
		return nil, fmt.Errorf("%w: minimum size %d cannot hold a digit pair", ErrInvalidDefinition, def.MinimumSize)
	}

	lookup := make(map[string]uint8, len(def.Patterns))
	for d, p := range def.Patterns {
		if len(p) != def.CodeLength || !isWidthPattern(p) {
			return nil, fmt.Errorf("%w: pattern %q for digit %d", ErrInvalidDefinition, p, d)
		}
		if strings.Count(p, "1") != def.WideCount {
			return nil, fmt.Errorf("%w: pattern %q for digit %d needs %d wide bars", ErrInvalidDefinition, p, d, def.WideCount)
		}
		if prev, dup := lookup[p]; dup {
			return nil, fmt.Errorf("%w: pattern %q used by digits %d and %d", ErrInvalidDefinition, p, prev, d)
		}
		lookup[p] = uint8(d) //nolint:gosec // G115: d < 10
	}

	return &Symbology{def: def, lookup: lookup}, nil
}

// MustNew is like New but panics on an invalid definition.
func MustNew(def Definition) *Symbology {
	s, err := New(def)
	if err != nil {
		panic(err)
	}
	return s
}

// Definition returns a copy of the symbology parameters.
func (s *Symbology) Definition() Definition { return s.def }

// Name returns the symbology name.
func (s *Symbology) Name() string { return s.def.Name }

// MinimumSize returns the smallest number of bars a row must have.
func (s *Symbology) MinimumSize() int { return s.def.MinimumSize }

// Lookup maps one code word to its digit. Words of the wrong length, with
// the wrong number of wide bars or absent from the table are unresolved.
func (s *Symbology) Lookup(word string) Digit {
	if len(word) != s.def.CodeLength {
		return Unresolved
	}
	if v, ok := s.lookup[word]; ok {
		return Resolved(v)
	}
	return Unresolved
}

// pattern returns the width pattern of digit d.
func (s *Symbology) pattern(d uint8) (string, bool) {
	if int(d) >= len(s.def.Patterns) {
		return "", false
	}
	return s.def.Patterns[d], true
}

// extraBars is the framing overhead in bars.
func (s *Symbology) extraBars() int { return len(s.def.Header) + len(s.def.Tail) }

// unitsPerDigit is the width of one digit in narrow-bar units.
func (s *Symbology) unitsPerDigit() int {
	return s.def.NarrowCount + s.def.WideCount*s.def.WideMultiplier
}

func isWidthPattern(p string) bool {
	for _, c := range p {
		if c != '0' && c != '1' {
			return false
		}
	}
	return true
}
