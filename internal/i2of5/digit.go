package i2of5

import "strconv"

// Digit is one decoded slot: either a resolved digit 0-9 or unresolved.
type Digit struct {
	Value uint8
	Valid bool
}

// Unresolved is the slot produced for a code word with no table entry.
var Unresolved = Digit{}

// Resolved returns a valid slot holding v.
func Resolved(v uint8) Digit { return Digit{Value: v, Valid: true} }

func (d Digit) String() string {
	if !d.Valid {
		return "?"
	}
	return strconv.Itoa(int(d.Value))
}

// CountUnresolved returns the number of unresolved slots.
func CountUnresolved(digits []Digit) int {
	n := 0
	for _, d := range digits {
		if !d.Valid {
			n++
		}
	}
	return n
}

// Status classifies the outcome of decoding one row.
type Status int

const (
	// StatusDecoded means framing validated; digits may still be unresolved.
	StatusDecoded Status = iota
	// StatusTooShort means the row has fewer bars than the minimum size.
	StatusTooShort
	// StatusFramingRejected means the header or tail pattern did not match.
	StatusFramingRejected
)

func (s Status) String() string {
	switch s {
	case StatusDecoded:
		return "decoded"
	case StatusTooShort:
		return "too_short"
	case StatusFramingRejected:
		return "framing_rejected"
	default:
		return "Status(" + strconv.Itoa(int(s)) + ")"
	}
}

// Outcome is the result of decoding one run sequence.
type Outcome struct {
	Status Status
	Digits []Digit
	// Cutoff is the narrow/wide threshold in pixels (0 when not computed).
	Cutoff float64
}

// Decoded reports whether the row passed framing.
func (o Outcome) Decoded() bool { return o.Status == StatusDecoded }

// Errors returns the number of unresolved digits.
func (o Outcome) Errors() int { return CountUnresolved(o.Digits) }
