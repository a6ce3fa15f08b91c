package rle

import (
	"bytes"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func pixelsFromBits(bits []bool) []uint8 {
	row := make([]uint8, len(bits))
	for i, b := range bits {
		if b {
			row[i] = BlackPixel
		} else {
			row[i] = WhitePixel
		}
	}
	return row
}

func trimWhite(row []uint8) []uint8 {
	start, end := 0, len(row)
	for start < end && row[start] == WhitePixel {
		start++
	}
	for end > start && row[end-1] == WhitePixel {
		end--
	}
	return row[start:end]
}

// TestEncode_RoundTrip verifies that expanding an encoded row restores the
// interior bar pattern exactly.
func TestEncode_RoundTrip(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("expand(encode(row)) equals the row without border whitespace", prop.ForAll(
		func(bits []bool) bool {
			row := pixelsFromBits(bits)
			return bytes.Equal(Expand(Encode(row)), trimWhite(row))
		},
		gen.SliceOf(gen.Bool()),
	))

	properties.Property("runs alternate and start and end black", prop.ForAll(
		func(bits []bool) bool {
			runs := Encode(pixelsFromBits(bits))
			if len(runs) == 0 {
				return true
			}
			if runs[0].Color != Black || runs[len(runs)-1].Color != Black {
				return false
			}
			for i := 1; i < len(runs); i++ {
				if runs[i].Color == runs[i-1].Color || runs[i].Length < 1 {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Bool()),
	))

	properties.TestingRun(t)
}
