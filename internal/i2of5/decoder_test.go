package i2of5

import (
	"strings"
	"testing"

	"github.com/MeKo-Tech/debarkoder/internal/rle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func digitsOf(values ...int) []Digit {
	out := make([]Digit, len(values))
	for i, v := range values {
		if v < 0 {
			out[i] = Unresolved
			continue
		}
		out[i] = Resolved(uint8(v)) //nolint:gosec // test data
	}
	return out
}

// barsFromBits builds alternating black/white bars from a width pattern.
func barsFromBits(bits string) []Bar {
	bars := make([]Bar, len(bits))
	for i := range bits {
		c := rle.Black
		if i%2 == 1 {
			c = rle.White
		}
		bars[i] = Bar{Wide: bits[i] == '1', Color: c}
	}
	return bars
}

func TestDecode_AllDigits(t *testing.T) {
	got := I2of5.Decode("00110100010100111000001011010001100000111001001010")
	assert.Equal(t, digitsOf(0, 1, 2, 3, 4, 5, 6, 7, 8, 9), got)
}

func TestDecode_IncompleteGroup(t *testing.T) {
	got := I2of5.Decode("001101")
	assert.Equal(t, digitsOf(0, -1), got)
}

func TestDecode_Empty(t *testing.T) {
	assert.Empty(t, I2of5.Decode(""))
}

func TestLookup_BitCountRule(t *testing.T) {
	resolved := 0
	for v := range 32 {
		word := ""
		for bit := 4; bit >= 0; bit-- {
			if v&(1<<bit) != 0 {
				word += "1"
			} else {
				word += "0"
			}
		}
		d := I2of5.Lookup(word)
		if strings.Count(word, "1") != 2 {
			assert.False(t, d.Valid, "word %s must not resolve", word)
			continue
		}
		require.True(t, d.Valid, "word %s has two wide bars and must resolve", word)
		resolved++
	}
	assert.Equal(t, 10, resolved)
}

func TestLookup_Bijection(t *testing.T) {
	seen := make(map[uint8]string)
	for d := range uint8(10) {
		p, ok := I2of5.pattern(d)
		require.True(t, ok)
		got := I2of5.Lookup(p)
		require.True(t, got.Valid)
		assert.Equal(t, d, got.Value)
		_, dup := seen[got.Value]
		assert.False(t, dup)
		seen[got.Value] = p
	}
	_, ok := I2of5.pattern(10)
	assert.False(t, ok)
}

func TestLookup_WrongLength(t *testing.T) {
	assert.False(t, I2of5.Lookup("0011").Valid)
	assert.False(t, I2of5.Lookup("001100").Valid)
	assert.False(t, I2of5.Lookup("").Valid)
}

func TestDeinterleave_Example(t *testing.T) {
	bars := barsFromBits("0000" + "0000101001" + "100")
	bits, ok := I2of5.Deinterleave(bars)
	require.True(t, ok)
	assert.Equal(t, "0011000001", bits)
}

func TestDeinterleave_RejectsBadFraming(t *testing.T) {
	payloads := []string{"0000101001", "1010010100", "0101010101"}
	framings := []struct {
		name   string
		header string
		tail   string
	}{
		{"wide header bar", "0100", "100"},
		{"all wide header", "1111", "100"},
		{"narrow tail", "0000", "000"},
		{"reversed tail", "0000", "001"},
		{"both wrong", "1000", "110"},
	}

	for _, f := range framings {
		for _, p := range payloads {
			t.Run(f.name+"/"+p, func(t *testing.T) {
				bits, ok := I2of5.Deinterleave(barsFromBits(f.header + p + f.tail))
				assert.False(t, ok)
				assert.Empty(t, bits)
			})
		}
	}
}

func TestDeinterleave_IgnoresColor(t *testing.T) {
	bars := barsFromBits("0000" + "0000101001" + "100")
	for i := range bars {
		bars[i].Color = rle.Black
	}
	bits, ok := I2of5.Deinterleave(bars)
	require.True(t, ok)
	assert.Equal(t, "0011000001", bits)
}

func TestDeinterleave_TooFewBars(t *testing.T) {
	_, ok := I2of5.Deinterleave(barsFromBits("000010"))
	assert.False(t, ok)
}

func TestDeinterleave_UnevenStreamsStopAtShorter(t *testing.T) {
	// 15 payload bars: 8 black (two groups) and 7 white (two groups).
	bars := barsFromBits("0000" + "001101000101001" + "100")
	bits, ok := I2of5.Deinterleave(bars)
	require.True(t, ok)
	assert.Len(t, bits, 15)
}

func TestThreshold(t *testing.T) {
	runs, err := I2of5.Encode("01")
	require.NoError(t, err)
	assert.InDelta(t, 2.0, I2of5.Threshold(runs), 1e-9)

	assert.InDelta(t, 4.0, I2of5.Threshold(ScaleRuns(runs, 2)), 1e-9)
	assert.Zero(t, I2of5.Threshold(runs[:5]))
}

func TestClassify(t *testing.T) {
	runs := []rle.Run{
		{Length: 1, Color: rle.Black},
		{Length: 2, Color: rle.White},
		{Length: 3, Color: rle.Black},
	}
	bars := Classify(runs, 2)
	assert.Equal(t, []Bar{
		{Wide: false, Color: rle.Black},
		{Wide: false, Color: rle.White},
		{Wide: true, Color: rle.Black},
	}, bars)
}

func TestProcess_TooShort(t *testing.T) {
	runs := make([]rle.Run, 16)
	for i := range runs {
		runs[i] = rle.Run{Length: 1, Color: rle.Color(i % 2)}
	}
	out := I2of5.Process(runs)
	assert.Equal(t, StatusTooShort, out.Status)
	assert.False(t, out.Decoded())
	assert.Empty(t, out.Digits)
}

func TestProcess_EncodedContent(t *testing.T) {
	for _, content := range []string{"01", "0123456789", "99", "01234567891011121314151617181920212223242526"} {
		t.Run(content, func(t *testing.T) {
			runs, err := I2of5.Encode(content)
			require.NoError(t, err)
			out := I2of5.Process(runs)
			require.Equal(t, StatusDecoded, out.Status)
			assert.Zero(t, out.Errors())
			assert.Equal(t, content, joinDigits(out.Digits))
		})
	}
}

func TestProcess_FramingRejected(t *testing.T) {
	runs, err := I2of5.Encode("0123")
	require.NoError(t, err)
	// Widen the second header bar.
	runs[1].Length = 3
	out := I2of5.Process(runs)
	assert.Equal(t, StatusFramingRejected, out.Status)
	assert.Empty(t, out.Digits)
}

func TestProcess_CorruptDigitIsSoft(t *testing.T) {
	runs, err := I2of5.Encode("1234")
	require.NoError(t, err)
	// Narrow the first wide bar of the first digit pair to break digit 1.
	for i := 4; i < len(runs)-3; i += 2 {
		if runs[i].Length == 3 {
			runs[i].Length = 1
			break
		}
	}
	out := I2of5.Process(runs)
	require.Equal(t, StatusDecoded, out.Status)
	assert.Equal(t, 1, out.Errors())
	assert.False(t, out.Digits[0].Valid)
	assert.Equal(t, "?234", joinDigits(out.Digits))
}

func TestChunk(t *testing.T) {
	assert.Equal(t, [][]int{{1, 2}, {3, 4}, {5}}, Chunk([]int{1, 2, 3, 4, 5}, 2))
	assert.Nil(t, Chunk([]int{}, 2))
	assert.Nil(t, Chunk([]int{1}, 0))
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "decoded", StatusDecoded.String())
	assert.Equal(t, "too_short", StatusTooShort.String())
	assert.Equal(t, "framing_rejected", StatusFramingRejected.String())
	assert.Equal(t, "Status(9)", Status(9).String())
}

func joinDigits(ds []Digit) string {
	var sb strings.Builder
	for _, d := range ds {
		sb.WriteString(d.String())
	}
	return sb.String()
}
