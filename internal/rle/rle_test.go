package rle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_Examples(t *testing.T) {
	tests := []struct {
		name string
		row  []uint8
		want []Run
	}{
		{
			name: "black white black",
			row:  []uint8{0, 255, 255, 0, 0, 0},
			want: []Run{{1, Black}, {2, White}, {3, Black}},
		},
		{
			name: "border whitespace stripped on both sides",
			row:  []uint8{255, 0, 255},
			want: []Run{{1, Black}},
		},
		{
			name: "single black pixel",
			row:  []uint8{0},
			want: []Run{{1, Black}},
		},
		{
			name: "wide borders",
			row:  []uint8{255, 255, 255, 0, 0, 255, 0, 255, 255},
			want: []Run{{2, Black}, {1, White}, {1, Black}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Encode(tt.row))
		})
	}
}

func TestEncode_EmptyResults(t *testing.T) {
	assert.Empty(t, Encode(nil))
	assert.Empty(t, Encode([]uint8{}))
	assert.Empty(t, Encode([]uint8{255}))
	assert.Empty(t, Encode([]uint8{255, 255, 255, 255}))
}

func TestEncode_ColorsAlternate(t *testing.T) {
	row := []uint8{255, 0, 0, 255, 0, 255, 255, 255, 0, 0, 0, 255}
	runs := Encode(row)
	require.NotEmpty(t, runs)
	assert.Equal(t, Black, runs[0].Color)
	assert.Equal(t, Black, runs[len(runs)-1].Color)
	for i := 1; i < len(runs); i++ {
		assert.NotEqual(t, runs[i-1].Color, runs[i].Color, "runs %d and %d share a colour", i-1, i)
	}
}

func TestEncode_GreyPixelsFollowMidpoint(t *testing.T) {
	runs := Encode([]uint8{200, 10, 127, 128, 250, 3})
	assert.Equal(t, []Run{{2, Black}, {2, White}, {1, Black}}, runs)
}

func TestEncodeInto_ReusesBuffer(t *testing.T) {
	buf := make([]Run, 5, 16)
	buf[0] = Run{99, White}

	runs := EncodeInto(buf, []uint8{255, 0, 255, 255, 0, 0})
	assert.Equal(t, []Run{{1, Black}, {2, White}, {2, Black}}, runs)
	assert.Equal(t, 16, cap(runs)+1, "leading white run is sliced off the shared storage")

	grown := EncodeInto(make([]Run, 0, 1), []uint8{0, 255, 0})
	assert.Equal(t, []Run{{1, Black}, {1, White}, {1, Black}}, grown)
	assert.Empty(t, EncodeInto(buf, []uint8{255, 255}))
}

func TestExpand(t *testing.T) {
	runs := []Run{{1, Black}, {2, White}, {3, Black}}
	assert.Equal(t, []uint8{0, 255, 255, 0, 0, 0}, Expand(runs))
	assert.Empty(t, Expand(nil))
}

func TestColorString(t *testing.T) {
	assert.Equal(t, "b", Black.String())
	assert.Equal(t, "w", White.String())
	assert.Equal(t, "Color(7)", Color(7).String())
	assert.Equal(t, "(4,w)", Run{4, White}.String())
}
