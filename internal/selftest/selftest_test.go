package selftest

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	var buf bytes.Buffer
	rep := Run(context.Background(), &buf)

	require.True(t, rep.OK(), buf.String())
	assert.Equal(t, len(Checks()), rep.Passed)
	assert.Equal(t, len(Checks()), strings.Count(buf.String(), "✅"))
}

func TestChecks_Names(t *testing.T) {
	seen := map[string]bool{}
	for _, c := range Checks() {
		assert.False(t, seen[c.Name], "duplicate check %q", c.Name)
		seen[c.Name] = true
		assert.NotNil(t, c.Run)
	}
}

func TestCheckFailuresAreReported(t *testing.T) {
	err := checkDecode("00110", "1")(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `want "1"`)

	err = checkRLE([]uint8{0}, nil)(context.Background())
	assert.Error(t, err)

	assert.False(t, Report{Failed: []string{"x"}}.OK())
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	rep := Run(ctx, &buf)
	assert.Equal(t, []string{"decode image 01", "decode image with 44 digits"}, rep.Failed)
	assert.Equal(t, 5, rep.Passed)
}
