package batch

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	assert.Equal(t, "?", c.Placeholder)
	assert.Equal(t, uint8(128), c.Threshold)
	assert.True(t, c.Autocrop)
	assert.True(t, c.ContinueOnError)
	assert.Equal(t, "text", c.Format)
	require.NoError(t, c.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative workers", func(c *Config) { c.Workers = -1 }},
		{"bad format", func(c *Config) { c.Format = "xml" }},
		{"bad overlay colour", func(c *Config) { c.OverlayDir = "out"; c.OverlayColor = "red" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(c)
			require.Error(t, c.Validate())
		})
	}
}

func TestResult_FailedAndFirstError(t *testing.T) {
	r := sampleResult()
	assert.Equal(t, 1, r.Failed())
	require.Error(t, r.FirstError())
	assert.Contains(t, r.FirstError().Error(), "/in/b.png")

	r.Errors = []error{nil, nil, nil}
	assert.Zero(t, r.Failed())
	require.NoError(t, r.FirstError())
}

func TestResult_SaveResults(t *testing.T) {
	out := filepath.Join(t.TempDir(), "results.json")
	require.NoError(t, sampleResult().SaveResults(io.Discard, "json", out, true))

	data, err := os.ReadFile(out) //nolint:gosec // G304: temp file
	require.NoError(t, err)
	assert.Contains(t, string(data), `"file": "/in/a.png"`)

	err = sampleResult().SaveResults(io.Discard, "xml", out, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to format results")
}

func TestResult_SaveResults_Stdout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampleResult().SaveResults(&buf, "text", "", false))
	assert.Contains(t, buf.String(), "# /in/a.png")
}

func TestResult_PrintStats(t *testing.T) {
	var buf bytes.Buffer
	sampleResult().PrintStats(&buf)
	out := buf.String()
	assert.Contains(t, out, "Processing Statistics:")
	assert.Contains(t, out, "Total images: 3")
	assert.Contains(t, out, "Failed: 1")
	assert.Contains(t, out, "Decoded: 1 (1 complete)")
	assert.Contains(t, out, "Workers: 2")
}

func TestResult_PrintStats_GroupsThousands(t *testing.T) {
	r := &Result{ImagePaths: make([]string, 12345), Errors: []error{errors.New("x")}}
	var buf bytes.Buffer
	r.PrintStats(&buf)
	assert.Contains(t, buf.String(), "Total images: 12,345")
}
