package batch

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/MeKo-Tech/debarkoder/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleResult() *Result {
	return &Result{
		Results: []*pipeline.ImageResult{
			{Source: "/in/a.png", Text: "0123", Found: true, Complete: true, Row: 0, SourceRow: 20},
			nil,
			{Source: "/in/c.png", Text: "?", Errors: 1, Row: -1, SourceRow: -1},
		},
		Errors:      []error{nil, errors.New("/in/b.png: unsupported"), nil},
		ImagePaths:  []string{"/in/a.png", "/in/b.png", "/in/c.png"},
		Duration:    3 * time.Second,
		WorkerCount: 2,
	}
}

func TestFormatBatchResults_Text(t *testing.T) {
	out, err := formatBatchResults(sampleResult(), "text")
	require.NoError(t, err)
	assert.Equal(t, "# /in/a.png\n0123\n# /in/b.png\nerror: /in/b.png: unsupported\n# /in/c.png\n?", out)

	def, err := formatBatchResults(sampleResult(), "")
	require.NoError(t, err)
	assert.Equal(t, out, def)
}

func TestFormatBatchResults_JSON(t *testing.T) {
	out, err := formatBatchResults(sampleResult(), "json")
	require.NoError(t, err)

	var decoded struct {
		Images []struct {
			File   string         `json:"file"`
			Result map[string]any `json:"result"`
			Error  string         `json:"error"`
		} `json:"images"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.Len(t, decoded.Images, 3)
	assert.Equal(t, "/in/a.png", decoded.Images[0].File)
	assert.Equal(t, "0123", decoded.Images[0].Result["text"])
	assert.Nil(t, decoded.Images[1].Result)
	assert.Contains(t, decoded.Images[1].Error, "unsupported")
}

func TestFormatBatchResults_YAML(t *testing.T) {
	out, err := formatBatchResults(sampleResult(), "yaml")
	require.NoError(t, err)

	var decoded map[string][]map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &decoded))
	require.Len(t, decoded["images"], 3)
	assert.Equal(t, "/in/c.png", decoded["images"][2]["file"])
}

func TestFormatBatchResults_CSV(t *testing.T) {
	out, err := formatBatchResults(sampleResult(), "CSV")
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, "file", records[0][0])
	assert.Equal(t, []string{"/in/a.png", "0123", "true", "true", "0", "0", "20", ""}, records[1])
	assert.Equal(t, "-1", records[2][5])
	assert.Contains(t, records[2][7], "unsupported")
	assert.Equal(t, "?", records[3][1])
}

func TestFormatBatchResults_Unsupported(t *testing.T) {
	_, err := formatBatchResults(sampleResult(), "xml")
	require.Error(t, err)
}

func TestFormatBatchResults_ShortSlices(t *testing.T) {
	r := &Result{ImagePaths: []string{"/in/a.png"}}
	out, err := formatBatchResults(r, "text")
	require.NoError(t, err)
	assert.Equal(t, "# /in/a.png\n", out)
}
