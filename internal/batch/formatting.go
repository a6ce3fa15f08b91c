package batch

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/MeKo-Tech/debarkoder/internal/pipeline"
)

// fileResult is one entry of the structured batch output.
type fileResult struct {
	File   string                `json:"file"            yaml:"file"`
	Result *pipeline.ImageResult `json:"result"          yaml:"result"`
	Error  string                `json:"error,omitempty" yaml:"error,omitempty"`
}

// formatBatchResults formats the batch processing results in the specified format.
func formatBatchResults(r *Result, format string) (string, error) {
	f := pipeline.FormatText
	if format != "" {
		var err error
		if f, err = pipeline.ParseFormat(format); err != nil {
			return "", err
		}
	}
	switch f {
	case pipeline.FormatJSON:
		return pipeline.ToJSON(map[string]any{"images": fileResults(r)})
	case pipeline.FormatYAML:
		return pipeline.ToYAML(map[string]any{"images": fileResults(r)})
	case pipeline.FormatCSV:
		return formatCSV(r)
	default:
		return formatText(r), nil
	}
}

func fileResults(r *Result) []fileResult {
	out := make([]fileResult, len(r.ImagePaths))
	for i, path := range r.ImagePaths {
		out[i] = fileResult{File: path, Result: r.result(i)}
		if err := r.err(i); err != nil {
			out[i].Error = err.Error()
		}
	}
	return out
}

func (r *Result) result(i int) *pipeline.ImageResult {
	if i < len(r.Results) {
		return r.Results[i]
	}
	return nil
}

func (r *Result) err(i int) error {
	if i < len(r.Errors) {
		return r.Errors[i]
	}
	return nil
}

// formatCSV writes one row per file; failed files carry their error.
func formatCSV(r *Result) (string, error) {
	var output strings.Builder
	writer := csv.NewWriter(&output)
	header := []string{"file", "text", "found", "complete", "errors", "row", "source_row", "error"}
	if err := writer.Write(header); err != nil {
		return "", err
	}
	for i, path := range r.ImagePaths {
		row := []string{path, "", "false", "false", "0", "-1", "-1", ""}
		if res := r.result(i); res != nil {
			row[1] = res.Text
			row[2] = strconv.FormatBool(res.Found)
			row[3] = strconv.FormatBool(res.Complete)
			row[4] = strconv.Itoa(res.Errors)
			row[5] = strconv.Itoa(res.Row)
			row[6] = strconv.Itoa(res.SourceRow)
		}
		if err := r.err(i); err != nil {
			row[7] = err.Error()
		}
		if err := writer.Write(row); err != nil {
			return "", err
		}
	}
	writer.Flush()
	return output.String(), writer.Error()
}

// formatText prints "# path" followed by the decoded text or the error.
func formatText(r *Result) string {
	var output strings.Builder
	for i, path := range r.ImagePaths {
		if i > 0 {
			output.WriteString("\n")
		}
		fmt.Fprintf(&output, "# %s\n", path)
		if err := r.err(i); err != nil {
			fmt.Fprintf(&output, "error: %v", err)
			continue
		}
		if res := r.result(i); res != nil {
			output.WriteString(res.Text)
		}
	}
	return output.String()
}
