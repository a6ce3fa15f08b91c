package pipeline

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is an output format for results.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatYAML Format = "yaml"
)

// Formats lists the supported output formats.
var Formats = []Format{FormatText, FormatJSON, FormatCSV, FormatYAML}

// ParseFormat validates a format name (case-insensitive).
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported format %q (want text, json, csv or yaml)", s)
}

var csvHeader = []string{
	"source", "text", "found", "complete", "errors", "row", "source_row", "cutoff", "width", "height",
}

// Render formats image results.
func Render(results []*ImageResult, format Format) (string, error) {
	switch format {
	case FormatText:
		return ToPlainText(results), nil
	case FormatJSON:
		return ToJSON(results)
	case FormatCSV:
		return ToCSV(results)
	case FormatYAML:
		return ToYAML(results)
	default:
		return "", fmt.Errorf("unsupported format %q", format)
	}
}

// ToJSONImage serializes a single ImageResult to pretty JSON.
func ToJSONImage(res *ImageResult) (string, error) {
	if res == nil {
		return "", errors.New("nil result")
	}
	return ToJSON(res)
}

// ToJSON serializes v to pretty JSON.
func ToJSON(v any) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ToYAML serializes v to YAML.
func ToYAML(v any) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ToPlainText prints one decoded text per line; failed entries are skipped.
func ToPlainText(results []*ImageResult) string {
	lines := make([]string, 0, len(results))
	for _, r := range results {
		if r != nil {
			lines = append(lines, r.Text)
		}
	}
	return strings.Join(lines, "\n")
}

// ToCSV exports one row per result with a header.
func ToCSV(results []*ImageResult) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return "", err
	}
	for _, r := range results {
		if r == nil {
			continue
		}
		if err := w.Write(csvRow(r)); err != nil {
			return "", err
		}
	}
	w.Flush()
	return buf.String(), w.Error()
}

func csvRow(r *ImageResult) []string {
	return []string{
		r.Source,
		r.Text,
		strconv.FormatBool(r.Found),
		strconv.FormatBool(r.Complete),
		strconv.Itoa(r.Errors),
		strconv.Itoa(r.Row),
		strconv.Itoa(r.SourceRow),
		strconv.FormatFloat(r.Cutoff, 'f', 3, 64),
		strconv.Itoa(r.Width),
		strconv.Itoa(r.Height),
	}
}

// RenderPDF formats a document result. Text and CSV flatten it to one
// entry per embedded image.
func RenderPDF(res *PDFResult, format Format) (string, error) {
	if res == nil {
		return "", errors.New("nil result")
	}
	switch format {
	case FormatJSON:
		return ToJSON(res)
	case FormatYAML:
		return ToYAML(res)
	case FormatText, FormatCSV:
		return Render(res.ImageResults(), format)
	default:
		return "", fmt.Errorf("unsupported format %q", format)
	}
}

// ImageResults flattens the decoded images of every page.
func (r *PDFResult) ImageResults() []*ImageResult {
	var out []*ImageResult
	for _, page := range r.Pages {
		for _, img := range page.Images {
			if img.Result != nil {
				out = append(out, img.Result)
			}
		}
	}
	return out
}

// ValidateImageResult performs simple consistency checks.
func ValidateImageResult(res *ImageResult) error {
	if res == nil {
		return errors.New("nil result")
	}
	if res.Width <= 0 || res.Height <= 0 {
		return fmt.Errorf("invalid image size %dx%d", res.Width, res.Height)
	}
	if res.Found != (res.Row >= 0) {
		return fmt.Errorf("found=%v disagrees with row %d", res.Found, res.Row)
	}
	if res.Found && (res.SourceRow < 0 || res.SourceRow >= res.Height) {
		return fmt.Errorf("source row %d outside image height %d", res.SourceRow, res.Height)
	}
	if res.Complete && res.Errors != 0 {
		return fmt.Errorf("complete result has %d errors", res.Errors)
	}
	return nil
}
