package server

import (
	"testing"
	"time"

	"github.com/MeKo-Tech/debarkoder/internal/pipeline"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestOutcome(t *testing.T) {
	assert.Equal(t, "complete", outcome(&pipeline.ImageResult{Found: true, Complete: true}))
	assert.Equal(t, "partial", outcome(&pipeline.ImageResult{Found: true, Errors: 1}))
	assert.Equal(t, "not_found", outcome(&pipeline.ImageResult{Errors: 1}))
}

func TestObserveResults(t *testing.T) {
	before := promtest.ToFloat64(decodeOutcomes.WithLabelValues("metrics_test", "partial"))
	requests := promtest.ToFloat64(decodeRequestsTotal.WithLabelValues("metrics_test", "success"))

	observeImageResult("metrics_test", &pipeline.ImageResult{Found: true, Errors: 2, RowsScanned: 7}, time.Millisecond)
	observePDFResult("metrics_test", &pipeline.PDFResult{Pages: []pipeline.PDFPageResult{{
		Images: []pipeline.PDFImageResult{
			{Result: &pipeline.ImageResult{Found: true, Errors: 1}},
			{Error: "image too small"},
		},
	}}}, time.Millisecond)

	assert.InDelta(t, before+2, promtest.ToFloat64(decodeOutcomes.WithLabelValues("metrics_test", "partial")), 1e-9)
	assert.InDelta(t, requests+2, promtest.ToFloat64(decodeRequestsTotal.WithLabelValues("metrics_test", "success")), 1e-9)
}
