package batch

import (
	"github.com/MeKo-Tech/debarkoder/internal/pipeline"
)

// buildPipeline creates a decoding pipeline from the batch configuration.
func buildPipeline(config *Config, progressCallback pipeline.ProgressCallback) (*pipeline.Pipeline, error) {
	b := pipeline.NewBuilder().
		WithRowWorkers(config.RowWorkers).
		WithPlaceholder(config.Placeholder).
		WithAutocrop(config.Autocrop).
		WithCrossCheck(config.CrossCheck).
		WithParallelWorkers(config.Workers).
		WithProgressCallback(progressCallback)

	if config.Threshold > 0 {
		b = b.WithThreshold(config.Threshold)
	}
	return b.Build()
}
