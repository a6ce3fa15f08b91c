package pipeline

import (
	"testing"

	"github.com/MeKo-Tech/debarkoder/internal/i2of5"
	"github.com/MeKo-Tech/debarkoder/internal/pdf"
	"github.com/MeKo-Tech/debarkoder/internal/recognize"
	"github.com/MeKo-Tech/debarkoder/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 1, cfg.Decoder.RowWorkers)
	assert.Equal(t, recognize.DefaultPlaceholder, cfg.Decoder.Placeholder)
	assert.Same(t, i2of5.I2of5, cfg.Decoder.Symbology)
	assert.Equal(t, utils.DefaultPrepareOptions(), cfg.Prepare)
	assert.Equal(t, utils.DefaultImageConstraints(), cfg.Constraints)
	assert.False(t, cfg.CrossCheck.Enabled)
	assert.Nil(t, cfg.Credentials)
	assert.Positive(t, cfg.Parallel.MaxWorkers)
}

func TestBuilder_Chaining(t *testing.T) {
	creds := &pdf.Credentials{UserPassword: "secret"}
	progress := NoOpProgressCallback{}
	b := NewBuilder().
		WithRowWorkers(4).
		WithPlaceholder("#").
		WithThreshold(100).
		WithAutocrop(false).
		WithCrossCheck(true).
		WithCredentials(creds).
		WithParallelWorkers(3).
		WithProgressCallback(progress)

	cfg := b.Config()
	assert.Equal(t, 4, cfg.Decoder.RowWorkers)
	assert.Equal(t, "#", cfg.Decoder.Placeholder)
	assert.Equal(t, uint8(100), cfg.Prepare.Threshold)
	assert.False(t, cfg.Prepare.Autocrop)
	assert.True(t, cfg.CrossCheck.Enabled)
	assert.Same(t, creds, cfg.Credentials)
	assert.Equal(t, 3, cfg.Parallel.MaxWorkers)
	assert.Equal(t, progress, cfg.Parallel.ProgressCallback)
}

func TestBuilder_IgnoresZeroValues(t *testing.T) {
	cfg := NewBuilder().
		WithRowWorkers(0).
		WithPlaceholder("").
		WithCredentials(&pdf.Credentials{}).
		WithParallelWorkers(0).
		Config()
	def := DefaultConfig()
	assert.Equal(t, def.Decoder.RowWorkers, cfg.Decoder.RowWorkers)
	assert.Equal(t, def.Decoder.Placeholder, cfg.Decoder.Placeholder)
	assert.Nil(t, cfg.Credentials)
	assert.Equal(t, def.Parallel.MaxWorkers, cfg.Parallel.MaxWorkers)
}

func TestBuilder_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"empty placeholder", func(c *Config) { c.Decoder.Placeholder = "" }, "placeholder"},
		{"no symbology", func(c *Config) { c.Decoder.Symbology = nil }, "symbology"},
		{"zero min width", func(c *Config) { c.Constraints.MinWidth = 0 }, "minimum size"},
		{"negative workers", func(c *Config) { c.Parallel.MaxWorkers = -1 }, "parallel workers"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			b := NewBuilderFrom(cfg)
			err := b.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)

			_, err = b.Build()
			require.Error(t, err)
		})
	}
}

func TestBuild(t *testing.T) {
	p := newTestPipeline(t, func(b *Builder) { b.WithRowWorkers(-1).WithCrossCheck(true) })
	require.NotNil(t, p.Recognizer)
	assert.Positive(t, p.Recognizer.Options().Workers)
	assert.NotNil(t, p.CrossCheck)
	assert.NotNil(t, p.Profiler)

	plain := newTestPipeline(t)
	assert.Nil(t, plain.CrossCheck)
	assert.Equal(t, 1, plain.Recognizer.Options().Workers)
}

func TestPipeline_Info(t *testing.T) {
	p := newTestPipeline(t)
	info := p.Info()
	assert.Equal(t, "i2of5", info["symbology"])
	assert.Equal(t, 1, info["row_workers"])
	assert.Equal(t, "?", info["placeholder"])
	assert.Equal(t, false, info["cross_check"])
	assert.Contains(t, info, "parallel")
	assert.Contains(t, info, "memory")
	assert.Contains(t, info, "profile")
}

func TestPipeline_Close(t *testing.T) {
	p := newTestPipeline(t)
	require.NoError(t, p.Close())
	assert.Nil(t, p.Recognizer)

	var nilPipeline *Pipeline
	assert.NoError(t, nilPipeline.Close())
}
