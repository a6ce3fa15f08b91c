package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func newTestLoader() *Loader {
	return NewLoader()
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "debarkoder.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestNewLoader(t *testing.T) {
	l := NewLoader()
	require.NotNil(t, l)
	assert.NotSame(t, viper.GetViper(), l.GetViper())
	assert.NotSame(t, NewLoader().GetViper(), l.GetViper())
}

func TestNewLoaderWithViper_Overrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	v := viper.New()
	v.Set("decoder.threshold", 77)
	cfg, err := NewLoaderWithViper(v).Load()
	require.NoError(t, err)
	assert.Equal(t, 77, cfg.Decoder.Threshold)
}

func TestLoad_NoConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := newTestLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Server, cfg.Server)
	assert.Equal(t, "?", cfg.Decoder.Placeholder)
}

func TestLoad_FromWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "debarkoder.yaml"), []byte("log_level: warn\n"), 0o600))
	t.Chdir(dir)

	l := newTestLoader()
	cfg, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "debarkoder.yaml", filepath.Base(l.GetConfigFileUsed()))
}

func TestLoadWithFile(t *testing.T) {
	path := writeConfig(t, `
log_level: debug
decoder:
  workers: -1
  placeholder: "_"
  threshold: 100
  autocrop: false
output:
  format: json
server:
  port: 9090
  rate_limit:
    enabled: true
    requests_per_minute: 5
batch:
  recursive: true
  include: ["*.png", "*.jpg"]
`)

	cfg, err := newTestLoader().LoadWithFile(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, -1, cfg.Decoder.Workers)
	assert.Equal(t, "_", cfg.Decoder.Placeholder)
	assert.Equal(t, 100, cfg.Decoder.Threshold)
	assert.False(t, cfg.Decoder.Autocrop)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.True(t, cfg.Server.RateLimit.Enabled)
	assert.Equal(t, 5, cfg.Server.RateLimit.RequestsPerMinute)
	assert.Equal(t, 1000, cfg.Server.RateLimit.RequestsPerHour)
	assert.True(t, cfg.Batch.Recursive)
	assert.Equal(t, []string{"*.png", "*.jpg"}, cfg.Batch.Include)
	// Untouched keys keep their defaults.
	assert.Equal(t, "localhost", cfg.Server.Host)
}

func TestLoadWithFile_Errors(t *testing.T) {
	_, err := newTestLoader().LoadWithFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")

	_, err = newTestLoader().LoadWithFile(writeConfig(t, "server: [port"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")

	invalid := writeConfig(t, "decoder:\n  threshold: 0\n")
	_, err = newTestLoader().LoadWithFile(invalid)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration validation failed")

	cfg, err := newTestLoader().LoadWithFileWithoutValidation(invalid)
	require.NoError(t, err)
	assert.Zero(t, cfg.Decoder.Threshold)
}

func TestLoad_EnvironmentOverride(t *testing.T) {
	t.Setenv("DEBARKODER_SERVER_PORT", "7070")
	t.Setenv("DEBARKODER_DECODER_PLACEHOLDER", "#")
	t.Setenv("DEBARKODER_SERVER_RATE_LIMIT_ENABLED", "true")

	cfg, err := newTestLoader().LoadWithFile(writeConfig(t, "server:\n  port: 9090\n"))
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "#", cfg.Decoder.Placeholder)
	assert.True(t, cfg.Server.RateLimit.Enabled)
}

func TestLoader_GetSet(t *testing.T) {
	l := newTestLoader()
	l.Set("output.format", "csv")
	assert.Equal(t, "csv", l.GetString("output.format"))
	assert.Equal(t, "csv", l.Get("output.format"))

	cfg, err := l.LoadWithoutValidation()
	require.NoError(t, err)
	assert.Equal(t, "csv", cfg.Output.Format)

	settings := l.GetResolvedConfig()
	assert.Contains(t, settings, "decoder")
}

func TestGenerateDefaultConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "debarkoder.yaml")
	require.NoError(t, GenerateDefaultConfigFile(path))

	cfg, err := newTestLoader().LoadWithFile(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Decoder, cfg.Decoder)
	assert.Equal(t, DefaultConfig().Server, cfg.Server)

	err = GenerateDefaultConfigFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestGenerateDefaultConfigFile_DefaultName(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, GenerateDefaultConfigFile(""))
	_, err := os.Stat("debarkoder.yaml")
	assert.NoError(t, err)
}

func TestWriteYAML(t *testing.T) {
	cfg := DefaultConfig()
	var buf bytes.Buffer
	require.NoError(t, WriteYAML(&buf, &cfg))

	out := buf.String()
	assert.Contains(t, out, "decoder:\n  workers: 1\n")
	assert.Contains(t, out, "rate_limit:")

	var back Config
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, cfg.Server, back.Server)
}

func TestGetConfigSearchPaths(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	paths := GetConfigSearchPaths()
	require.NotEmpty(t, paths)
	assert.Equal(t, ".", paths[0])
	assert.Contains(t, paths, filepath.Join(xdg, "debarkoder"))
	assert.Equal(t, "/etc/debarkoder", paths[len(paths)-1])
}

func TestPrintConfigInfo(t *testing.T) {
	var buf bytes.Buffer
	newTestLoader().PrintConfigInfo(&buf)
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "Configuration file used:"))
	assert.Contains(t, out, "Environment prefix: DEBARKODER")
}
