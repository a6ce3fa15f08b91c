package cmd

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MeKo-Tech/debarkoder/internal/config"
	"github.com/MeKo-Tech/debarkoder/internal/render"
	"github.com/MeKo-Tech/debarkoder/internal/selftest"
	"github.com/MeKo-Tech/debarkoder/internal/utils"
	"github.com/MeKo-Tech/debarkoder/internal/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs a fresh command tree in an isolated home directory.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return executeContext(context.Background(), t, args...)
}

func executeContext(ctx context.Context, t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cmd := NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return stdout.String(), stderr.String(), err
}

// writeBarcode renders content into dir/name and returns the path.
func writeBarcode(t *testing.T, dir, name, content string) string {
	t.Helper()
	img, err := render.Image(content, render.DefaultOptions())
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, utils.SaveImage(path, img))
	return path
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	assert.True(t, strings.HasPrefix(cmd.Use, "debarkoder"))
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)

	names := make([]string, 0, len(cmd.Commands()))
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	for _, expected := range []string{"decode", "batch", "pdf", "serve", "selftest", "generate", "config"} {
		assert.Contains(t, names, expected, "Expected subcommand '%s' not found", expected)
	}
}

func TestRootCommandHelp(t *testing.T) {
	stdout, _, err := execute(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Interleaved 2 of 5")
	assert.Contains(t, stdout, "Available Commands:")
	assert.Contains(t, stdout, "Usage:")
}

func TestRootCommandVersion(t *testing.T) {
	stdout, stderr, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, stdout+stderr, version.Version)
}

func TestRootCommandInvalidFlag(t *testing.T) {
	_, stderr, err := execute(t, "--invalid-flag")
	require.Error(t, err)
	assert.Contains(t, stderr, "unknown flag")
}

func TestRootCommandNoArgsRunsSelftest(t *testing.T) {
	stdout, _, err := execute(t)
	require.NoError(t, err)
	assert.Contains(t, stdout, "✅ decode image 01")
	assert.Contains(t, stdout, fmt.Sprintf("All %d checks passed", len(selftest.Checks())))
	assert.NotContains(t, stdout, "❌")
}

func TestRootCommandDecodesEachFile(t *testing.T) {
	dir := t.TempDir()
	a := writeBarcode(t, dir, "a.png", "0123456789")
	b := writeBarcode(t, dir, "b.png", "4711")

	stdout, _, err := execute(t, a, b)
	require.NoError(t, err)
	assert.Equal(t, "0123456789\n4711\n", stdout)
}

func TestRootCommandReportsFailedFiles(t *testing.T) {
	dir := t.TempDir()
	a := writeBarcode(t, dir, "a.png", "4711")

	stdout, stderr, err := execute(t, a, filepath.Join(dir, "missing.png"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 files")
	assert.Equal(t, "4711\n", stdout)
	assert.Contains(t, stderr, "missing.png")
}

func TestRootCommandConfigErrors(t *testing.T) {
	t.Run("missing config file", func(t *testing.T) {
		_, _, err := execute(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "selftest")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "config file does not exist")
	})

	t.Run("invalid flag value", func(t *testing.T) {
		_, _, err := execute(t, "decode", "--threshold", "0", "x.png")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "configuration validation failed")
	})
}

func TestLogLevel(t *testing.T) {
	tests := []struct {
		level   string
		verbose bool
		want    slog.Level
	}{
		{"debug", false, slog.LevelDebug},
		{"info", false, slog.LevelInfo},
		{"warn", false, slog.LevelWarn},
		{"error", false, slog.LevelError},
		{"bogus", false, slog.LevelInfo},
		{"error", true, slog.LevelDebug},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.LogLevel = tt.level
			cfg.Verbose = tt.verbose
			assert.Equal(t, tt.want, logLevel(&cfg))
		})
	}
}

func TestSelftestCommand(t *testing.T) {
	for _, name := range []string{"selftest", "test"} {
		t.Run(name, func(t *testing.T) {
			stdout, _, err := execute(t, name)
			require.NoError(t, err)
			assert.Contains(t, stdout, "Running embedded decoder checks")
			assert.Contains(t, stdout, "🎉")
		})
	}
}

func TestSelftestCommandFailsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stdout, _, err := executeContext(ctx, t, "selftest")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 of 7 checks failed")
	assert.Contains(t, stdout, "❌ decode image 01")
}
