package support

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/MeKo-Tech/debarkoder/internal/testutil"
)

// TestContext holds the state for integration tests.
type TestContext struct {
	// Command execution state
	LastCommand  string
	LastOutput   string
	LastStdout   string
	LastError    error
	LastExitCode int
	LastDuration time.Duration

	// Test environment
	TempDir     string
	FixturesDir string
	Fixtures    []testutil.BarcodeFixture
	EnvVars     map[string]string

	// Server management
	HTTPTestServer *HTTPTestServerWrapper

	// HTTP response state
	LastHTTPStatusCode int
	LastHTTPResponse   string
	LastHTTPHeaders    http.Header
}

// NewTestContext creates a new test context with its own temp directory.
func NewTestContext() (*TestContext, error) {
	tempDir, err := os.MkdirTemp("", "debarkoder-test-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	return &TestContext{
		TempDir: tempDir,
		EnvVars: map[string]string{},
	}, nil
}

// Cleanup stops the test server and removes the temp directory.
func (testCtx *TestContext) Cleanup() error {
	var errs []error
	if err := testCtx.StopServer(); err != nil {
		errs = append(errs, fmt.Errorf("failed to stop server: %w", err))
	}
	if err := os.RemoveAll(testCtx.TempDir); err != nil && !os.IsNotExist(err) {
		errs = append(errs, fmt.Errorf("failed to remove temp directory %s: %w", testCtx.TempDir, err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("cleanup errors: %v", errs)
	}
	return nil
}

// StopServer stops the httptest server if one is running.
func (testCtx *TestContext) StopServer() error {
	if testCtx.HTTPTestServer == nil {
		return nil
	}
	return testCtx.stopTestHTTPServer()
}

// AddEnvVar sets an environment variable for command execution.
func (testCtx *TestContext) AddEnvVar(name, value string) {
	testCtx.EnvVars[name] = value
}

// path resolves name inside the scenario temp directory.
func (testCtx *TestContext) path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(testCtx.TempDir, name)
}

// substituteCommandVariables expands {tmp} and {fixtures}.
func (testCtx *TestContext) substituteCommandVariables(command string) string {
	command = strings.ReplaceAll(command, "{fixtures}", testCtx.FixturesDir)
	return strings.ReplaceAll(command, "{tmp}", testCtx.TempDir)
}
