package support

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/MeKo-Tech/debarkoder/cmd/debarkoder/cmd"
	"github.com/cucumber/godog"
)

// RegisterCommonSteps registers command execution and output steps.
func (testCtx *TestContext) RegisterCommonSteps(sc *godog.ScenarioContext) {
	sc.Step(`^I run "([^"]*)"$`, testCtx.iRunCommand)
	sc.Step(`^the command should succeed$`, testCtx.theCommandShouldSucceed)
	sc.Step(`^the command should fail$`, testCtx.theCommandShouldFail)

	sc.Step(`^the output should contain "([^"]*)"$`, testCtx.theOutputShouldContain)
	sc.Step(`^the output should not contain "([^"]*)"$`, testCtx.theOutputShouldNotContain)
	sc.Step(`^line (\d+) of the output should be "([^"]*)"$`, testCtx.lineOfTheOutputShouldBe)
	sc.Step(`^the output should have (\d+) lines?$`, testCtx.theOutputShouldHaveLines)
	sc.Step(`^the output should be valid JSON$`, testCtx.theOutputShouldBeValidJSON)
	sc.Step(`^the JSON should contain "([^"]*)"$`, testCtx.theJSONShouldContain)
	sc.Step(`^the output should be valid CSV$`, testCtx.theOutputShouldBeValidCSV)

	sc.Step(`^the file "([^"]*)" should exist$`, testCtx.theFileShouldExist)
	sc.Step(`^the file "([^"]*)" should contain "([^"]*)"$`, testCtx.theFileShouldContain)
	sc.Step(`^the environment variable "([^"]*)" is set to "([^"]*)"$`, testCtx.theEnvironmentVariableIsSetTo)
	sc.Step(`^a config file "([^"]*)" with:$`, testCtx.aConfigFileWith)
}

// iRunCommand executes a debarkoder command line in-process from the
// scenario temp directory.
func (testCtx *TestContext) iRunCommand(command string) error {
	command = testCtx.substituteCommandVariables(command)
	testCtx.LastCommand = command

	parts := strings.Fields(command)
	if len(parts) == 0 {
		return errors.New("empty command")
	}
	if parts[0] != "debarkoder" {
		return fmt.Errorf("unsupported program %q", parts[0])
	}

	restore, err := testCtx.enterEnvironment()
	if err != nil {
		return err
	}
	defer restore()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	root := cmd.NewRootCommand()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(parts[1:])

	start := time.Now()
	err = root.ExecuteContext(ctx)
	testCtx.LastDuration = time.Since(start)
	testCtx.LastStdout = stdout.String()
	testCtx.LastOutput = stdout.String() + stderr.String()
	testCtx.LastError = err
	testCtx.LastExitCode = 0
	if err != nil {
		testCtx.LastExitCode = 1
	}
	return nil
}

// enterEnvironment switches into the temp directory with an isolated home
// and the scenario's environment variables. The returned func undoes it.
func (testCtx *TestContext) enterEnvironment() (func(), error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	home := filepath.Join(testCtx.TempDir, "home")
	if err := os.MkdirAll(home, 0o750); err != nil {
		return nil, err
	}

	vars := map[string]string{"HOME": home, "XDG_CONFIG_HOME": filepath.Join(home, ".config")}
	for k, v := range testCtx.EnvVars {
		vars[k] = v
	}

	type saved struct {
		value string
		set   bool
	}
	previous := make(map[string]saved, len(vars))
	for k, v := range vars {
		old, ok := os.LookupEnv(k)
		previous[k] = saved{old, ok}
		_ = os.Setenv(k, v)
	}
	if err := os.Chdir(testCtx.TempDir); err != nil {
		return nil, err
	}

	return func() {
		_ = os.Chdir(wd)
		for k, p := range previous {
			if p.set {
				_ = os.Setenv(k, p.value)
			} else {
				_ = os.Unsetenv(k)
			}
		}
	}, nil
}

func (testCtx *TestContext) theCommandShouldSucceed() error {
	if testCtx.LastExitCode != 0 {
		return fmt.Errorf("command failed: %w\nOutput: %s", testCtx.LastError, testCtx.LastOutput)
	}
	return nil
}

func (testCtx *TestContext) theCommandShouldFail() error {
	if testCtx.LastExitCode == 0 {
		return fmt.Errorf("command succeeded when it should have failed\nOutput: %s", testCtx.LastOutput)
	}
	return nil
}

func (testCtx *TestContext) theOutputShouldContain(expectedText string) error {
	if !strings.Contains(testCtx.LastOutput, expectedText) {
		return fmt.Errorf("output does not contain '%s'\nActual output: %s", expectedText, testCtx.LastOutput)
	}
	return nil
}

func (testCtx *TestContext) theOutputShouldNotContain(text string) error {
	if strings.Contains(testCtx.LastOutput, text) {
		return fmt.Errorf("output unexpectedly contains '%s'\nActual output: %s", text, testCtx.LastOutput)
	}
	return nil
}

// stdoutLines splits the command's standard output into lines.
func (testCtx *TestContext) stdoutLines() []string {
	out := strings.TrimRight(testCtx.LastStdout, "\n")
	if out == "" {
		return nil
	}
	return strings.Split(out, "\n")
}

func (testCtx *TestContext) lineOfTheOutputShouldBe(n int, expected string) error {
	lines := testCtx.stdoutLines()
	if n < 1 || n > len(lines) {
		return fmt.Errorf("output has %d lines, no line %d\nOutput: %s", len(lines), n, testCtx.LastStdout)
	}
	if lines[n-1] != expected {
		return fmt.Errorf("line %d is %q, want %q", n, lines[n-1], expected)
	}
	return nil
}

func (testCtx *TestContext) theOutputShouldHaveLines(n int) error {
	if got := len(testCtx.stdoutLines()); got != n {
		return fmt.Errorf("output has %d lines, want %d\nOutput: %s", got, n, testCtx.LastStdout)
	}
	return nil
}

func (testCtx *TestContext) theOutputShouldBeValidJSON() error {
	var js json.RawMessage
	if err := json.Unmarshal([]byte(testCtx.LastStdout), &js); err != nil {
		return fmt.Errorf("output is not valid JSON: %w\nOutput: %s", err, testCtx.LastStdout)
	}
	return nil
}

// theJSONShouldContain checks a dotted field path; numeric parts index
// arrays ("pages.0.images").
func (testCtx *TestContext) theJSONShouldContain(field string) error {
	var data any
	if err := json.Unmarshal([]byte(testCtx.LastStdout), &data); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}
	current := data
	parts := strings.Split(field, ".")
	for i, part := range parts {
		switch v := current.(type) {
		case map[string]any:
			next, ok := v[part]
			if !ok {
				return fmt.Errorf("field '%s' not found in JSON", strings.Join(parts[:i+1], "."))
			}
			current = next
		case []any:
			var idx int
			if _, err := fmt.Sscanf(part, "%d", &idx); err != nil || idx < 0 || idx >= len(v) {
				return fmt.Errorf("index '%s' not valid for array of %d", part, len(v))
			}
			current = v[idx]
		default:
			return fmt.Errorf("cannot navigate into non-object field '%s'", strings.Join(parts[:i], "."))
		}
	}
	return nil
}

func (testCtx *TestContext) theOutputShouldBeValidCSV() error {
	records, err := csv.NewReader(strings.NewReader(testCtx.LastStdout)).ReadAll()
	if err != nil {
		return fmt.Errorf("output is not valid CSV: %w", err)
	}
	if len(records) < 2 {
		return fmt.Errorf("CSV output has %d records, want a header and data", len(records))
	}
	return nil
}

func (testCtx *TestContext) theFileShouldExist(filename string) error {
	if _, err := os.Stat(testCtx.path(filename)); err != nil {
		return fmt.Errorf("file %s does not exist: %w", filename, err)
	}
	return nil
}

func (testCtx *TestContext) theFileShouldContain(filename, expected string) error {
	data, err := os.ReadFile(testCtx.path(filename))
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filename, err)
	}
	if !strings.Contains(string(data), expected) {
		return fmt.Errorf("file %s does not contain '%s'\nContent: %s", filename, expected, data)
	}
	return nil
}

func (testCtx *TestContext) theEnvironmentVariableIsSetTo(name, value string) error {
	testCtx.AddEnvVar(name, value)
	return nil
}

func (testCtx *TestContext) aConfigFileWith(filename string, content *godog.DocString) error {
	path := testCtx.path(filename)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content.Content), 0o600)
}
