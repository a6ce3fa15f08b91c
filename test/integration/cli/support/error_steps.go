package support

import (
	"fmt"
	"strings"

	"github.com/cucumber/godog"
)

// RegisterErrorSteps registers error verification steps.
func (testCtx *TestContext) RegisterErrorSteps(sc *godog.ScenarioContext) {
	sc.Step(`^the error should mention "([^"]*)"$`, testCtx.theErrorShouldMention)
	sc.Step(`^the error should mention "([^"]*)" or "([^"]*)"$`, testCtx.theErrorShouldMentionEither)
	sc.Step(`^the error should suggest using --help$`, func() error {
		return testCtx.theErrorShouldMention("unknown")
	})
}

// errorText combines the returned error and everything the command wrote.
func (testCtx *TestContext) errorText() string {
	text := testCtx.LastOutput
	if testCtx.LastError != nil {
		text += " " + testCtx.LastError.Error()
	}
	return strings.ToLower(text)
}

func (testCtx *TestContext) theErrorShouldMention(errorText string) error {
	if testCtx.LastError == nil {
		return fmt.Errorf("no error occurred, but expected error containing '%s'", errorText)
	}
	if !strings.Contains(testCtx.errorText(), strings.ToLower(errorText)) {
		return fmt.Errorf("error does not contain '%s'\nActual error: %s", errorText, testCtx.errorText())
	}
	return nil
}

func (testCtx *TestContext) theErrorShouldMentionEither(a, b string) error {
	if testCtx.theErrorShouldMention(a) == nil {
		return nil
	}
	return testCtx.theErrorShouldMention(b)
}
