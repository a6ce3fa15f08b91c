package support

import (
	"bytes"
	"fmt"
	"image/png"
	"net/http"
	"strings"

	"github.com/MeKo-Tech/debarkoder/internal/server"
	"github.com/cucumber/godog"
)

// RegisterServerSteps registers HTTP server steps.
func (testCtx *TestContext) RegisterServerSteps(sc *godog.ScenarioContext) {
	sc.Step(`^the decoding server is running$`, func() error {
		return testCtx.startTestHTTPServer(server.RateLimitConfig{})
	})
	sc.Step(`^the decoding server is running with a limit of (\d+) requests? per minute$`, func(n int) error {
		return testCtx.startTestHTTPServer(server.RateLimitConfig{Enabled: true, RequestsPerMinute: n})
	})

	sc.Step(`^I send a GET request to "([^"]*)"$`, testCtx.iSendAGETRequestTo)
	sc.Step(`^I upload "([^"]*)" to "([^"]*)"$`, func(file, path string) error {
		return testCtx.uploadFile(path, file, nil)
	})
	sc.Step(`^I upload "([^"]*)" to "([^"]*)" with "([^"]*)" set to "([^"]*)"$`, func(file, path, key, value string) error {
		return testCtx.uploadFile(path, file, map[string]string{key: value})
	})

	sc.Step(`^the response status should be (\d+)$`, testCtx.theResponseStatusShouldBe)
	sc.Step(`^the response should contain "([^"]*)"$`, testCtx.theResponseShouldContain)
	sc.Step(`^the response header "([^"]*)" should contain "([^"]*)"$`, testCtx.theResponseHeaderShouldContain)
	sc.Step(`^the response should be a PNG image$`, testCtx.theResponseShouldBeAPNGImage)
}

func (testCtx *TestContext) iSendAGETRequestTo(path string) error {
	target, err := testCtx.serverURL(path)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	return testCtx.doHTTPRequest(req)
}

func (testCtx *TestContext) theResponseStatusShouldBe(code int) error {
	if testCtx.LastHTTPStatusCode != code {
		return fmt.Errorf("expected status %d, got %d\nBody: %s", code, testCtx.LastHTTPStatusCode, testCtx.LastHTTPResponse)
	}
	return nil
}

func (testCtx *TestContext) theResponseShouldContain(text string) error {
	if !strings.Contains(testCtx.LastHTTPResponse, text) {
		return fmt.Errorf("response does not contain '%s'\nBody: %s", text, testCtx.LastHTTPResponse)
	}
	return nil
}

func (testCtx *TestContext) theResponseHeaderShouldContain(name, value string) error {
	got := testCtx.LastHTTPHeaders.Get(name)
	if !strings.Contains(got, value) {
		return fmt.Errorf("header %s is %q, want it to contain %q", name, got, value)
	}
	return nil
}

func (testCtx *TestContext) theResponseShouldBeAPNGImage() error {
	if _, err := png.Decode(bytes.NewReader([]byte(testCtx.LastHTTPResponse))); err != nil {
		return fmt.Errorf("response is not a PNG image: %w", err)
	}
	return nil
}
