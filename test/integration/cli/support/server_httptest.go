package support

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"

	"github.com/MeKo-Tech/debarkoder/internal/pipeline"
	"github.com/MeKo-Tech/debarkoder/internal/server"
	"github.com/MeKo-Tech/debarkoder/internal/utils"
)

// HTTPTestServerWrapper wraps an httptest.Server around a real decode
// server.
type HTTPTestServerWrapper struct {
	Server     *httptest.Server
	TestServer *server.Server
}

// startTestHTTPServer starts a decode server with the default pipeline.
func (testCtx *TestContext) startTestHTTPServer(rateLimit server.RateLimitConfig) error {
	if testCtx.HTTPTestServer != nil {
		return nil
	}

	srv, err := server.NewServer(server.Config{
		CORSOrigin:     "*",
		MaxUploadMB:    10,
		TimeoutSec:     30,
		MaxBatchItems:  5,
		PipelineConfig: pipeline.DefaultConfig(),
		OverlayEnabled: true,
		OverlayColor:   utils.DefaultOverlayColor,
		RateLimit:      rateLimit,
		Version:        "test",
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	mux := http.NewServeMux()
	srv.SetupRoutes(mux)

	testCtx.HTTPTestServer = &HTTPTestServerWrapper{
		Server:     httptest.NewServer(mux),
		TestServer: srv,
	}
	return nil
}

func (testCtx *TestContext) stopTestHTTPServer() error {
	w := testCtx.HTTPTestServer
	testCtx.HTTPTestServer = nil
	w.Server.Close()
	return w.TestServer.Close()
}

func (testCtx *TestContext) serverURL(path string) (string, error) {
	if testCtx.HTTPTestServer == nil {
		return "", fmt.Errorf("server is not running")
	}
	return testCtx.HTTPTestServer.Server.URL + path, nil
}

// doHTTPRequest sends req and records status, headers and body.
func (testCtx *TestContext) doHTTPRequest(req *http.Request) error {
	resp, err := testCtx.HTTPTestServer.Server.Client().Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	testCtx.LastHTTPStatusCode = resp.StatusCode
	testCtx.LastHTTPHeaders = resp.Header
	testCtx.LastHTTPResponse = string(body)
	return nil
}

// uploadField picks the multipart field the server expects for file.
func uploadField(file string) string {
	if strings.EqualFold(filepath.Ext(file), ".pdf") {
		return "pdf"
	}
	return "image"
}

// uploadFile posts file as multipart form data with extra form fields.
func (testCtx *TestContext) uploadFile(path, file string, fields map[string]string) error {
	target, err := testCtx.serverURL(path)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(testCtx.path(file))
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", file, err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(uploadField(file), filepath.Base(file))
	if err != nil {
		return err
	}
	if _, err := part.Write(data); err != nil {
		return err
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return err
		}
	}
	if err := mw.Close(); err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, target, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return testCtx.doHTTPRequest(req)
}
