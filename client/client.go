// Package client holds the thin HTTP clients for the external services
// the pipeline talks to: an OpenAI-compatible chat-completions API for
// scripts and metadata, an ElevenLabs-style text-to-speech API, an
// image-generation API, and a Pexels-style stock-footage API.
//
// Clients return errors wrapped with the response body so a failed call
// is diagnosable from logs alone.
package client

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// readBody drains a response body, capping what error paths carry.
func readBody(resp *http.Response) ([]byte, error) {
	const maxErrorBody = 64 << 10
	return io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
}

// statusError turns a non-2xx response into an error carrying the body.
func statusError(service string, resp *http.Response) error {
	body, _ := readBody(resp)
	return fmt.Errorf("%s API error (status %d): %s", service, resp.StatusCode, string(body))
}

// saveBody streams a response body to path, creating parent directories.
func saveBody(resp *http.Response, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", path, err)
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(path)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
