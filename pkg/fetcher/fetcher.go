package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxErrorBody bounds how much of a failed response is kept for error messages.
const maxErrorBody = 1024

// RemoteError is a failure reported by a remote service. Message is the
// text the service returned and is meant to be shown to the user as is.
type RemoteError struct {
	Service    string
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	return e.Message
}

type Fetcher struct {
	client *http.Client
}

// NewFetcher returns a Fetcher whose requests give up after timeout.
// A zero timeout means no client-side limit.
func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
	}
}

func (f *Fetcher) GetHtmlBytes(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch HTML, status code: %d", resp.StatusCode)
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return bodyBytes, nil
}

// NewJSONRequest builds a request with an optional JSON body.
func NewJSONRequest(ctx context.Context, method, url string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// DoJSON sends req and decodes the response body into out. Non-2xx
// responses are still decoded when possible so callers can read an error
// payload; the returned status code tells the two apart.
func (f *Fetcher) DoJSON(req *http.Request, out any) (int, error) {
	resp, err := f.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to make HTTP request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return resp.StatusCode, nil
		}
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return resp.StatusCode, fmt.Errorf("failed to decode response: %w (body: %s)", err, body)
	}
	return resp.StatusCode, nil
}

// StatusMessage is the fallback user-facing text for a failed status code.
func StatusMessage(code int) string {
	if text := http.StatusText(code); text != "" {
		return fmt.Sprintf("%d %s", code, text)
	}
	return fmt.Sprintf("status %d", code)
}
