package genstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	errorspkg "github.com/mealforge/mealforge/errors"
	"github.com/mealforge/mealforge/recipe"
)

// Transport opens the byte stream for one generation request. Providers and
// the HTTP client implement it; the orchestrator only ever reads the stream
// sequentially until EOF.
type Transport interface {
	Open(ctx context.Context, req *recipe.GenerationRequest, token string) (io.ReadCloser, error)
}

// TokenFunc resolves the caller's current authentication credential. An
// empty token (or an error) short-circuits the session before any network
// activity.
type TokenFunc func(ctx context.Context) (string, error)

// StaticToken returns a TokenFunc that always yields the given token.
func StaticToken(token string) TokenFunc {
	return func(context.Context) (string, error) { return token, nil }
}

// generatePath is the streaming generation endpoint of the recipe API.
const generatePath = "/api/recipes/generate/stream"

// errBodyLimit bounds how much of a failed response is folded into an error.
const errBodyLimit = 2048

// HTTPTransport streams generation records from the recipe API over a
// long-lived HTTP response.
type HTTPTransport struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPTransport creates an HTTP transport for the given API base URL.
func NewHTTPTransport(baseURL string) *HTTPTransport {
	return &HTTPTransport{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		Client:  &http.Client{},
	}
}

// Open issues the generation request and returns the response body for
// streaming. A non-2xx status is surfaced as an error before any record is
// read, with a bounded excerpt of the response body for diagnostics.
func (t *HTTPTransport) Open(ctx context.Context, req *recipe.GenerationRequest, token string) (io.ReadCloser, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode generation request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.BaseURL+generatePath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build generation request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set("Authorization", "Bearer "+token)

	client := t.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to open generation stream: %w", err)
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		resp.Body.Close()
		return nil, fmt.Errorf("generation request rejected with status %d: %w",
			resp.StatusCode, errorspkg.ErrUnauthorized)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, errBodyLimit))
		resp.Body.Close()
		return nil, fmt.Errorf("generation request failed with status %d: %s",
			resp.StatusCode, strings.TrimSpace(string(excerpt)))
	}
	return resp.Body, nil
}
