package lineupcheck

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/okian/lineup/internal/domain/model"
	"github.com/okian/lineup/internal/domain/types"
)

// HTTPClient wraps http.Client with a per-request timeout.
type HTTPClient struct {
	client *http.Client
}

// newHTTPClient creates a new HTTP client with timeout.
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{client: &http.Client{Timeout: timeout}}
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with a JSON body.
func (c *HTTPClient) Post(ctx context.Context, url string, body any) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// readBody reads and closes the response body and fails on non-200 status.
func readBody(resp *http.Response) ([]byte, error) {
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrRequest, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", ErrRequest, resp.StatusCode, bytes.TrimSpace(body))
	}
	return body, nil
}

// fetchPlayers reads the service's active snapshot.
func fetchPlayers(ctx context.Context, client *HTTPClient, baseURL string) ([]model.Player, error) {
	resp, err := client.Get(ctx, baseURL+"/api/players")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequest, err)
	}
	body, err := readBody(resp)
	if err != nil {
		return nil, err
	}
	var players []model.Player
	if err := json.Unmarshal(body, &players); err != nil {
		return nil, fmt.Errorf("%w: decode players: %w", ErrRequest, err)
	}
	return players, nil
}

// analyze submits one analyze request and returns the raw response body.
func analyze(ctx context.Context, client *HTTPClient, baseURL string, names []string) ([]byte, error) {
	resp, err := client.Post(ctx, baseURL+"/api/analyze", types.AnalyzeRequest{Players: names})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequest, err)
	}
	return readBody(resp)
}
