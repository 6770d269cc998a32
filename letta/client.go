// Package letta is the upstream collaborator: a thin HTTP client for the
// Letta agent-platform REST API plus the tool, resource and prompt handlers
// registered with the capability registry. All handlers issue requests
// through the single configured client.
package letta

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
)

// passwordHeader is the custom credential header the Letta server expects in
// addition to the bearer token.
const passwordHeader = "X-BARE-PASSWORD"

// Client calls the Letta REST API with a fixed base URL and credentials.
type Client struct {
	baseURL    string
	token      string
	password   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient builds a client from config; logger may not be nil.
func NewClient(cfg *Config, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		token:      cfg.Token,
		password:   cfg.Password,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     logger,
	}
}

// do issues one JSON request. A non-2xx status is an error carrying the
// upstream body; out, when non-nil, receives the decoded response.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "failed to encode request body")
		}
		reader = bytes.NewReader(data)
	}
	request, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return errors.Wrapf(err, "failed to build request %v %v", method, path)
	}
	request.Header.Set("Accept", "application/json")
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		request.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.password != "" {
		request.Header.Set(passwordHeader, c.password)
	}

	started := time.Now()
	response, err := c.httpClient.Do(request)
	if err != nil {
		return errors.Wrapf(err, "letta request failed: %v %v", method, path)
	}
	defer response.Body.Close()
	c.logger.Debug("letta request",
		"method", method, "path", path,
		"status", response.StatusCode, "elapsed", time.Since(started))

	data, err := io.ReadAll(response.Body)
	if err != nil {
		return errors.Wrapf(err, "failed to read response: %v %v", method, path)
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return errors.Errorf("letta API error: %v %v: status %v: %s",
			method, path, response.StatusCode, truncate(data, 512))
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrapf(err, "failed to decode response: %v %v", method, path)
	}
	return nil
}

func truncate(data []byte, limit int) string {
	if len(data) <= limit {
		return string(data)
	}
	return string(data[:limit]) + "..."
}
