// Package tracker talks to the flow-cell tracking service: resolving,
// registering, and updating flow-cell records and submitting index
// histograms. Client is a thin typed wrapper over the service's JSON
// REST API; Syncer implements the decision flow that keeps a run
// directory and its remote record in agreement.
package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// maxResponseBody caps how much of a response is read into memory.
const maxResponseBody = 8 << 20

// Config holds configuration for creating a Client.
type Config struct {
	// BaseURL is the root URL of the tracking service.
	BaseURL string
	// Token authenticates every request via "Authorization: Token ...".
	Token string
	// HTTPClient is used for all requests. Defaults to
	// http.DefaultClient.
	HTTPClient *http.Client
	// Retry bounds retrying of transient failures. The zero value
	// disables retrying.
	Retry Policy
	// Logger receives request-level debug logs. Defaults to a discard
	// logger.
	Logger *slog.Logger
}

// Client is a typed client for the tracking service REST API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	retry      Policy
	logger     *slog.Logger
}

// NewClient creates a tracking service client from the given
// configuration.
func NewClient(config Config) (*Client, error) {
	baseURL := strings.TrimRight(config.BaseURL, "/")
	if baseURL == "" {
		return nil, fmt.Errorf("tracker: server URL is required")
	}
	if config.Token == "" {
		return nil, fmt.Errorf("tracker: API token is required")
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Client{
		baseURL:    baseURL,
		token:      config.Token,
		httpClient: httpClient,
		retry:      config.Retry,
		logger:     logger,
	}, nil
}

// do executes one authenticated request against the service, retrying
// transient failures per the client's policy. The path is relative to
// the base URL. A non-nil requestBody is JSON-encoded; a non-nil result
// receives the decoded response body. Non-2xx responses are returned as
// *APIError.
func (c *Client) do(ctx context.Context, method, path string, requestBody, result any) error {
	return c.withRetry(ctx, func(ctx context.Context) error {
		var bodyReader io.Reader
		if requestBody != nil {
			encoded, err := json.Marshal(requestBody)
			if err != nil {
				return fmt.Errorf("tracker: encoding request body: %w", err)
			}
			bodyReader = bytes.NewReader(encoded)
		}

		request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
		if err != nil {
			return fmt.Errorf("tracker: creating request: %w", err)
		}
		request.Header.Set("Authorization", "Token "+c.token)
		request.Header.Set("Accept", "application/json")
		if requestBody != nil {
			request.Header.Set("Content-Type", "application/json")
		}

		c.logger.Debug("tracking service request", "method", method, "path", path)
		response, err := c.httpClient.Do(request)
		if err != nil {
			return fmt.Errorf("tracker: %s %s: %w", method, path, err)
		}
		defer response.Body.Close()

		body, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBody))
		if err != nil {
			return fmt.Errorf("tracker: reading response body: %w", err)
		}
		if response.StatusCode < 200 || response.StatusCode >= 300 {
			return parseAPIError(response.StatusCode, body)
		}
		if result != nil {
			if err := json.Unmarshal(body, result); err != nil {
				return fmt.Errorf("tracker: decoding response: %w", err)
			}
		}
		return nil
	})
}

func (c *Client) get(ctx context.Context, path string, result any) error {
	return c.do(ctx, http.MethodGet, path, nil, result)
}

func (c *Client) post(ctx context.Context, path string, requestBody, result any) error {
	return c.do(ctx, http.MethodPost, path, requestBody, result)
}

func (c *Client) put(ctx context.Context, path string, requestBody, result any) error {
	return c.do(ctx, http.MethodPut, path, requestBody, result)
}

// parseAPIError extracts the service's "detail" message when the error
// body is structured JSON, falling back to the raw body.
func parseAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode}

	var wire struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &wire) == nil && wire.Detail != "" {
		apiErr.Message = wire.Detail
	} else {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	return apiErr
}
