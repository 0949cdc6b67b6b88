package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxResponseBody = 1 << 20

// Method is an HTTP method supported by the backend client
type Method string

const (
	MethodGet  Method = http.MethodGet
	MethodPost Method = http.MethodPost
)

var (
	// ErrRequestFailed matches every transport or status failure
	ErrRequestFailed = errors.New("backend request failed")

	// ErrUnsupportedMethod is returned for methods other than GET and POST
	ErrUnsupportedMethod = errors.New("unsupported method")
)

// RequestError carries the target URL and the underlying cause
type RequestError struct {
	Method string
	URL    string
	Err    error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// Is reports every RequestError as ErrRequestFailed
func (e *RequestError) Is(target error) bool { return target == ErrRequestFailed }

// HostFunc resolves the backend base URL. It is called once per request.
type HostFunc func() string

// Client represents the Context Cache backend API client
type Client struct {
	host       HostFunc
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new backend client
func NewClient(host HostFunc, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		host: host,
		// No overall timeout: POST /ingest replies only after the whole
		// pipeline ran. Callers bound requests through ctx.
		httpClient: &http.Client{},
		logger:     logger,
	}
}

// JoinURL joins a base URL and a path, dropping trailing slashes from base
func JoinURL(base, path string) string {
	return strings.TrimRight(base, "/") + path
}

// URL returns the full URL for path against the currently resolved host
func (c *Client) URL(path string) string {
	return JoinURL(c.host(), path)
}

// Send issues a single request and discards the response body.
// body is encoded as JSON and attached only for POST.
func (c *Client) Send(ctx context.Context, path string, method Method, body interface{}) error {
	_, err := c.do(ctx, method, path, body)
	return err
}

// Ingest triggers ingestion of all registered sources
func (c *Client) Ingest(ctx context.Context) (*IngestResponse, error) {
	respBody, err := c.do(ctx, MethodPost, IngestPath, IngestAll)
	if err != nil {
		return nil, err
	}

	var result IngestResponse
	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, &result); err != nil {
			// Status already succeeded, the body is informational
			c.logger.Warn("Failed to parse ingest response", zap.Error(err))
		}
	}
	return &result, nil
}

// Health queries the backend liveness endpoint
func (c *Client) Health(ctx context.Context) (bool, error) {
	respBody, err := c.do(ctx, MethodGet, HealthPath, nil)
	if err != nil {
		return false, err
	}

	var result HealthResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return false, &RequestError{Method: string(MethodGet), URL: c.URL(HealthPath), Err: fmt.Errorf("failed to parse response: %w", err)}
	}
	return result.OK, nil
}

// do performs a single HTTP request without retries
func (c *Client) do(ctx context.Context, method Method, path string, body interface{}) ([]byte, error) {
	if method != MethodGet && method != MethodPost {
		return nil, fmt.Errorf("%w %s", ErrUnsupportedMethod, method)
	}

	url := c.URL(path)
	fail := func(err error) error {
		return &RequestError{Method: string(method), URL: url, Err: err}
	}

	var bodyReader io.Reader
	if method == MethodPost && body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fail(fmt.Errorf("failed to marshal request body: %w", err))
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, string(method), url, bodyReader)
	if err != nil {
		return nil, fail(fmt.Errorf("failed to create request: %w", err))
	}

	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("Accept", "application/json")
	if bodyReader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fail(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fail(fmt.Errorf("failed to read response body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fail(fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody))))
	}

	c.logger.Info("Backend request completed",
		zap.String("method", string(method)),
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", requestID),
		zap.Duration("took", time.Since(started)))

	return respBody, nil
}
