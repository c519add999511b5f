// Package api implements the HTTP contract of the Pocket desktop companion
// service under /mobile.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/pocketcode/pocket-cli/internal/domain"
)

const (
	// SessionHeader carries the session id on every request once a session
	// exists.
	SessionHeader = "X-Session-Id"

	DefaultRequestTimeout = 15 * time.Second

	maxResponseBytes = 1 << 20
)

// TokenSource provides the current session token and knows how to replace it
// when the server rejects it.
type TokenSource interface {
	Token() string
	Renew(ctx context.Context) error
}

type Client struct {
	httpClient *http.Client

	mu      sync.RWMutex
	baseURL string
	tokens  TokenSource
}

func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SetTokenSource wires the session manager in after construction; the session
// manager itself needs this client to create sessions.
func (c *Client) SetTokenSource(tokens TokenSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = tokens
}

func (c *Client) SetTarget(host string, port int) error {
	base, err := buildBaseURL(host, port)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.baseURL = base
	return nil
}

func (c *Client) Target() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}

// callResult makes the 401 outcome explicit instead of hiding it in an
// interceptor: a call either completed or the session was rejected.
type callResult int

const (
	callOK callResult = iota
	callAuthExpired
)

// do executes the request with at most one retry after session renewal. A
// second rejection is terminal for the call.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	payload, result, err := c.doOnce(ctx, method, path, query, body)
	if err != nil {
		return nil, err
	}
	if result == callOK {
		return payload, nil
	}

	tokens := c.tokenSource()
	if tokens == nil {
		return nil, domain.ErrAuthExpired
	}
	if err := tokens.Renew(ctx); err != nil {
		return nil, fmt.Errorf("renew session: %w", err)
	}

	payload, result, err = c.doOnce(ctx, method, path, query, body)
	if err != nil {
		return nil, err
	}
	if result == callAuthExpired {
		return nil, domain.ErrAuthExpired
	}

	return payload, nil
}

// doOnce executes exactly one HTTP attempt. Session adapters use it directly
// so that session creation can never recurse into renewal.
func (c *Client) doOnce(ctx context.Context, method, path string, query url.Values, body any) ([]byte, callResult, error) {
	base := c.Target()
	if base == "" {
		return nil, callOK, errors.New("no target host configured")
	}

	endpoint, err := buildEndpointURL(base, path, query)
	if err != nil {
		return nil, callOK, err
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, callOK, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, callOK, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tokens := c.tokenSource(); tokens != nil {
		if token := tokens.Token(); token != "" {
			req.Header.Set(SessionHeader, token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, callOK, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, callOK, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, callAuthExpired, nil
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, callOK, statusError(resp.StatusCode, payload)
	}

	return payload, callOK, nil
}

func (c *Client) tokenSource() TokenSource {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tokens
}

// envelope is embedded in every response schema. A success:false body, on any
// status code, surfaces the server-supplied message.
type envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func (e envelope) check() error {
	if e.Success {
		return nil
	}
	return &domain.ServerError{Message: e.Error}
}

func statusError(statusCode int, payload []byte) error {
	var env envelope
	if err := json.Unmarshal(payload, &env); err == nil && env.Error != "" {
		return &domain.ServerError{Message: env.Error}
	}
	return fmt.Errorf("request failed: status %d", statusCode)
}

func buildBaseURL(host string, port int) (string, error) {
	host = strings.TrimSpace(host)
	if host == "" {
		return "", errors.New("host is required")
	}
	if port <= 0 || port > 65535 {
		return "", fmt.Errorf("invalid port %d", port)
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}

	parsed, err := url.Parse(fmt.Sprintf("%s:%d", host, port))
	if err != nil {
		return "", fmt.Errorf("parse target host: %w", err)
	}
	if parsed.Hostname() == "" {
		return "", errors.New("target host is empty")
	}

	return parsed.String(), nil
}

func buildEndpointURL(base, path string, query url.Values) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}

	endpoint, err := parsed.Parse(path)
	if err != nil {
		return "", fmt.Errorf("parse endpoint path: %w", err)
	}
	if len(query) > 0 {
		endpoint.RawQuery = query.Encode()
	}

	return endpoint.String(), nil
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}

	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}

	return parsed
}
