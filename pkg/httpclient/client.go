package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Client wraps outbound calls to one external HTTP endpoint with timeout,
// bounded retry and error classification. Transport failures and 5xx
// responses are retried under the policy; 4xx responses fail fast unless
// the caller designated the status as retryable.
type Client struct {
	service     string
	baseURL     string
	timeout     time.Duration
	policy      RetryPolicy
	retryStatus map[int]bool
	headers     map[string]string
	httpClient  *http.Client
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *Client) { c.policy = p }
}

// WithHeader sets a header on every request, e.g. an API key.
func WithHeader(key, value string) Option {
	return func(c *Client) { c.headers[key] = value }
}

// WithRetryableStatus designates 4xx status codes that should be retried
// instead of failing fast.
func WithRetryableStatus(codes ...int) Option {
	return func(c *Client) {
		for _, code := range codes {
			c.retryStatus[code] = true
		}
	}
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// New creates a client for one external service. service names the remote
// in logs and errors ("openlibrary", "jsonbin").
func New(service, baseURL string, opts ...Option) *Client {
	c := &Client{
		service:     service,
		baseURL:     strings.TrimRight(baseURL, "/"),
		timeout:     10 * time.Second,
		policy:      DefaultRetryPolicy(),
		retryStatus: map[int]bool{http.StatusTooManyRequests: true},
		headers:     map[string]string{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	return c
}

// Response is the decoded-enough result of a successful call.
type Response struct {
	StatusCode int
	Body       []byte
}

// Decode unmarshals the response body into dest.
func (r *Response) Decode(dest interface{}) error {
	return json.Unmarshal(r.Body, dest)
}

func (c *Client) Get(ctx context.Context, endpoint string, query url.Values) (*Response, error) {
	return c.Do(ctx, http.MethodGet, endpoint, query, nil)
}

func (c *Client) Post(ctx context.Context, endpoint string, body interface{}) (*Response, error) {
	return c.Do(ctx, http.MethodPost, endpoint, nil, body)
}

// Do performs one logical call with retries. The only error it returns is
// *ServiceError.
func (c *Client) Do(ctx context.Context, method, endpoint string, query url.Values, body interface{}) (*Response, error) {
	target := c.buildURL(endpoint, query)

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, &ServiceError{
				Service: c.service, Method: method, URL: target,
				Attempts: 0, Cause: fmt.Errorf("encode request body: %w", err),
			}
		}
	}

	var lastStatus int
	var lastErr error
	attempts := 0

loop:
	for attempt := 1; attempt <= c.policy.MaxAttempts; attempt++ {
		attempts = attempt
		resp, retryable, err := c.attempt(ctx, method, target, payload)
		if err == nil {
			if attempt > 1 {
				log.Info().
					Str("service", c.service).
					Str("method", method).
					Str("url", target).
					Int("attempts", attempt).
					Msg("external call succeeded after retry")
			}
			return resp, nil
		}

		lastErr = err
		lastStatus = 0
		if resp != nil {
			lastStatus = resp.StatusCode
		}

		log.Warn().
			Str("service", c.service).
			Str("method", method).
			Str("url", target).
			Int("status", lastStatus).
			Int("attempt", attempt).
			Int("max_attempts", c.policy.MaxAttempts).
			Err(err).
			Msg("external call attempt failed")

		if !retryable || attempt == c.policy.MaxAttempts {
			break
		}

		delay := c.policy.Backoff(attempt)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			lastErr = ctx.Err()
			break loop
		}
	}

	svcErr := &ServiceError{
		Service:    c.service,
		Method:     method,
		URL:        target,
		StatusCode: lastStatus,
		Attempts:   attempts,
		Cause:      lastErr,
	}

	log.Error().
		Str("service", c.service).
		Str("method", method).
		Str("url", target).
		Int("status", lastStatus).
		Err(lastErr).
		Msg("external call failed")

	return nil, svcErr
}

// attempt performs a single HTTP exchange. The returned bool says whether
// the failure may be retried.
func (c *Client) attempt(ctx context.Context, method, target string, payload []byte) (*Response, bool, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(callCtx, method, target, reader)
	if err != nil {
		return nil, false, fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		// Transport-level failure (timeout, connection refused, DNS).
		return nil, true, err
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("read response body: %w", err)
	}

	resp := &Response{StatusCode: httpResp.StatusCode, Body: data}

	switch {
	case httpResp.StatusCode >= 200 && httpResp.StatusCode < 300:
		return resp, false, nil
	case httpResp.StatusCode >= 500:
		return resp, true, fmt.Errorf("server error: %s", strings.TrimSpace(string(truncate(data, 200))))
	case c.retryStatus[httpResp.StatusCode]:
		return resp, true, fmt.Errorf("retryable status %d", httpResp.StatusCode)
	default:
		return resp, false, fmt.Errorf("client error: %s", strings.TrimSpace(string(truncate(data, 200))))
	}
}

func (c *Client) buildURL(endpoint string, query url.Values) string {
	target := c.baseURL
	if endpoint != "" {
		target = c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	}
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	return target
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
